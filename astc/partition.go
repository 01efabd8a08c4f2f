package astc

// hash52 is the hash used for procedural partition assignment.
func hash52(inp uint32) uint32 {
	inp ^= inp >> 15
	inp *= 0xEEDE0891
	inp ^= inp >> 5
	inp += inp << 16
	inp ^= inp >> 7
	inp ^= inp >> 3
	inp ^= inp << 6
	inp ^= inp >> 17
	return inp
}

// selectPartition returns the partition of texel (x, y, z) for a partition
// seed (index) and count. smallBlock is set for footprints under 32 texels.
func selectPartition(seed, x, y, z, partitionCount int, smallBlock bool) uint8 {
	if smallBlock {
		x <<= 1
		y <<= 1
		z <<= 1
	}

	seed += (partitionCount - 1) * partitionIndexCount
	rnum := hash52(uint32(seed))

	// s[0..7] drive x/y, s[8..11] drive z.
	var s [12]uint8
	for i := 0; i < 8; i++ {
		s[i] = uint8(rnum >> (4 * uint(i)) & 0xF)
	}
	s[8] = uint8(rnum >> 18 & 0xF)
	s[9] = uint8(rnum >> 22 & 0xF)
	s[10] = uint8(rnum >> 26 & 0xF)
	s[11] = uint8((rnum>>30 | rnum<<2) & 0xF)
	for i := range s {
		s[i] *= s[i]
	}

	var sh1, sh2 uint8
	if seed&1 != 0 {
		sh1 = 5
		if seed&2 != 0 {
			sh1 = 4
		}
		sh2 = 5
		if partitionCount == 3 {
			sh2 = 6
		}
	} else {
		sh1 = 5
		if partitionCount == 3 {
			sh1 = 6
		}
		sh2 = 5
		if seed&2 != 0 {
			sh2 = 4
		}
	}
	sh3 := sh2
	if seed&0x10 != 0 {
		sh3 = sh1
	}

	for i := 0; i < 8; i += 2 {
		s[i] >>= sh1
		s[i+1] >>= sh2
	}
	for i := 8; i < 12; i++ {
		s[i] >>= sh3
	}

	score := [4]int{
		(int(s[0])*x + int(s[1])*y + int(s[10])*z + int(rnum>>14)) & 0x3F,
		(int(s[2])*x + int(s[3])*y + int(s[11])*z + int(rnum>>10)) & 0x3F,
		(int(s[4])*x + int(s[5])*y + int(s[8])*z + int(rnum>>6)) & 0x3F,
		(int(s[6])*x + int(s[7])*y + int(s[9])*z + int(rnum>>2)) & 0x3F,
	}
	for i := partitionCount; i < 4; i++ {
		score[i] = 0
	}

	// Earlier partitions win ties.
	best := 0
	for i := 1; i < 4; i++ {
		if score[i] > score[best] {
			best = i
		}
	}
	return uint8(best)
}

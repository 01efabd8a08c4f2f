package astc

// DecimationTable maps texels to the weight grid points they interpolate
// from, and weight grid points back to the texels they feed. Fractions are in
// sixteenths and sum to 16 for every texel.
type DecimationTable struct {
	TexelCount                   int
	WeightCount                  int
	XWeights, YWeights, ZWeights int

	texelWeightCount []uint8
	texelWeights     [][4]uint8
	texelFracs       [][4]uint8
	texelFracsF      [][4]float32

	weightTexels [][]uint8
	weightFracs  [][]uint8
	weightFracsF [][]float32

	// identity is set when every texel reads exactly its own weight.
	identity bool
}

func newDecimationTable(fp Footprint, xw, yw, zw int) *DecimationTable {
	texelCount := fp.TexelCount()
	dt := &DecimationTable{
		TexelCount:       texelCount,
		WeightCount:      xw * yw * zw,
		XWeights:         xw,
		YWeights:         yw,
		ZWeights:         zw,
		texelWeightCount: make([]uint8, texelCount),
		texelWeights:     make([][4]uint8, texelCount),
		texelFracs:       make([][4]uint8, texelCount),
		texelFracsF:      make([][4]float32, texelCount),
	}

	xScale := (1024 + fp.X/2) / (fp.X - 1)
	yScale := (1024 + fp.Y/2) / (fp.Y - 1)
	zScale := 0
	if fp.Z > 1 {
		zScale = (1024 + fp.Z/2) / (fp.Z - 1)
	}

	t := 0
	for z := 0; z < fp.Z; z++ {
		for y := 0; y < fp.Y; y++ {
			for x := 0; x < fp.X; x++ {
				// Grid positions in 4.4 fixed point.
				xg := (xScale*x*(xw-1) + 32) >> 6
				yg := (yScale*y*(yw-1) + 32) >> 6
				var idx, w [4]int
				if fp.Z > 1 {
					zg := (zScale*z*(zw-1) + 32) >> 6
					idx, w = simplexWeights(xw, yw, xg, yg, zg)
				} else {
					idx, w = bilinearWeights(xw, xg, yg)
				}
				dt.addTexel(t, idx, w)
				t++
			}
		}
	}

	dt.collectWeights()

	dt.identity = dt.WeightCount == texelCount
	for i := 0; dt.identity && i < texelCount; i++ {
		dt.identity = dt.texelWeightCount[i] == 1 && int(dt.texelWeights[i][0]) == i
	}
	return dt
}

func (dt *DecimationTable) addTexel(t int, idx, w [4]int) {
	n := 0
	for i := 0; i < 4; i++ {
		if w[i] == 0 || idx[i] < 0 || idx[i] >= dt.WeightCount {
			continue
		}
		dt.texelWeights[t][n] = uint8(idx[i])
		dt.texelFracs[t][n] = uint8(w[i])
		dt.texelFracsF[t][n] = float32(w[i]) / 16
		n++
	}
	dt.texelWeightCount[t] = uint8(n)
}

// bilinearWeights returns the four grid corners around (xg, yg) and their
// fractions.
func bilinearWeights(xw, xg, yg int) (idx, w [4]int) {
	fs, ft := xg&0xF, yg&0xF
	q0 := xg>>4 + (yg>>4)*xw

	w11 := (fs*ft + 8) >> 4
	idx = [4]int{q0, q0 + 1, q0 + xw, q0 + xw + 1}
	w = [4]int{16 - fs - ft + w11, fs - w11, ft - w11, w11}
	return idx, w
}

// simplexWeights returns the tetrahedron of grid points around (xg, yg, zg).
// The ordering of the fractional parts selects one of six tetrahedra.
func simplexWeights(xw, yw, xg, yg, zg int) (idx, w [4]int) {
	fs, ft, fp := xg&0xF, yg&0xF, zg&0xF
	n, nm := xw, xw*yw
	q0 := ((zg>>4)*yw+yg>>4)*xw + xg>>4
	q3 := q0 + 1 + n + nm

	var s1, s2 int
	switch {
	case fs > ft && ft > fp:
		s1, s2 = 1, n
		w = [4]int{16 - fs, fs - ft, ft - fp, fp}
	case fs <= ft && ft > fp && fs > fp:
		s1, s2 = n, 1
		w = [4]int{16 - ft, ft - fs, fs - fp, fp}
	case fs > ft && ft <= fp && fs > fp:
		s1, s2 = 1, nm
		w = [4]int{16 - fs, fs - fp, fp - ft, ft}
	case fs > ft && fs <= fp:
		s1, s2 = nm, 1
		w = [4]int{16 - fp, fp - fs, fs - ft, ft}
	case fs <= ft && ft > fp:
		s1, s2 = n, nm
		w = [4]int{16 - ft, ft - fp, fp - fs, fs}
	default:
		s1, s2 = nm, n
		w = [4]int{16 - fp, fp - ft, ft - fs, fs}
	}
	idx = [4]int{q0, q0 + s1, q0 + s1 + s2, q3}
	return idx, w
}

// collectWeights builds the weight -> texel map from the texel -> weight map.
func (dt *DecimationTable) collectWeights() {
	dt.weightTexels = make([][]uint8, dt.WeightCount)
	dt.weightFracs = make([][]uint8, dt.WeightCount)
	dt.weightFracsF = make([][]float32, dt.WeightCount)
	for t := 0; t < dt.TexelCount; t++ {
		for j := 0; j < int(dt.texelWeightCount[t]); j++ {
			wi := dt.texelWeights[t][j]
			dt.weightTexels[wi] = append(dt.weightTexels[wi], uint8(t))
			dt.weightFracs[wi] = append(dt.weightFracs[wi], dt.texelFracs[t][j])
			dt.weightFracsF[wi] = append(dt.weightFracsF[wi], dt.texelFracsF[t][j])
		}
	}
}

// TexelContributions returns the weight indices and fractions feeding texel t.
func (dt *DecimationTable) TexelContributions(t int) (idx, frac []uint8) {
	n := dt.texelWeightCount[t]
	return dt.texelWeights[t][:n], dt.texelFracs[t][:n]
}

// WeightContributions returns the texels fed by weight w and their fractions.
func (dt *DecimationTable) WeightContributions(w int) (texels, frac []uint8) {
	return dt.weightTexels[w], dt.weightFracs[w]
}

// infill returns the 0..64 weight of texel t from grid weights in 0..64.
func (dt *DecimationTable) infill(weights []uint8, t int) int {
	sum := 8
	for j := 0; j < int(dt.texelWeightCount[t]); j++ {
		sum += int(weights[dt.texelWeights[t][j]]) * int(dt.texelFracs[t][j])
	}
	return sum >> 4
}

// infillFloat is infill for float grid weights.
func (dt *DecimationTable) infillFloat(weights []float32, t int) float32 {
	var sum float32
	for j := 0; j < int(dt.texelWeightCount[t]); j++ {
		sum += weights[dt.texelWeights[t][j]] * dt.texelFracsF[t][j]
	}
	return sum
}

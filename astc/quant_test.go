package astc

import "testing"

func TestColorQuantTables(t *testing.T) {
	for q := Quant6; q <= Quant256; q++ {
		// Quantizing an unquantized value returns it.
		for v := 0; v < q.Levels(); v++ {
			u := unquantColor(q, v)
			if got := closestQuant(q, u); unquantColor(q, got) != u {
				t.Fatalf("%v: closestQuant(unquant(%d)=%d) = %d unquantizes to %d", q, v, u, got, unquantColor(q, got))
			}
		}
		if unquantColor(q, closestQuant(q, 0)) != 0 || unquantColor(q, closestQuant(q, 255)) != 255 {
			t.Fatalf("%v: range ends are not exact", q)
		}
	}

	if got := closestQuant(Quant8, 128); got != 4 {
		t.Fatalf("closestQuant(QUANT_8, 128): got %d want 4", got)
	}
	if got := unquantColor(Quant256, 77); got != 77 {
		t.Fatalf("unquantColor(QUANT_256, 77): got %d want 77", got)
	}
}

func TestWeightQuantTables(t *testing.T) {
	for q := Quant2; q <= maxWeightQuant; q++ {
		lo, hi := 64, 0
		for v := 0; v < q.Levels(); v++ {
			u := unquantWeight(q, v)
			if u < 0 || u > 64 {
				t.Fatalf("%v: unquantWeight(%d) = %d out of 0..64", q, v, u)
			}
			lo, hi = min(lo, u), max(hi, u)
		}
		if lo != 0 || hi != 64 {
			t.Fatalf("%v: weight range %d..%d want 0..64", q, lo, hi)
		}
		if got := unquantWeight(q, quantizeWeight(q, 1)); got != 64 {
			t.Fatalf("%v: weight 1.0 unquantizes to %d", q, got)
		}
		if got := unquantWeight(q, quantizeWeight(q, 0)); got != 0 {
			t.Fatalf("%v: weight 0.0 unquantizes to %d", q, got)
		}
	}
}

// Endpoint and weight values in ISE order for levels with known tables.
func TestUnquantValues(t *testing.T) {
	colors := []struct {
		q    QuantMethod
		want []int
	}{
		{Quant6, []int{0, 255, 51, 204, 102, 153}},
		{Quant8, []int{0, 36, 73, 109, 146, 182, 219, 255}},
		{Quant10, []int{0, 255, 28, 227, 56, 199, 84, 171, 113, 142}},
		{Quant12, []int{0, 255, 69, 186, 23, 232, 92, 163, 46, 209, 116, 139}},
		{Quant40, []int{
			0, 255, 32, 223, 65, 190, 97, 158,
			6, 249, 39, 216, 71, 184, 104, 151,
			13, 242, 45, 210, 78, 177, 110, 145,
			19, 236, 52, 203, 84, 171, 117, 138,
			26, 229, 58, 197, 91, 164, 123, 132,
		}},
	}
	for _, tt := range colors {
		for v, want := range tt.want {
			if got := unquantColor(tt.q, v); got != want {
				t.Fatalf("unquantColor(%v, %d): got %d want %d", tt.q, v, got, want)
			}
		}
	}
	if got := unquantColor(Quant8, 7); got != 255 {
		t.Fatalf("unquantColor(QUANT_8, 7): got %d want 255", got)
	}

	weights := []struct {
		q    QuantMethod
		want []int
	}{
		{Quant2, []int{0, 64}},
		{Quant3, []int{0, 32, 64}},
		{Quant5, []int{0, 16, 32, 48, 64}},
		{Quant6, []int{0, 64, 12, 52, 25, 39}},
	}
	for _, tt := range weights {
		for v, want := range tt.want {
			if got := unquantWeight(tt.q, v); got != want {
				t.Fatalf("unquantWeight(%v, %d): got %d want %d", tt.q, v, got, want)
			}
		}
	}
}

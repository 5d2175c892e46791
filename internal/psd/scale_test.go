package psd

import (
	"math"
	"testing"
)

func TestScaleDbmReference(t *testing.T) {
	p := []float64{50}
	Scale(p, "dbm")
	if math.Abs(p[0]-30) > 1e-9 {
		t.Fatalf("dbm = %v, want 30", p[0])
	}
}

func TestScaleDbuv(t *testing.T) {
	p := []float64{50}
	Scale(p, "dbuv")
	if math.Abs(p[0]-137) > 1e-9 {
		t.Fatalf("dbuv = %v, want 137", p[0])
	}
}

func TestScaleWatts(t *testing.T) {
	p := []float64{50}
	Scale(p, "w")
	if math.Abs(p[0]-1) > 1e-9 {
		t.Fatalf("watts = %v, want 1", p[0])
	}
}

func TestScaleVolts(t *testing.T) {
	p := []float64{50}
	Scale(p, "v")
	want := math.Sqrt(50)
	if math.Abs(p[0]-want) > 1e-9 {
		t.Fatalf("volts = %v, want %v", p[0], want)
	}
}

func TestScaleUnknownFallsBackToDbm(t *testing.T) {
	a := []float64{50}
	b := []float64{50}
	Scale(a, "dbm")
	Scale(b, "not-a-real-unit")
	if a[0] != b[0] {
		t.Fatalf("unknown tag did not fall back to dbm: %v vs %v", b[0], a[0])
	}
}

func TestScaleMonotonic(t *testing.T) {
	a := []float64{10}
	b := []float64{20}
	Scale(a, "dbm")
	Scale(b, "dbm")
	if !(b[0] > a[0]) {
		t.Fatalf("scaler not monotonic: f(10)=%v f(20)=%v", a[0], b[0])
	}
}

package biquad

import (
	"math"
	"math/cmplx"
	"testing"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestIdentityPassesThrough(t *testing.T) {
	s := NewSection(Identity)
	for i, x := range []float64{1, 0, -1, 0.5, 0.25} {
		if y := s.ProcessSample(x); y != x {
			t.Fatalf("sample %d = %v, want %v", i, y, x)
		}
	}

	if !Identity.IsIdentity() || (Coefficients{B0: 0.5}).IsIdentity() {
		t.Fatal("IsIdentity mismatch")
	}
}

func TestImpulseResponse(t *testing.T) {
	// n=0: y=0.25  d0=0.55 d1=0.24
	// n=1: y=0.55  d0=0.35 d1=-0.022
	// n=2: y=0.35  d0=0.048 d1=-0.014
	s := NewSection(Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04})

	for i, want := range []float64{0.25, 0.55, 0.35, 0.048} {
		x := 0.0
		if i == 0 {
			x = 1
		}

		if y := s.ProcessSample(x); !near(y, want, 1e-12) {
			t.Fatalf("n=%d: y = %v, want %v", i, y, want)
		}
	}
}

func TestBlockMatchesSamples(t *testing.T) {
	c := Coefficients{B0: 0.2, B1: 0.3, B2: 0.1, A1: -0.5, A2: 0.2}
	a, b := NewSection(c), NewSection(c)

	buf := make([]float64, 300)
	for i := range buf {
		buf[i] = math.Sin(float64(i) * 0.1)
	}

	want := make([]float64, len(buf))
	for i, x := range buf {
		want[i] = a.ProcessSample(x)
	}

	b.ProcessBlock(buf)

	for i := range buf {
		if !near(buf[i], want[i], 1e-12) {
			t.Fatalf("sample %d: block %v, per-sample %v", i, buf[i], want[i])
		}
	}
}

func TestUpdateKeepsState(t *testing.T) {
	lp := Coefficients{B0: 0.5, B1: 0.5, A1: -0.3}
	s := NewSection(lp)
	s.ProcessSample(1)

	s.Update(Coefficients{B0: 1, A1: -0.3})

	// d0 carried over: 0.5 + 0.3*0.5 = 0.65, plus the new B0*x = 0.
	if y := s.ProcessSample(0); !near(y, 0.65, 1e-12) {
		t.Fatalf("first sample after Update = %v, want 0.65", y)
	}

	s.Reset()

	if y := s.ProcessSample(0); y != 0 {
		t.Fatalf("sample after Reset = %v, want 0", y)
	}

	if s.Coefficients() != (Coefficients{B0: 1, A1: -0.3}) {
		t.Fatalf("Coefficients = %+v", s.Coefficients())
	}
}

func TestResponse(t *testing.T) {
	for _, f := range []float64{10, 1000, 20000} {
		if h := Identity.Response(f, 48000); !near(cmplx.Abs(h), 1, 1e-12) {
			t.Fatalf("|H(%v)| = %v, want 1", f, cmplx.Abs(h))
		}
	}

	half := Coefficients{B0: 0.5}
	if got := half.MagnitudeDB(1000, 44100); !near(got, -6.020599913279624, 1e-9) {
		t.Fatalf("MagnitudeDB = %v, want -6.0206", got)
	}
}

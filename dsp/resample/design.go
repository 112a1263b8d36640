package resample

import "math"

// designPolyphase builds a Kaiser-windowed sinc lowpass at the lower of the
// two Nyquist rates and splits it into up phases. It returns the phases and
// the prototype length.
func designPolyphase(up, down int, p profile) ([][]float64, int) {
	n := p.tapsPerPhase * up
	fc := 0.5 / float64(max(up, down)) * p.cutoffScale

	taps := make([]float64, n)
	center := 0.5 * float64(n-1)

	var sum float64

	for i := range taps {
		t := float64(i) - center
		taps[i] = 2 * fc * sinc(2*fc*t) * kaiser(i, n, p.kaiserBeta)
		sum += taps[i]
	}

	// Unity DC gain per phase after zero stuffing.
	scale := float64(up) / sum
	for i := range taps {
		taps[i] *= scale
	}

	phases := make([][]float64, up)
	for ph := range phases {
		for i := ph; i < n; i += up {
			phases[ph] = append(phases[ph], taps[i])
		}
	}

	return phases, n
}

// approximateRatio returns num/den close to v by continued fractions.
func approximateRatio(v float64, maxDen int) (num, den int) {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1, 1
	}

	p0, q0 := 1.0, 0.0
	p1, q1 := math.Floor(v), 1.0
	x := v

	for {
		frac := x - math.Floor(x)
		if frac < 1e-12 {
			break
		}

		x = 1 / frac
		a := math.Floor(x)

		q2 := a*q1 + q0
		if q2 > float64(maxDen) {
			break
		}

		p0, q0, p1, q1 = p1, q1, a*p1+p0, q2
	}

	num, den = int(math.Round(p1)), int(math.Round(q1))
	if num <= 0 || den <= 0 {
		return 1, 1
	}

	g := gcd(num, den)

	return num / g, den / g
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}

	if a < 0 {
		return -a
	}

	if a == 0 {
		return 1
	}

	return a
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}

	return math.Sin(math.Pi*x) / (math.Pi * x)
}

func kaiser(i, n int, beta float64) float64 {
	if n <= 1 || beta == 0 {
		return 1
	}

	t := 2*float64(i)/float64(n-1) - 1

	return besselI0(beta*math.Sqrt(math.Max(0, 1-t*t))) / besselI0(beta)
}

// besselI0 evaluates the zeroth-order modified Bessel function by its power
// series.
func besselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	x2 := x * x / 4

	for k := 1; k < 64; k++ {
		term *= x2 / float64(k*k)
		sum += term

		if term < 1e-16*sum {
			break
		}
	}

	return sum
}

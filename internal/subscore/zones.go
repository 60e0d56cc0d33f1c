package subscore

// Curve is a zone-based piecewise-linear mapping from a raw input to a 0-100
// score. Values inside a known-good zone sit near the top; values drifting
// out taper through the adjacent segments instead of cliff-dropping. Points
// must be ordered by ascending X; inputs beyond either end take the end
// score.
type Curve struct {
	Points []CurvePoint
}

// CurvePoint anchors the curve: at input X the score is Y.
type CurvePoint struct {
	X float64
	Y float64
}

// NewCurve builds a curve from (x, score) pairs.
func NewCurve(points ...CurvePoint) Curve {
	return Curve{Points: points}
}

// Score maps an input through the curve.
func (c Curve) Score(x float64) float64 {
	pts := c.Points
	if len(pts) == 0 {
		return PartialCreditScore
	}
	if x <= pts[0].X {
		return pts[0].Y
	}
	last := pts[len(pts)-1]
	if x >= last.X {
		return last.Y
	}
	for i := 1; i < len(pts); i++ {
		if x <= pts[i].X {
			lo, hi := pts[i-1], pts[i]
			span := hi.X - lo.X
			if span == 0 {
				return hi.Y
			}
			frac := (x - lo.X) / span
			return lo.Y + frac*(hi.Y-lo.Y)
		}
	}
	return last.Y
}

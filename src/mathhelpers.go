package sal

import "math"

func cosAngle(a Angle) float64 { return math.Cos(float64(a)) }
func sinAngle(a Angle) float64 { return math.Sin(float64(a)) }
func sqrtFloat(x float64) float64 { return math.Sqrt(x) }

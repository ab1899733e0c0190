package layout

import "math"

// HeartPoint evaluates the parametric heart curve in curve units:
//
//	x(t) = 16 sin³t
//	y(t) = 13 cos t − 5 cos 2t − 2 cos 3t − cos 4t
//
// y grows upward; callers flip it for screen space.
func HeartPoint(t float64) (x, y float64) {
	s := math.Sin(t)
	x = 16 * s * s * s
	y = 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
	return x, y
}

// heartBox centres item i of n on the heart curve scaled to the canvas.
func heartBox(i, n int, canvasW, canvasH float64) box {
	t := float64(i) / float64(max(n, 1)) * 2 * math.Pi
	size := math.Min(canvasW, canvasH) * 0.3
	hx, hy := HeartPoint(t)
	cx := canvasW/2 + size*hx/16
	cy := canvasH/2 - size*hy/16
	return box{
		x: cx - HeartItemSize/2,
		y: cy - HeartItemSize/2,
		w: HeartItemSize,
		h: HeartItemSize,
	}
}

// Point is a centre position with the angle it was placed at.
type Point struct {
	X, Y  float64
	Angle float64 // degrees
}

// Radial spaces n points evenly around a circle, starting at startDeg and
// going clockwise in screen space.
func Radial(n int, cx, cy, radius, startDeg float64) []Point {
	if n <= 0 {
		return nil
	}
	step := 360 / float64(n)
	points := make([]Point, n)
	for i := range points {
		deg := startDeg + float64(i)*step
		rad := deg * math.Pi / 180
		points[i] = Point{
			X:     cx + math.Cos(rad)*radius,
			Y:     cy + math.Sin(rad)*radius,
			Angle: deg,
		}
	}
	return points
}

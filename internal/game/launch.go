package game

import "math"

// LaunchVector converts a slingshot drag into a launch velocity.
// The piece flies opposite to the drag, from end back toward start, with speed
// min(distance/MaxDragDistance, 1) * MaxPower. Drags of MinDragDistance or less
// are treated as cancelled and return false.
func LaunchVector(start, end Vec2) (Vec2, bool) {
	pull := start.Minus(end)
	dist := pull.Magnitude()
	if dist <= MinDragDistance {
		return Vec2{}, false
	}
	power := math.Min(dist/MaxDragDistance, 1) * MaxPower
	return pull.Times(power / dist), true
}

// PowerPercent is the drag strength shown to the player, 0..100.
func PowerPercent(start, end Vec2) int {
	dist := end.DistanceTo(start)
	return int(math.Round(math.Min(dist/MaxDragDistance, 1) * 100))
}

// capVelocity limits v to MaxPower magnitude.
func capVelocity(v Vec2) Vec2 {
	m := v.Magnitude()
	if m <= MaxPower || m == 0 {
		return v
	}
	return v.Times(MaxPower / m)
}

package vmath

import "math"

// SmoothDamp moves current toward target with a critically damped spring.
// velocity carries state between calls and is updated in place.
func SmoothDamp(current, target float64, velocity *float64, smoothTime, dt float64) float64 {
	smoothTime = math.Max(0.0001, smoothTime)
	omega := 2 / smoothTime
	x := omega * dt
	exp := 1 / (1 + x + 0.48*x*x + 0.235*x*x*x)

	change := current - target
	temp := (*velocity + omega*change) * dt
	*velocity = (*velocity - omega*temp) * exp
	out := target + (change+temp)*exp

	// Do not overshoot.
	if (target-current > 0) == (out > target) {
		out = target
		*velocity = (out - target) / dt
	}
	return out
}

// SmoothDampVec3 applies SmoothDamp per axis.
func SmoothDampVec3(current, target Vec3, velocity *Vec3, smoothTime, dt float64) Vec3 {
	if dt <= 0 {
		return current
	}
	return Vec3{
		SmoothDamp(current.X, target.X, &velocity.X, smoothTime, dt),
		SmoothDamp(current.Y, target.Y, &velocity.Y, smoothTime, dt),
		SmoothDamp(current.Z, target.Z, &velocity.Z, smoothTime, dt),
	}
}

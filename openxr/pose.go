package openxr

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/wippyai/xr-bridge/xr"
)

// TrackingConfidence grades a located pose.
type TrackingConfidence int

const (
	ConfidenceNone TrackingConfidence = iota
	ConfidenceLow
	ConfidenceHigh
)

func (c TrackingConfidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceHigh:
		return "high"
	}
	return "none"
}

// Transform is a rigid transform: rotation basis plus origin.
type Transform struct {
	Basis  mgl32.Mat3
	Origin mgl32.Vec3
}

// IdentityTransform returns the transform with identity basis at the origin.
func IdentityTransform() Transform {
	return Transform{Basis: mgl32.Ident3()}
}

// Mat4 returns the transform as a homogeneous matrix.
func (t Transform) Mat4() mgl32.Mat4 {
	m := t.Basis.Mat4()
	m.SetCol(3, t.Origin.Vec4(1))
	return m
}

// PoseReading is a located pose with velocities.
type PoseReading struct {
	Transform       Transform
	LinearVelocity  mgl32.Vec3
	AngularVelocity mgl32.Vec3
	Confidence      TrackingConfidence
}

func noPose() PoseReading {
	return PoseReading{Transform: IdentityTransform()}
}

func quatToBasis(q xr.Quaternionf) mgl32.Mat3 {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3{q.X, q.Y, q.Z}}.Normalize().Mat4().Mat3()
}

func vec3(v xr.Vector3f) mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

// TransformFromLocation converts a space location and grades it.
//
// A valid orientation starts at high confidence when tracked, low otherwise.
// A valid position keeps that grade when orientation is tracked, demotes it to
// low when it is not, and yields high on its own for position-only tracking.
// Invalid components stay at identity.
func TransformFromLocation(loc xr.SpaceLocation) (Transform, TrackingConfidence) {
	t := IdentityTransform()
	confidence := ConfidenceNone

	if loc.LocationFlags&xr.SpaceLocationOrientationValid != 0 {
		t.Basis = quatToBasis(loc.Pose.Orientation)
		if loc.LocationFlags&xr.SpaceLocationOrientationTracked != 0 {
			confidence = ConfidenceHigh
		} else {
			confidence = ConfidenceLow
		}
	}

	if loc.LocationFlags&xr.SpaceLocationPositionValid != 0 {
		t.Origin = vec3(loc.Pose.Position)
		switch {
		case confidence == ConfidenceNone:
			confidence = ConfidenceHigh
		case loc.LocationFlags&xr.SpaceLocationOrientationTracked == 0:
			confidence = ConfidenceLow
		}
	}

	return t, confidence
}

// VelocitiesFromLocation decodes linear and angular velocity, each only when
// its own valid bit is set.
func VelocitiesFromLocation(v xr.SpaceVelocity) (linear, angular mgl32.Vec3) {
	if v.VelocityFlags&xr.SpaceVelocityLinearValid != 0 {
		linear = vec3(v.LinearVelocity)
	}
	if v.VelocityFlags&xr.SpaceVelocityAngularValid != 0 {
		angular = vec3(v.AngularVelocity)
	}
	return linear, angular
}

func readingFromLocation(loc xr.SpaceLocation, vel xr.SpaceVelocity) PoseReading {
	t, c := TransformFromLocation(loc)
	lin, ang := VelocitiesFromLocation(vel)
	return PoseReading{Transform: t, Confidence: c, LinearVelocity: lin, AngularVelocity: ang}
}

// poseTransform converts a pose without grading it.
func poseTransform(p xr.Posef) Transform {
	return Transform{Basis: quatToBasis(p.Orientation), Origin: vec3(p.Position)}
}

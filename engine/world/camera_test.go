package world

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCameraMoveForward(t *testing.T) {
	c := NewCamera()
	start := c.Position()

	// Default yaw looks down -Z, so moving along the view direction
	// decreases Z only.
	c.Move(mgl32.Vec3{0, 0, 2})
	pos := c.Position()
	assert.InDelta(t, float64(start.X()), float64(pos.X()), 1e-5)
	assert.InDelta(t, float64(start.Y()), float64(pos.Y()), 1e-5)
	assert.InDelta(t, float64(start.Z()-2), float64(pos.Z()), 1e-5)
}

func TestCameraStrafeIsPerpendicular(t *testing.T) {
	c := NewCamera()
	start := c.Position()

	c.Move(mgl32.Vec3{1, 0, 0})
	pos := c.Position()
	// Looking down -Z, right is +X.
	assert.InDelta(t, float64(start.X()+1), float64(pos.X()), 1e-5)
	assert.InDelta(t, float64(start.Z()), float64(pos.Z()), 1e-5)
}

func TestCameraPitchClamp(t *testing.T) {
	c := NewCamera()
	c.Rotate(0, 10)
	fwd := c.forward()
	assert.Less(t, float64(fwd.Y()), 1.0)

	c.Rotate(0, -20)
	fwd = c.forward()
	assert.Greater(t, float64(fwd.Y()), -1.0)

	limit := float32(math.Pi/2) - 0.01
	assert.InDelta(t, float64(-limit), float64(c.pitch), 1e-5)
}

func TestCameraProjectionFlipsY(t *testing.T) {
	c := NewCamera()
	proj := c.ProjectionMatrix(16.0 / 9.0)
	ref := mgl32.Perspective(mgl32.DegToRad(45), 16.0/9.0, 0.1, 100.0)
	assert.InDelta(t, float64(-ref[5]), float64(proj[5]), 1e-5)
}

func TestCameraViewLooksAlongForward(t *testing.T) {
	c := NewCamera()
	view := c.ViewMatrix()
	// A point straight ahead of the camera lands on the view-space -Z axis.
	ahead := c.Position().Add(c.forward())
	p := mgl32.TransformCoordinate(ahead, view)
	assert.InDelta(t, 0, float64(p.X()), 1e-5)
	assert.InDelta(t, 0, float64(p.Y()), 1e-5)
	assert.InDelta(t, -1, float64(p.Z()), 1e-5)
}

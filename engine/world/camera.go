package world

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-flying spectator camera. Yaw/pitch are in radians.
type Camera struct {
	mu       sync.RWMutex
	position mgl32.Vec3
	yaw      float32
	pitch    float32

	fovY float32
	near float32
	far  float32
}

func NewCamera() *Camera {
	return &Camera{
		position: mgl32.Vec3{0, 0, 5},
		yaw:      -float32(math.Pi) / 2,
		fovY:     mgl32.DegToRad(45),
		near:     0.1,
		far:      100.0,
	}
}

func (c *Camera) forward() mgl32.Vec3 {
	cy, sy := float32(math.Cos(float64(c.yaw))), float32(math.Sin(float64(c.yaw)))
	cp, sp := float32(math.Cos(float64(c.pitch))), float32(math.Sin(float64(c.pitch)))
	return mgl32.Vec3{cy * cp, sp, sy * cp}.Normalize()
}

// Move translates the camera in its local axes: x strafes, y lifts, z moves
// along the view direction.
func (c *Camera) Move(delta mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fwd := c.forward()
	right := fwd.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	c.position = c.position.
		Add(right.Mul(delta.X())).
		Add(mgl32.Vec3{0, delta.Y(), 0}).
		Add(fwd.Mul(delta.Z()))
}

// Rotate applies yaw/pitch deltas, clamping pitch short of the poles.
func (c *Camera) Rotate(dyaw, dpitch float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yaw += dyaw
	c.pitch += dpitch
	limit := float32(math.Pi/2) - 0.01
	if c.pitch > limit {
		c.pitch = limit
	}
	if c.pitch < -limit {
		c.pitch = -limit
	}
}

func (c *Camera) Position() mgl32.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	center := c.position.Add(c.forward())
	return mgl32.LookAtV(c.position, center, mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix builds a perspective projection for the given aspect
// ratio with the Y axis flipped for Vulkan clip space.
func (c *Camera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	proj := mgl32.Perspective(c.fovY, aspect, c.near, c.far)
	// GL-style projection; Vulkan's Y points down.
	proj[5] *= -1
	return proj
}

package components

import (
	"github.com/spaghettifunk/vesta/engine/math"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

const (
	DEFAULT_FOVY   float32 = math.K_THIRD_PI
	DEFAULT_ASPECT float32 = 800.0 / 600.0
	DEFAULT_NEAR   float32 = 0.1
	DEFAULT_FAR    float32 = 100.0
)

/**
 * @brief A free flying camera. Its frame is made of the view direction, the
 * down direction and right = down x view, with y pointing down on screen.
 * View and projection are rebuilt eagerly on every change.
 */
type Camera struct {
	Position      math.Vec3
	ViewDirection math.Vec3
	DownDirection math.Vec3

	FovY   float32
	Aspect float32
	Near   float32
	Far    float32

	viewMatrix       math.Mat4
	projectionMatrix math.Mat4
}

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

// Reset puts the camera behind and above the origin, looking at it.
func (c *Camera) Reset() {
	c.Position = math.NewVec3(0, -3, -3)
	c.ViewDirection = math.NewVec3(0, 1, 1).Normalized()
	c.DownDirection = math.NewVec3(0, 1, -1).Normalized()
	c.FovY = DEFAULT_FOVY
	c.Aspect = DEFAULT_ASPECT
	c.Near = DEFAULT_NEAR
	c.Far = DEFAULT_FAR
	c.updateProjection()
	c.updateView()
}

func (c *Camera) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.Aspect = aspect
	c.updateProjection()
}

func (c *Camera) Right() math.Vec3 {
	return c.DownDirection.Cross(c.ViewDirection).Normalized()
}

func (c *Camera) View() math.Mat4 {
	return c.viewMatrix
}

func (c *Camera) Projection() math.Mat4 {
	return c.projectionMatrix
}

func (c *Camera) MoveForward(distance float32) {
	c.Position = c.Position.Add(c.ViewDirection.MulScalar(distance))
	c.updateView()
}

func (c *Camera) MoveBackward(distance float32) {
	c.MoveForward(-distance)
}

// TurnRight rotates the view direction about the down direction.
func (c *Camera) TurnRight(angle float32) {
	c.ViewDirection = c.ViewDirection.Rotate(c.DownDirection, angle)
	c.updateView()
}

func (c *Camera) TurnLeft(angle float32) {
	c.TurnRight(-angle)
}

// TurnUp pitches both view and down directions about the right axis.
func (c *Camera) TurnUp(angle float32) {
	right := c.Right()
	c.ViewDirection = c.ViewDirection.Rotate(right, angle)
	c.DownDirection = c.DownDirection.Rotate(right, angle)
	c.updateView()
}

func (c *Camera) TurnDown(angle float32) {
	c.TurnUp(-angle)
}

// UpdateBuffer writes view then projection, column-major, into the
// uniform buffer of the current ring slot.
func (c *Camera) UpdateBuffer(buffer metadata.Buffer) error {
	data := [2]math.Mat4{c.viewMatrix, c.projectionMatrix}
	return buffer.Fill(metadata.AsBytes(data[:]))
}

func (c *Camera) updateView() {
	right := c.Right()
	down := c.DownDirection
	view := c.ViewDirection
	c.viewMatrix = math.NewMat4FromRows(
		[4]float32{right.X, right.Y, right.Z, -right.Dot(c.Position)},
		[4]float32{down.X, down.Y, down.Z, -down.Dot(c.Position)},
		[4]float32{view.X, view.Y, view.Z, -view.Dot(c.Position)},
		[4]float32{0, 0, 0, 1},
	)
}

func (c *Camera) updateProjection() {
	c.projectionMatrix = math.NewMat4Perspective(c.FovY, c.Aspect, c.Near, c.Far)
}

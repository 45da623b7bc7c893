package testbed

import (
	"github.com/spaghettifunk/vesta/engine/math"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
	"github.com/spaghettifunk/vesta/engine/renderer/registry"
)

const (
	gridSize     = 10
	rotatedAngle = 1.4
)

// scene is the demo cube layout with the handles Update animates.
type scene struct {
	cubes   *registry.Model
	blinker registry.Handle
	spinner registry.Handle
}

func buildScene(slots int) *scene {
	cubes := registry.Cube(slots)
	s := &scene{cubes: cubes}

	cubes.InsertVisibly(metadata.NewInstanceData(
		scaled(math.NewVec3(0, 0, 0.1), 0.1),
		[3]float32{0.2, 0.4, 1},
	))
	s.blinker = cubes.InsertVisibly(metadata.NewInstanceData(
		scaled(math.NewVec3(0.05, 0.05, 0), 0.1),
		[3]float32{1, 1, 0.2},
	))

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			fi, fj := float32(i), float32(j)
			cubes.InsertVisibly(metadata.NewInstanceData(
				scaled(math.NewVec3(fi*0.2-1, fj*0.2-1, 0.5), 0.03),
				[3]float32{1, fi * 0.07, fj * 0.07},
			))
			cubes.InsertVisibly(metadata.NewInstanceData(
				scaled(math.NewVec3(fi*0.2-1, 0, fj*0.2-1), 0.02),
				[3]float32{fi * 0.07, fj * 0.07, 1},
			))
		}
	}

	s.spinner = cubes.InsertVisibly(metadata.NewInstanceData(
		spun(rotatedAngle),
		[3]float32{0, 0.5, 0},
	))

	// axis bars
	cubes.InsertVisibly(metadata.NewInstanceData(
		bar(math.NewVec3(0.5, 0, 0), math.NewVec3(0.5, 0.01, 0.01)),
		[3]float32{1, 0.5, 0.5},
	))
	cubes.InsertVisibly(metadata.NewInstanceData(
		bar(math.NewVec3(0, 0.5, 0), math.NewVec3(0.01, 0.5, 0.01)),
		[3]float32{0.5, 1, 0.5},
	))
	cubes.InsertVisibly(metadata.NewInstanceData(
		bar(math.NewVec3(0, 0, 0), math.NewVec3(0.01, 0.01, 0.5)),
		[3]float32{0.5, 0.5, 1},
	))
	return s
}

func scaled(position math.Vec3, scale float32) math.Mat4 {
	return math.TransformFromPositionScale(position, math.NewVec3(scale, scale, scale)).Matrix()
}

func bar(position, scale math.Vec3) math.Mat4 {
	return math.TransformFromPositionScale(position, scale).Matrix()
}

// spun places a small cube half a unit up the y axis and turns it about z.
func spun(angle float32) math.Mat4 {
	return math.NewMat4ScaledAxis(math.NewVec3(0, 0, angle)).Mul(scaled(math.NewVec3(0, 0.5, 0), 0.1))
}

// spin turns the green cube to rotatedAngle plus offset.
func (s *scene) spin(offset float32) error {
	instance, ok := s.cubes.Get(s.spinner)
	if !ok {
		return nil
	}
	instance.Model = spun(rotatedAngle + offset)
	return s.cubes.Set(s.spinner, instance)
}

// blink toggles the yellow cube between the visible and invisible part of
// the registry.
func (s *scene) blink() error {
	visible, err := s.cubes.IsVisible(s.blinker)
	if err != nil {
		return err
	}
	if visible {
		return s.cubes.MakeInvisible(s.blinker)
	}
	return s.cubes.MakeVisible(s.blinker)
}

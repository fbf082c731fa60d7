package flock

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rcliao/birdswarm/internal/model"
)

func baseInput() Input {
	return Input{
		Position:         model.Vec{},
		PreviousVelocity: model.Vec{Z: 5},
		Target:           model.Vec{},
		Dt:               0.1,
		MinVelocity:      1,
		MaxVelocity:      10,
	}
}

func TestStepWithoutForcesKeepsVelocity(t *testing.T) {
	res := Step(baseInput())
	assert.InDelta(t, 5, res.Velocity.Z, 1e-12)
	assert.InDelta(t, 0.5, res.Position.Z, 1e-12)
}

func TestSeparationAndCohesion(t *testing.T) {
	in := baseInput()
	in.Near = []Neighbor{{ID: 1, Position: model.Vec{X: 1}}}
	in.Visible = []Neighbor{
		{ID: 1, Position: model.Vec{X: 1}},
		{ID: 2, Position: model.Vec{Y: 4}},
	}

	res := Step(in)
	assert.Equal(t, model.Vec{X: -1}, res.Separation)
	assert.Equal(t, model.Vec{Y: 4}, res.Cohesion, "near neighbors are excluded from cohesion")
}

func TestTargetPullsTowardsGoal(t *testing.T) {
	in := baseInput()
	in.PreviousVelocity = model.Vec{X: 1}
	in.Target = model.Vec{X: 100}
	in.Weights.Target = 1

	res := Step(in)
	assert.Greater(t, res.Velocity.X, 1.0)
	assert.Equal(t, model.Vec{X: 100}, res.Target)
}

func TestBoundaryOnlyOutside(t *testing.T) {
	in := baseInput()
	in.Position = model.Vec{X: 80}
	in.BoundsCenter = model.Vec{}

	inside := Step(in)
	assert.Equal(t, model.Vec{}, inside.Boundary)

	in.OutsideMultiplier = 1
	outside := Step(in)
	assert.Equal(t, model.Vec{X: -80}, outside.Boundary)
	assert.Less(t, outside.Velocity.X, 0.0)
}

func TestAlignmentKeepsMagnitude(t *testing.T) {
	in := baseInput()
	in.PreviousVelocity = model.Vec{X: 4}
	in.Weights.Alignment = 1
	in.Visible = []Neighbor{{ID: 1, Position: model.Vec{Y: 5}, Velocity: model.Vec{Z: 4}}}

	res := Step(in)
	assert.InDelta(t, 4, r3.Norm(res.Velocity), 1e-9)
	assert.Greater(t, res.Velocity.Z, 0.0)
	assert.Greater(t, res.Velocity.X, 0.0)
}

func TestVelocityAlwaysClamped(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	randVec := func(scale float64) model.Vec {
		return model.Vec{
			X: (rng.Float64()*2 - 1) * scale,
			Y: (rng.Float64()*2 - 1) * scale,
			Z: (rng.Float64()*2 - 1) * scale,
		}
	}

	for i := 0; i < 500; i++ {
		in := baseInput()
		in.PreviousVelocity = randVec(math.Pow(10, float64(i%8)-3))
		in.Target = randVec(1e6)
		in.Weights = Weights{Cohesion: 1, Separation: 2, Target: 50, Alignment: 1}
		for n := 0; n < i%4; n++ {
			nb := Neighbor{ID: n, Position: randVec(100), Velocity: randVec(20)}
			in.Visible = append(in.Visible, nb)
			if n%2 == 0 {
				in.Near = append(in.Near, nb)
			}
		}

		speed := r3.Norm(Step(in).Velocity)
		require.False(t, math.IsNaN(speed))
		assert.GreaterOrEqual(t, speed, in.MinVelocity-1e-9)
		assert.LessOrEqual(t, speed, in.MaxVelocity+1e-9)
	}
}

func TestZeroVelocityGetsMinimumSpeed(t *testing.T) {
	in := baseInput()
	in.PreviousVelocity = model.Vec{}

	res := Step(in)
	assert.InDelta(t, in.MinVelocity, r3.Norm(res.Velocity), 1e-12)
	assert.Equal(t, model.Forward, r3.Unit(res.Velocity))
}

func TestClampHandlesInvalidInput(t *testing.T) {
	v := Clamp(model.Vec{X: math.NaN()}, model.Vec{Y: 2}, 1, 3)
	assert.InDelta(t, 1, r3.Norm(v), 1e-12)
	assert.InDelta(t, 1, v.Y, 1e-12)

	v = Clamp(model.Vec{X: 100}, model.Vec{}, 1, 3)
	assert.InDelta(t, 3, v.X, 1e-12)
	assert.Zero(t, v.Y)
}

package scene

import "github.com/go-gl/mathgl/mgl32"

// Key is a single keyframe: a value sampled at a time expressed in
// animation ticks. Interpolation between keys is the consumer's job.
type Key[T any] struct {
	Time  float64
	Value T
}

// NodeAnimation holds the keyframe channels animating the scene node with
// the matching name. Correlation is by name, not by structural reference.
type NodeAnimation struct {
	Name         string
	PositionKeys []Key[mgl32.Vec3]
	ScaleKeys    []Key[mgl32.Vec3]
	RotationKeys []Key[mgl32.Quat]
}

// Animation is a named clip of per-node keyframe channels.
type Animation struct {
	Name           string
	DurationTicks  float64
	TicksPerSecond float64
	Channels       []NodeAnimation

	byName map[string]*NodeAnimation
}

// NewAnimation builds an animation together with its name-to-channel
// lookup. The lookup is built here once and never rebuilt; channels must
// not be mutated afterwards. If several channels share a name the first
// one wins.
func NewAnimation(name string, durationTicks, ticksPerSecond float64, channels []NodeAnimation) *Animation {
	a := &Animation{
		Name:           name,
		DurationTicks:  durationTicks,
		TicksPerSecond: ticksPerSecond,
		Channels:       channels,
		byName:         make(map[string]*NodeAnimation, len(channels)),
	}
	for i := range a.Channels {
		if _, ok := a.byName[a.Channels[i].Name]; !ok {
			a.byName[a.Channels[i].Name] = &a.Channels[i]
		}
	}
	return a
}

// Channel returns the node animation with the given name, or nil when no
// channel matches.
func (a *Animation) Channel(name string) *NodeAnimation {
	return a.byName[name]
}

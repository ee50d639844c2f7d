package scene

// Repeat values with special meaning. Positive values play the clip that
// many times and then hold the last frame.
const (
	RepeatLoop = -1
	RepeatHold = -2
)

// Clip is an animation resource: a named run of frames at a fixed rate.
type Clip struct {
	Name   string
	Frames int
	FPS    float64
}

// Duration returns one play-through in seconds.
func (c Clip) Duration() float64 {
	if c.Frames <= 0 || c.FPS <= 0 {
		return 0
	}
	return float64(c.Frames) / c.FPS
}

// Animation is a clip playing on an entity.
type Animation struct {
	Clip    Clip
	Repeat  int
	Elapsed float64
}

// Advance moves the playhead. Finished animations stay put.
func (a *Animation) Advance(delta float64) {
	if a.Finished() {
		return
	}
	a.Elapsed += delta
}

// plays returns how many play-throughs the animation runs for, or 0 when it
// loops forever.
func (a *Animation) plays() int {
	switch {
	case a.Repeat == RepeatLoop:
		return 0
	case a.Repeat == RepeatHold, a.Repeat == 0:
		return 1
	case a.Repeat > 0:
		return a.Repeat
	default:
		return 1
	}
}

// Loops reports whether the animation never finishes.
func (a *Animation) Loops() bool {
	return a.plays() == 0
}

// Finished reports whether every play-through has elapsed.
func (a *Animation) Finished() bool {
	plays := a.plays()
	if plays == 0 {
		return false
	}
	return a.Elapsed >= a.Clip.Duration()*float64(plays)
}

// Frame returns the current frame index within the clip.
func (a *Animation) Frame() int {
	if a.Clip.Frames <= 0 {
		return 0
	}
	if a.Finished() {
		return a.Clip.Frames - 1
	}
	frame := int(a.Elapsed * a.Clip.FPS)
	return frame % a.Clip.Frames
}

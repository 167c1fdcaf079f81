// Package stabilize turns noisy per-frame object-detector output into a
// temporally stable, deduplicated stream of confirmed detections. A frame
// filter pipeline scores and resolves each frame's raw detections, and a
// candidate tracker applies confirm/decay/class-lock hysteresis across
// frames so an established identity does not flip on a single noisy frame.
package stabilize

// Stabilizer wires the frame filter pipeline and the candidate tracker into
// a single per-frame entry point. It is synchronous and single-threaded by
// design: the caller invokes Process once per rendered frame, and calls must
// be externally serialized if the host is multi-threaded.
type Stabilizer struct {
	pipeline *Pipeline
	tracker  *Tracker
}

// NewStabilizer creates a Stabilizer with the given class dictionary (nil for
// the built-in default) and optional tracker behavior.
func NewStabilizer(dict Dictionary, opts ...TrackerOption) *Stabilizer {
	return &Stabilizer{
		pipeline: NewPipeline(dict),
		tracker:  NewDefaultTracker(opts...),
	}
}

// Process filters one frame of raw detections and returns the confirmed
// detections, in processing order. Skipping frames is safe; it only delays
// confirmation and decay.
func (s *Stabilizer) Process(raw []Detection, frameWidth, frameHeight int) ([]Detection, error) {
	resolved := s.pipeline.Filter(raw, frameWidth, frameHeight)
	return s.tracker.Track(resolved)
}

// Reset clears all tracked identities immediately, e.g. when the camera or
// scene context changes and in-flight identities are no longer meaningful.
func (s *Stabilizer) Reset() {
	s.tracker.Reset()
}

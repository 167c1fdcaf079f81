package stabilize

import (
	"sort"

	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/arthurkushman/go-hungarian"
	"github.com/pkg/errors"
)

const (
	// ConfirmFrames is the minimum streak before a candidate is surfaced to
	// callers.
	ConfirmFrames = 8
	// ClassLockFrames is the streak at which a candidate's class resists
	// override by overlapping alternate-class detections.
	ClassLockFrames = 12
	// DecayRate is how much an unmatched candidate's streak drops per frame.
	DecayRate = 2
	// ExactMatchIoU is the minimum overlap for a same-class match.
	ExactMatchIoU = 0.25
	// SpatialMatchIoU is the minimum overlap for a class-independent match.
	SpatialMatchIoU = 0.4

	// lockChallengeMargin is how decisively a challenger's fit must beat a
	// locked candidate's fit to take over the region.
	lockChallengeMargin = 1.3
)

// Candidate is a tracked identity persisting across frames. A live candidate
// always has Streak >= 1; it is emitted as confirmed once Streak reaches
// ConfirmFrames and resists class flips once Streak reaches ClassLockFrames.
type Candidate struct {
	// ID is a deterministic per-tracker token, assigned from an incrementing
	// counter at creation. Wall-clock time never participates in identity.
	ID     uint64
	Class  string
	Box    Rectangle
	Score  float64
	Streak int

	// coast is the motion filter for this candidate; nil unless the tracker
	// was built with WithMotionCoasting.
	coast *kalman_filter.KalmanBBox
}

// TrackerOption configures optional Tracker behavior.
type TrackerOption func(*Tracker)

// WithMotionCoasting advances unmatched candidates' boxes with an 8-state
// bounding-box Kalman filter, so a briefly-dropped object re-acquires its
// identity after detector flicker. Without this option an unmatched
// candidate's box stays where it was last matched.
func WithMotionCoasting() TrackerOption {
	return func(t *Tracker) {
		t.coasting = true
	}
}

// WithHungarianAssignment resolves same-class matches jointly per frame with
// the Hungarian algorithm instead of the default per-detection greedy scan.
func WithHungarianAssignment() TrackerOption {
	return func(t *Tracker) {
		t.hungarian = true
	}
}

// Tracker maintains candidate identities across frames and applies
// confirm/decay/class-lock hysteresis. It owns its candidate map exclusively;
// Track and Reset must be externally serialized if called from multiple
// goroutines.
//
// Matching is a linear scan over live candidates per detection, O(n*m) per
// call. At the expected scale (tens of detections, tens of candidates) this
// is not worth optimizing.
type Tracker struct {
	confirmFrames int
	lockFrames    int
	decayRate     int
	coasting      bool
	hungarian     bool

	nextID     uint64
	candidates map[uint64]*Candidate
}

// NewDefaultTracker creates a Tracker with the standard hysteresis constants
// (ConfirmFrames, ClassLockFrames, DecayRate).
func NewDefaultTracker(opts ...TrackerOption) *Tracker {
	return NewTracker(ConfirmFrames, ClassLockFrames, DecayRate, opts...)
}

// NewTracker creates a Tracker with explicit hysteresis parameters.
func NewTracker(confirmFrames, lockFrames, decayRate int, opts ...TrackerOption) *Tracker {
	tracker := &Tracker{
		confirmFrames: confirmFrames,
		lockFrames:    lockFrames,
		decayRate:     decayRate,
		candidates:    make(map[uint64]*Candidate),
	}
	for _, opt := range opts {
		opt(tracker)
	}
	return tracker
}

// Track matches one frame's resolved detections against live candidates,
// updates hysteresis state and returns the confirmed detections in processing
// order. A confirmed detection's class may differ from the triggering
// detection's class when a locked candidate defends its region.
func (t *Tracker) Track(resolved []ScoredDetection) ([]Detection, error) {
	seen := make(map[uint64]struct{})
	confirmed := make([]Detection, 0, len(resolved))

	var assigned map[int]uint64
	if t.hungarian {
		assigned = t.assignExact(resolved)
	}

	for i := range resolved {
		p := resolved[i]

		var exact, spatial *Candidate
		if t.hungarian {
			if id, ok := assigned[i]; ok {
				exact = t.candidates[id]
			}
			if exact == nil {
				spatial = t.spatialMatch(p.Box)
			}
		} else {
			exact, spatial = t.match(p)
		}

		switch {
		case exact != nil:
			exact.Streak++
			exact.Score = 0.6*exact.Score + 0.4*p.AdjustedScore
			exact.Box = p.Box
			if err := t.observe(exact, p.Box); err != nil {
				return nil, err
			}
			seen[exact.ID] = struct{}{}
			if exact.Streak >= t.confirmFrames {
				confirmed = append(confirmed, Detection{Class: exact.Class, Box: exact.Box, Score: exact.Score})
			}

		case spatial != nil && spatial.Streak >= t.lockFrames && !t.challengeWins(p, spatial):
			// A locked identity defends its region: it keeps its class,
			// absorbs the new geometry and blends in the raw confidence.
			spatial.Box = p.Box
			spatial.Score = 0.7*spatial.Score + 0.3*p.RawScore
			if err := t.observe(spatial, p.Box); err != nil {
				return nil, err
			}
			seen[spatial.ID] = struct{}{}
			if spatial.Streak >= t.confirmFrames {
				confirmed = append(confirmed, Detection{Class: spatial.Class, Box: spatial.Box, Score: spatial.Score})
			}

		default:
			candidate := t.register(p)
			seen[candidate.ID] = struct{}{}
			if candidate.Streak >= t.confirmFrames {
				confirmed = append(confirmed, Detection{Class: candidate.Class, Box: candidate.Box, Score: candidate.Score})
			}
		}
	}

	// Decay everything not seen this frame; evict at zero.
	for id, candidate := range t.candidates {
		if _, ok := seen[id]; ok {
			continue
		}
		candidate.Streak -= t.decayRate
		if candidate.Streak <= 0 {
			delete(t.candidates, id)
			continue
		}
		if candidate.coast != nil {
			candidate.coast.Predict()
			candidate.Box = coastState(candidate.coast)
		}
	}

	return confirmed, nil
}

// Reset evicts all candidates unconditionally, e.g. on a scene change. The
// identity counter is not rewound, so ids stay unique across resets.
func (t *Tracker) Reset() {
	t.candidates = make(map[uint64]*Candidate)
}

// Len returns the number of live candidates.
func (t *Tracker) Len() int {
	return len(t.candidates)
}

// Candidates returns a snapshot of live candidates ordered by id.
func (t *Tracker) Candidates() []Candidate {
	snapshot := make([]Candidate, 0, len(t.candidates))
	for _, id := range t.sortedIDs() {
		snapshot = append(snapshot, *t.candidates[id])
	}
	return snapshot
}

// match scans candidates in ascending id order. The first same-class overlap
// above ExactMatchIoU wins outright; otherwise the lowest-id candidate
// overlapping above SpatialMatchIoU is reported as a spatial-only match.
// Ascending id order makes the tie-break deterministic instead of depending
// on map iteration order.
func (t *Tracker) match(p ScoredDetection) (exact, spatial *Candidate) {
	for _, id := range t.sortedIDs() {
		candidate := t.candidates[id]
		overlap := IoU(candidate.Box, p.Box)
		if candidate.Class == p.Class && overlap > ExactMatchIoU {
			return candidate, nil
		}
		if spatial == nil && overlap > SpatialMatchIoU {
			spatial = candidate
		}
	}
	return nil, spatial
}

// spatialMatch returns the lowest-id candidate overlapping above
// SpatialMatchIoU, regardless of class.
func (t *Tracker) spatialMatch(box Rectangle) *Candidate {
	for _, id := range t.sortedIDs() {
		if IoU(t.candidates[id].Box, box) > SpatialMatchIoU {
			return t.candidates[id]
		}
	}
	return nil
}

// challengeWins reports whether an alternate-class detection decisively beats
// a locked candidate for the contested region. Both interpretations are
// scored on the incoming geometry.
func (t *Tracker) challengeWins(p ScoredDetection, locked *Candidate) bool {
	existingFit := AspectScore(locked.Class, p.Box) * locked.Score
	newFit := AspectScore(p.Class, p.Box) * p.AdjustedScore
	return newFit >= existingFit*lockChallengeMargin
}

// register creates a fresh candidate for an unmatched detection.
func (t *Tracker) register(p ScoredDetection) *Candidate {
	t.nextID++
	candidate := &Candidate{
		ID:     t.nextID,
		Class:  p.Class,
		Box:    p.Box,
		Score:  p.AdjustedScore,
		Streak: 1,
	}
	if t.coasting {
		candidate.coast = newCoastFilter(p.Box)
	}
	t.candidates[candidate.ID] = candidate
	return candidate
}

// observe feeds a matched box into the candidate's motion filter, if any.
func (t *Tracker) observe(candidate *Candidate, box Rectangle) error {
	if candidate.coast == nil {
		return nil
	}
	candidate.coast.Predict()
	center := box.Center()
	err := candidate.coast.Update(center.X, center.Y, box.Width, box.Height)
	if err != nil {
		return errors.Wrapf(err, "can't update motion filter for candidate %d", candidate.ID)
	}
	return nil
}

// assignExact solves the same-class assignment jointly over the whole frame.
// The score matrix holds IoU for class-matching pairs above ExactMatchIoU and
// zero elsewhere, padded to square for the solver.
func (t *Tracker) assignExact(resolved []ScoredDetection) map[int]uint64 {
	assigned := make(map[int]uint64)
	ids := t.sortedIDs()
	if len(resolved) == 0 || len(ids) == 0 {
		return assigned
	}

	size := maxInt(len(resolved), len(ids))
	matrix := make([][]float64, size)
	for i := range matrix {
		matrix[i] = make([]float64, size)
	}
	for i := range resolved {
		for j, id := range ids {
			candidate := t.candidates[id]
			if candidate.Class != resolved[i].Class {
				continue
			}
			if overlap := IoU(candidate.Box, resolved[i].Box); overlap > ExactMatchIoU {
				matrix[i][j] = overlap
			}
		}
	}

	for row, cols := range hungarian.SolveMax(matrix) {
		for col := range cols {
			if row < len(resolved) && col < len(ids) && matrix[row][col] > 0 {
				assigned[row] = ids[col]
			}
		}
	}
	return assigned
}

func (t *Tracker) sortedIDs() []uint64 {
	ids := make([]uint64, 0, len(t.candidates))
	for id := range t.candidates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// newCoastFilter builds the bounding-box Kalman filter used for motion
// coasting, state vector [cx, cy, w, h, vx, vy, vw, vh].
func newCoastFilter(box Rectangle) *kalman_filter.KalmanBBox {
	center := box.Center()

	// Kalman filter props
	uCx := 1.0
	uCy := 1.0
	uW := 0.0
	uH := 0.0
	stdDevA := 2.0
	stdDevMCx := 0.1
	stdDevMCy := 0.1
	stdDevMW := 0.1
	stdDevMH := 0.1
	return kalman_filter.NewKalmanBBox(
		1.0, uCx, uCy, uW, uH,
		stdDevA, stdDevMCx, stdDevMCy, stdDevMW, stdDevMH,
		kalman_filter.WithStateBBox(center.X, center.Y, box.Width, box.Height),
	)
}

// coastState reads the filter state back as a Rectangle.
func coastState(kf *kalman_filter.KalmanBBox) Rectangle {
	cx, cy, w, h := kf.GetState()
	return Rectangle{
		X:      cx - w/2.0,
		Y:      cy - h/2.0,
		Width:  w,
		Height: h,
	}
}

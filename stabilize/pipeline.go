package stabilize

import (
	"math"
	"sort"
)

const (
	// ScoreFloor is the minimum aspect-adjusted confidence a detection needs
	// to survive the pipeline.
	ScoreFloor = 0.45
	// NMSThreshold is the maximum allowed IoU between two kept detections.
	NMSThreshold = 0.35
	// ConfusionThreshold is the IoU above which two detections of mutually
	// confusable classes are treated as one object.
	ConfusionThreshold = 0.3
)

// Pipeline filters one frame of raw detections into a resolved list:
// aspect scoring, ranking, size validation, score floor, greedy NMS and
// confusion resolution. A Pipeline holds only static tables and is
// deterministic; it keeps no state between calls.
type Pipeline struct {
	dict Dictionary
}

// NewPipeline creates a Pipeline using the given class dictionary for size
// validation. A nil dictionary falls back to the built-in default.
func NewPipeline(dict Dictionary) *Pipeline {
	if dict == nil {
		dict = DefaultDictionary()
	}
	return &Pipeline{dict: dict}
}

// Filter turns raw detector output for one frame into a resolved detection
// list. frameWidth and frameHeight are the resolution the boxes are expressed
// in. Malformed items (non-finite values, negative dimensions) are dropped
// individually; one bad detection never suppresses the rest of the frame.
func (p *Pipeline) Filter(raw []Detection, frameWidth, frameHeight int) []ScoredDetection {
	scored := make([]ScoredDetection, 0, len(raw))
	for _, d := range raw {
		if !wellFormed(d) {
			continue
		}
		mult := AspectScore(d.Class, d.Box)
		scored = append(scored, ScoredDetection{
			Detection:     d,
			AdjustedScore: d.Score * mult,
			RawScore:      d.Score,
			AspectScore:   mult,
		})
	}

	// Rank by adjusted confidence; stable sort keeps input order on ties so
	// the whole pass stays deterministic.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].AdjustedScore > scored[j].AdjustedScore
	})

	frameArea := float64(frameWidth) * float64(frameHeight)

	kept := make([]ScoredDetection, 0, len(scored))
	for _, d := range scored {
		if !p.sizePlausible(d, frameArea) {
			continue
		}
		if d.AdjustedScore < ScoreFloor {
			continue
		}
		if overlapsAny(kept, d.Box, NMSThreshold) {
			continue
		}
		kept = append(kept, d)
	}

	return resolveConfusion(kept)
}

// sizePlausible checks the box area against the expected window for the
// class's size category, with 0.5x/2x slack. Classes without a known size
// category pass unconditionally.
func (p *Pipeline) sizePlausible(d ScoredDetection, frameArea float64) bool {
	if frameArea <= 0 {
		return true
	}
	info, ok := p.dict[d.Class]
	if !ok {
		return true
	}
	sizeRange, ok := sizeRanges[info.Size]
	if !ok {
		return true
	}
	ratio := d.Box.Area() / frameArea
	return ratio >= 0.5*sizeRange.Min && ratio <= 2.0*sizeRange.Max
}

// overlapsAny reports whether box exceeds the IoU threshold against any
// already-kept detection.
func overlapsAny(kept []ScoredDetection, box Rectangle, threshold float64) bool {
	for i := range kept {
		if IoU(kept[i].Box, box) > threshold {
			return true
		}
	}
	return false
}

// resolveConfusion collapses overlapping detections of mutually confusable
// classes down to the interpretation with the best fit. The winner replaces
// the loser in place, so output order follows the ranked order of the
// surviving regions.
func resolveConfusion(kept []ScoredDetection) []ScoredDetection {
	resolved := make([]ScoredDetection, 0, len(kept))
	for _, d := range kept {
		if _, ok := confusionGroupOf[d.Class]; !ok {
			resolved = append(resolved, d)
			continue
		}
		contested := false
		for i := range resolved {
			if !sameConfusionGroup(resolved[i].Class, d.Class) {
				continue
			}
			if IoU(resolved[i].Box, d.Box) <= ConfusionThreshold {
				continue
			}
			if d.Fit() > resolved[i].Fit() {
				resolved[i] = d
			}
			contested = true
			break
		}
		if !contested {
			resolved = append(resolved, d)
		}
	}
	return resolved
}

// wellFormed rejects individual malformed detector outputs: non-finite
// score or box fields, or negative dimensions. A zero-width box is kept;
// aspect scoring handles it explicitly.
func wellFormed(d Detection) bool {
	for _, v := range [...]float64{d.Score, d.Box.X, d.Box.Y, d.Box.Width, d.Box.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return d.Box.Width >= 0 && d.Box.Height >= 0
}

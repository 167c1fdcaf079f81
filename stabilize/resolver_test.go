package stabilize

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestAspectScoreInsideWindow(t *testing.T) {
	// Cup window is 0.6-1.6; a 40x60 box has aspect 1.5.
	box := Rectangle{X: 100, Y: 100, Width: 40, Height: 60}
	if got := AspectScore("cup", box); !scalar.EqualWithinAbs(got, 1.0, eps) {
		t.Errorf("In-window aspect: expected multiplier 1.0, got %f", got)
	}
}

func TestAspectScoreOutsideWindow(t *testing.T) {
	// Cup aspect 1.7 sits just above the 1.6 upper bound:
	// dist = (1.7-1.6)/1.6, mult = 1 - dist*0.6*3.
	box := Rectangle{X: 0, Y: 0, Width: 40, Height: 68}
	want := 1.0 - ((1.7-1.6)/1.6)*0.6*3.0
	if got := AspectScore("cup", box); !scalar.EqualWithinAbs(got, want, eps) {
		t.Errorf("Out-of-window aspect: expected multiplier %f, got %f", want, got)
	}
}

func TestAspectScoreFloor(t *testing.T) {
	// Bowl window is 0.3-0.9; aspect 1.5 is far enough outside to hit the
	// 0.3 floor.
	box := Rectangle{X: 0, Y: 0, Width: 40, Height: 60}
	if got := AspectScore("bowl", box); !scalar.EqualWithinAbs(got, 0.3, eps) {
		t.Errorf("Far-out aspect: expected floored multiplier 0.3, got %f", got)
	}
}

func TestAspectScoreZeroWidth(t *testing.T) {
	box := Rectangle{X: 0, Y: 0, Width: 0, Height: 60}
	if got := AspectScore("cup", box); !scalar.EqualWithinAbs(got, 0.5, eps) {
		t.Errorf("Zero-width box: expected multiplier 0.5, got %f", got)
	}
}

func TestAspectScoreUnknownClass(t *testing.T) {
	box := Rectangle{X: 0, Y: 0, Width: 40, Height: 400}
	if got := AspectScore("zebra", box); got != 1.0 {
		t.Errorf("Class without hint: expected multiplier 1.0, got %f", got)
	}
}

func TestFitUsesRawScore(t *testing.T) {
	d := ScoredDetection{
		Detection:     Detection{Class: "bowl"},
		AdjustedScore: 0.24,
		RawScore:      0.8,
		AspectScore:   0.3,
	}
	if got := d.Fit(); !scalar.EqualWithinAbs(got, 0.24, eps) {
		t.Errorf("Expected fit 0.24 (aspect * raw), got %f", got)
	}
}

func TestSameConfusionGroup(t *testing.T) {
	if !sameConfusionGroup("cup", "bowl") {
		t.Error("cup and bowl should share a confusion group")
	}
	if sameConfusionGroup("cup", "remote") {
		t.Error("cup and remote should not share a confusion group")
	}
	if sameConfusionGroup("cup", "zebra") {
		t.Error("a class outside all groups should never match")
	}
}

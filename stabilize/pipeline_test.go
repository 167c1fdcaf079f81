package stabilize

import (
	"math"
	"testing"
)

func TestFilterAspectOverride(t *testing.T) {
	// Bowl has higher raw confidence but its aspect (~1.5) is far outside
	// the bowl window, so the region must resolve to cup.
	pipeline := NewPipeline(nil)
	raw := []Detection{
		{Class: "cup", Box: Rectangle{X: 100, Y: 100, Width: 40, Height: 60}, Score: 0.6},
		{Class: "bowl", Box: Rectangle{X: 102, Y: 101, Width: 39, Height: 58}, Score: 0.8},
	}

	resolved := pipeline.Filter(raw, 640, 480)
	if len(resolved) != 1 {
		t.Fatalf("Expected 1 resolved detection, got %d", len(resolved))
	}
	if resolved[0].Class != "cup" {
		t.Errorf("Expected region to resolve to cup, got %s", resolved[0].Class)
	}
}

func TestFilterScoreFloor(t *testing.T) {
	pipeline := NewPipeline(nil)
	raw := []Detection{
		{Class: "zebra", Box: Rectangle{X: 10, Y: 10, Width: 50, Height: 50}, Score: 0.44},
		{Class: "giraffe", Box: Rectangle{X: 200, Y: 200, Width: 50, Height: 50}, Score: 0.46},
	}

	resolved := pipeline.Filter(raw, 640, 480)
	if len(resolved) != 1 {
		t.Fatalf("Expected 1 detection above the floor, got %d", len(resolved))
	}
	if resolved[0].Class != "giraffe" {
		t.Errorf("Expected giraffe to survive, got %s", resolved[0].Class)
	}
}

func TestFilterNMSInvariant(t *testing.T) {
	pipeline := NewPipeline(nil)
	raw := []Detection{
		{Class: "zebra", Box: Rectangle{X: 100, Y: 100, Width: 50, Height: 50}, Score: 0.9},
		{Class: "zebra", Box: Rectangle{X: 110, Y: 105, Width: 50, Height: 50}, Score: 0.8},
		{Class: "giraffe", Box: Rectangle{X: 120, Y: 110, Width: 50, Height: 50}, Score: 0.7},
		{Class: "zebra", Box: Rectangle{X: 300, Y: 300, Width: 50, Height: 50}, Score: 0.6},
		{Class: "giraffe", Box: Rectangle{X: 305, Y: 302, Width: 50, Height: 50}, Score: 0.55},
	}

	resolved := pipeline.Filter(raw, 640, 480)
	if len(resolved) == 0 {
		t.Fatal("Expected some detections to survive NMS")
	}
	for i := 0; i < len(resolved); i++ {
		for j := i + 1; j < len(resolved); j++ {
			if overlap := IoU(resolved[i].Box, resolved[j].Box); overlap > NMSThreshold {
				t.Errorf("NMS invariant violated: detections %d and %d have IoU %f", i, j, overlap)
			}
		}
	}
}

func TestFilterDropsMalformed(t *testing.T) {
	pipeline := NewPipeline(nil)
	raw := []Detection{
		{Class: "zebra", Box: Rectangle{X: 10, Y: 10, Width: 50, Height: 50}, Score: math.NaN()},
		{Class: "zebra", Box: Rectangle{X: math.Inf(1), Y: 10, Width: 50, Height: 50}, Score: 0.9},
		{Class: "zebra", Box: Rectangle{X: 10, Y: 10, Width: -50, Height: 50}, Score: 0.9},
		{Class: "giraffe", Box: Rectangle{X: 200, Y: 200, Width: 50, Height: 50}, Score: 0.9},
	}

	resolved := pipeline.Filter(raw, 640, 480)
	if len(resolved) != 1 {
		t.Fatalf("Expected only the well-formed detection to survive, got %d", len(resolved))
	}
	if resolved[0].Class != "giraffe" {
		t.Errorf("Expected giraffe to survive, got %s", resolved[0].Class)
	}
}

func TestFilterSizeValidation(t *testing.T) {
	pipeline := NewPipeline(nil)

	// A cup covering most of a 640x480 frame is implausible (small category
	// tops out at 0.08 area ratio, 0.16 with slack); 600x400 is ratio ~0.78.
	raw := []Detection{
		{Class: "cup", Box: Rectangle{X: 20, Y: 40, Width: 600, Height: 400}, Score: 0.9},
		{Class: "cup", Box: Rectangle{X: 100, Y: 100, Width: 40, Height: 60}, Score: 0.6},
	}

	resolved := pipeline.Filter(raw, 640, 480)
	if len(resolved) != 1 {
		t.Fatalf("Expected the oversized cup to be rejected, got %d detections", len(resolved))
	}
	if resolved[0].Box.Width != 40 {
		t.Errorf("Expected the plausible cup to survive, got box width %f", resolved[0].Box.Width)
	}
}

func TestFilterSizeUnknownClassPasses(t *testing.T) {
	pipeline := NewPipeline(nil)
	raw := []Detection{
		{Class: "zebra", Box: Rectangle{X: 20, Y: 40, Width: 600, Height: 400}, Score: 0.9},
	}

	resolved := pipeline.Filter(raw, 640, 480)
	if len(resolved) != 1 {
		t.Fatalf("Class without a size category must pass size validation, got %d detections", len(resolved))
	}
}

func TestFilterConfusionResolution(t *testing.T) {
	pipeline := NewPipeline(nil)

	// Both boxes sit inside their class windows so both survive to the
	// confusion stage; IoU ~0.32 is under the NMS threshold but over the
	// confusion threshold, so only the better fit may remain.
	cup := Detection{Class: "cup", Box: Rectangle{X: 100, Y: 100, Width: 40, Height: 30}, Score: 0.6}
	bowl := Detection{Class: "bowl", Box: Rectangle{X: 120, Y: 100, Width: 40, Height: 28}, Score: 0.8}

	resolved := pipeline.Filter([]Detection{cup, bowl}, 640, 480)
	if len(resolved) != 1 {
		t.Fatalf("Expected confusion resolution to keep one detection, got %d", len(resolved))
	}
	if resolved[0].Class != "bowl" {
		t.Errorf("Expected the higher-fit bowl to win, got %s", resolved[0].Class)
	}

	// Flip the confidences and the cup interpretation must win instead.
	cup.Score = 0.8
	bowl.Score = 0.6
	resolved = pipeline.Filter([]Detection{cup, bowl}, 640, 480)
	if len(resolved) != 1 || resolved[0].Class != "cup" {
		t.Fatalf("Expected cup to win after flipping confidences, got %+v", resolved)
	}
}

func TestFilterConfusionInvariant(t *testing.T) {
	pipeline := NewPipeline(nil)
	raw := []Detection{
		{Class: "cup", Box: Rectangle{X: 100, Y: 100, Width: 40, Height: 40}, Score: 0.7},
		{Class: "bowl", Box: Rectangle{X: 118, Y: 100, Width: 42, Height: 30}, Score: 0.65},
		{Class: "vase", Box: Rectangle{X: 300, Y: 100, Width: 30, Height: 60}, Score: 0.8},
	}

	resolved := pipeline.Filter(raw, 640, 480)
	for i := 0; i < len(resolved); i++ {
		for j := i + 1; j < len(resolved); j++ {
			if !sameConfusionGroup(resolved[i].Class, resolved[j].Class) {
				continue
			}
			if overlap := IoU(resolved[i].Box, resolved[j].Box); overlap > ConfusionThreshold {
				t.Errorf("Confusion invariant violated: %s and %s overlap with IoU %f",
					resolved[i].Class, resolved[j].Class, overlap)
			}
		}
	}
}

func TestFilterEmptyInput(t *testing.T) {
	pipeline := NewPipeline(nil)
	if resolved := pipeline.Filter(nil, 640, 480); len(resolved) != 0 {
		t.Errorf("Expected empty output for empty input, got %d detections", len(resolved))
	}
}

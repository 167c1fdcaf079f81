package stabilize

// AspectScore returns the aspect-plausibility multiplier for interpreting a
// box as the given class. Inside the class's expected height/width window the
// multiplier is 1.0; outside, confidence is discounted proportionally to the
// fractional distance from the nearer boundary, floored at 0.3. A zero-width
// box has no defined aspect and gets 0.5. Classes without a hint get 1.0.
func AspectScore(class string, box Rectangle) float64 {
	hint, ok := aspectHints[class]
	if !ok {
		return 1.0
	}
	if box.Width == 0 {
		return 0.5
	}
	aspect := box.Height / box.Width
	if aspect >= hint.Min && aspect <= hint.Max {
		return 1.0
	}
	var dist float64
	if aspect < hint.Min {
		dist = (hint.Min - aspect) / hint.Min
	} else {
		dist = (aspect - hint.Max) / hint.Max
	}
	mult := 1.0 - dist*hint.Weight*3.0
	if mult < 0.3 {
		mult = 0.3
	}
	return mult
}

// Fit is the tie-break score for contested interpretations of overlapping
// geometry: aspect plausibility times raw (unadjusted) confidence. Using the
// raw score here makes tie-breaks aspect-dominant, countering the detector's
// tendency to over-trust confidence for visually similar classes.
func (d ScoredDetection) Fit() float64 {
	return d.AspectScore * d.RawScore
}

// sameConfusionGroup reports whether two classes are mutually confusable.
func sameConfusionGroup(classA, classB string) bool {
	groupA, okA := confusionGroupOf[classA]
	groupB, okB := confusionGroupOf[classB]
	return okA && okB && groupA == groupB
}

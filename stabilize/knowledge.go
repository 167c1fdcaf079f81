package stabilize

// AspectHint is the expected height/width window for a class. Weight controls
// how steeply confidence is discounted outside the window.
type AspectHint struct {
	Min    float64
	Max    float64
	Weight float64
}

// SizeRange is the expected bounding-box-area to frame-area ratio window for
// a size category.
type SizeRange struct {
	Min float64
	Max float64
}

// confusionGroups are sets of class labels the detector routinely mistakes
// for one another. A class belongs to at most one group.
var confusionGroups = [][]string{
	{"cell phone", "remote", "mouse", "hair drier"},
	{"cup", "bowl", "vase", "bottle"},
	{"knife", "scissors", "fork", "spoon"},
	{"apple", "orange", "sports ball"},
	{"couch", "bed", "chair"},
	{"laptop", "tv", "book"},
}

// confusionGroupOf maps a class label to its group index in confusionGroups.
var confusionGroupOf = func() map[string]int {
	m := make(map[string]int)
	for i, group := range confusionGroups {
		for _, class := range group {
			m[class] = i
		}
	}
	return m
}()

// aspectHints holds per-class height/width windows reflecting real-world
// object proportions in typical camera poses. Classes without a hint are not
// penalized.
var aspectHints = map[string]AspectHint{
	"person":       {Min: 1.5, Max: 4.0, Weight: 0.8},
	"bottle":       {Min: 1.8, Max: 4.0, Weight: 0.7},
	"wine glass":   {Min: 1.5, Max: 3.5, Weight: 0.7},
	"cup":          {Min: 0.6, Max: 1.6, Weight: 0.6},
	"bowl":         {Min: 0.3, Max: 0.9, Weight: 0.7},
	"vase":         {Min: 1.0, Max: 3.0, Weight: 0.6},
	"cell phone":   {Min: 0.4, Max: 2.4, Weight: 0.4},
	"remote":       {Min: 0.3, Max: 3.0, Weight: 0.3},
	"mouse":        {Min: 0.4, Max: 0.9, Weight: 0.6},
	"keyboard":     {Min: 0.2, Max: 0.5, Weight: 0.7},
	"knife":        {Min: 0.2, Max: 4.0, Weight: 0.2},
	"fork":         {Min: 0.3, Max: 4.0, Weight: 0.2},
	"spoon":        {Min: 0.3, Max: 4.0, Weight: 0.2},
	"scissors":     {Min: 0.5, Max: 2.0, Weight: 0.4},
	"book":         {Min: 0.5, Max: 2.0, Weight: 0.3},
	"laptop":       {Min: 0.5, Max: 1.1, Weight: 0.6},
	"tv":           {Min: 0.4, Max: 0.8, Weight: 0.7},
	"chair":        {Min: 0.8, Max: 2.2, Weight: 0.5},
	"potted plant": {Min: 0.8, Max: 2.5, Weight: 0.4},
	"clock":        {Min: 0.8, Max: 1.3, Weight: 0.7},
	"banana":       {Min: 0.3, Max: 1.2, Weight: 0.4},
	"toothbrush":   {Min: 1.0, Max: 5.0, Weight: 0.3},
}

// sizeRanges holds expected area ratios per size category. The pipeline
// accepts boxes within [0.5*Min, 2*Max] to leave room for unusual poses and
// partial occlusion.
var sizeRanges = map[SizeCategory]SizeRange{
	SizeTiny:   {Min: 0.0005, Max: 0.03},
	SizeSmall:  {Min: 0.001, Max: 0.08},
	SizeMedium: {Min: 0.005, Max: 0.25},
	SizeLarge:  {Min: 0.02, Max: 0.6},
	SizeHuge:   {Min: 0.08, Max: 0.95},
}

package stabilize

// Detection is a single object-detector output: a class label from a fixed
// taxonomy, a bounding box in unmirrored source-frame pixels and a confidence
// score in [0, 1]. The same shape is used for confirmed detections returned
// to the caller; confirmed scores are the tracker's blended estimate rather
// than the raw detector confidence.
type Detection struct {
	Class string
	Box   Rectangle
	Score float64
}

// ScoredDetection is a Detection carried through the frame filter pipeline.
// AdjustedScore is the aspect-weighted confidence used for ranking and
// thresholding; RawScore and AspectScore are retained because confusion
// tie-breaks use aspect plausibility times raw confidence instead of the
// adjusted value.
type ScoredDetection struct {
	Detection
	AdjustedScore float64
	RawScore      float64
	AspectScore   float64
}

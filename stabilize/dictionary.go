package stabilize

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// SizeCategory is a coarse expectation of how much of the frame an object of
// a given class usually occupies.
type SizeCategory string

const (
	SizeTiny   SizeCategory = "tiny"
	SizeSmall  SizeCategory = "small"
	SizeMedium SizeCategory = "medium"
	SizeLarge  SizeCategory = "large"
	SizeHuge   SizeCategory = "huge"
)

// ClassInfo is the dictionary entry for one class. Display is the label shown
// by the overlay; the filter pipeline reads only Size.
type ClassInfo struct {
	Size    SizeCategory `json:"size"`
	Display string       `json:"display"`
}

// Dictionary maps detector class labels to their metadata. Classes absent
// from the dictionary pass size validation unconditionally.
type Dictionary map[string]ClassInfo

// LoadDictionary reads a class dictionary from a JSON file of the form
// {"cup": {"size": "small", "display": "Cup"}, ...}.
func LoadDictionary(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "can't read class dictionary")
	}
	var dict Dictionary
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, errors.Wrapf(err, "can't parse class dictionary %s", path)
	}
	for class, info := range dict {
		if info.Size == "" {
			continue
		}
		if _, ok := sizeRanges[info.Size]; !ok {
			return nil, errors.Errorf("unknown size category %q for class %q", info.Size, class)
		}
	}
	return dict, nil
}

// DefaultDictionary returns the built-in dictionary covering the common COCO
// vocabulary, so the pipeline is usable without external configuration.
func DefaultDictionary() Dictionary {
	return Dictionary{
		"person":       {Size: SizeLarge, Display: "Person"},
		"chair":        {Size: SizeLarge, Display: "Chair"},
		"couch":        {Size: SizeHuge, Display: "Couch"},
		"bed":          {Size: SizeHuge, Display: "Bed"},
		"dining table": {Size: SizeHuge, Display: "Table"},
		"tv":           {Size: SizeLarge, Display: "TV"},
		"laptop":       {Size: SizeMedium, Display: "Laptop"},
		"keyboard":     {Size: SizeSmall, Display: "Keyboard"},
		"mouse":        {Size: SizeTiny, Display: "Mouse"},
		"remote":       {Size: SizeTiny, Display: "Remote"},
		"cell phone":   {Size: SizeTiny, Display: "Phone"},
		"hair drier":   {Size: SizeSmall, Display: "Hair dryer"},
		"book":         {Size: SizeSmall, Display: "Book"},
		"clock":        {Size: SizeSmall, Display: "Clock"},
		"vase":         {Size: SizeSmall, Display: "Vase"},
		"scissors":     {Size: SizeTiny, Display: "Scissors"},
		"knife":        {Size: SizeTiny, Display: "Knife"},
		"fork":         {Size: SizeTiny, Display: "Fork"},
		"spoon":        {Size: SizeTiny, Display: "Spoon"},
		"cup":          {Size: SizeSmall, Display: "Cup"},
		"bowl":         {Size: SizeSmall, Display: "Bowl"},
		"bottle":       {Size: SizeSmall, Display: "Bottle"},
		"wine glass":   {Size: SizeSmall, Display: "Wine glass"},
		"banana":       {Size: SizeSmall, Display: "Banana"},
		"apple":        {Size: SizeTiny, Display: "Apple"},
		"orange":       {Size: SizeTiny, Display: "Orange"},
		"sports ball":  {Size: SizeTiny, Display: "Ball"},
		"potted plant": {Size: SizeMedium, Display: "Plant"},
		"backpack":     {Size: SizeMedium, Display: "Backpack"},
		"umbrella":     {Size: SizeMedium, Display: "Umbrella"},
		"toothbrush":   {Size: SizeTiny, Display: "Toothbrush"},
		"teddy bear":   {Size: SizeSmall, Display: "Teddy bear"},
	}
}

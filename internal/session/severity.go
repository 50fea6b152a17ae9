package session

import (
	"math"

	"github.com/chromacheck/chromacheck/internal/plate"
)

// Bucket is the discretized diagnostic category.
type Bucket string

const (
	BucketNone         Bucket = "none"
	BucketMild         Bucket = "mild"
	BucketModerate     Bucket = "moderate"
	BucketStrong       Bucket = "strong"
	BucketInconclusive Bucket = "inconclusive"
)

// Rank orders buckets by severity: none < mild < moderate < strong.
// Inconclusive has no rank and returns -1.
func (b Bucket) Rank() int {
	switch b {
	case BucketNone:
		return 0
	case BucketMild:
		return 1
	case BucketModerate:
		return 2
	case BucketStrong:
		return 3
	default:
		return -1
	}
}

// Assessment is the severity classification derived from a session's scores.
type Assessment struct {
	Value          int     `json:"value"` // 0-100
	Bucket         Bucket  `json:"bucket"`
	Confidence     float64 `json:"confidence"`
	Description    string  `json:"description"`
	ControlScore   int     `json:"controlScore"`
	ConfusionScore int     `json:"confusionScore"`
}

var descriptions = map[Bucket]string{
	BucketNone:         "No indication of red-green colour-vision deficiency.",
	BucketMild:         "Mild red-green discrimination deficit.",
	BucketModerate:     "Moderate red-green discrimination deficit.",
	BucketStrong:       "Strong red-green discrimination deficit.",
	BucketInconclusive: "Control accuracy too low to interpret; retest recommended.",
}

// Assess converts per-category scores into a severity assessment. The numeric
// value blends the control/confusion score gap with the absolute confusion
// deficit, so it is monotone in falling confusion accuracy when control
// accuracy is held fixed.
func Assess(scores map[plate.Category]Score) Assessment {
	control := scores[plate.CategoryControl]
	confusion := scores[plate.CategoryDeutan]

	gap := control.Percentage - confusion.Percentage
	if gap < 0 {
		gap = 0
	}
	deficit := 100 - confusion.Percentage
	value := int(math.Round(0.6*float64(gap) + 0.4*float64(deficit)))
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}

	bucket := bucketFor(value)
	if control.Total > 0 && control.Percentage < 50 {
		// Low control accuracy means the subject's baseline competence is in
		// question; any deficit signal is uninterpretable.
		bucket = BucketInconclusive
	}

	return Assessment{
		Value:          value,
		Bucket:         bucket,
		Confidence:     confidence(bucket, control, confusion),
		Description:    descriptions[bucket],
		ControlScore:   control.Percentage,
		ConfusionScore: confusion.Percentage,
	}
}

// bucketFor implements the fixed boundary table.
func bucketFor(value int) Bucket {
	switch {
	case value <= 15:
		return BucketNone
	case value <= 35:
		return BucketMild
	case value <= 60:
		return BucketModerate
	default:
		return BucketStrong
	}
}

// confidence scales with control accuracy and sample size, capped at 1.
func confidence(bucket Bucket, control, confusion Score) float64 {
	if bucket == BucketInconclusive {
		return 0.2
	}
	sample := float64(control.Total+confusion.Total) / 16.0
	if sample > 1 {
		sample = 1
	}
	return math.Round(float64(control.Percentage)/100.0*sample*100) / 100
}

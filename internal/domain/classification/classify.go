// Package classification maps continuous scores onto the discrete vocabulary
// used by calibration: performance levels, potential buckets, nine-box cells,
// and adjustment delta labels. Everything here is pure and deterministic.
package classification

import (
	"errors"
	"fmt"
	"math"
)

const (
	LevelLow         = "low"
	LevelDeveloping  = "developing"
	LevelSolid       = "solid"
	LevelHigh        = "high"
	LevelExceptional = "exceptional"
)

const (
	BucketLow    = "low"
	BucketMedium = "medium"
	BucketHigh   = "high"
)

const (
	AdjustmentInitial   = "initial"
	AdjustmentUnchanged = "unchanged"
	AdjustmentUpgrade   = "upgrade"
	AdjustmentDowngrade = "downgrade"
)

// deltaDeadZone absorbs floating-point noise when comparing scores.
const deltaDeadZone = 0.05

var ErrUnknownBucket = errors.New("unknown classification bucket")

// Levels lists performance levels from lowest to highest.
var Levels = []string{LevelLow, LevelDeveloping, LevelSolid, LevelHigh, LevelExceptional}

// Performance is a classified score with the band that produced it.
type Performance struct {
	Level string  `json:"level"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

var performanceBands = []Performance{
	{Level: LevelLow, Lower: 0, Upper: 1.5},
	{Level: LevelDeveloping, Lower: 1.5, Upper: 2.5},
	{Level: LevelSolid, Lower: 2.5, Upper: 3.5},
	{Level: LevelHigh, Lower: 3.5, Upper: 4.5},
	{Level: LevelExceptional, Lower: 4.5, Upper: 5},
}

// ClassifyPerformance maps a score onto its performance band. The mapping is
// total: scores outside [0,5] fall into the end bands, NaN counts as low.
func ClassifyPerformance(score float64) Performance {
	if math.IsNaN(score) {
		return performanceBands[0]
	}
	for i := len(performanceBands) - 1; i > 0; i-- {
		if score >= performanceBands[i].Lower {
			return performanceBands[i]
		}
	}
	return performanceBands[0]
}

// IsKnownLevel reports whether level belongs to the performance vocabulary.
func IsKnownLevel(level string) bool {
	for _, known := range Levels {
		if known == level {
			return true
		}
	}
	return false
}

// PotentialBucket maps a potential score to the coarse three-way axis.
func PotentialBucket(score float64) string {
	switch {
	case math.IsNaN(score):
		return BucketLow
	case score >= 3.5:
		return BucketHigh
	case score >= 2.0:
		return BucketMedium
	default:
		return BucketLow
	}
}

// PerformanceBucket collapses the five performance levels onto the grid's
// three-way performance axis.
func PerformanceBucket(level string) (string, error) {
	switch level {
	case LevelLow, LevelDeveloping:
		return BucketLow, nil
	case LevelSolid:
		return BucketMedium, nil
	case LevelHigh, LevelExceptional:
		return BucketHigh, nil
	default:
		return "", fmt.Errorf("%w: performance level %q", ErrUnknownBucket, level)
	}
}

type gridKey struct {
	performance string
	potential   string
}

var nineBox = map[gridKey]string{
	{BucketLow, BucketLow}:       "risk",
	{BucketLow, BucketMedium}:    "inconsistent",
	{BucketLow, BucketHigh}:      "enigma",
	{BucketMedium, BucketLow}:    "average",
	{BucketMedium, BucketMedium}: "core",
	{BucketMedium, BucketHigh}:   "growth",
	{BucketHigh, BucketLow}:      "expert",
	{BucketHigh, BucketMedium}:   "high_impact",
	{BucketHigh, BucketHigh}:     "star",
}

// NineBox returns the grid cell for a performance/potential bucket pair.
func NineBox(performanceBucket, potentialBucket string) (string, error) {
	cell, ok := nineBox[gridKey{performanceBucket, potentialBucket}]
	if !ok {
		return "", fmt.Errorf("%w: performance %q, potential %q", ErrUnknownBucket, performanceBucket, potentialBucket)
	}
	return cell, nil
}

// NineBoxForScores classifies both scores and looks up the cell in one step.
func NineBoxForScores(performanceScore, potentialScore float64) (string, error) {
	perfBucket, err := PerformanceBucket(ClassifyPerformance(performanceScore).Level)
	if err != nil {
		return "", err
	}
	return NineBox(perfBucket, PotentialBucket(potentialScore))
}

// ClassifyDelta labels the signed movement between a previous and a new
// score. A nil previous score is an initial assignment; movement inside the
// dead zone counts as unchanged.
func ClassifyDelta(previous *float64, newScore float64) string {
	if previous == nil {
		return AdjustmentInitial
	}
	delta := newScore - *previous
	switch {
	case math.Abs(delta) < deltaDeadZone:
		return AdjustmentUnchanged
	case delta > 0:
		return AdjustmentUpgrade
	default:
		return AdjustmentDowngrade
	}
}

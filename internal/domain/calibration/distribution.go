package calibration

import (
	"fmt"
	"math"
	"sort"
)

// DistributionResult reports how a cohort's effective levels compare against
// configured targets. The check is advisory-blocking: it can stop a close,
// it never changes data.
type DistributionResult struct {
	Valid   bool           `json:"valid"`
	Errors  []string       `json:"errors,omitempty"`
	Current map[string]int `json:"currentDistribution"`
}

// ValidateDistribution tallies effective levels into integer percentages and
// flags every target level whose share drifts more than tolerancePct from
// its target. An empty cohort has nothing to validate and passes.
func ValidateDistribution(levels []string, targets map[string]float64, tolerancePct float64) DistributionResult {
	result := DistributionResult{Valid: true, Current: map[string]int{}}
	if len(levels) == 0 {
		return result
	}

	counts := map[string]int{}
	for _, level := range levels {
		counts[level]++
	}
	total := len(levels)
	for level, count := range counts {
		result.Current[level] = int(math.Round(float64(count) * 100 / float64(total)))
	}

	targetLevels := make([]string, 0, len(targets))
	for level := range targets {
		targetLevels = append(targetLevels, level)
	}
	sort.Strings(targetLevels)

	for _, level := range targetLevels {
		target := targets[level]
		current := result.Current[level]
		diff := math.Abs(float64(current) - target)
		if diff > tolerancePct {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf(
				"level %s is at %d%%, outside the %.0f%% tolerance around the %.0f%% target",
				level, current, tolerancePct, target))
		}
	}
	return result
}

// validateTargets checks a session's configured distribution targets at
// creation time: known levels only, summing to 100 within a small epsilon.
func validateTargets(targets map[string]float64, knownLevel func(string) bool) *ValidationError {
	if len(targets) == 0 {
		return validationError("distribution targets are required when forced distribution is enabled")
	}
	var issues []string
	sum := 0.0
	levels := make([]string, 0, len(targets))
	for level := range targets {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	for _, level := range levels {
		pct := targets[level]
		if !knownLevel(level) {
			issues = append(issues, fmt.Sprintf("unknown performance level %q in distribution targets", level))
		}
		if pct < 0 || pct > 100 {
			issues = append(issues, fmt.Sprintf("target for level %s must be between 0 and 100", level))
		}
		sum += pct
	}
	if math.Abs(sum-100) > targetSumEpsilon {
		issues = append(issues, fmt.Sprintf("distribution targets must sum to 100, got %.1f", sum))
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

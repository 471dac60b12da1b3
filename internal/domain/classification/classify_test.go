package classification

import (
	"math"
	"testing"
)

func levelRank(level string) int {
	for i, known := range Levels {
		if known == level {
			return i
		}
	}
	return -1
}

func TestClassifyPerformanceMonotonic(t *testing.T) {
	previousRank := -1
	for score := -1.0; score <= 6.0; score += 0.01 {
		result := ClassifyPerformance(score)
		rank := levelRank(result.Level)
		if rank < 0 {
			t.Fatalf("score %.2f mapped to unknown level %q", score, result.Level)
		}
		if rank < previousRank {
			t.Fatalf("level rank decreased at score %.2f", score)
		}
		previousRank = rank
	}
}

func TestClassifyPerformanceBands(t *testing.T) {
	cases := []struct {
		score float64
		level string
	}{
		{0, LevelLow},
		{1.49, LevelLow},
		{1.5, LevelDeveloping},
		{2.5, LevelSolid},
		{3.49, LevelSolid},
		{3.5, LevelHigh},
		{4.49, LevelHigh},
		{4.5, LevelExceptional},
		{5, LevelExceptional},
		{-2, LevelLow},
		{9, LevelExceptional},
	}
	for _, tc := range cases {
		if got := ClassifyPerformance(tc.score).Level; got != tc.level {
			t.Fatalf("score %.2f: expected %s, got %s", tc.score, tc.level, got)
		}
	}
	if got := ClassifyPerformance(math.NaN()).Level; got != LevelLow {
		t.Fatalf("NaN must classify as low, got %s", got)
	}
}

func TestClassifyPerformanceCarriesThresholds(t *testing.T) {
	result := ClassifyPerformance(3.0)
	if result.Lower != 2.5 || result.Upper != 3.5 {
		t.Fatalf("unexpected band thresholds: %+v", result)
	}
}

func TestPotentialBucket(t *testing.T) {
	cases := []struct {
		score  float64
		bucket string
	}{
		{0, BucketLow},
		{1.99, BucketLow},
		{2.0, BucketMedium},
		{3.49, BucketMedium},
		{3.5, BucketHigh},
		{5, BucketHigh},
	}
	for _, tc := range cases {
		if got := PotentialBucket(tc.score); got != tc.bucket {
			t.Fatalf("score %.2f: expected %s, got %s", tc.score, tc.bucket, got)
		}
	}
}

func TestNineBoxCoversAllCells(t *testing.T) {
	buckets := []string{BucketLow, BucketMedium, BucketHigh}
	seen := map[string]bool{}
	for _, perf := range buckets {
		for _, pot := range buckets {
			cell, err := NineBox(perf, pot)
			if err != nil {
				t.Fatalf("cell (%s, %s) failed: %v", perf, pot, err)
			}
			if seen[cell] {
				t.Fatalf("cell id %q produced twice", cell)
			}
			seen[cell] = true

			again, err := NineBox(perf, pot)
			if err != nil || again != cell {
				t.Fatalf("cell (%s, %s) not deterministic: %s vs %s", perf, pot, cell, again)
			}
		}
	}
	if len(seen) != 9 {
		t.Fatalf("expected 9 distinct cells, got %d", len(seen))
	}
}

func TestNineBoxRejectsUnknownBuckets(t *testing.T) {
	if _, err := NineBox("gigantic", BucketLow); err == nil {
		t.Fatal("expected error for unknown performance bucket")
	}
	if _, err := NineBox(BucketLow, ""); err == nil {
		t.Fatal("expected error for unknown potential bucket")
	}
}

func TestClassifyDelta(t *testing.T) {
	prev := 3.0
	if got := ClassifyDelta(nil, 4.0); got != AdjustmentInitial {
		t.Fatalf("nil previous: expected initial, got %s", got)
	}
	if got := ClassifyDelta(&prev, 3.04); got != AdjustmentUnchanged {
		t.Fatalf("dead zone: expected unchanged, got %s", got)
	}
	if got := ClassifyDelta(&prev, 4.2); got != AdjustmentUpgrade {
		t.Fatalf("expected upgrade, got %s", got)
	}
	if got := ClassifyDelta(&prev, 2.0); got != AdjustmentDowngrade {
		t.Fatalf("expected downgrade, got %s", got)
	}
}

package calibration

import (
	"log/slog"

	"calibra/internal/domain/classification"
)

func classifyLevel(score float64) string {
	return classification.ClassifyPerformance(score).Level
}

// deriveProposal fills an adjustment's new derived fields from the supplied
// scores and the rating's current values. The grid cell uses the effective
// value for whichever axis the proposal leaves untouched, so a potential-only
// adjustment still yields an internally consistent cell.
func deriveProposal(adjustment *Adjustment, rating Rating) {
	if adjustment.NewFinalScore != nil {
		level := classifyLevel(*adjustment.NewFinalScore)
		adjustment.NewFinalLevel = &level
	}
	if adjustment.NewPotentialScore != nil {
		bucket := classification.PotentialBucket(*adjustment.NewPotentialScore)
		adjustment.NewPotentialLevel = &bucket
	}

	effectiveFinal := rating.EffectiveFinalScore()
	if adjustment.NewFinalScore != nil {
		effectiveFinal = *adjustment.NewFinalScore
	}
	effectivePotential := rating.PotentialScore
	if adjustment.NewPotentialScore != nil {
		effectivePotential = adjustment.NewPotentialScore
	}
	if effectivePotential == nil {
		return
	}

	cell, err := classification.NineBoxForScores(effectiveFinal, *effectivePotential)
	if err != nil {
		slog.Warn("nine-box derivation failed", "ratingId", rating.ID, "err", err)
		return
	}
	adjustment.NewNineBox = &cell
}

// buildCommit turns a pending adjustment into the authoritative write for the
// close transaction. Levels are recomputed from the proposal's scores; the
// adjustment type is classified only when a new final score was supplied.
func buildCommit(adjustment Adjustment) RatingCommit {
	commit := RatingCommit{
		AdjustmentID:      adjustment.ID,
		RatingID:          adjustment.RatingID,
		NewFinalScore:     adjustment.NewFinalScore,
		NewPotentialScore: adjustment.NewPotentialScore,
		NewNineBox:        adjustment.NewNineBox,
		AdjustedBy:        adjustment.AdjustedBy,
		Justification:     adjustment.Justification,
	}
	if adjustment.NewFinalScore != nil {
		level := classifyLevel(*adjustment.NewFinalScore)
		commit.NewFinalLevel = &level
		label := classification.ClassifyDelta(adjustment.PreviousFinalScore, *adjustment.NewFinalScore)
		commit.AdjustmentType = &label
	}
	if adjustment.NewPotentialScore != nil {
		bucket := classification.PotentialBucket(*adjustment.NewPotentialScore)
		commit.NewPotentialLevel = &bucket
	}
	if adjustment.NewFinalScore != nil && adjustment.NewPotentialScore != nil {
		if cell, err := classification.NineBoxForScores(*adjustment.NewFinalScore, *adjustment.NewPotentialScore); err == nil {
			commit.NewNineBox = &cell
		}
	}
	return commit
}

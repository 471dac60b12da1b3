package calibration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// GenerateCloseReport renders a human-readable summary of a closed session's
// applied adjustments. It is a best-effort side channel: callers log failures
// and move on, the close itself is already durable.
func (s *Service) GenerateCloseReport(ctx context.Context, tenantID, sessionID string) (string, error) {
	session, err := s.store.GetSession(ctx, tenantID, sessionID)
	if err != nil {
		return "", err
	}
	if session.Status != SessionStatusClosed {
		return "", ErrSessionNotOpen
	}
	const reportPageSize = 500
	var adjustments []Adjustment
	for offset := 0; ; offset += reportPageSize {
		batch, total, err := s.store.ListAdjustments(ctx, tenantID, sessionID, reportPageSize, offset)
		if err != nil {
			return "", err
		}
		adjustments = append(adjustments, batch...)
		if len(batch) == 0 || len(adjustments) >= total {
			break
		}
	}

	if err := os.MkdirAll(s.artifactDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(s.artifactDir, sessionID+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Calibration Session Summary")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Session: %s", session.Name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Cycle: %s", session.CycleID))
	pdf.Ln(7)
	if session.ClosedAt != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Closed: %s", session.ClosedAt.Format("2006-01-02 15:04")))
		pdf.Ln(7)
	}

	applied := 0
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Applied adjustments")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
	for _, adjustment := range adjustments {
		if adjustment.Status != AdjustmentStatusApplied {
			continue
		}
		applied++
		line := fmt.Sprintf("Rating %s by %s", adjustment.RatingID, adjustment.AdjustedBy)
		if adjustment.NewFinalScore != nil {
			previous := "-"
			if adjustment.PreviousFinalScore != nil {
				previous = fmt.Sprintf("%.2f", *adjustment.PreviousFinalScore)
			}
			line += fmt.Sprintf(": final %s -> %.2f", previous, *adjustment.NewFinalScore)
		}
		if adjustment.NewPotentialScore != nil {
			line += fmt.Sprintf(", potential -> %.2f", *adjustment.NewPotentialScore)
		}
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total applied: %d", applied))

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}

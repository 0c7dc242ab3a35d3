package ingestion

import "fmt"

// NoticeLevel mirrors the toast variants of the lead UI.
type NoticeLevel string

const (
	NoticeSuccess     NoticeLevel = "success"
	NoticeInfo        NoticeLevel = "info"
	NoticeDestructive NoticeLevel = "destructive"
)

// maxListedErrors is how many row errors a notice lists before summarising the rest.
const maxListedErrors = 5

// Notice is one user-facing message about an import.
type Notice struct {
	Level       NoticeLevel `json:"level"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Details     []string    `json:"details,omitempty"`
}

// BuildNotices renders the success, skipped-row and error notices for a batch.
// results is nil when nothing was reconciled, as in a preview.
func BuildNotices(batch BatchResult, results []ReconcileResult) []Notice {
	notices := []Notice{}

	if results != nil {
		summary := Tally(results)
		if summary.Inserted+summary.Updated > 0 {
			notices = append(notices, Notice{
				Level:       NoticeSuccess,
				Title:       "Import completed",
				Description: summary.Message(),
			})
		}
	} else if len(batch.ValidLeads) > 0 {
		notices = append(notices, Notice{
			Level:       NoticeSuccess,
			Title:       "File processed",
			Description: fmt.Sprintf("Found %d valid leads out of %d rows", len(batch.ValidLeads), batch.TotalRows),
		})
	}

	if batch.SkippedRows > 0 {
		notices = append(notices, Notice{
			Level:       NoticeInfo,
			Title:       "Empty rows skipped",
			Description: fmt.Sprintf("%d empty rows were skipped", batch.SkippedRows),
		})
	}

	errs := append([]string(nil), batch.Errors...)
	for _, result := range results {
		if result.Outcome == OutcomeError {
			errs = append(errs, fmt.Sprintf("Org.nr %s: %s", result.Original.OrgNumber, result.Cause))
		}
	}
	if len(errs) > 0 {
		notices = append(notices, Notice{
			Level:       NoticeDestructive,
			Title:       fmt.Sprintf("%d errors found", len(errs)),
			Description: "Some rows could not be imported",
			Details:     truncateErrors(errs, maxListedErrors),
		})
	}

	return notices
}

func truncateErrors(errs []string, limit int) []string {
	if len(errs) <= limit {
		return errs
	}
	details := append([]string(nil), errs[:limit]...)
	return append(details, fmt.Sprintf("... and %d more errors", len(errs)-limit))
}

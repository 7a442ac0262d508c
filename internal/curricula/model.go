package curricula

import "time"

// Analysis status state machine: NOT_STARTED -> PROCESSING -> {COMPLETED | FAILED}.
// A fresh trigger re-enters PROCESSING and clears the previous report and error.
const (
	StatusNotStarted = "NOT_STARTED"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Curriculum represents one uploaded curriculum document and the state of its
// most recent analysis run.
type Curriculum struct {
	ID                      string
	Name                    string
	SchoolTag               string
	FileName                string
	MimeType                string
	SizeBytes               int64
	StorageKey              string
	AnalysisStatus          string
	AnalysisError           *string
	AnalysisResults         any
	UploadedAt              time.Time
	UpdatedAt               time.Time
	LastAnalysisTriggeredAt *time.Time
	LastAnalysisCompletedAt *time.Time
}

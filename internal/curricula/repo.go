package curricula

import (
	"context"
	"time"
)

// Repo defines persistence operations for curricula. The analysis status and
// report fields are mutated only through MarkProcessing and CompleteAnalysis.
type Repo interface {
	Create(ctx context.Context, cur Curriculum) error
	GetByID(ctx context.Context, id string) (Curriculum, error)
	List(ctx context.Context) ([]Curriculum, error)
	Delete(ctx context.Context, id string) error

	// MarkProcessing flips the record to PROCESSING, clears the previous
	// report, error and completion time, and stamps the trigger time.
	MarkProcessing(ctx context.Context, id string, triggeredAt time.Time) (Curriculum, error)

	// CompleteAnalysis writes the terminal status, error, report and
	// completion time in one update.
	CompleteAnalysis(ctx context.Context, id string, status string, analysisError *string, results any, completedAt time.Time) (Curriculum, error)
}

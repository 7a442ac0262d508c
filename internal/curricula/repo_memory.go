package curricula

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo, used in dev and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Curriculum
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Curriculum),
	}
}

// Create stores a new curriculum record.
func (r *MemoryRepo) Create(ctx context.Context, cur Curriculum) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[cur.ID] = cur
	return nil
}

// GetByID returns a curriculum by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Curriculum, error) {
	if err := ctx.Err(); err != nil {
		return Curriculum{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cur, ok := r.data[id]
	if !ok {
		return Curriculum{}, ErrNotFound
	}
	return cur, nil
}

// List returns all curricula, newest upload first.
func (r *MemoryRepo) List(ctx context.Context) ([]Curriculum, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Curriculum, 0, len(r.data))
	for _, cur := range r.data {
		out = append(out, cur)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

// Delete removes a curriculum record.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// MarkProcessing flips the record to PROCESSING and clears prior results.
func (r *MemoryRepo) MarkProcessing(ctx context.Context, id string, triggeredAt time.Time) (Curriculum, error) {
	if err := ctx.Err(); err != nil {
		return Curriculum{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[id]
	if !ok {
		return Curriculum{}, ErrNotFound
	}
	cur.AnalysisStatus = StatusProcessing
	cur.AnalysisError = nil
	cur.AnalysisResults = nil
	cur.LastAnalysisTriggeredAt = &triggeredAt
	cur.LastAnalysisCompletedAt = nil
	cur.UpdatedAt = time.Now().UTC()
	r.data[id] = cur
	return cur, nil
}

// CompleteAnalysis writes the terminal state in one update.
func (r *MemoryRepo) CompleteAnalysis(ctx context.Context, id string, status string, analysisError *string, results any, completedAt time.Time) (Curriculum, error) {
	if err := ctx.Err(); err != nil {
		return Curriculum{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[id]
	if !ok {
		return Curriculum{}, ErrNotFound
	}
	cur.AnalysisStatus = status
	cur.AnalysisError = analysisError
	cur.AnalysisResults = results
	cur.LastAnalysisCompletedAt = &completedAt
	cur.UpdatedAt = time.Now().UTC()
	r.data[id] = cur
	return cur, nil
}

var _ Repo = (*MemoryRepo)(nil)

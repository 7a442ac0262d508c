package curricula

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const curriculumColumns = `id, name, school_tag, file_name, mime_type, size_bytes, storage_key, analysis_status, analysis_error, analysis_results, uploaded_at, updated_at, last_analysis_triggered_at, last_analysis_completed_at`

// Create inserts a new curriculum.
func (r *PGRepo) Create(ctx context.Context, cur Curriculum) error {
	const query = `
INSERT INTO curricula (
    id,
    name,
    school_tag,
    file_name,
    mime_type,
    size_bytes,
    storage_key,
    analysis_status,
    uploaded_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	status := cur.AnalysisStatus
	if status == "" {
		status = StatusNotStarted
	}

	var schoolTag sql.NullString
	if cur.SchoolTag != "" {
		schoolTag = sql.NullString{String: cur.SchoolTag, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		cur.ID,
		cur.Name,
		schoolTag,
		cur.FileName,
		cur.MimeType,
		cur.SizeBytes,
		cur.StorageKey,
		status,
		cur.UploadedAt,
		cur.UpdatedAt,
	)
	return err
}

// GetByID fetches a curriculum by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Curriculum, error) {
	query := `SELECT ` + curriculumColumns + ` FROM curricula WHERE id = $1 LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, id)
	cur, err := scanCurriculum(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Curriculum{}, ErrNotFound
		}
		return Curriculum{}, err
	}
	return cur, nil
}

// List returns all curricula, newest upload first.
func (r *PGRepo) List(ctx context.Context) ([]Curriculum, error) {
	query := `SELECT ` + curriculumColumns + ` FROM curricula ORDER BY uploaded_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Curriculum
	for rows.Next() {
		cur, err := scanCurriculum(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cur)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Curriculum{}
	}
	return out, nil
}

// Delete removes a curriculum record.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM curricula WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkProcessing flips the record to PROCESSING and clears prior results.
func (r *PGRepo) MarkProcessing(ctx context.Context, id string, triggeredAt time.Time) (Curriculum, error) {
	query := `
UPDATE curricula
SET analysis_status = $2,
    analysis_error = NULL,
    analysis_results = NULL,
    last_analysis_triggered_at = $3,
    last_analysis_completed_at = NULL,
    updated_at = now()
WHERE id = $1
RETURNING ` + curriculumColumns

	row := r.DB.QueryRowContext(ctx, query, id, StatusProcessing, triggeredAt)
	cur, err := scanCurriculum(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Curriculum{}, ErrNotFound
		}
		return Curriculum{}, err
	}
	return cur, nil
}

// CompleteAnalysis writes the terminal state in one update.
func (r *PGRepo) CompleteAnalysis(ctx context.Context, id string, status string, analysisError *string, results any, completedAt time.Time) (Curriculum, error) {
	query := `
UPDATE curricula
SET analysis_status = $2,
    analysis_error = $3,
    analysis_results = $4,
    last_analysis_completed_at = $5,
    updated_at = now()
WHERE id = $1
RETURNING ` + curriculumColumns

	var errValue sql.NullString
	if analysisError != nil {
		errValue = sql.NullString{String: *analysisError, Valid: true}
	}

	var resultsValue any
	if results != nil {
		raw, err := json.Marshal(results)
		if err != nil {
			return Curriculum{}, fmt.Errorf("marshal analysis results: %w", err)
		}
		resultsValue = raw
	}

	row := r.DB.QueryRowContext(ctx, query, id, status, errValue, resultsValue, completedAt)
	cur, err := scanCurriculum(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Curriculum{}, ErrNotFound
		}
		return Curriculum{}, err
	}
	return cur, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCurriculum(row rowScanner) (Curriculum, error) {
	var cur Curriculum
	var schoolTag sql.NullString
	var analysisError sql.NullString
	var analysisResults []byte
	var triggeredAt sql.NullTime
	var completedAt sql.NullTime

	err := row.Scan(
		&cur.ID,
		&cur.Name,
		&schoolTag,
		&cur.FileName,
		&cur.MimeType,
		&cur.SizeBytes,
		&cur.StorageKey,
		&cur.AnalysisStatus,
		&analysisError,
		&analysisResults,
		&cur.UploadedAt,
		&cur.UpdatedAt,
		&triggeredAt,
		&completedAt,
	)
	if err != nil {
		return Curriculum{}, err
	}
	if schoolTag.Valid {
		cur.SchoolTag = schoolTag.String
	}
	if analysisError.Valid {
		cur.AnalysisError = &analysisError.String
	}
	if len(analysisResults) > 0 {
		var parsed any
		if err := json.Unmarshal(analysisResults, &parsed); err != nil {
			return Curriculum{}, fmt.Errorf("unmarshal analysis results: %w", err)
		}
		cur.AnalysisResults = parsed
	}
	if triggeredAt.Valid {
		cur.LastAnalysisTriggeredAt = &triggeredAt.Time
	}
	if completedAt.Valid {
		cur.LastAnalysisCompletedAt = &completedAt.Time
	}
	return cur, nil
}

var _ Repo = (*PGRepo)(nil)

package curricula

import "time"

// CurriculumResponse is the outward-facing representation of a curriculum.
// AnalysisResults is an empty object until a run completes so clients can
// always index into it.
type CurriculumResponse struct {
	ID                      string     `json:"id"`
	Name                    string     `json:"name"`
	SchoolTag               string     `json:"schoolTag,omitempty"`
	FileName                string     `json:"fileName"`
	MimeType                string     `json:"mimeType"`
	SizeBytes               int64      `json:"sizeBytes"`
	AnalysisStatus          string     `json:"analysisStatus"`
	AnalysisError           *string    `json:"analysisError"`
	AnalysisResults         any        `json:"analysisResults"`
	UploadedAt              time.Time  `json:"uploadedAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`
	LastAnalysisTriggeredAt *time.Time `json:"lastAnalysisTriggeredAt"`
	LastAnalysisCompletedAt *time.Time `json:"lastAnalysisCompletedAt"`
}

// ToResponse converts a Curriculum to its API shape.
func ToResponse(cur Curriculum) CurriculumResponse {
	results := cur.AnalysisResults
	if results == nil {
		results = map[string]any{}
	}
	return CurriculumResponse{
		ID:                      cur.ID,
		Name:                    cur.Name,
		SchoolTag:               cur.SchoolTag,
		FileName:                cur.FileName,
		MimeType:                cur.MimeType,
		SizeBytes:               cur.SizeBytes,
		AnalysisStatus:          cur.AnalysisStatus,
		AnalysisError:           cur.AnalysisError,
		AnalysisResults:         results,
		UploadedAt:              cur.UploadedAt,
		UpdatedAt:               cur.UpdatedAt,
		LastAnalysisTriggeredAt: cur.LastAnalysisTriggeredAt,
		LastAnalysisCompletedAt: cur.LastAnalysisCompletedAt,
	}
}

package curricula

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scooter7/BrioCurriculum/internal/shared/storage/object"
)

// Service contains business logic for curricula.
type Service struct {
	Store object.ObjectStore
	Repo  Repo
}

// Upload saves the file to object storage and records the curriculum. The
// curriculum name defaults to the file name when not provided.
func (s *Service) Upload(ctx context.Context, name, schoolTag, fileName string, r io.Reader) (Curriculum, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Curriculum{}, ErrInvalidInput
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = fileName
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, "curricula", fileName, r)
	if err != nil {
		return Curriculum{}, err
	}

	now := time.Now().UTC()
	cur := Curriculum{
		ID:             uuid.NewString(),
		Name:           name,
		SchoolTag:      strings.TrimSpace(schoolTag),
		FileName:       fileName,
		MimeType:       mimeType,
		SizeBytes:      size,
		StorageKey:     storageKey,
		AnalysisStatus: StatusNotStarted,
		UploadedAt:     now,
		UpdatedAt:      now,
	}

	if err := s.Repo.Create(ctx, cur); err != nil {
		return Curriculum{}, err
	}

	return cur, nil
}

// Get returns a curriculum by ID.
func (s *Service) Get(ctx context.Context, id string) (Curriculum, error) {
	if id == "" {
		return Curriculum{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, id)
}

// List returns all curricula, newest upload first.
func (s *Service) List(ctx context.Context) ([]Curriculum, error) {
	return s.Repo.List(ctx)
}

// Delete removes a curriculum record. The stored object is left in place.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	return s.Repo.Delete(ctx, id)
}

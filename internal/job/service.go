package job

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/hospital-management/internal"
	jobDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/job"
	"gorm.io/datatypes"
)

type RepositoryAPI interface {
	// ListOpen returns open positions, most recently posted first.
	ListOpen(ctx context.Context) ([]jobDatamodel.Job, error)
	Create(ctx context.Context, j *jobDatamodel.Job) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListOpen(ctx context.Context) ([]*Job, error) {
	rows, err := s.repo.ListOpen(ctx)
	if err != nil {
		s.logger.Error("failed to list jobs", "error", err)
		return nil, internal.NewInternalError("failed to list jobs", err)
	}
	return FromDataModels(rows), nil
}

// Create posts a new position. New positions are always open.
func (s *Service) Create(ctx context.Context, dto CreateJobDTO) (*Job, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &jobDatamodel.Job{
		Title:        dto.Title,
		Type:         dto.Type,
		Location:     dto.Location,
		Department:   dto.Department,
		Description:  dto.Description,
		Requirements: datatypes.JSONSlice[string](dto.Requirements),
		IsOpen:       true,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create job", "title", dto.Title, "error", err)
		return nil, internal.NewInternalError("failed to create job", err)
	}

	s.logger.Info("job posted", "job_id", row.ID, "type", row.Type)
	return FromDataModel(row), nil
}

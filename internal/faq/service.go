package faq

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/hospital-management/internal"
	faqDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/faq"
)

type RepositoryAPI interface {
	// List returns every entry, highest priority first, newest first within a priority.
	List(ctx context.Context) ([]faqDatamodel.FAQ, error)
	ListActiveByCategory(ctx context.Context, category string) ([]faqDatamodel.FAQ, error)
	GetByID(ctx context.Context, id int64) (*faqDatamodel.FAQ, error)
	Create(ctx context.Context, f *faqDatamodel.FAQ) error
	Update(ctx context.Context, f *faqDatamodel.FAQ) error
	Delete(ctx context.Context, id int64) (bool, error)
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

func (s *Service) Create(ctx context.Context, dto CreateFAQDTO) (*FAQ, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	active := true
	if dto.IsActive != nil {
		active = *dto.IsActive
	}
	row := ToDataModel(&FAQ{
		Keywords: dto.Keywords,
		Response: dto.Response,
		Language: dto.Language,
		Category: dto.Category,
		IsActive: active,
		Priority: dto.Priority,
	})
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create faq", "error", err)
		return nil, internal.NewInternalError("Failed to create FAQ", err)
	}

	s.logger.Info("faq created", "faq_id", row.ID, "category", row.Category)
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context) ([]*FAQ, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal.NewInternalError("Failed to fetch FAQs", err)
	}
	return FromDataModels(rows), nil
}

// ListActiveByCategory serves the public lookup. An unknown category matches
// nothing.
func (s *Service) ListActiveByCategory(ctx context.Context, category string) ([]*FAQ, error) {
	rows, err := s.repo.ListActiveByCategory(ctx, category)
	if err != nil {
		return nil, internal.NewInternalError("Failed to fetch FAQs", err)
	}
	return FromDataModels(rows), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*FAQ, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateFAQDTO) (*FAQ, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Keywords != nil {
		row.Keywords = *dto.Keywords
	}
	if dto.Response != nil {
		row.Response = *dto.Response
	}
	if dto.Language != nil {
		row.Language = *dto.Language
	}
	if dto.Category != nil {
		row.Category = *dto.Category
	}
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}
	if dto.Priority != nil {
		row.Priority = *dto.Priority
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update faq", "faq_id", id, "error", err)
		return nil, internal.NewInternalError("Failed to update FAQ", err)
	}

	s.logger.Info("faq updated", "faq_id", id)
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return internal.NewInternalError("Failed to delete FAQ", err)
	}
	if !found {
		return internal.ErrFAQNotFound
	}

	s.logger.Info("faq deleted", "faq_id", id)
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*faqDatamodel.FAQ, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("Failed to fetch FAQ", err)
	}
	if row == nil {
		return nil, internal.ErrFAQNotFound
	}
	return row, nil
}

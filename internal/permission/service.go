package permission

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/hospital-management/internal"
	permissionDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/permission"
)

type RepositoryAPI interface {
	List(ctx context.Context) ([]permissionDatamodel.Permission, error)
	GetByID(ctx context.Context, id int64) (*permissionDatamodel.Permission, error)
	GetByName(ctx context.Context, name string) (*permissionDatamodel.Permission, error)
	Create(ctx context.Context, p *permissionDatamodel.Permission) error
	Update(ctx context.Context, p *permissionDatamodel.Permission) error
	Delete(ctx context.Context, id int64) error
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

// Create rejects a name that already exists in any group.
func (s *Service) Create(ctx context.Context, dto CreatePermissionDTO) (*Permission, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(ctx, dto.Name)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up permission", err)
	}
	if existing != nil {
		return nil, internal.ErrPermissionExists
	}

	row := ToDataModel(NewPermission(dto.Name, dto.Group))
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create permission", err)
	}

	s.logger.Info("permission created", "permission_id", row.ID, "name", row.Name, "group", row.Group)
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context) ([]*Permission, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list permissions", "error", err)
		return nil, internal.NewInternalError("failed to list permissions", err)
	}
	return FromDataModels(rows), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Permission, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load permission", err)
	}
	if row == nil {
		return nil, internal.ErrPermissionNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdatePermissionDTO) (*Permission, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load permission", err)
	}
	if row == nil {
		return nil, internal.ErrPermissionNotFound
	}

	if dto.Name != nil && *dto.Name != row.Name {
		clash, err := s.repo.GetByName(ctx, *dto.Name)
		if err != nil {
			return nil, internal.NewInternalError("failed to look up permission", err)
		}
		if clash != nil {
			return nil, internal.ErrPermissionExists
		}
		row.Name = *dto.Name
	}
	if dto.Group != nil {
		row.Group = *dto.Group
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update permission", err)
	}

	s.logger.Info("permission updated", "permission_id", row.ID)
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to load permission", err)
	}
	if row == nil {
		return internal.ErrPermissionNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete permission", err)
	}

	s.logger.Info("permission deleted", "permission_id", id, "name", row.Name)
	return nil
}

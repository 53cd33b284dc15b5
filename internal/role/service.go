package role

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/hospital-management/internal"
	permissionDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/permission"
	roleDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/role"
)

type RepositoryAPI interface {
	List(ctx context.Context) ([]roleDatamodel.Role, error)
	GetByID(ctx context.Context, id int64) (*roleDatamodel.Role, error)
	GetByName(ctx context.Context, name string) (*roleDatamodel.Role, error)
	Create(ctx context.Context, role *roleDatamodel.Role) error
	// Update saves the role columns and, when replacePermissions is set,
	// swaps the whole permission association for role.Permissions.
	Update(ctx context.Context, role *roleDatamodel.Role, replacePermissions bool) error
	Delete(ctx context.Context, id int64) error
}

// PermissionResolver turns id-or-name references into permission rows.
type PermissionResolver interface {
	ResolveRefs(ctx context.Context, refs []string) ([]permissionDatamodel.Permission, error)
}

type Service struct {
	repo        RepositoryAPI
	permissions PermissionResolver
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, permissions PermissionResolver, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		permissions: permissions,
		logger:      logger,
	}
}

// ResolveRole loads a role with its permissions expanded.
func (s *Service) ResolveRole(ctx context.Context, id int64) (*Role, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if row == nil {
		return nil, internal.ErrRoleNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Role, error) {
	return s.ResolveRole(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Role, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, internal.NewInternalError("failed to list roles", err)
	}
	return FromDataModels(rows), nil
}

func (s *Service) Create(ctx context.Context, dto CreateRoleDTO) (*Role, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(ctx, dto.Name)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up role", err)
	}
	if existing != nil {
		return nil, internal.ErrRoleExists
	}

	perms, err := s.resolve(ctx, dto.Permissions)
	if err != nil {
		return nil, err
	}

	row := &roleDatamodel.Role{
		Name:         dto.Name,
		ProfileModel: DefaultProfileModel(dto.Name),
		Permissions:  perms,
	}
	if dto.ProfileModel != nil {
		row.ProfileModel = *dto.ProfileModel
	}

	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, internal.ErrRoleExists) {
			return nil, internal.ErrRoleExists
		}
		return nil, internal.NewInternalError("failed to create role", err)
	}

	s.logger.Info("role created", "role_id", row.ID, "name", row.Name, "permissions", len(perms))
	return s.ResolveRole(ctx, row.ID)
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateRoleDTO) (*Role, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if row == nil {
		return nil, internal.ErrRoleNotFound
	}

	if dto.Name != nil && *dto.Name != row.Name {
		clash, err := s.repo.GetByName(ctx, *dto.Name)
		if err != nil {
			return nil, internal.NewInternalError("failed to look up role", err)
		}
		if clash != nil {
			return nil, internal.ErrRoleExists
		}
		row.Name = *dto.Name
	}
	if dto.ProfileModel != nil {
		row.ProfileModel = *dto.ProfileModel
	}

	replace := dto.Permissions != nil
	if replace {
		perms, err := s.resolve(ctx, *dto.Permissions)
		if err != nil {
			return nil, err
		}
		row.Permissions = perms
	}

	if err := s.repo.Update(ctx, row, replace); err != nil {
		if errors.Is(err, internal.ErrRoleExists) {
			return nil, internal.ErrRoleExists
		}
		return nil, internal.NewInternalError("failed to update role", err)
	}

	s.logger.Info("role updated", "role_id", row.ID, "permissions_replaced", replace)
	return s.ResolveRole(ctx, row.ID)
}

// Delete removes the role. Users that still reference it keep the stale
// role_id and are treated as having no role.
func (s *Service) Delete(ctx context.Context, id int64) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to load role", err)
	}
	if row == nil {
		return internal.ErrRoleNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete role", err)
	}

	s.logger.Info("role deleted", "role_id", id, "name", row.Name)
	return nil
}

func (s *Service) resolve(ctx context.Context, refs []string) ([]permissionDatamodel.Permission, error) {
	perms, err := s.permissions.ResolveRefs(ctx, refs)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve permissions", err)
	}
	if len(perms) < len(refs) {
		s.logger.Debug("some permission references did not resolve", "requested", len(refs), "resolved", len(perms))
	}
	return perms, nil
}

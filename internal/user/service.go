package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/hospital-management/internal"
	roleDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/user"
	"golang.org/x/crypto/bcrypt"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	// List returns every user, or only those holding roleID when it is set.
	List(ctx context.Context, roleID *int64) ([]userDatamodel.User, error)
	// UpdateColumns writes only the named account columns. The profile pair is
	// owned by the profile binder and never written here.
	UpdateColumns(ctx context.Context, id int64, columns map[string]interface{}) error
	SetRole(ctx context.Context, userID, roleID int64) (bool, error)
	// Delete removes the user together with the profile record it points at.
	Delete(ctx context.Context, id int64) (bool, error)

	GetRoleByID(ctx context.Context, id int64) (*roleDatamodel.Role, error)
	GetRoleByName(ctx context.Context, name string) (*roleDatamodel.Role, error)
	RoleNames(ctx context.Context) (map[int64]string, error)
}

type Service struct {
	repo       RepositoryAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) GetAccount(ctx context.Context, id int64) (*Account, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toAccount(ctx, u)
}

// UpdateAccount applies dto to the caller's own account once the current
// password matches.
func (s *Service) UpdateAccount(ctx context.Context, id int64, dto UpdateAccountDTO) (*Account, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)) != nil {
		s.logger.Warn("account update with wrong password", "user_id", id)
		return nil, internal.NewValidationError("Incorrect password", internal.ErrCodeInvalidCredentials)
	}

	columns := map[string]interface{}{}
	if dto.Email != nil && *dto.Email != u.Email {
		other, err := s.repo.GetByEmail(ctx, *dto.Email)
		if err != nil {
			return nil, internal.NewInternalError("failed to look up email", err)
		}
		if other != nil {
			return nil, internal.ErrEmailTaken
		}
		columns["email"] = *dto.Email
	}
	if dto.Name != nil {
		columns["name"] = *dto.Name
	}
	if dto.Phone != nil {
		columns["phone"] = *dto.Phone
	}
	if dto.Gender != nil {
		columns["gender"] = *dto.Gender
	}
	if dto.NewPassword != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*dto.NewPassword), s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		columns["password_hash"] = string(hash)
	}

	if len(columns) > 0 {
		if err := s.repo.UpdateColumns(ctx, id, columns); err != nil {
			if errors.Is(err, internal.ErrEmailTaken) {
				return nil, internal.ErrEmailTaken
			}
			s.logger.Error("failed to update account", "user_id", id, "error", err)
			return nil, internal.NewInternalError("failed to update account", err)
		}
	}

	s.logger.Info("account updated", "user_id", id, "password_changed", dto.NewPassword != nil)
	return s.GetAccount(ctx, id)
}

// ListUsers filters by role name. An unknown role name matches nobody.
func (s *Service) ListUsers(ctx context.Context, roleName string) ([]*Account, error) {
	var roleID *int64
	if roleName != "" {
		r, err := s.repo.GetRoleByName(ctx, roleName)
		if err != nil {
			return nil, internal.NewInternalError("failed to look up role", err)
		}
		if r == nil {
			return []*Account{}, nil
		}
		roleID = &r.ID
	}

	users, err := s.repo.List(ctx, roleID)
	if err != nil {
		s.logger.Error("failed to list users", "role", roleName, "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}

	names, err := s.repo.RoleNames(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to load roles", err)
	}

	out := make([]*Account, 0, len(users))
	for i := range users {
		out = append(out, ToAccount(&users[i], names))
	}
	return out, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to delete user", err)
	}
	if !found {
		return internal.ErrUserNotFound
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// UpdateUserRole returns the updated account and the new role's name.
func (s *Service) UpdateUserRole(ctx context.Context, id int64, dto UpdateRoleDTO) (*Account, string, error) {
	if err := dto.Validate(); err != nil {
		return nil, "", err
	}

	r, err := s.repo.GetRoleByID(ctx, dto.RoleID)
	if err != nil {
		return nil, "", internal.NewInternalError("failed to look up role", err)
	}
	if r == nil {
		return nil, "", internal.ErrRoleNotFound
	}

	found, err := s.repo.SetRole(ctx, id, r.ID)
	if err != nil {
		return nil, "", internal.NewInternalError("failed to update role", err)
	}
	if !found {
		return nil, "", internal.ErrUserNotFound
	}

	s.logger.Info("user role updated", "user_id", id, "role", r.Name)

	a, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return a, r.Name, nil
}

func (s *Service) load(ctx context.Context, id int64) (*userDatamodel.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) toAccount(ctx context.Context, u *userDatamodel.User) (*Account, error) {
	if u.RoleID == nil {
		return ToAccount(u, nil), nil
	}
	r, err := s.repo.GetRoleByID(ctx, *u.RoleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if r == nil {
		return ToAccount(u, nil), nil
	}
	return ToAccount(u, map[int64]string{r.ID: r.Name}), nil
}

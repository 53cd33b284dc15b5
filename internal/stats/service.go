package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/auth"
)

type RepositoryAPI interface {
	UsersByRole(ctx context.Context) ([]Count, error)
	ProfilesByKind(ctx context.Context) ([]Count, error)
	AppointmentsByStatus(ctx context.Context) ([]Count, error)
	AppointmentsBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	byRole, err := s.repo.UsersByRole(ctx)
	if err != nil {
		return nil, s.fail("users by role", err)
	}
	byKind, err := s.repo.ProfilesByKind(ctx)
	if err != nil {
		return nil, s.fail("profiles by kind", err)
	}
	byStatus, err := s.repo.AppointmentsByStatus(ctx)
	if err != nil {
		return nil, s.fail("appointments by status", err)
	}

	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := s.repo.AppointmentsBetween(ctx, start, start.Add(24*time.Hour))
	if err != nil {
		return nil, s.fail("appointments today", err)
	}

	users := toMap(byRole)
	return &Overview{
		Patients:             users[auth.RolePatient],
		MedicalStaff:         users[auth.RoleDoctor] + users[auth.RoleNurse],
		AppointmentsToday:    today,
		UsersByRole:          users,
		ProfilesByKind:       toMap(byKind),
		AppointmentsByStatus: toMap(byStatus),
		GeneratedAt:          now,
	}, nil
}

func (s *Service) fail(what string, err error) error {
	s.logger.Error("failed to count "+what, "error", err)
	return internal.NewInternalError("failed to load statistics", err)
}

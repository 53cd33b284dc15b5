package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/hospital-management/internal/stats"
	"github.com/jmoiron/sqlx"
)

type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

var _ stats.RepositoryAPI = (*StatsRepository)(nil)

const usersByRoleQuery = `
SELECT COALESCE(r.name, 'unassigned') AS label, COUNT(*) AS total
FROM users u
LEFT JOIN roles r ON r.id = u.role_id
GROUP BY COALESCE(r.name, 'unassigned')
`

const profilesByKindQuery = `
SELECT profile_model AS label, COUNT(*) AS total
FROM users
WHERE profile_model IS NOT NULL
GROUP BY profile_model
`

const appointmentsByStatusQuery = `
SELECT status AS label, COUNT(*) AS total
FROM appointments
GROUP BY status
`

const appointmentsBetweenQuery = `
SELECT COUNT(*) FROM appointments WHERE date >= ? AND date < ?
`

func (r *StatsRepository) counts(ctx context.Context, name, query string) ([]stats.Count, error) {
	out := []stats.Count{}
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("%s query: %w", name, err)
	}
	return out, nil
}

func (r *StatsRepository) UsersByRole(ctx context.Context) ([]stats.Count, error) {
	return r.counts(ctx, "users by role", usersByRoleQuery)
}

func (r *StatsRepository) ProfilesByKind(ctx context.Context) ([]stats.Count, error) {
	return r.counts(ctx, "profiles by kind", profilesByKindQuery)
}

func (r *StatsRepository) AppointmentsByStatus(ctx context.Context) ([]stats.Count, error) {
	return r.counts(ctx, "appointments by status", appointmentsByStatusQuery)
}

func (r *StatsRepository) AppointmentsBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(appointmentsBetweenQuery), from, to); err != nil {
		return 0, fmt.Errorf("appointments between query: %w", err)
	}
	return total, nil
}

package postgres

import (
	"context"

	jobDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/job"
	"github.com/frahmantamala/hospital-management/internal/job"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

var _ job.RepositoryAPI = (*JobRepository)(nil)

func (r *JobRepository) ListOpen(ctx context.Context) ([]jobDatamodel.Job, error) {
	jobs := []jobDatamodel.Job{}
	err := r.db.WithContext(ctx).
		Where("is_open = ?", true).
		Order("posted_at DESC, id DESC").
		Find(&jobs).Error
	return jobs, err
}

func (r *JobRepository) Create(ctx context.Context, j *jobDatamodel.Job) error {
	return r.db.WithContext(ctx).Create(j).Error
}

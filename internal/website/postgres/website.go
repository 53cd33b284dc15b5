package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/hospital-management/internal"
	websiteDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/website"
	"github.com/frahmantamala/hospital-management/internal/website"
	"gorm.io/gorm"
)

type WebsiteRepository struct {
	db *gorm.DB
}

func NewWebsiteRepository(db *gorm.DB) *WebsiteRepository {
	return &WebsiteRepository{db: db}
}

var _ website.RepositoryAPI = (*WebsiteRepository)(nil)

func (r *WebsiteRepository) CreateMessage(ctx context.Context, m *websiteDatamodel.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *WebsiteRepository) GetSubscriber(ctx context.Context, email string) (*websiteDatamodel.Subscriber, error) {
	var s websiteDatamodel.Subscriber
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *WebsiteRepository) CreateSubscriber(ctx context.Context, s *websiteDatamodel.Subscriber) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrAlreadySubscribed.WithCause(err)
	}
	return err
}

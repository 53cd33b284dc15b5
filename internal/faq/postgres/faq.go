package postgres

import (
	"context"
	"errors"

	faqDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/faq"
	"github.com/frahmantamala/hospital-management/internal/faq"
	"gorm.io/gorm"
)

type FAQRepository struct {
	db *gorm.DB
}

func NewFAQRepository(db *gorm.DB) *FAQRepository {
	return &FAQRepository{db: db}
}

var _ faq.RepositoryAPI = (*FAQRepository)(nil)

func (r *FAQRepository) List(ctx context.Context) ([]faqDatamodel.FAQ, error) {
	faqs := []faqDatamodel.FAQ{}
	err := r.db.WithContext(ctx).
		Order("priority DESC, created_at DESC, id DESC").
		Find(&faqs).Error
	return faqs, err
}

func (r *FAQRepository) ListActiveByCategory(ctx context.Context, category string) ([]faqDatamodel.FAQ, error) {
	faqs := []faqDatamodel.FAQ{}
	err := r.db.WithContext(ctx).
		Where("category = ? AND is_active = ?", category, true).
		Order("priority DESC, id ASC").
		Find(&faqs).Error
	return faqs, err
}

func (r *FAQRepository) GetByID(ctx context.Context, id int64) (*faqDatamodel.FAQ, error) {
	var f faqDatamodel.FAQ
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *FAQRepository) Create(ctx context.Context, f *faqDatamodel.FAQ) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FAQRepository) Update(ctx context.Context, f *faqDatamodel.FAQ) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *FAQRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&faqDatamodel.FAQ{}, id)
	return res.RowsAffected > 0, res.Error
}

package settings

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	// Get returns the settings row, creating the default if none exists.
	Get(ctx context.Context) (*SystemSettings, error)
	Update(ctx context.Context, s *SystemSettings) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context) (*SystemSettings, error) {
	var s SystemSettings
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s = SystemSettings{PointsPerCurrencyUnit: 1}
		if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
			return nil, err
		}
		return &s, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) Update(ctx context.Context, s *SystemSettings) error {
	return r.db.WithContext(ctx).Save(s).Error
}

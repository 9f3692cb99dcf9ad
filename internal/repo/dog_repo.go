package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-kennel-backend/internal/domain"
)

// GetDog fetches a dog by name without its owner, or ErrNotFound.
func GetDog(ctx context.Context, db *gorm.DB, name string) (*domain.Dog, error) {
	var d domain.Dog
	if err := db.WithContext(ctx).Where("name = ?", name).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDog inserts d. The owner row is referenced by key only and never
// upserted, so an unknown owner is a foreign key violation.
func CreateDog(ctx context.Context, db *gorm.DB, d *domain.Dog) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(d).Error
}

// ListDogsByOwner returns the dogs owned by owner, ordered by name.
func ListDogsByOwner(ctx context.Context, db *gorm.DB, owner string) ([]domain.Dog, error) {
	var out []domain.Dog
	err := db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("name asc").
		Find(&out).Error
	return out, err
}

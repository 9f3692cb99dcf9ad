// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Person model.
//
// All functions are context-aware and accept a *gorm.DB handle, so they run
// unchanged on the pool or inside a unit-of-work session.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a person is not found, functions return ErrNotFound
//     (an alias of gorm.ErrRecordNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw driver error is propagated so dberr.Classify can inspect it.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-kennel-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreatePerson inserts p. A duplicate name surfaces as the driver's
// primary key violation.
func CreatePerson(ctx context.Context, db *gorm.DB, p *domain.Person) error {
	return db.WithContext(ctx).Create(p).Error
}

// GetPerson fetches a person by name, or ErrNotFound.
func GetPerson(ctx context.Context, db *gorm.DB, name string) (*domain.Person, error) {
	var p domain.Person
	if err := db.WithContext(ctx).Where("name = ?", name).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CountPeople returns the total number of people.
func CountPeople(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Person{}).Count(&total).Error
	return total, err
}

// ListPeoplePage returns a page of people ordered by name.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListPeoplePage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Person, error) {
	var out []domain.Person
	err := db.WithContext(ctx).
		Order("name asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Package services – DogService
//
// DogService reads and registers dogs. Dog rows only carry their owner's
// key; whether the owner record is returned is decided by LazyLoading:
//
//   - enabled:  Find issues an explicit follow-up query for the owner on the
//     same session, so both reads see one snapshot.
//   - disabled: the owner is left nil and serializes as JSON null.
//
// Every method resolves its database handle from the request's unit of work
// (uow.DB) and falls back to the service's pool handle outside a scope.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-kennel-backend/internal/domain"
	"github.com/tbourn/go-kennel-backend/internal/uow"
)

// DogRepo defines the repository contract required by DogService.
type DogRepo interface {
	GetDog(ctx context.Context, db *gorm.DB, name string) (*domain.Dog, error)
	CreateDog(ctx context.Context, db *gorm.DB, d *domain.Dog) error
	ListDogsByOwner(ctx context.Context, db *gorm.DB, owner string) ([]domain.Dog, error)
	OwnerDogsStats(ctx context.Context, db *gorm.DB, owner string) (int64, *time.Time, error)
	GetPerson(ctx context.Context, db *gorm.DB, name string) (*domain.Person, error)
}

// DogService provides dog lookups and registration.
type DogService struct {
	// DB is the pool handle used when no unit of work is bound.
	DB *gorm.DB
	// Repo is the persistence contract for dogs and their owners.
	Repo DogRepo
	// LazyLoading controls whether Find fetches the owner record.
	LazyLoading bool
}

// NewDogService constructs a DogService.
func NewDogService(db *gorm.DB, r DogRepo, lazyLoading bool) *DogService {
	return &DogService{DB: db, Repo: r, LazyLoading: lazyLoading}
}

func (s *DogService) db(ctx context.Context) *gorm.DB {
	if db, ok := uow.DB(ctx); ok {
		return db
	}
	return s.DB
}

// Find returns the dog called name, with its owner when LazyLoading is on.
func (s *DogService) Find(ctx context.Context, name string) (*domain.Dog, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	db := s.db(ctx)

	dog, err := s.Repo.GetDog(ctx, db, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDogNotFound
		}
		return nil, err
	}
	if err := s.loadOwner(ctx, db, dog); err != nil {
		return nil, err
	}
	return dog, nil
}

// Create registers a dog. owner may be empty for an ownerless dog. Duplicate
// names and unknown owners are left to the database to reject; the resulting
// constraint violation is returned unchanged.
func (s *DogService) Create(ctx context.Context, name, owner string) (*domain.Dog, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	dog := &domain.Dog{Name: name}
	if owner != "" {
		if owner, err = NormalizeName(owner); err != nil {
			return nil, err
		}
		dog.OwnerName = &owner
	}

	db := s.db(ctx)
	if err := s.Repo.CreateDog(ctx, db, dog); err != nil {
		return nil, err
	}
	if err := s.loadOwner(ctx, db, dog); err != nil {
		return nil, err
	}
	return dog, nil
}

// ListByOwner returns the dogs of an existing person.
func (s *DogService) ListByOwner(ctx context.Context, owner string) ([]domain.Dog, error) {
	owner, err := NormalizeName(owner)
	if err != nil {
		return nil, err
	}
	db := s.db(ctx)
	if _, err := s.Repo.GetPerson(ctx, db, owner); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	dogs, err := s.Repo.ListDogsByOwner(ctx, db, owner)
	if err != nil {
		return nil, err
	}
	if dogs == nil {
		dogs = []domain.Dog{}
	}
	return dogs, nil
}

// OwnerStats returns the owner's dog count and latest update, for ETags.
func (s *DogService) OwnerStats(ctx context.Context, owner string) (int64, *time.Time, error) {
	owner, err := NormalizeName(owner)
	if err != nil {
		return 0, nil, err
	}
	return s.Repo.OwnerDogsStats(ctx, s.db(ctx), owner)
}

func (s *DogService) loadOwner(ctx context.Context, db *gorm.DB, dog *domain.Dog) error {
	if !s.LazyLoading || dog.OwnerName == nil {
		dog.Owner = nil
		return nil
	}
	owner, err := s.Repo.GetPerson(ctx, db, *dog.OwnerName)
	if err != nil {
		return err
	}
	dog.Owner = owner
	return nil
}

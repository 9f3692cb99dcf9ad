// Package services – PersonService
//
// PersonService manages dog owners. Creation supports safe retries: when the
// caller supplies an Idempotency-Key, the person row and the idempotency
// record are written by the same unit of work, so a retry either replays the
// stored result or performs the whole insert, never half of it.
package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-kennel-backend/internal/domain"
	"github.com/tbourn/go-kennel-backend/internal/repo"
	"github.com/tbourn/go-kennel-backend/internal/uow"
)

// IdempotencyScope is the scope under which POST /people keys are recorded.
const IdempotencyScope = "people"

// PersonService implements the people use-cases.
type PersonService struct {
	// DB is the pool handle used when no unit of work is bound.
	DB *gorm.DB
	// IdempotencyTTL bounds how long a key replays its first result.
	IdempotencyTTL time.Duration
}

// NewPersonService constructs a PersonService.
func NewPersonService(db *gorm.DB, idempotencyTTL time.Duration) *PersonService {
	return &PersonService{DB: db, IdempotencyTTL: idempotencyTTL}
}

func (s *PersonService) db(ctx context.Context) *gorm.DB {
	if db, ok := uow.DB(ctx); ok {
		return db
	}
	return s.DB
}

// Get returns the person called name.
func (s *PersonService) Get(ctx context.Context, name string) (*domain.Person, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	p, err := repo.GetPerson(ctx, s.db(ctx), name)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrPersonNotFound
	}
	return p, err
}

// Create inserts p after normalizing its name and email. A duplicate name or
// malformed email is rejected by the database.
func (s *PersonService) Create(ctx context.Context, p *domain.Person) (*domain.Person, error) {
	out, _, err := s.CreateOnce(ctx, "", "", p)
	return out, err
}

// CreateOnce is Create with an optional idempotency key. When key was
// already used by userID it returns the originally created person and
// replayed=true without inserting anything.
func (s *PersonService) CreateOnce(ctx context.Context, userID, key string, p *domain.Person) (out *domain.Person, replayed bool, err error) {
	db := s.db(ctx)

	if key != "" {
		rec, err := repo.GetIdempotency(ctx, db, userID, IdempotencyScope, key, time.Now().UTC())
		switch {
		case err == nil:
			prev, err := repo.GetPerson(ctx, db, rec.ResourceID)
			if errors.Is(err, repo.ErrNotFound) {
				return nil, false, ErrIdempotencyResourceGone
			}
			if err != nil {
				return nil, false, err
			}
			return prev, true, nil
		case !errors.Is(err, repo.ErrNotFound):
			return nil, false, err
		}
	}

	name, err := NormalizeName(p.Name)
	if err != nil {
		return nil, false, err
	}
	p.Name = name
	if p.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*p.Email))
		if e == "" {
			p.Email = nil
		} else {
			p.Email = &e
		}
	}
	if p.Birthday != nil {
		b := p.Birthday.UTC()
		p.Birthday = &b
	}

	if err := repo.CreatePerson(ctx, db, p); err != nil {
		return nil, false, err
	}

	if key != "" {
		ttl := s.IdempotencyTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		if _, err := repo.CreateIdempotency(ctx, db, userID, IdempotencyScope, key, p.Name, http.StatusCreated, ttl); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return nil, false, ErrIdempotencyConflict
			}
			return nil, false, err
		}
	}
	return p, false, nil
}

// ListPage returns a page of people (ordered by name) and the total count.
// It applies defaults for invalid page/pageSize.
func (s *PersonService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Person, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	db := s.db(ctx)

	total, err := repo.CountPeople(ctx, db)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Person{}, 0, nil
	}
	items, err := repo.ListPeoplePage(ctx, db, offset, pageSize)
	return items, total, err
}

// Stats returns the number of people and the latest update, for ETags.
func (s *PersonService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return repo.PeopleStats(ctx, s.db(ctx))
}

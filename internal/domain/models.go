// Package domain defines the persistence models for people and their dogs.
// These types are mapped with GORM and form the core data layer of the
// kennel service.
package domain

import "time"

// Person is a dog owner, keyed by natural name.
//
// Fields:
//   - Name: natural primary key.
//   - Email: optional contact address; must contain an '@' when set
//     (enforced by the chk_people_email CHECK constraint).
//   - Birthday: optional, stored in UTC.
type Person struct {
	Name      string     `json:"name"               gorm:"type:varchar(100);primaryKey"`
	Email     *string    `json:"email,omitempty"    gorm:"type:varchar(255);check:chk_people_email,email IS NULL OR email LIKE '%_@_%'"`
	Birthday  *time.Time `json:"birthday,omitempty"`
	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`
}

// TableName returns the database table name for Person.
func (Person) TableName() string { return "people" }

// Dog is keyed by name and optionally references its owner.
//
// Owner is never populated implicitly: it is nil until a service performs
// the explicit follow-up fetch, and serializes as JSON null otherwise.
type Dog struct {
	Name      string    `json:"name"  gorm:"type:varchar(100);primaryKey"`
	OwnerName *string   `json:"-"     gorm:"column:owner;type:varchar(100);index"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Owner *Person `json:"owner" gorm:"foreignKey:OwnerName;references:Name;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for Dog.
func (Dog) TableName() string { return "dogs" }

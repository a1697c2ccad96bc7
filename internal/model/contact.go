// Package model defines the shared data types for the contact tracker.
package model

import (
	"time"
)

// Contact is the identity-bearing record for a person in an account's circle.
type Contact struct {
	ID      string `json:"id" db:"id"`
	OwnerID string `json:"owner_id" db:"owner_id"`
	Name    string `json:"name" db:"name"`
	Email   string `json:"email,omitempty" db:"email"`
	Phone   string `json:"phone,omitempty" db:"phone"`

	// Profile
	Company  string     `json:"company,omitempty" db:"company"`
	Role     string     `json:"role,omitempty" db:"role"`
	City     string     `json:"city,omitempty" db:"city"`
	Country  string     `json:"country,omitempty" db:"country"`
	Address  string     `json:"address,omitempty" db:"address"`
	Birthday *time.Time `json:"birthday,omitempty" db:"birthday"`
	Website  string     `json:"website,omitempty" db:"website"`
	Notes    string     `json:"notes,omitempty" db:"notes"`
	Timezone string     `json:"timezone,omitempty" db:"timezone"`
	Gender   string     `json:"gender,omitempty" db:"gender"`

	// Social handles keyed by platform (linkedin, instagram, x, ...).
	Socials map[string]string `json:"socials,omitempty" db:"socials"`

	Rating *int     `json:"rating,omitempty" db:"rating"`
	Tags   []string `json:"tags,omitempty" db:"tags"`

	// IsSelf marks the account owner's own record. Exactly one per owner.
	IsSelf bool `json:"is_self,omitempty" db:"is_self"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

package model

import "time"

// Connection is an edge between two contacts (who knows whom, and how).
type Connection struct {
	ID             string    `json:"id" db:"id"`
	OwnerID        string    `json:"owner_id" db:"owner_id"`
	SourceID       string    `json:"source_id" db:"source_id"`
	TargetID       string    `json:"target_id" db:"target_id"`
	ConnectionType string    `json:"connection_type" db:"connection_type"`
	Notes          string    `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Interaction is a logged touchpoint with a single contact.
type Interaction struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	ContactID string    `json:"contact_id" db:"contact_id"`
	Type      string    `json:"type" db:"type"`
	Date      time.Time `json:"date" db:"date"`
	Notes     string    `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Favor tracks a favor owed to or by a contact.
type Favor struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	ContactID string    `json:"contact_id" db:"contact_id"`
	Direction string    `json:"direction" db:"direction"`
	Type      string    `json:"type" db:"type"`
	Value     string    `json:"value,omitempty" db:"value"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Favor directions and statuses.
const (
	FavorGiven    = "given"
	FavorReceived = "received"

	FavorPending = "pending"
	FavorRepaid  = "repaid"
)

// Introduction records one contact being introduced to another.
type Introduction struct {
	ID          string    `json:"id" db:"id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	ContactAID  string    `json:"contact_a_id" db:"contact_a_id"`
	ContactBID  string    `json:"contact_b_id" db:"contact_b_id"`
	InitiatedBy string    `json:"initiated_by" db:"initiated_by"`
	Status      string    `json:"status" db:"status"`
	Notes       string    `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CountryConnection links a contact to a country they live in or represent.
type CountryConnection struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	ContactID string    `json:"contact_id" db:"contact_id"`
	Country   string    `json:"country" db:"country"`
	Relation  string    `json:"relation,omitempty" db:"relation"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Tag is a user-defined label that can be attached to contacts.
type Tag struct {
	OwnerID string `json:"owner_id" db:"owner_id"`
	Name    string `json:"name" db:"name"`
	Color   string `json:"color,omitempty" db:"color"`
}

// Package snapshot implements the portable export/import document and
// the resolution of its document-local contact references.
package snapshot

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

// Version is the only document version this code reads or writes.
const Version = 1

// Contact is a contact as carried inside a snapshot. Ref is a
// document-local token, unique within one document and meaningless
// outside it.
type Contact struct {
	Ref      string            `json:"ref"`
	Name     string            `json:"name"`
	Email    string            `json:"email,omitempty"`
	Phone    string            `json:"phone,omitempty"`
	Company  string            `json:"company,omitempty"`
	Role     string            `json:"role,omitempty"`
	City     string            `json:"city,omitempty"`
	Country  string            `json:"country,omitempty"`
	Address  string            `json:"address,omitempty"`
	Birthday string            `json:"birthday,omitempty"`
	Website  string            `json:"website,omitempty"`
	Notes    string            `json:"notes,omitempty"`
	Timezone string            `json:"timezone,omitempty"`
	Gender   string            `json:"gender,omitempty"`
	Tags     []string          `json:"tags,omitempty"`
	Socials  map[string]string `json:"socials,omitempty"`
	IsSelf   bool              `json:"isSelf,omitempty"`
}

// Connection is an edge between two contacts, by ref.
type Connection struct {
	Source         string `json:"source"`
	Target         string `json:"target"`
	ConnectionType string `json:"connectionType"`
	Notes          string `json:"notes,omitempty"`
}

// Interaction is a touchpoint with one contact, by ref.
type Interaction struct {
	Contact string    `json:"contact"`
	Type    string    `json:"type"`
	Date    time.Time `json:"date"`
	Notes   string    `json:"notes,omitempty"`
}

// Favor references one contact by ref.
type Favor struct {
	Contact   string `json:"contact"`
	Direction string `json:"direction"`
	Type      string `json:"type"`
	Value     string `json:"value,omitempty"`
	Status    string `json:"status"`
}

// Introduction references two contacts by ref.
type Introduction struct {
	ContactA    string `json:"contactA"`
	ContactB    string `json:"contactB"`
	InitiatedBy string `json:"initiatedBy"`
	Status      string `json:"status"`
	Notes       string `json:"notes,omitempty"`
}

// CountryConnection references one contact by ref.
type CountryConnection struct {
	Contact  string `json:"contact"`
	Country  string `json:"country"`
	Relation string `json:"relation,omitempty"`
}

// Tag is a label definition carried with the document.
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Snapshot is the versioned portable document.
type Snapshot struct {
	Version            int                 `json:"version"`
	ExportedAt         time.Time           `json:"exportedAt"`
	Contacts           []Contact           `json:"contacts"`
	Connections        []Connection        `json:"connections,omitempty"`
	Interactions       []Interaction       `json:"interactions,omitempty"`
	Favors             []Favor             `json:"favors,omitempty"`
	Introductions      []Introduction      `json:"introductions,omitempty"`
	CountryConnections []CountryConnection `json:"countryConnections,omitempty"`
	Tags               []Tag               `json:"tags,omitempty"`
	VisitedCountries   []string            `json:"visitedCountries,omitempty"`
}

// Decode parses and validates a snapshot document. A wrong version or
// a missing contacts array is fatal before any destination write.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, eris.Wrap(err, "snapshot: parse document")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the document-level invariants.
func (s *Snapshot) Validate() error {
	if s.Version != Version {
		return eris.Errorf("snapshot: unsupported version %d (want %d)", s.Version, Version)
	}
	if s.Contacts == nil {
		return eris.New("snapshot: missing contacts array")
	}
	return nil
}

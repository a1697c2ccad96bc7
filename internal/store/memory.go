package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/orbitnotes/orbit-cli/internal/model"
)

// MemoryStore is an in-memory Store for tests and dry runs. Slices
// keep insertion order so first-hit matching behaves the same as the
// ordered listings of the SQL stores.
type MemoryStore struct {
	mu sync.RWMutex

	contacts           []model.Contact
	connections        []model.Connection
	interactions       []model.Interaction
	favors             []model.Favor
	introductions      []model.Introduction
	countryConnections []model.CountryConnection
	tags               []model.Tag
	visited            map[string][]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{visited: make(map[string][]string)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) CreateContact(_ context.Context, c *model.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	s.contacts = append(s.contacts, *c)
	return nil
}

func (s *MemoryStore) GetContact(_ context.Context, id string) (*model.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.contacts {
		if s.contacts[i].ID == id {
			c := s.contacts[i]
			return &c, nil
		}
	}
	return nil, eris.Errorf("store: contact %s not found", id)
}

func (s *MemoryStore) UpdateContact(_ context.Context, c *model.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.contacts {
		if s.contacts[i].ID == c.ID {
			c.CreatedAt = s.contacts[i].CreatedAt
			c.UpdatedAt = time.Now().UTC()
			s.contacts[i] = *c
			return nil
		}
	}
	return eris.Errorf("store: contact %s not found", c.ID)
}

func (s *MemoryStore) DeleteContact(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.contacts {
		if s.contacts[i].ID == id {
			s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)
			return nil
		}
	}
	return eris.Errorf("store: contact %s not found", id)
}

func (s *MemoryStore) ListContacts(_ context.Context, ownerID string) ([]model.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Contact
	for i := range s.contacts {
		if s.contacts[i].OwnerID == ownerID {
			out = append(out, s.contacts[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) EnsureSelfContact(ctx context.Context, ownerID string) (*model.Contact, error) {
	s.mu.Lock()
	for i := range s.contacts {
		if s.contacts[i].OwnerID == ownerID && s.contacts[i].IsSelf {
			c := s.contacts[i]
			s.mu.Unlock()
			return &c, nil
		}
	}
	s.mu.Unlock()

	self := &model.Contact{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Name:    selfContactName,
		IsSelf:  true,
	}
	if err := s.CreateContact(ctx, self); err != nil {
		return nil, err
	}
	return self, nil
}

func (s *MemoryStore) BulkInsertConnections(_ context.Context, rows []model.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections = append(s.connections, rows...)
	return nil
}

func (s *MemoryStore) BulkInsertInteractions(_ context.Context, rows []model.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions = append(s.interactions, rows...)
	return nil
}

func (s *MemoryStore) BulkInsertFavors(_ context.Context, rows []model.Favor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favors = append(s.favors, rows...)
	return nil
}

func (s *MemoryStore) BulkInsertIntroductions(_ context.Context, rows []model.Introduction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.introductions = append(s.introductions, rows...)
	return nil
}

func (s *MemoryStore) BulkInsertCountryConnections(_ context.Context, rows []model.CountryConnection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countryConnections = append(s.countryConnections, rows...)
	return nil
}

func (s *MemoryStore) ListConnections(_ context.Context, ownerID string) ([]model.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Connection
	for i := range s.connections {
		if s.connections[i].OwnerID == ownerID {
			out = append(out, s.connections[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) ListInteractions(_ context.Context, ownerID string) ([]model.Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Interaction
	for i := range s.interactions {
		if s.interactions[i].OwnerID == ownerID {
			out = append(out, s.interactions[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) ListFavors(_ context.Context, ownerID string) ([]model.Favor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Favor
	for i := range s.favors {
		if s.favors[i].OwnerID == ownerID {
			out = append(out, s.favors[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) ListIntroductions(_ context.Context, ownerID string) ([]model.Introduction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Introduction
	for i := range s.introductions {
		if s.introductions[i].OwnerID == ownerID {
			out = append(out, s.introductions[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) ListCountryConnections(_ context.Context, ownerID string) ([]model.CountryConnection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.CountryConnection
	for i := range s.countryConnections {
		if s.countryConnections[i].OwnerID == ownerID {
			out = append(out, s.countryConnections[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) UpsertTag(_ context.Context, tag model.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tags {
		if s.tags[i].OwnerID == tag.OwnerID && s.tags[i].Name == tag.Name {
			s.tags[i] = tag
			return nil
		}
	}
	s.tags = append(s.tags, tag)
	return nil
}

func (s *MemoryStore) ListTags(_ context.Context, ownerID string) ([]model.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Tag
	for i := range s.tags {
		if s.tags[i].OwnerID == ownerID {
			out = append(out, s.tags[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) AddVisitedCountries(_ context.Context, ownerID string, countries []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.visited[ownerID]))
	for _, c := range s.visited[ownerID] {
		seen[c] = true
	}
	for _, c := range countries {
		if !seen[c] {
			s.visited[ownerID] = append(s.visited[ownerID], c)
			seen[c] = true
		}
	}
	return nil
}

func (s *MemoryStore) ListVisitedCountries(_ context.Context, ownerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.visited[ownerID]...), nil
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

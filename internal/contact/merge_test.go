package contact

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orbitnotes/orbit-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// fakeStore records calls for merge flow assertions.
type fakeStore struct {
	contacts  map[string]*model.Contact
	updated   []*model.Contact
	deleted   []string
	updateErr error
	deleteErr error
}

func newFakeStore(cs ...*model.Contact) *fakeStore {
	s := &fakeStore{contacts: make(map[string]*model.Contact)}
	for _, c := range cs {
		s.contacts[c.ID] = c
	}
	return s
}

func (s *fakeStore) GetContact(_ context.Context, id string) (*model.Contact, error) {
	c, ok := s.contacts[id]
	if !ok {
		return nil, eris.Errorf("contact %s not found", id)
	}
	return c, nil
}

func (s *fakeStore) UpdateContact(_ context.Context, c *model.Contact) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = append(s.updated, c)
	return nil
}

func (s *fakeStore) DeleteContact(_ context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func TestResolveFields_GapFill(t *testing.T) {
	m := NewMerger(nil, Policy{})
	winner := &model.Contact{ID: "w", Name: "A"}
	loser := &model.Contact{ID: "l", Name: "A dup", City: "Berlin"}

	resolved := m.ResolveFields(winner, loser, nil)
	assert.Equal(t, "Berlin", resolved.City)
	assert.Equal(t, "A", resolved.Name)
}

func TestResolveFields_WinnerKeepsPopulatedField(t *testing.T) {
	m := NewMerger(nil, Policy{})
	winner := &model.Contact{ID: "w", City: "Paris"}
	loser := &model.Contact{ID: "l", City: "Berlin"}

	resolved := m.ResolveFields(winner, loser, nil)
	assert.Equal(t, "Paris", resolved.City)
}

func TestResolveFields_OverrideTakesLoser(t *testing.T) {
	m := NewMerger(nil, Policy{})
	winner := &model.Contact{ID: "w", City: "Paris"}
	loser := &model.Contact{ID: "l", City: "Berlin"}

	resolved := m.ResolveFields(winner, loser, map[string]string{"city": "l"})
	assert.Equal(t, "Berlin", resolved.City)
}

func TestResolveFields_OverrideNamingWinnerKeepsWinner(t *testing.T) {
	m := NewMerger(nil, Policy{})
	winner := &model.Contact{ID: "w", City: "Paris"}
	loser := &model.Contact{ID: "l", City: "Berlin"}

	resolved := m.ResolveFields(winner, loser, map[string]string{"city": "w"})
	assert.Equal(t, "Paris", resolved.City)
}

func TestResolveFields_GuardedFieldsNeverInherited(t *testing.T) {
	m := NewMerger(nil, Policy{})
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	winner := &model.Contact{ID: "w", OwnerID: "owner-1", CreatedAt: created}
	loser := &model.Contact{ID: "l", OwnerID: "owner-2", Tags: []string{"vip"}}

	// Overrides naming guarded fields have nothing to act on.
	resolved := m.ResolveFields(winner, loser, map[string]string{
		"id": "l", "owner_id": "l", "tags": "l", "created_at": "l",
	})
	assert.Equal(t, "w", resolved.ID)
	assert.Equal(t, "owner-1", resolved.OwnerID)
	assert.Equal(t, created, resolved.CreatedAt)
	assert.Empty(t, resolved.Tags)
}

func TestResolveFields_PointerFields(t *testing.T) {
	m := NewMerger(nil, Policy{})
	bd := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	rating := 4
	winner := &model.Contact{ID: "w"}
	loser := &model.Contact{ID: "l", Birthday: &bd, Rating: &rating}

	resolved := m.ResolveFields(winner, loser, nil)
	require.NotNil(t, resolved.Birthday)
	assert.True(t, resolved.Birthday.Equal(bd))
	require.NotNil(t, resolved.Rating)
	assert.Equal(t, 4, *resolved.Rating)

	// Copies, not shared pointers.
	assert.NotSame(t, loser.Birthday, resolved.Birthday)
	assert.NotSame(t, loser.Rating, resolved.Rating)
}

func TestResolveFields_SocialsGapFill(t *testing.T) {
	m := NewMerger(nil, Policy{})
	winner := &model.Contact{ID: "w"}
	loser := &model.Contact{ID: "l", Socials: map[string]string{"linkedin": "in/jane"}}

	resolved := m.ResolveFields(winner, loser, nil)
	assert.Equal(t, "in/jane", resolved.Socials["linkedin"])

	// Mutating the resolved map must not leak into the loser.
	resolved.Socials["linkedin"] = "in/other"
	assert.Equal(t, "in/jane", loser.Socials["linkedin"])
}

func TestResolveFields_PolicyPin(t *testing.T) {
	m := NewMerger(nil, Policy{PinnedFields: []string{"notes"}})
	winner := &model.Contact{ID: "w"}
	loser := &model.Contact{ID: "l", Notes: "met in Lisbon"}

	resolved := m.ResolveFields(winner, loser, map[string]string{"notes": "l"})
	assert.Empty(t, resolved.Notes)
}

func TestConflicts(t *testing.T) {
	winner := &model.Contact{ID: "w", City: "Paris", Company: "Acme", Email: "j@a.com"}
	loser := &model.Contact{ID: "l", City: "Berlin", Company: "Acme", Phone: "415-555-0100"}

	conflicts := Conflicts(winner, loser)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "city", conflicts[0].Field)
	assert.Equal(t, "Paris", conflicts[0].WinnerValue)
	assert.Equal(t, "Berlin", conflicts[0].LoserValue)
}

func TestConflicts_NoneWhenDisjoint(t *testing.T) {
	winner := &model.Contact{ID: "w", City: "Paris"}
	loser := &model.Contact{ID: "l", Company: "Acme"}
	assert.Empty(t, Conflicts(winner, loser))
}

func TestMerge_UpdatesWinnerThenDeletesLoser(t *testing.T) {
	winner := &model.Contact{ID: "w", OwnerID: "o", Name: "Jane"}
	loser := &model.Contact{ID: "l", OwnerID: "o", Name: "Jane D", City: "Berlin"}
	store := newFakeStore(winner, loser)
	m := NewMerger(store, Policy{})

	resolved, err := m.Merge(context.Background(), "w", "l", nil)
	require.NoError(t, err)
	assert.Equal(t, "Berlin", resolved.City)
	require.Len(t, store.updated, 1)
	assert.Equal(t, []string{"l"}, store.deleted)
}

func TestMerge_UpdateFailureSkipsDelete(t *testing.T) {
	winner := &model.Contact{ID: "w", OwnerID: "o"}
	loser := &model.Contact{ID: "l", OwnerID: "o"}
	store := newFakeStore(winner, loser)
	store.updateErr = eris.New("boom")
	m := NewMerger(store, Policy{})

	_, err := m.Merge(context.Background(), "w", "l", nil)
	require.Error(t, err)
	assert.Empty(t, store.deleted)
}

func TestMerge_SameIDRejected(t *testing.T) {
	m := NewMerger(newFakeStore(), Policy{})
	_, err := m.Merge(context.Background(), "w", "w", nil)
	require.Error(t, err)
}

func TestMerge_CrossOwnerRejected(t *testing.T) {
	winner := &model.Contact{ID: "w", OwnerID: "o1"}
	loser := &model.Contact{ID: "l", OwnerID: "o2"}
	store := newFakeStore(winner, loser)
	m := NewMerger(store, Policy{})

	_, err := m.Merge(context.Background(), "w", "l", nil)
	require.Error(t, err)
	assert.Empty(t, store.updated)
}

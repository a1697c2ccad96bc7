package importer

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orbitnotes/orbit-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func parsed(name, email, phone string) model.ParsedContact {
	return model.ParsedContact{Name: name, Email: email, Phone: phone}
}

func TestDedupBatch_EmailCollision(t *testing.T) {
	kept, dropped := DedupBatch([]model.ParsedContact{
		parsed("Jane Doe", "jane@example.com", ""),
		parsed("J. Doe", "JANE@example.com", ""),
		parsed("Mark Roe", "mark@example.com", ""),
	})
	assert.Equal(t, 1, dropped)
	require.Len(t, kept, 2)
	// First occurrence wins.
	assert.Equal(t, "Jane Doe", kept[0].Name)
}

func TestDedupBatch_PhoneCollision(t *testing.T) {
	kept, dropped := DedupBatch([]model.ParsedContact{
		parsed("Jane", "", "415-555-0100"),
		parsed("Janet", "", "(415) 555-0100"),
	})
	assert.Equal(t, 1, dropped)
	assert.Len(t, kept, 1)
}

func TestDedupBatch_NameOnlyCollision(t *testing.T) {
	kept, dropped := DedupBatch([]model.ParsedContact{
		parsed("Jane Doe", "", ""),
		parsed("  jane   doe ", "", ""),
	})
	assert.Equal(t, 1, dropped)
	assert.Len(t, kept, 1)
}

func TestDedupBatch_NameCheckOnlyWithoutKeys(t *testing.T) {
	// Identical names but distinct emails: the name rule does not apply
	// when an email or phone is present.
	kept, dropped := DedupBatch([]model.ParsedContact{
		parsed("Jane Doe", "jane@a.com", ""),
		parsed("Jane Doe", "jane@b.com", ""),
	})
	assert.Equal(t, 0, dropped)
	assert.Len(t, kept, 2)
}

func TestDedupBatch_Empty(t *testing.T) {
	kept, dropped := DedupBatch(nil)
	assert.Zero(t, dropped)
	assert.Empty(t, kept)
}

func existingCorpus() []model.Contact {
	return []model.Contact{
		{ID: "c1", Name: "Jane Doe", Email: "jane@example.com", Phone: "415-555-0100"},
		{ID: "c2", Name: "Mark Roe", Email: "mark@example.com"},
		{ID: "c3", Name: "Katherine Smith"},
	}
}

func TestMatch_EmailFirst(t *testing.T) {
	m := NewMatcher(existingCorpus())
	hit := m.Match(parsed("Somebody Else", "jane@example.com", ""))
	require.NotNil(t, hit)
	assert.Equal(t, "c1", hit.ID)
}

func TestMatch_PhoneSecond(t *testing.T) {
	m := NewMatcher(existingCorpus())
	hit := m.Match(parsed("Somebody Else", "nobody@example.com", "(415) 555-0100"))
	require.NotNil(t, hit)
	assert.Equal(t, "c1", hit.ID)
}

func TestMatch_NameScanFirstHitWins(t *testing.T) {
	existing := []model.Contact{
		{ID: "c1", Name: "Katharine Smith"},
		{ID: "c2", Name: "Katherine Smith"},
	}
	m := NewMatcher(existing)
	// Both names are within distance 2; the linear scan stops at the
	// first hit, not the closest.
	hit := m.Match(parsed("Katherine Smith", "", ""))
	require.NotNil(t, hit)
	assert.Equal(t, "c1", hit.ID)
}

func TestMatch_NoHit(t *testing.T) {
	m := NewMatcher(existingCorpus())
	assert.Nil(t, m.Match(parsed("Completely New", "new@example.com", "")))
}

func TestClassify(t *testing.T) {
	m := NewMatcher(existingCorpus())
	res := m.Classify([]model.ParsedContact{
		parsed("Jane Doe", "jane@example.com", ""),  // skip: email hit
		parsed("Brand New", "new@example.com", ""),  // create
		parsed("Brand New 2", "NEW@example.com", ""), // dropped intra-batch
	})
	assert.Equal(t, 1, res.Dropped)
	require.Len(t, res.Records, 2)
	assert.Equal(t, ActionSkip, res.Records[0].Action)
	assert.Equal(t, "c1", res.Records[0].MatchedID)
	assert.Equal(t, ActionCreate, res.Records[1].Action)
	assert.Empty(t, res.Records[1].MatchedID)
}

// listCreateStore implements ContactStore for Run tests.
type listCreateStore struct {
	contacts  []model.Contact
	created   []model.Contact
	createErr error
}

func (s *listCreateStore) ListContacts(context.Context, string) ([]model.Contact, error) {
	return s.contacts, nil
}

func (s *listCreateStore) CreateContact(_ context.Context, c *model.Contact) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, *c)
	return nil
}

func TestRun(t *testing.T) {
	store := &listCreateStore{contacts: existingCorpus()}
	summary, created, err := Run(context.Background(), store, "owner-1", []model.ParsedContact{
		parsed("Jane Doe", "jane@example.com", ""),
		parsed("Brand New", "new@example.com", ""),
	})
	require.NoError(t, err)
	assert.Equal(t, Summary{Created: 1, Skipped: 1, Dropped: 0}, summary)
	require.Len(t, created, 1)
	assert.Equal(t, "Brand New", created[0].Name)
	assert.Equal(t, "owner-1", created[0].OwnerID)
	assert.NotEmpty(t, created[0].ID)
}

func TestRun_CreateError(t *testing.T) {
	store := &listCreateStore{createErr: eris.New("db down")}
	_, _, err := Run(context.Background(), store, "owner-1", []model.ParsedContact{
		parsed("Brand New", "new@example.com", ""),
	})
	require.Error(t, err)
}

func TestToContact_Birthday(t *testing.T) {
	c := ToContact("o", model.ParsedContact{Name: "Jane", Birthday: "1990-06-15"})
	require.NotNil(t, c.Birthday)
	assert.Equal(t, 1990, c.Birthday.Year())

	c = ToContact("o", model.ParsedContact{Name: "Jane", Birthday: "June 15"})
	assert.Nil(t, c.Birthday)
}

package contact

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/orbitnotes/orbit-cli/internal/model"
)

// Store is the storage collaborator the merger consumes. It never opens
// a connection itself.
type Store interface {
	GetContact(ctx context.Context, id string) (*model.Contact, error)
	UpdateContact(ctx context.Context, c *model.Contact) error
	DeleteContact(ctx context.Context, id string) error
}

// Conflict is a field present and non-equal on both records, requiring
// an explicit winner choice before the merge call.
type Conflict struct {
	Field       string `json:"field"`
	WinnerValue any    `json:"winner_value"`
	LoserValue  any    `json:"loser_value"`
}

// Conflicts lists every field the caller must collect an override for.
func Conflicts(winner, loser *model.Contact) []Conflict {
	var out []Conflict
	for _, f := range mergeFields {
		if f.empty(winner) || f.empty(loser) || f.equal(winner, loser) {
			continue
		}
		out = append(out, Conflict{
			Field:       f.key,
			WinnerValue: f.value(winner),
			LoserValue:  f.value(loser),
		})
	}
	return out
}

// Merger combines duplicate contacts into a single record.
type Merger struct {
	store  Store
	policy Policy
}

// NewMerger creates a merger. A zero Policy applies no extra pins.
func NewMerger(store Store, policy Policy) *Merger {
	return &Merger{store: store, policy: policy}
}

// ResolveFields computes the merged field set without touching storage.
// Per field: an override naming the loser takes the loser's value; an
// empty winner field is gap-filled from a populated loser field; in
// every other case the winner's value stands. Fields pinned by policy
// always keep the winner's value. Overrides naming excluded fields
// (id, owner, timestamps, tags) have no field to act on and are ignored.
func (m *Merger) ResolveFields(winner, loser *model.Contact, overrides map[string]string) *model.Contact {
	resolved := *winner
	if winner.Socials != nil {
		resolved.Socials = make(map[string]string, len(winner.Socials))
		for k, v := range winner.Socials {
			resolved.Socials[k] = v
		}
	}
	resolved.Tags = append([]string(nil), winner.Tags...)

	for _, f := range mergeFields {
		if m.policy.Pinned(f.key) {
			continue
		}
		if overrides[f.key] == loser.ID {
			f.copy(&resolved, loser)
			continue
		}
		if f.empty(&resolved) && !f.empty(loser) {
			f.copy(&resolved, loser)
		}
	}

	return &resolved
}

// Merge resolves the field set for winnerID against loserID, updates
// the winner, then deletes the loser. The two storage calls are awaited
// sequentially and are not atomic; callers must serialize merges that
// touch overlapping contact ids.
func (m *Merger) Merge(ctx context.Context, winnerID, loserID string, overrides map[string]string) (*model.Contact, error) {
	if winnerID == loserID {
		return nil, eris.New("contact: merge winner and loser are the same record")
	}

	winner, err := m.store.GetContact(ctx, winnerID)
	if err != nil {
		return nil, eris.Wrap(err, "contact: merge load winner")
	}
	loser, err := m.store.GetContact(ctx, loserID)
	if err != nil {
		return nil, eris.Wrap(err, "contact: merge load loser")
	}
	if winner.OwnerID != loser.OwnerID {
		return nil, eris.New("contact: merge records belong to different owners")
	}

	resolved := m.ResolveFields(winner, loser, overrides)

	if err := m.store.UpdateContact(ctx, resolved); err != nil {
		return nil, eris.Wrap(err, "contact: merge update winner")
	}
	if err := m.store.DeleteContact(ctx, loserID); err != nil {
		return nil, eris.Wrap(err, "contact: merge delete loser")
	}

	zap.L().Info("merge complete",
		zap.String("winner_id", winnerID),
		zap.String("loser_id", loserID),
		zap.Int("overrides", len(overrides)),
	)

	return resolved, nil
}

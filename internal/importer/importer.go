package importer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/orbitnotes/orbit-cli/internal/model"
)

// ContactStore is the storage collaborator batch import consumes.
type ContactStore interface {
	ListContacts(ctx context.Context, ownerID string) ([]model.Contact, error)
	CreateContact(ctx context.Context, c *model.Contact) error
}

// Summary reports what a batch import did.
type Summary struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Dropped int `json:"dropped"`
}

// Run imports a parsed batch for one owner: dedups the batch, matches
// survivors against the stored corpus, and creates the records
// classified as new. Returns the created contacts alongside counts.
func Run(ctx context.Context, store ContactStore, ownerID string, batch []model.ParsedContact) (Summary, []model.Contact, error) {
	existing, err := store.ListContacts(ctx, ownerID)
	if err != nil {
		return Summary{}, nil, eris.Wrap(err, "importer: list contacts")
	}

	res := NewMatcher(existing).Classify(batch)

	summary := Summary{Dropped: res.Dropped}
	var created []model.Contact
	for _, rec := range res.Records {
		if rec.Action == ActionSkip {
			summary.Skipped++
			zap.L().Debug("import: skipping duplicate",
				zap.String("name", rec.Record.Name),
				zap.String("matched_id", rec.MatchedID),
			)
			continue
		}

		c := ToContact(ownerID, rec.Record)
		if err := store.CreateContact(ctx, &c); err != nil {
			return summary, created, eris.Wrapf(err, "importer: create contact %s", rec.Record.Name)
		}
		created = append(created, c)
		summary.Created++
	}

	zap.L().Info("import batch complete",
		zap.String("owner_id", ownerID),
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped),
		zap.Int("dropped", summary.Dropped),
	)

	return summary, created, nil
}

// ToContact converts a parsed record into a new contact for the owner.
func ToContact(ownerID string, p model.ParsedContact) model.Contact {
	c := model.Contact{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Name:     p.Name,
		Email:    p.Email,
		Phone:    p.Phone,
		Company:  p.Company,
		Role:     p.Role,
		City:     p.City,
		Country:  p.Country,
		Address:  p.Address,
		Website:  p.Website,
		Notes:    p.Notes,
		Timezone: p.Timezone,
		Gender:   p.Gender,
		Tags:     append([]string(nil), p.Tags...),
	}
	if len(p.Socials) > 0 {
		c.Socials = make(map[string]string, len(p.Socials))
		for k, v := range p.Socials {
			c.Socials[k] = v
		}
	}
	if p.Birthday != "" {
		if bd, err := time.Parse("2006-01-02", p.Birthday); err == nil {
			c.Birthday = &bd
		} else {
			zap.L().Warn("import: unparseable birthday",
				zap.String("name", p.Name),
				zap.String("birthday", p.Birthday),
			)
		}
	}
	return c
}

// Package contact implements merging of duplicate contact records with
// field-level conflict resolution.
package contact

import (
	"maps"

	"github.com/orbitnotes/orbit-cli/internal/model"
)

// fieldDef describes one mergeable contact field. Identity and audit
// fields (id, owner, timestamps) and tags are deliberately absent from
// the table, so they can never be taken from a merge loser regardless
// of caller-supplied overrides.
type fieldDef struct {
	key   string
	value func(*model.Contact) any
	empty func(*model.Contact) bool
	equal func(a, b *model.Contact) bool
	copy  func(dst, src *model.Contact)
}

func stringField(key string, f func(*model.Contact) *string) fieldDef {
	return fieldDef{
		key:   key,
		value: func(c *model.Contact) any { return *f(c) },
		empty: func(c *model.Contact) bool { return *f(c) == "" },
		equal: func(a, b *model.Contact) bool { return *f(a) == *f(b) },
		copy:  func(dst, src *model.Contact) { *f(dst) = *f(src) },
	}
}

// mergeFields is the full set of fields the merge resolver may touch.
var mergeFields = []fieldDef{
	stringField("email", func(c *model.Contact) *string { return &c.Email }),
	stringField("phone", func(c *model.Contact) *string { return &c.Phone }),
	stringField("company", func(c *model.Contact) *string { return &c.Company }),
	stringField("role", func(c *model.Contact) *string { return &c.Role }),
	stringField("city", func(c *model.Contact) *string { return &c.City }),
	stringField("country", func(c *model.Contact) *string { return &c.Country }),
	stringField("address", func(c *model.Contact) *string { return &c.Address }),
	stringField("website", func(c *model.Contact) *string { return &c.Website }),
	stringField("notes", func(c *model.Contact) *string { return &c.Notes }),
	stringField("timezone", func(c *model.Contact) *string { return &c.Timezone }),
	stringField("gender", func(c *model.Contact) *string { return &c.Gender }),
	{
		key:   "birthday",
		value: func(c *model.Contact) any { return c.Birthday },
		empty: func(c *model.Contact) bool { return c.Birthday == nil },
		equal: func(a, b *model.Contact) bool {
			if a.Birthday == nil || b.Birthday == nil {
				return a.Birthday == b.Birthday
			}
			return a.Birthday.Equal(*b.Birthday)
		},
		copy: func(dst, src *model.Contact) {
			if src.Birthday == nil {
				dst.Birthday = nil
				return
			}
			bd := *src.Birthday
			dst.Birthday = &bd
		},
	},
	{
		key:   "rating",
		value: func(c *model.Contact) any { return c.Rating },
		empty: func(c *model.Contact) bool { return c.Rating == nil },
		equal: func(a, b *model.Contact) bool {
			if a.Rating == nil || b.Rating == nil {
				return a.Rating == b.Rating
			}
			return *a.Rating == *b.Rating
		},
		copy: func(dst, src *model.Contact) {
			if src.Rating == nil {
				dst.Rating = nil
				return
			}
			r := *src.Rating
			dst.Rating = &r
		},
	},
	{
		key:   "socials",
		value: func(c *model.Contact) any { return c.Socials },
		empty: func(c *model.Contact) bool { return len(c.Socials) == 0 },
		equal: func(a, b *model.Contact) bool { return maps.Equal(a.Socials, b.Socials) },
		copy:  func(dst, src *model.Contact) { dst.Socials = maps.Clone(src.Socials) },
	},
}

package model

// ParsedContact is the normalized shape every format-specific parser
// (CSV, vCard, provider JSON) produces. Parsers live behind the Parser
// interface; this package only defines the contract.
type ParsedContact struct {
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
}

// Parser converts raw bytes in some external format into parsed contacts.
// Concrete implementations (CSV dialects, vCard folding, provider shapes)
// are supplied by the caller.
type Parser interface {
	Parse(data []byte) ([]ParsedContact, error)
}

package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Valid(t *testing.T) {
	s, err := Decode([]byte(`{"version":1,"contacts":[{"ref":"c1","name":"Jane"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Version)
	require.Len(t, s.Contacts, 1)
	assert.Equal(t, "c1", s.Contacts[0].Ref)
}

func TestDecode_EmptyContactsAllowed(t *testing.T) {
	s, err := Decode([]byte(`{"version":1,"contacts":[]}`))
	require.NoError(t, err)
	assert.Empty(t, s.Contacts)
}

func TestDecode_WrongVersion(t *testing.T) {
	_, err := Decode([]byte(`{"version":2,"contacts":[]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported version")
}

func TestDecode_MissingVersion(t *testing.T) {
	_, err := Decode([]byte(`{"contacts":[]}`))
	require.Error(t, err)
}

func TestDecode_MissingContacts(t *testing.T) {
	_, err := Decode([]byte(`{"version":1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing contacts")
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte(`{"version":`))
	require.Error(t, err)
}

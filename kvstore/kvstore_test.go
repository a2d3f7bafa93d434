package kvstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOwnerEntryRoundTrip(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetOwner("ch1")
	assert.ErrorIs(t, err, ErrNotFound)

	want := &OwnerEntry{OwnerID: "user1", GuildID: "guild1"}
	require.NoError(t, s.SetOwner("ch1", want))

	got, err := s.GetOwner("ch1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, s.DeleteOwner("ch1"))
	_, err = s.GetOwner("ch1")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting a missing key is fine
	require.NoError(t, s.DeleteOwner("ch1"))
}

func TestPrefixRoundTrip(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetPrefix("guild1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetPrefix("guild1", ";"))
	prefix, err := s.GetPrefix("guild1")
	require.NoError(t, err)
	assert.Equal(t, ";", prefix)

	require.NoError(t, s.DeletePrefix("guild1"))
	_, err = s.GetPrefix("guild1")
	assert.ErrorIs(t, err, ErrNotFound)
}

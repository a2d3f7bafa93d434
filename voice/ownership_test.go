package voice

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/intrntsrfr/voicemaster/database"
	"github.com/intrntsrfr/voicemaster/kvstore"
)

func TestResolveAfterRecord(t *testing.T) {
	db := database.NewMemDatabase()
	cache := newFakeCache()
	o := NewOwnership(db, cache, zap.NewNop())

	require.NoError(t, o.Record(&database.TempChannel{ChannelID: "ch1", GuildID: "g1", OwnerID: "u1"}))

	owner, err := o.Resolve("ch1", "g1")
	require.NoError(t, err)
	assert.Equal(t, "u1", owner)

	// cache loss must not matter
	require.NoError(t, cache.DeleteOwner("ch1"))
	owner, err = o.Resolve("ch1", "g1")
	require.NoError(t, err)
	assert.Equal(t, "u1", owner)

	// and the miss repopulated the cache
	e, err := cache.GetOwner("ch1")
	require.NoError(t, err)
	assert.Equal(t, &kvstore.OwnerEntry{OwnerID: "u1", GuildID: "g1"}, e)
}

func TestResolveGuildMismatchFallsThrough(t *testing.T) {
	db := database.NewMemDatabase()
	cache := newFakeCache()
	o := NewOwnership(db, cache, zap.NewNop())

	require.NoError(t, db.CreateTempChannel(&database.TempChannel{ChannelID: "ch1", GuildID: "g1", OwnerID: "u1"}))
	require.NoError(t, cache.SetOwner("ch1", &kvstore.OwnerEntry{OwnerID: "intruder", GuildID: "other"}))

	owner, err := o.Resolve("ch1", "g1")
	require.NoError(t, err)
	assert.Equal(t, "u1", owner)

	e, err := cache.GetOwner("ch1")
	require.NoError(t, err)
	assert.Equal(t, "u1", e.OwnerID)
}

func TestResolveUnknownChannel(t *testing.T) {
	o := NewOwnership(database.NewMemDatabase(), newFakeCache(), zap.NewNop())
	_, err := o.Resolve("nope", "g1")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestAssert(t *testing.T) {
	db := database.NewMemDatabase()
	o := NewOwnership(db, newFakeCache(), zap.NewNop())
	require.NoError(t, o.Record(&database.TempChannel{ChannelID: "ch1", GuildID: "g1", OwnerID: "u1"}))

	assert.True(t, o.Assert("u1", "ch1", "g1"))
	assert.False(t, o.Assert("u2", "ch1", "g1"))
	assert.False(t, o.Assert("u1", "ch1", "g2"))
	assert.False(t, o.Assert("u1", "ch2", "g1"))
}

type failingDB struct {
	*database.MemDB
}

func (f *failingDB) SetTempChannelOwner(cid, uid string) error {
	return fmt.Errorf("connection refused")
}

func TestSetOwnerDurableStoreFirst(t *testing.T) {
	db := &failingDB{MemDB: database.NewMemDatabase()}
	cache := newFakeCache()
	o := NewOwnership(db, cache, zap.NewNop())

	require.NoError(t, o.Record(&database.TempChannel{ChannelID: "ch1", GuildID: "g1", OwnerID: "u1"}))
	require.Error(t, o.SetOwner("ch1", "u2", "g1"))

	// the cache must not advertise the uncommitted owner
	e, err := cache.GetOwner("ch1")
	require.NoError(t, err)
	assert.Equal(t, "u1", e.OwnerID)
}

func TestClear(t *testing.T) {
	db := database.NewMemDatabase()
	cache := newFakeCache()
	o := NewOwnership(db, cache, zap.NewNop())

	require.NoError(t, o.Record(&database.TempChannel{ChannelID: "ch1", GuildID: "g1", OwnerID: "u1"}))
	require.NoError(t, o.Clear("ch1"))

	_, err := o.Resolve("ch1", "g1")
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = cache.GetOwner("ch1")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

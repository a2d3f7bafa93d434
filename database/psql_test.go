package database

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// newTestDB runs the real queries against an in-memory sqlite pool. The
// statements stick to the dialect both drivers share.
func newTestDB(t *testing.T) *PsqlDB {
	t.Helper()

	pool, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	for _, schema := range Schemas {
		_, err := pool.Exec(schema)
		require.NoError(t, err)
	}

	return &PsqlDB{pool: pool, log: zap.NewNop()}
}

func TestVoiceConfigRoundTrip(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetVoiceConfig("guild1")
	assert.ErrorIs(t, err, ErrNotFound)

	vc := &VoiceConfig{
		GuildID:            "guild1",
		CategoryID:         "cat1",
		GeneratorChannelID: "gen1",
	}
	require.NoError(t, db.CreateVoiceConfig(vc))

	got, err := db.GetVoiceConfig("guild1")
	require.NoError(t, err)
	assert.Equal(t, vc, got)

	require.NoError(t, db.SetVoiceInterface("guild1", "ch1", "msg1"))
	got, err = db.GetVoiceConfig("guild1")
	require.NoError(t, err)
	assert.Equal(t, "ch1", got.InterfaceChannelID)
	assert.Equal(t, "msg1", got.InterfaceMessageID)

	require.NoError(t, db.DeleteVoiceConfig("guild1"))
	_, err = db.GetVoiceConfig("guild1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTempChannelLifecycle(t *testing.T) {
	db := newTestDB(t)

	tc := &TempChannel{ChannelID: "ch1", GuildID: "guild1", OwnerID: "user1", CreatedAt: 1700000000}
	require.NoError(t, db.CreateTempChannel(tc))
	require.NoError(t, db.CreateTempChannel(&TempChannel{ChannelID: "ch2", GuildID: "guild1", OwnerID: "user2"}))
	require.NoError(t, db.CreateTempChannel(&TempChannel{ChannelID: "ch3", GuildID: "guild2", OwnerID: "user3"}))

	got, err := db.GetTempChannel("ch1")
	require.NoError(t, err)
	assert.Equal(t, tc, got)

	n, err := db.CountTempChannels()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, db.SetTempChannelOwner("ch1", "user9"))
	got, err = db.GetTempChannel("ch1")
	require.NoError(t, err)
	assert.Equal(t, "user9", got.OwnerID)

	tcs, err := db.GetTempChannelsByGuild("guild1")
	require.NoError(t, err)
	assert.Len(t, tcs, 2)

	require.NoError(t, db.DeleteTempChannel("ch1"))
	_, err = db.GetTempChannel("ch1")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting again is a no-op
	require.NoError(t, db.DeleteTempChannel("ch1"))

	require.NoError(t, db.DeleteTempChannelsByGuild("guild1"))
	n, err = db.CountTempChannels()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPrefixUpsert(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetPrefix("guild1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.SetPrefix("guild1", ";"))
	prefix, err := db.GetPrefix("guild1")
	require.NoError(t, err)
	assert.Equal(t, ";", prefix)

	require.NoError(t, db.SetPrefix("guild1", "!"))
	prefix, err = db.GetPrefix("guild1")
	require.NoError(t, err)
	assert.Equal(t, "!", prefix)
}

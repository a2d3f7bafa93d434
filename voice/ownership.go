package voice

import (
	"go.uber.org/zap"

	"github.com/intrntsrfr/voicemaster/database"
	"github.com/intrntsrfr/voicemaster/kvstore"
)

// Ownership tracks which member administers which temporary channel. The
// temp_channels table is the source of truth; the cache only accelerates
// reads and is safe to drop at any time.
type Ownership struct {
	db    database.DB
	cache Cache
	log   *zap.Logger
}

func NewOwnership(db database.DB, cache Cache, log *zap.Logger) *Ownership {
	return &Ownership{
		db:    db,
		cache: cache,
		log:   log,
	}
}

// Resolve returns the recorded owner of a temporary channel. A cache entry
// whose guild id disagrees with the request counts as a miss and the
// durable store wins. Returns database.ErrNotFound for unrecognized
// channels.
func (o *Ownership) Resolve(cid, gid string) (string, error) {
	if e, err := o.cache.GetOwner(cid); err == nil && e.GuildID == gid {
		return e.OwnerID, nil
	}

	tc, err := o.db.GetTempChannel(cid)
	if err != nil {
		return "", err
	}
	if tc.GuildID != gid {
		return "", database.ErrNotFound
	}

	if err := o.cache.SetOwner(cid, &kvstore.OwnerEntry{OwnerID: tc.OwnerID, GuildID: tc.GuildID}); err != nil {
		o.log.Warn("failed to refresh owner cache", zap.String("channel", cid), zap.Error(err))
	}
	return tc.OwnerID, nil
}

// Assert is the single authorization gate for owner-only operations.
func (o *Ownership) Assert(uid, cid, gid string) bool {
	owner, err := o.Resolve(cid, gid)
	return err == nil && owner == uid
}

// Record persists a newly provisioned channel. The durable write lands
// before the cache so ownership is never advertised uncommitted.
func (o *Ownership) Record(tc *database.TempChannel) error {
	if err := o.db.CreateTempChannel(tc); err != nil {
		return err
	}
	if err := o.cache.SetOwner(tc.ChannelID, &kvstore.OwnerEntry{OwnerID: tc.OwnerID, GuildID: tc.GuildID}); err != nil {
		o.log.Warn("failed to populate owner cache", zap.String("channel", tc.ChannelID), zap.Error(err))
	}
	return nil
}

// SetOwner reassigns ownership of a live channel, durable store first.
func (o *Ownership) SetOwner(cid, uid, gid string) error {
	if err := o.db.SetTempChannelOwner(cid, uid); err != nil {
		return err
	}
	if err := o.cache.SetOwner(cid, &kvstore.OwnerEntry{OwnerID: uid, GuildID: gid}); err != nil {
		o.log.Warn("failed to update owner cache", zap.String("channel", cid), zap.Error(err))
	}
	return nil
}

// Clear removes the record and cache entry of a dead channel.
func (o *Ownership) Clear(cid string) error {
	if err := o.db.DeleteTempChannel(cid); err != nil {
		return err
	}
	if err := o.cache.DeleteOwner(cid); err != nil {
		o.log.Warn("failed to invalidate owner cache", zap.String("channel", cid), zap.Error(err))
	}
	return nil
}

package voice

import (
	"github.com/bwmarrin/discordgo"

	"github.com/intrntsrfr/voicemaster/kvstore"
)

// Platform is the slice of the chat platform this package needs. It is
// implemented by discord.Discord and faked in tests. Every call may fail
// with a transient or permission error; nothing here is retried.
type Platform interface {
	CreateVoiceChannel(gid, name, parentID string) (*discordgo.Channel, error)
	CreateCategory(gid, name string) (*discordgo.Channel, error)
	DeleteChannel(cid string) error
	EditChannel(cid string, edit *discordgo.ChannelEdit) error
	SetUserLimit(cid string, limit int) error
	SetPermission(cid, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64) error
	MoveMember(gid, uid, cid string) error

	Channel(cid string) (*discordgo.Channel, error)
	Member(gid, uid string) (*discordgo.Member, error)
	VoiceChannelID(gid, uid string) string
	ChannelOccupants(gid, cid string) []string
}

// Cache is the ephemeral owner-entry view in front of the durable store.
// Implemented by kvstore.Store. Misses and lost entries are always fine.
type Cache interface {
	SetOwner(cid string, e *kvstore.OwnerEntry) error
	GetOwner(cid string) (*kvstore.OwnerEntry, error)
	DeleteOwner(cid string) error
}

package database

import (
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("database: not found")

type DB interface {
	GetConn() *sqlx.DB
	Close() error

	CreateVoiceConfig(vc *VoiceConfig) error
	GetVoiceConfig(gid string) (*VoiceConfig, error)
	SetVoiceInterface(gid, chID, msgID string) error
	DeleteVoiceConfig(gid string) error

	CreateTempChannel(tc *TempChannel) error
	GetTempChannel(cid string) (*TempChannel, error)
	GetTempChannelsByGuild(gid string) ([]*TempChannel, error)
	SetTempChannelOwner(cid, uid string) error
	DeleteTempChannel(cid string) error
	DeleteTempChannelsByGuild(gid string) error
	CountTempChannels() (int, error)

	GetPrefix(gid string) (string, error)
	SetPrefix(gid, prefix string) error
}

type Config struct {
	Log     *zap.Logger
	ConnStr string
}

// VoiceConfig holds the per-guild setup. One row per guild; absence means
// the feature is disabled there.
type VoiceConfig struct {
	GuildID            string `json:"guild_id" db:"guild_id"`
	CategoryID         string `json:"category_id" db:"category_id"`
	GeneratorChannelID string `json:"generator_channel_id" db:"generator_channel_id"`
	InterfaceChannelID string `json:"interface_channel_id" db:"interface_channel_id"`
	InterfaceMessageID string `json:"interface_message_id" db:"interface_message_id"`
}

// TempChannel is one live provisioned voice channel. The row exists exactly
// as long as the backing channel does.
type TempChannel struct {
	ChannelID string `json:"channel_id" db:"channel_id"`
	GuildID   string `json:"guild_id" db:"guild_id"`
	OwnerID   string `json:"owner_id" db:"owner_id"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}

const schemaVoiceConfigs = `
CREATE TABLE IF NOT EXISTS voice_configs (
	guild_id             TEXT PRIMARY KEY,
	category_id          TEXT NOT NULL,
	generator_channel_id TEXT NOT NULL,
	interface_channel_id TEXT NOT NULL DEFAULT '',
	interface_message_id TEXT NOT NULL DEFAULT ''
);
`

const schemaTempChannels = `
CREATE TABLE IF NOT EXISTS temp_channels (
	channel_id TEXT PRIMARY KEY,
	guild_id   TEXT NOT NULL,
	owner_id   TEXT NOT NULL,
	created_at BIGINT NOT NULL
);
`

const schemaGuildPrefixes = `
CREATE TABLE IF NOT EXISTS guild_prefixes (
	guild_id TEXT PRIMARY KEY,
	prefix   TEXT NOT NULL
);
`

// Schemas lists every table this bot needs, in creation order.
var Schemas = []string{schemaVoiceConfigs, schemaTempChannels, schemaGuildPrefixes}

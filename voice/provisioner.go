package voice

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/intrntsrfr/voicemaster/database"
)

// Permissions granted to the owner on their channel.
const ownerAllow int64 = discordgo.PermissionVoiceConnect |
	discordgo.PermissionManageChannels |
	discordgo.PermissionManageRoles |
	discordgo.PermissionVoiceMuteMembers |
	discordgo.PermissionVoiceDeafenMembers |
	discordgo.PermissionVoiceMoveMembers

// Provisioner reacts to voice presence changes: a join on the configured
// generator channel creates a temporary channel, and the last leave from a
// temporary channel deletes it. Provisioning is best-effort; failures are
// logged and never surfaced to the member.
type Provisioner struct {
	db     database.DB
	owners *Ownership
	disc   Platform
	log    *zap.Logger
}

func NewProvisioner(db database.DB, owners *Ownership, disc Platform, log *zap.Logger) *Provisioner {
	return &Provisioner{
		db:     db,
		owners: owners,
		disc:   disc,
		log:    log,
	}
}

// HandleVoiceState evaluates both transitions of one presence change. A
// single event can carry a join and a leave; they are independent.
func (p *Provisioner) HandleVoiceState(evt *discordgo.VoiceStateUpdate) {
	joined := evt.ChannelID
	left := ""
	if evt.BeforeUpdate != nil {
		left = evt.BeforeUpdate.ChannelID
	}
	if joined == left {
		// mute/deafen toggle, nothing moved
		return
	}

	if joined != "" {
		p.handleJoin(evt.GuildID, evt.UserID, joined)
	}
	if left != "" {
		p.handleLeave(evt.GuildID, left)
	}
}

func (p *Provisioner) handleJoin(gid, uid, cid string) {
	cfg, err := p.db.GetVoiceConfig(gid)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			p.log.Error("failed to get voice config", zap.String("guild", gid), zap.Error(err))
		}
		return
	}
	if cid != cfg.GeneratorChannelID {
		return
	}
	if _, err := p.disc.Channel(cfg.CategoryID); err != nil {
		p.log.Warn("configured category is gone", zap.String("guild", gid), zap.String("category", cfg.CategoryID))
		return
	}

	name := "voice channel"
	if mem, err := p.disc.Member(gid, uid); err == nil {
		name = ChannelName(mem)
	}

	ch, err := p.disc.CreateVoiceChannel(gid, name, cfg.CategoryID)
	if err != nil {
		p.log.Error("failed to create temp channel", zap.String("guild", gid), zap.Error(err))
		return
	}

	// abandoning mid-way must not leave a record behind, and the channel
	// itself is useless without its owner inside
	abandon := func(msg string, err error) {
		p.log.Error(msg, zap.String("guild", gid), zap.String("channel", ch.ID), zap.Error(err))
		if derr := p.disc.DeleteChannel(ch.ID); derr != nil {
			p.log.Warn("failed to clean up abandoned channel", zap.String("channel", ch.ID), zap.Error(derr))
		}
	}

	if err := p.disc.SetPermission(ch.ID, uid, discordgo.PermissionOverwriteTypeMember, ownerAllow, 0); err != nil {
		abandon("failed to set owner permissions", err)
		return
	}
	if err := p.disc.MoveMember(gid, uid, ch.ID); err != nil {
		abandon("failed to move member into temp channel", err)
		return
	}
	if err := p.owners.Record(&database.TempChannel{
		ChannelID: ch.ID,
		GuildID:   gid,
		OwnerID:   uid,
		CreatedAt: time.Now().Unix(),
	}); err != nil {
		abandon("failed to record temp channel", err)
		return
	}

	p.log.Info("provisioned temp channel",
		zap.String("guild", gid), zap.String("channel", ch.ID), zap.String("owner", uid))
}

// handleLeave deletes a temporary channel once it empties out. Idempotent:
// a second leave event for an already-cleaned channel is a no-op.
func (p *Provisioner) handleLeave(gid, cid string) {
	if len(p.disc.ChannelOccupants(gid, cid)) > 0 {
		return
	}
	if _, err := p.db.GetTempChannel(cid); err != nil {
		return
	}

	if err := p.disc.DeleteChannel(cid); err != nil {
		p.log.Warn("failed to delete temp channel", zap.String("channel", cid), zap.Error(err))
	}
	if err := p.owners.Clear(cid); err != nil {
		p.log.Error("failed to clear temp channel record", zap.String("channel", cid), zap.Error(err))
		return
	}

	p.log.Info("cleaned up temp channel", zap.String("guild", gid), zap.String("channel", cid))
}

// ChannelName derives the deterministic channel name for a member.
func ChannelName(m *discordgo.Member) string {
	return fmt.Sprintf("%v's channel", displayName(m))
}

func displayName(m *discordgo.Member) string {
	if m == nil {
		return "someone"
	}
	if m.Nick != "" {
		return m.Nick
	}
	if m.User != nil {
		if m.User.GlobalName != "" {
			return m.User.GlobalName
		}
		return m.User.Username
	}
	return "someone"
}

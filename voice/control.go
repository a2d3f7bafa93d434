package voice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/intrntsrfr/voicemaster/database"
)

const (
	MaxNameLength = 100
	MaxUserLimit  = 99
	MinBitrate    = 8
	MaxBitrate    = 96

	defaultCategoryName  = "VoiceMaster"
	defaultGeneratorName = "➕ New Channel"
)

const accessBits int64 = discordgo.PermissionVoiceConnect | discordgo.PermissionViewChannel

// Controller implements the owner-gated control surface plus the admin
// lifecycle (setup/disable/interface). Both the text commands and the panel
// funnel into these methods, so the authorization check lives here once.
type Controller struct {
	db     database.DB
	owners *Ownership
	disc   Platform
	log    *zap.Logger
}

func NewController(db database.DB, owners *Ownership, disc Platform, log *zap.Logger) *Controller {
	return &Controller{
		db:     db,
		owners: owners,
		disc:   disc,
		log:    log,
	}
}

// OwnedChannel resolves the channel the member currently occupies and owns.
// Ownership.Assert decides; the extra resolve on refusal only picks the
// message the invoker sees.
func (c *Controller) OwnedChannel(gid, uid string) (string, error) {
	cid := c.disc.VoiceChannelID(gid, uid)
	if cid == "" {
		return "", ErrNotInVoice
	}
	if c.owners.Assert(uid, cid, gid) {
		return cid, nil
	}

	_, err := c.owners.Resolve(cid, gid)
	if errors.Is(err, database.ErrNotFound) {
		return "", ErrNotTempChannel
	}
	if err != nil {
		return "", err
	}
	return "", ErrNotOwner
}

func (c *Controller) Lock(gid, uid string) (string, error) {
	cid, err := c.OwnedChannel(gid, uid)
	if err != nil {
		return "", err
	}
	if err := c.editRoleOverwrite(cid, gid, 0, discordgo.PermissionVoiceConnect); err != nil {
		return "", fmt.Errorf("failed to lock channel: %w", err)
	}
	return "Channel locked. Nobody else can join.", nil
}

func (c *Controller) Unlock(gid, uid string) (string, error) {
	cid, err := c.OwnedChannel(gid, uid)
	if err != nil {
		return "", err
	}
	if err := c.editRoleOverwrite(cid, gid, discordgo.PermissionVoiceConnect, 0); err != nil {
		return "", fmt.Errorf("failed to unlock channel: %w", err)
	}
	return "Channel unlocked. Everyone can join.", nil
}

func (c *Controller) Hide(gid, uid string) (string, error) {
	cid, err := c.OwnedChannel(gid, uid)
	if err != nil {
		return "", err
	}
	if err := c.editRoleOverwrite(cid, gid, 0, discordgo.PermissionViewChannel); err != nil {
		return "", fmt.Errorf("failed to hide channel: %w", err)
	}
	return "Channel hidden. It is invisible to others.", nil
}

func (c *Controller) Show(gid, uid string) (string, error) {
	cid, err := c.OwnedChannel(gid, uid)
	if err != nil {
		return "", err
	}
	if err := c.editRoleOverwrite(cid, gid, discordgo.PermissionViewChannel, 0); err != nil {
		return "", fmt.Errorf("failed to show channel: %w", err)
	}
	return "Channel visible. Everyone can see it.", nil
}

func (c *Controller) Rename(gid, uid, name string) (string, error) {
	cid, err := c.OwnedChannel(gid, uid)
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", Validationf("give the channel a name")
	}
	if len(name) > MaxNameLength {
		return "", Validationf("the name can be at most %v characters", MaxNameLength)
	}
	if err := c.disc.EditChannel(cid, &discordgo.ChannelEdit{Name: name}); err != nil {
		return "", fmt.Errorf("failed to rename channel: %w", err)
	}
	return fmt.Sprintf("Channel renamed to **%v**", name), nil
}

func (c *Controller) Limit(gid, uid string, limit int) (string, error) {
	cid, err := c.OwnedChannel(gid, uid)
	if err != nil {
		return "", err
	}
	if limit < 0 || limit > MaxUserLimit {
		return "", Validationf("the limit must be between 0 and %v", MaxUserLimit)
	}
	if err := c.disc.SetUserLimit(cid, limit); err != nil {
		return "", fmt.Errorf("failed to set limit: %w", err)
	}
	if limit == 0 {
		return "User limit removed.", nil
	}
	return fmt.Sprintf("User limit set to **%v**", limit), nil
}

// LimitDelta nudges the user limit by one in either direction, for the
// panel's +/- buttons.
func (c *Controller) LimitDelta(gid, uid string, delta int) (string, error) {
	cid, err := c.OwnedChannel(gid, uid)
	if err != nil {
		return "", err
	}

	ch, err := c.disc.Channel(cid)
	if err != nil {
		return "", fmt.Errorf("failed to read channel: %w", err)
	}

	cur := ch.UserLimit
	if delta > 0 && cur >= MaxUserLimit {
		return "", Validationf("maximum reached, the limit is already %v", MaxUserLimit)
	}
	if delta < 0 && cur <= 0 {
		return "", Validationf("the channel has no limit to lower")
	}

	next := cur + delta
	if next < 0 {
		next = 0
	}
	if next > MaxUserLimit {
		next = MaxUserLimit
	}
	if err := c.disc.SetUserLimit(cid, next); err != nil {
		return "", fmt.Errorf("failed to set limit: %w", err)
	}
	if next == 0 {
		return "User limit removed.", nil
	}
	return fmt.Sprintf("User limit set to **%v**", next), nil
}

func (c *Controller) Bitrate(gid, uid string, kbps int) (string, error) {
	cid, err := c.OwnedChannel(gid, uid)
	if err != nil {
		return "", err
	}
	if kbps < MinBitrate || kbps > MaxBitrate {
		return "", Validationf("the bitrate must be between %v and %v kbps", MinBitrate, MaxBitrate)
	}
	if err := c.disc.EditChannel(cid, &discordgo.ChannelEdit{Bitrate: kbps * 1000}); err != nil {
		return "", fmt.Errorf("failed to set bitrate: %w", err)
	}
	return fmt.Sprintf("Bitrate set to **%vkbps**", kbps), nil
}

func (c *Controller) Permit(gid, uid, targetRef string) (string, error) {
	cid, err := c.OwnedChannel(gid, uid)
	if err != nil {
		return "", err
	}
	target, err := c.resolveMember(gid, targetRef)
	if err != nil {
		return "", err
	}
	if err := c.editMemberOverwrite(cid, target.User.ID, accessBits, 0); err != nil {
		return "", fmt.Errorf("failed to permit member: %w", err)
	}
	return fmt.Sprintf("**%v** can now join the channel", displayName(target)), nil
}

// Reject revokes a member's access and kicks them out if they are inside.
func (c *Controller) Reject(gid, uid, targetRef string) (string, error) {
	cid, err := c.OwnedChannel(gid, uid)
	if err != nil {
		return "", err
	}
	target, err := c.resolveMember(gid, targetRef)
	if err != nil {
		return "", err
	}
	if target.User.ID == uid {
		return "", Validationf("you cannot reject yourself")
	}
	if err := c.editMemberOverwrite(cid, target.User.ID, 0, accessBits); err != nil {
		return "", fmt.Errorf("failed to reject member: %w", err)
	}
	if contains(c.disc.ChannelOccupants(gid, cid), target.User.ID) {
		if err := c.disc.MoveMember(gid, target.User.ID, ""); err != nil {
			return "", fmt.Errorf("failed to disconnect member: %w", err)
		}
	}
	return fmt.Sprintf("**%v** can no longer join the channel", displayName(target)), nil
}

func (c *Controller) Disconnect(gid, uid, targetRef string) (string, error) {
	cid, err := c.OwnedChannel(gid, uid)
	if err != nil {
		return "", err
	}
	target, err := c.resolveMember(gid, targetRef)
	if err != nil {
		return "", err
	}
	if target.User.ID == uid {
		return "", Validationf("you cannot disconnect yourself")
	}
	if !contains(c.disc.ChannelOccupants(gid, cid), target.User.ID) {
		return "", Validationf("that member is not in your channel")
	}
	if err := c.disc.MoveMember(gid, target.User.ID, ""); err != nil {
		return "", fmt.Errorf("failed to disconnect member: %w", err)
	}
	return fmt.Sprintf("**%v** disconnected", displayName(target)), nil
}

func (c *Controller) Transfer(gid, uid, targetRef string) (string, error) {
	cid, err := c.OwnedChannel(gid, uid)
	if err != nil {
		return "", err
	}
	target, err := c.resolveMember(gid, targetRef)
	if err != nil {
		return "", err
	}
	if target.User.ID == uid {
		return "", Validationf("you already own this channel")
	}
	if !contains(c.disc.ChannelOccupants(gid, cid), target.User.ID) {
		return "", Validationf("that member is not in your channel")
	}

	if err := c.owners.SetOwner(cid, target.User.ID, gid); err != nil {
		return "", fmt.Errorf("failed to transfer ownership: %w", err)
	}
	c.renameForOwner(cid, target)
	return fmt.Sprintf("**%v** now owns this channel", displayName(target)), nil
}

// Claim hands an abandoned channel to a present member. Allowed only while
// the recorded owner is out of the channel.
func (c *Controller) Claim(gid, uid string) (string, error) {
	cid := c.disc.VoiceChannelID(gid, uid)
	if cid == "" {
		return "", ErrNotInVoice
	}

	owner, err := c.owners.Resolve(cid, gid)
	if errors.Is(err, database.ErrNotFound) {
		return "", ErrNotTempChannel
	}
	if err != nil {
		return "", err
	}
	if owner == uid {
		return "You already own this channel.", nil
	}
	if contains(c.disc.ChannelOccupants(gid, cid), owner) {
		return "", ErrOwnerPresent
	}

	if err := c.owners.SetOwner(cid, uid, gid); err != nil {
		return "", fmt.Errorf("failed to claim channel: %w", err)
	}
	if mem, err := c.disc.Member(gid, uid); err == nil {
		c.renameForOwner(cid, mem)
	}
	return "You are now the owner of this channel.", nil
}

// ChannelInfo is the read-only report for the info operation.
type ChannelInfo struct {
	Name      string
	OwnerID   string
	Occupants int
	UserLimit int
	Bitrate   int
	Locked    bool
	Hidden    bool
	CreatedAt int64
}

// Info works for any occupant of a recognized temporary channel, not just
// its owner.
func (c *Controller) Info(gid, uid string) (*ChannelInfo, error) {
	cid := c.disc.VoiceChannelID(gid, uid)
	if cid == "" {
		return nil, ErrNotInVoice
	}
	tc, err := c.db.GetTempChannel(cid)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotTempChannel
	}
	if err != nil {
		return nil, err
	}
	ch, err := c.disc.Channel(cid)
	if err != nil {
		return nil, fmt.Errorf("failed to read channel: %w", err)
	}

	_, deny := roleOverwrite(ch, gid)
	return &ChannelInfo{
		Name:      ch.Name,
		OwnerID:   tc.OwnerID,
		Occupants: len(c.disc.ChannelOccupants(gid, cid)),
		UserLimit: ch.UserLimit,
		Bitrate:   ch.Bitrate,
		Locked:    deny&discordgo.PermissionVoiceConnect != 0,
		Hidden:    deny&discordgo.PermissionViewChannel != 0,
		CreatedAt: tc.CreatedAt,
	}, nil
}

// ConfigFor returns the guild's setup, or database.ErrNotFound when the
// feature is disabled there.
func (c *Controller) ConfigFor(gid string) (*database.VoiceConfig, error) {
	return c.db.GetVoiceConfig(gid)
}

// Setup enables the feature for a guild: picks or creates the category,
// creates the generator channel, persists the config. Refuses when already
// configured.
func (c *Controller) Setup(gid, categoryID string) (*database.VoiceConfig, error) {
	if _, err := c.db.GetVoiceConfig(gid); err == nil {
		return nil, Validationf("voicemaster is already set up here, disable it first")
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	if categoryID == "" {
		cat, err := c.disc.CreateCategory(gid, defaultCategoryName)
		if err != nil {
			return nil, fmt.Errorf("failed to create category: %w", err)
		}
		categoryID = cat.ID
	} else {
		ch, err := c.disc.Channel(categoryID)
		if err != nil || ch.Type != discordgo.ChannelTypeGuildCategory || ch.GuildID != gid {
			return nil, Validationf("that is not a category in this server")
		}
	}

	gen, err := c.disc.CreateVoiceChannel(gid, defaultGeneratorName, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator channel: %w", err)
	}

	vc := &database.VoiceConfig{
		GuildID:            gid,
		CategoryID:         categoryID,
		GeneratorChannelID: gen.ID,
	}
	if err := c.db.CreateVoiceConfig(vc); err != nil {
		return nil, err
	}
	return vc, nil
}

// Disable removes the config and every live channel record for the guild.
// Platform channels that are still occupied are left alone; they get
// cleaned up lazily as their members leave.
func (c *Controller) Disable(gid string) error {
	if _, err := c.db.GetVoiceConfig(gid); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return Validationf("voicemaster is not set up here")
		}
		return err
	}

	tcs, err := c.db.GetTempChannelsByGuild(gid)
	if err != nil {
		return err
	}
	if err := c.db.DeleteTempChannelsByGuild(gid); err != nil {
		return err
	}
	for _, tc := range tcs {
		if err := c.owners.cache.DeleteOwner(tc.ChannelID); err != nil {
			c.log.Warn("failed to invalidate owner cache", zap.String("channel", tc.ChannelID), zap.Error(err))
		}
	}
	return c.db.DeleteVoiceConfig(gid)
}

// RecordInterface stores where the persistent control panel lives.
func (c *Controller) RecordInterface(gid, chID, msgID string) error {
	return c.db.SetVoiceInterface(gid, chID, msgID)
}

func (c *Controller) renameForOwner(cid string, m *discordgo.Member) {
	if err := c.disc.EditChannel(cid, &discordgo.ChannelEdit{Name: ChannelName(m)}); err != nil {
		c.log.Warn("failed to rename channel for new owner", zap.String("channel", cid), zap.Error(err))
	}
}

// resolveMember accepts a mention or a raw user id.
func (c *Controller) resolveMember(gid, ref string) (*discordgo.Member, error) {
	id := TrimUserString(strings.TrimSpace(ref))
	if id == "" {
		return nil, Validationf("give me a member to target")
	}
	mem, err := c.disc.Member(gid, id)
	if err != nil {
		return nil, Validationf("could not find that member")
	}
	return mem, nil
}

// editRoleOverwrite flips access bits on the @everyone overwrite while
// leaving unrelated bits alone.
func (c *Controller) editRoleOverwrite(cid, gid string, grant, revoke int64) error {
	ch, err := c.disc.Channel(cid)
	if err != nil {
		return err
	}
	allow, deny := roleOverwrite(ch, gid)
	allow = (allow | grant) &^ revoke
	deny = (deny | revoke) &^ grant
	return c.disc.SetPermission(cid, gid, discordgo.PermissionOverwriteTypeRole, allow, deny)
}

func (c *Controller) editMemberOverwrite(cid, uid string, grant, revoke int64) error {
	ch, err := c.disc.Channel(cid)
	if err != nil {
		return err
	}
	var allow, deny int64
	for _, ow := range ch.PermissionOverwrites {
		if ow.ID == uid && ow.Type == discordgo.PermissionOverwriteTypeMember {
			allow, deny = ow.Allow, ow.Deny
			break
		}
	}
	allow = (allow | grant) &^ revoke
	deny = (deny | revoke) &^ grant
	return c.disc.SetPermission(cid, uid, discordgo.PermissionOverwriteTypeMember, allow, deny)
}

// roleOverwrite returns the @everyone overwrite bits; the everyone role id
// equals the guild id.
func roleOverwrite(ch *discordgo.Channel, gid string) (allow, deny int64) {
	for _, ow := range ch.PermissionOverwrites {
		if ow.ID == gid && ow.Type == discordgo.PermissionOverwriteTypeRole {
			return ow.Allow, ow.Deny
		}
	}
	return 0, 0
}

// TrimUserString strips a user mention down to the id.
func TrimUserString(s string) string {
	s = strings.TrimPrefix(s, "<@")
	s = strings.TrimPrefix(s, "!")
	return strings.TrimSuffix(s, ">")
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

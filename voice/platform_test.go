package voice

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/intrntsrfr/voicemaster/kvstore"
)

// fakePlatform keeps channels, members and voice presence in maps so the
// lifecycle can be driven without a gateway.
type fakePlatform struct {
	channels map[string]*discordgo.Channel
	members  map[string]*discordgo.Member
	voice    map[string]string // gid:uid -> cid
	nextID   int

	failCreate bool
	failMove   bool
	moves      []string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		channels: make(map[string]*discordgo.Channel),
		members:  make(map[string]*discordgo.Member),
		voice:    make(map[string]string),
	}
}

func (f *fakePlatform) addMember(gid, uid, nick string) {
	f.members[gid+":"+uid] = &discordgo.Member{
		GuildID: gid,
		Nick:    nick,
		User:    &discordgo.User{ID: uid, Username: nick},
	}
}

func (f *fakePlatform) addChannel(gid, cid string, kind discordgo.ChannelType) *discordgo.Channel {
	ch := &discordgo.Channel{ID: cid, GuildID: gid, Type: kind}
	f.channels[cid] = ch
	return ch
}

// connect puts a member in a channel and returns the matching presence
// event, carrying the channel they came from.
func (f *fakePlatform) connect(gid, uid, cid string) *discordgo.VoiceStateUpdate {
	evt := &discordgo.VoiceStateUpdate{
		VoiceState: &discordgo.VoiceState{GuildID: gid, UserID: uid, ChannelID: cid},
	}
	if prev, ok := f.voice[gid+":"+uid]; ok {
		evt.BeforeUpdate = &discordgo.VoiceState{GuildID: gid, UserID: uid, ChannelID: prev}
	}
	if cid == "" {
		delete(f.voice, gid+":"+uid)
	} else {
		f.voice[gid+":"+uid] = cid
	}
	return evt
}

func (f *fakePlatform) CreateVoiceChannel(gid, name, parentID string) (*discordgo.Channel, error) {
	if f.failCreate {
		return nil, fmt.Errorf("missing permissions")
	}
	f.nextID++
	ch := &discordgo.Channel{
		ID:       fmt.Sprintf("chan-%v", f.nextID),
		GuildID:  gid,
		Name:     name,
		ParentID: parentID,
		Type:     discordgo.ChannelTypeGuildVoice,
	}
	f.channels[ch.ID] = ch
	return ch, nil
}

func (f *fakePlatform) CreateCategory(gid, name string) (*discordgo.Channel, error) {
	f.nextID++
	ch := &discordgo.Channel{
		ID:      fmt.Sprintf("cat-%v", f.nextID),
		GuildID: gid,
		Name:    name,
		Type:    discordgo.ChannelTypeGuildCategory,
	}
	f.channels[ch.ID] = ch
	return ch, nil
}

func (f *fakePlatform) DeleteChannel(cid string) error {
	if _, ok := f.channels[cid]; !ok {
		return fmt.Errorf("unknown channel")
	}
	delete(f.channels, cid)
	return nil
}

func (f *fakePlatform) EditChannel(cid string, edit *discordgo.ChannelEdit) error {
	ch, ok := f.channels[cid]
	if !ok {
		return fmt.Errorf("unknown channel")
	}
	if edit.Name != "" {
		ch.Name = edit.Name
	}
	// zero values are omitted on the wire, mirror that
	if edit.UserLimit != 0 {
		ch.UserLimit = edit.UserLimit
	}
	if edit.Bitrate != 0 {
		ch.Bitrate = edit.Bitrate
	}
	return nil
}

// SetUserLimit applies unconditionally, zero included, unlike EditChannel.
func (f *fakePlatform) SetUserLimit(cid string, limit int) error {
	ch, ok := f.channels[cid]
	if !ok {
		return fmt.Errorf("unknown channel")
	}
	ch.UserLimit = limit
	return nil
}

func (f *fakePlatform) SetPermission(cid, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64) error {
	ch, ok := f.channels[cid]
	if !ok {
		return fmt.Errorf("unknown channel")
	}
	for _, ow := range ch.PermissionOverwrites {
		if ow.ID == targetID && ow.Type == targetType {
			ow.Allow, ow.Deny = allow, deny
			return nil
		}
	}
	ch.PermissionOverwrites = append(ch.PermissionOverwrites, &discordgo.PermissionOverwrite{
		ID:    targetID,
		Type:  targetType,
		Allow: allow,
		Deny:  deny,
	})
	return nil
}

func (f *fakePlatform) MoveMember(gid, uid, cid string) error {
	if f.failMove {
		return fmt.Errorf("missing permissions")
	}
	f.moves = append(f.moves, fmt.Sprintf("%v->%v", uid, cid))
	if cid == "" {
		delete(f.voice, gid+":"+uid)
	} else {
		f.voice[gid+":"+uid] = cid
	}
	return nil
}

func (f *fakePlatform) Channel(cid string) (*discordgo.Channel, error) {
	if ch, ok := f.channels[cid]; ok {
		return ch, nil
	}
	return nil, discordgo.ErrStateNotFound
}

func (f *fakePlatform) Member(gid, uid string) (*discordgo.Member, error) {
	if m, ok := f.members[gid+":"+uid]; ok {
		return m, nil
	}
	return nil, discordgo.ErrStateNotFound
}

func (f *fakePlatform) VoiceChannelID(gid, uid string) string {
	return f.voice[gid+":"+uid]
}

func (f *fakePlatform) ChannelOccupants(gid, cid string) []string {
	var uids []string
	for key, v := range f.voice {
		if v == cid && len(key) > len(gid) && key[:len(gid)] == gid {
			uids = append(uids, key[len(gid)+1:])
		}
	}
	return uids
}

// fakeCache implements Cache in memory and can lose entries on demand.
type fakeCache struct {
	m map[string]*kvstore.OwnerEntry
}

func newFakeCache() *fakeCache {
	return &fakeCache{m: make(map[string]*kvstore.OwnerEntry)}
}

func (c *fakeCache) SetOwner(cid string, e *kvstore.OwnerEntry) error {
	cp := *e
	c.m[cid] = &cp
	return nil
}

func (c *fakeCache) GetOwner(cid string) (*kvstore.OwnerEntry, error) {
	if e, ok := c.m[cid]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, kvstore.ErrNotFound
}

func (c *fakeCache) DeleteOwner(cid string) error {
	delete(c.m, cid)
	return nil
}

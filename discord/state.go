package discord

import "github.com/bwmarrin/discordgo"

func (d *Discord) Guild(gid string) (*discordgo.Guild, error) {
	for _, s := range d.sessions {
		if g, err := s.State.Guild(gid); err == nil {
			return g, nil
		}
	}
	return nil, discordgo.ErrStateNotFound
}

func (d *Discord) Member(gid, uid string) (*discordgo.Member, error) {
	for _, s := range d.sessions {
		if m, err := s.State.Member(gid, uid); err == nil {
			return m, nil
		}
	}
	return nil, discordgo.ErrStateNotFound
}

func (d *Discord) Channel(cid string) (*discordgo.Channel, error) {
	for _, s := range d.sessions {
		if ch, err := s.State.Channel(cid); err == nil {
			return ch, nil
		}
	}
	return nil, discordgo.ErrStateNotFound
}

func (d *Discord) UserChannelPermissions(uid, cid string) (int64, error) {
	for _, s := range d.sessions {
		if p, err := s.State.UserChannelPermissions(uid, cid); err == nil {
			return p, nil
		}
	}
	return -1, discordgo.ErrStateNotFound
}

// VoiceChannelID returns the id of the voice channel the member currently
// occupies, or an empty string.
func (d *Discord) VoiceChannelID(gid, uid string) string {
	for _, s := range d.sessions {
		if vs, err := s.State.VoiceState(gid, uid); err == nil {
			return vs.ChannelID
		}
	}
	return ""
}

// ChannelOccupants returns the user ids currently connected to a voice
// channel, according to gateway state.
func (d *Discord) ChannelOccupants(gid, cid string) []string {
	g, err := d.Guild(gid)
	if err != nil {
		return nil
	}

	var uids []string
	for _, vs := range g.VoiceStates {
		if vs.ChannelID == cid {
			uids = append(uids, vs.UserID)
		}
	}
	return uids
}

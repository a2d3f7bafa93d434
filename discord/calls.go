package discord

import "github.com/bwmarrin/discordgo"

func (d *Discord) CreateVoiceChannel(gid, name, parentID string) (*discordgo.Channel, error) {
	return d.Sess.GuildChannelCreateComplex(gid, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildVoice,
		ParentID: parentID,
	})
}

func (d *Discord) CreateCategory(gid, name string) (*discordgo.Channel, error) {
	return d.Sess.GuildChannelCreateComplex(gid, discordgo.GuildChannelCreateData{
		Name: name,
		Type: discordgo.ChannelTypeGuildCategory,
	})
}

func (d *Discord) DeleteChannel(cid string) error {
	_, err := d.Sess.ChannelDelete(cid)
	return err
}

func (d *Discord) EditChannel(cid string, edit *discordgo.ChannelEdit) error {
	_, err := d.Sess.ChannelEdit(cid, edit)
	return err
}

// SetUserLimit edits only the user limit. ChannelEdit drops a zero limit on
// marshal, so clearing the limit needs its own payload.
func (d *Discord) SetUserLimit(cid string, limit int) error {
	data := struct {
		UserLimit int `json:"user_limit"`
	}{limit}
	_, err := d.Sess.RequestWithBucketID("PATCH", discordgo.EndpointChannel(cid), data, discordgo.EndpointChannel(cid))
	return err
}

func (d *Discord) SetPermission(cid, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64) error {
	return d.Sess.ChannelPermissionSet(cid, targetID, targetType, allow, deny)
}

// MoveMember moves a member to another voice channel. An empty channel id
// disconnects them.
func (d *Discord) MoveMember(gid, uid, cid string) error {
	if cid == "" {
		return d.Sess.GuildMemberMove(gid, uid, nil)
	}
	return d.Sess.GuildMemberMove(gid, uid, &cid)
}

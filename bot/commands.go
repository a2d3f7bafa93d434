package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/intrntsrfr/voicemaster/database"
	"github.com/intrntsrfr/voicemaster/voice"
)

// command group names that route into the voicemaster surface
var groupNames = []string{"voicemaster", "voice", "vm", "vc"}

func messageCreateHandler(c *Context, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	prefix := c.b.prefix(m.GuildID)
	if !strings.HasPrefix(m.Content, prefix) {
		return
	}

	args := strings.Fields(strings.TrimPrefix(m.Content, prefix))
	if len(args) < 1 {
		return
	}

	group := strings.ToLower(args[0])
	ok := false
	for _, g := range groupNames {
		if group == g {
			ok = true
			break
		}
	}
	if !ok {
		return
	}

	if len(args) < 2 {
		sendHelp(c, m.ChannelID, prefix)
		return
	}

	sub := strings.ToLower(args[1])
	arg := strings.Join(args[2:], " ")

	switch sub {
	case "help":
		sendHelp(c, m.ChannelID, prefix)
	case "setup":
		adminCommand(c, m, func() *discordgo.MessageEmbed { return setupCommand(c, m, arg) })
	case "interface", "panel":
		adminCommand(c, m, func() *discordgo.MessageEmbed { return interfaceCommand(c, m, arg) })
	case "disable":
		adminCommand(c, m, func() *discordgo.MessageEmbed { return disableCommand(c, m) })
	case "prefix":
		adminCommand(c, m, func() *discordgo.MessageEmbed { return prefixCommand(c, m, arg) })
	default:
		embed := runOp(c.b, sub, &opRequest{
			guildID:  m.GuildID,
			memberID: m.Author.ID,
			arg:      arg,
		})
		if embed == nil {
			return
		}
		sendEmbed(c, m.ChannelID, embed)
	}
}

// adminCommand gates a subcommand behind the administrator permission.
func adminCommand(c *Context, m *discordgo.MessageCreate, run func() *discordgo.MessageEmbed) {
	uperms, err := c.b.disc.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		return
	}
	if uperms&discordgo.PermissionAdministrator == 0 {
		sendEmbed(c, m.ChannelID, WarningEmbed("This is admin only, sorry!"))
		return
	}
	if embed := run(); embed != nil {
		sendEmbed(c, m.ChannelID, embed)
	}
}

func setupCommand(c *Context, m *discordgo.MessageCreate, arg string) *discordgo.MessageEmbed {
	categoryID := ""
	if arg != "" {
		categoryID = TrimChannelString(arg)
	}

	vc, err := c.b.ctrl.Setup(m.GuildID, categoryID)
	if err != nil {
		var verr *voice.ValidationError
		if errors.As(err, &verr) {
			return WarningEmbed(verr.Msg)
		}
		c.b.log.Error("setup failed", zap.String("guild", m.GuildID), zap.Error(err))
		return ErrorEmbed("Setup failed, try again later.")
	}

	return SuccessEmbed(fmt.Sprintf("Voicemaster is ready. Join <#%v> to get your own channel.", vc.GeneratorChannelID))
}

func interfaceCommand(c *Context, m *discordgo.MessageCreate, arg string) *discordgo.MessageEmbed {
	if _, err := c.b.ctrl.ConfigFor(m.GuildID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return WarningEmbed("Voicemaster is not set up here, run setup first.")
		}
		return ErrorEmbed("Something went wrong, try again later.")
	}

	chID := m.ChannelID
	if arg != "" {
		chID = TrimChannelString(arg)
		ch, err := c.b.disc.Channel(chID)
		if err != nil || ch.GuildID != m.GuildID || ch.Type != discordgo.ChannelTypeGuildText {
			return WarningEmbed("That is not a text channel in this server.")
		}
	}

	msg, err := c.s.ChannelMessageSendComplex(chID, panelMessage())
	if err != nil {
		c.b.log.Error("failed to post interface", zap.String("guild", m.GuildID), zap.Error(err))
		return ErrorEmbed("Could not post the interface there.")
	}

	if err := c.b.ctrl.RecordInterface(m.GuildID, chID, msg.ID); err != nil {
		c.b.log.Error("failed to record interface", zap.String("guild", m.GuildID), zap.Error(err))
	}
	if chID != m.ChannelID {
		return SuccessEmbed(fmt.Sprintf("Interface posted in <#%v>", chID))
	}
	return nil
}

func disableCommand(c *Context, m *discordgo.MessageCreate) *discordgo.MessageEmbed {
	if err := c.b.ctrl.Disable(m.GuildID); err != nil {
		var verr *voice.ValidationError
		if errors.As(err, &verr) {
			return WarningEmbed(verr.Msg)
		}
		c.b.log.Error("disable failed", zap.String("guild", m.GuildID), zap.Error(err))
		return ErrorEmbed("Disable failed, try again later.")
	}
	return SuccessEmbed("Voicemaster is disabled. Channels still in use clean themselves up.")
}

func prefixCommand(c *Context, m *discordgo.MessageCreate, arg string) *discordgo.MessageEmbed {
	if arg == "" {
		return WarningEmbed(fmt.Sprintf("The prefix here is `%v`", c.b.prefix(m.GuildID)))
	}
	if len(arg) > 4 {
		return WarningEmbed("The prefix can be at most 4 characters.")
	}

	if err := c.b.setPrefix(m.GuildID, arg); err != nil {
		c.b.log.Error("failed to set prefix", zap.String("guild", m.GuildID), zap.Error(err))
		return ErrorEmbed("Could not update the prefix.")
	}
	return SuccessEmbed(fmt.Sprintf("Prefix set to `%v`", arg))
}

func sendHelp(c *Context, chID, prefix string) {
	text := strings.Builder{}
	text.WriteString(fmt.Sprintf("Join the generator channel to get a channel of your own. Control it with `%vvm [command]`:\n\n", prefix))
	text.WriteString("`lock` / `unlock` - close or open the channel\n")
	text.WriteString("`hide` / `show` - hide the channel from others\n")
	text.WriteString("`rename [name]` - rename the channel\n")
	text.WriteString("`limit [0-99]` - set a user limit, 0 removes it\n")
	text.WriteString("`bitrate [8-96]` - set the bitrate in kbps\n")
	text.WriteString("`permit [member]` / `reject [member]` - manage who can join\n")
	text.WriteString("`disconnect [member]` - kick a member out\n")
	text.WriteString("`transfer [member]` - hand the channel over\n")
	text.WriteString("`claim` - take over an abandoned channel\n")
	text.WriteString("`info` - show channel details\n")
	text.WriteString("\n")
	text.WriteString("Admin commands: `setup [category]`, `interface [channel]`, `disable`, `prefix [new]`\n")

	sendEmbed(c, chID, &discordgo.MessageEmbed{
		Title:       "Voicemaster",
		Color:       Blue,
		Description: text.String(),
	})
}

func sendEmbed(c *Context, chID string, embed *discordgo.MessageEmbed) {
	if _, err := c.s.ChannelMessageSendEmbed(chID, embed); err != nil {
		c.b.log.Warn("failed to send message", zap.String("channel", chID), zap.Error(err))
	}
}

package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/intrntsrfr/voicemaster/voice"
)

// Component id namespaces. Direct buttons carry the op name, modals and
// member pickers go through one more hop.
const (
	panelPrefix  = "vm:"
	modalPrefix  = "vm:modal:"
	pickerPrefix = "vm:pick:"
	selectPrefix = "vm:sel:"
)

func button(op, label, emoji string) discordgo.Button {
	b := discordgo.Button{
		Label:    label,
		Style:    discordgo.SecondaryButton,
		CustomID: panelPrefix + op,
	}
	if emoji != "" {
		b.Emoji = &discordgo.ComponentEmoji{Name: emoji}
	}
	return b
}

func modalButton(op, label, emoji string) discordgo.Button {
	b := button(op, label, emoji)
	b.CustomID = modalPrefix + op
	return b
}

func selectButton(op, label, emoji string) discordgo.Button {
	b := button(op, label, emoji)
	b.CustomID = selectPrefix + op
	return b
}

// panelMessage builds the persistent control panel.
func panelMessage() *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embed: &discordgo.MessageEmbed{
			Title:       "Voicemaster",
			Color:       Blue,
			Description: "Control your temporary voice channel with the buttons below.",
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				button("lock", "Lock", "🔒"),
				button("unlock", "Unlock", "🔓"),
				button("hide", "Hide", "🙈"),
				button("show", "Show", "👁"),
				button("claim", "Claim", "👑"),
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				modalButton("rename", "Rename", "✏"),
				button("limitup", "Limit +", "➕"),
				button("limitdown", "Limit -", "➖"),
				modalButton("bitrate", "Bitrate", "🎙"),
				button("info", "Info", "ℹ"),
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				selectButton("permit", "Permit", "✅"),
				selectButton("reject", "Reject", "⛔"),
				selectButton("disconnect", "Disconnect", "🥾"),
				selectButton("transfer", "Transfer", "🎁"),
			}},
		},
	}
}

func interactionCreateHandler(c *Context, i *discordgo.InteractionCreate) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return
	}

	switch i.Type {
	case discordgo.InteractionMessageComponent:
		componentHandler(c, i)
	case discordgo.InteractionModalSubmit:
		modalSubmitHandler(c, i)
	}
}

func componentHandler(c *Context, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	id := data.CustomID
	uid := i.Member.User.ID

	switch {
	case strings.HasPrefix(id, pickerPrefix):
		op, ok := c.b.prompts.resolve(strings.TrimPrefix(id, pickerPrefix), uid)
		if !ok {
			respondEmbed(c, i.Interaction, WarningEmbed("That picker expired, press the button again."))
			return
		}
		if len(data.Values) < 1 {
			return
		}
		embed := runOp(c.b, op, &opRequest{guildID: i.GuildID, memberID: uid, arg: data.Values[0]})
		respondEmbed(c, i.Interaction, embed)

	case strings.HasPrefix(id, modalPrefix):
		openModal(c, i, strings.TrimPrefix(id, modalPrefix))

	case strings.HasPrefix(id, selectPrefix):
		openPicker(c, i, strings.TrimPrefix(id, selectPrefix))

	case strings.HasPrefix(id, panelPrefix):
		op := strings.TrimPrefix(id, panelPrefix)
		embed := runOp(c.b, op, &opRequest{guildID: i.GuildID, memberID: uid})
		respondEmbed(c, i.Interaction, embed)
	}
}

func openModal(c *Context, i *discordgo.InteractionCreate, op string) {
	var title, label, placeholder string
	maxLen := 0

	switch op {
	case "rename":
		title, label = "Rename channel", "New name"
		maxLen = voice.MaxNameLength
	case "bitrate":
		title, label, placeholder = "Set bitrate", "Bitrate in kbps", "8-96"
		maxLen = 2
	default:
		return
	}

	err := c.s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: modalPrefix + op,
			Title:    title,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "value",
						Label:       label,
						Placeholder: placeholder,
						Style:       discordgo.TextInputShort,
						Required:    true,
						MaxLength:   maxLen,
					},
				}},
			},
		},
	})
	if err != nil {
		c.b.log.Warn("failed to open modal", zap.String("op", op), zap.Error(err))
	}
}

func openPicker(c *Context, i *discordgo.InteractionCreate, op string) {
	id := c.b.prompts.create(op, i.Member.User.ID)

	err := c.s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Pick a member:",
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						MenuType: discordgo.UserSelectMenu,
						CustomID: pickerPrefix + id,
					},
				}},
			},
		},
	})
	if err != nil {
		c.b.log.Warn("failed to open picker", zap.String("op", op), zap.Error(err))
	}
}

func modalSubmitHandler(c *Context, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	if !strings.HasPrefix(data.CustomID, modalPrefix) {
		return
	}
	op := strings.TrimPrefix(data.CustomID, modalPrefix)

	value := ""
	for _, comp := range data.Components {
		row, ok := comp.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok && input.CustomID == "value" {
				value = input.Value
			}
		}
	}

	embed := runOp(c.b, op, &opRequest{
		guildID:  i.GuildID,
		memberID: i.Member.User.ID,
		arg:      value,
	})
	respondEmbed(c, i.Interaction, embed)
}

func respondEmbed(c *Context, i *discordgo.Interaction, embed *discordgo.MessageEmbed) {
	if embed == nil {
		return
	}
	err := c.s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		c.b.log.Warn("failed to respond to interaction", zap.Error(err))
	}
}

package bot

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/intrntsrfr/voicemaster/voice"
)

// opRequest is one control invocation, no matter whether it came from a text
// command, a panel button or a modal.
type opRequest struct {
	guildID  string
	memberID string
	arg      string
}

type opFunc func(b *Bot, r *opRequest) (*discordgo.MessageEmbed, error)

var ops = map[string]opFunc{
	"lock":       simpleOp(func(c *voice.Controller, r *opRequest) (string, error) { return c.Lock(r.guildID, r.memberID) }),
	"unlock":     simpleOp(func(c *voice.Controller, r *opRequest) (string, error) { return c.Unlock(r.guildID, r.memberID) }),
	"hide":       simpleOp(func(c *voice.Controller, r *opRequest) (string, error) { return c.Hide(r.guildID, r.memberID) }),
	"show":       simpleOp(func(c *voice.Controller, r *opRequest) (string, error) { return c.Show(r.guildID, r.memberID) }),
	"claim":      simpleOp(func(c *voice.Controller, r *opRequest) (string, error) { return c.Claim(r.guildID, r.memberID) }),
	"rename":     simpleOp(func(c *voice.Controller, r *opRequest) (string, error) { return c.Rename(r.guildID, r.memberID, r.arg) }),
	"permit":     simpleOp(func(c *voice.Controller, r *opRequest) (string, error) { return c.Permit(r.guildID, r.memberID, r.arg) }),
	"reject":     simpleOp(func(c *voice.Controller, r *opRequest) (string, error) { return c.Reject(r.guildID, r.memberID, r.arg) }),
	"disconnect": simpleOp(func(c *voice.Controller, r *opRequest) (string, error) { return c.Disconnect(r.guildID, r.memberID, r.arg) }),
	"transfer":   simpleOp(func(c *voice.Controller, r *opRequest) (string, error) { return c.Transfer(r.guildID, r.memberID, r.arg) }),
	"limit":      opLimit,
	"limitup":    opLimitDelta(1),
	"limitdown":  opLimitDelta(-1),
	"bitrate":    opBitrate,
	"info":       opInfo,
}

// opAliases maps alternative command spellings onto canonical op names.
var opAliases = map[string]string{
	"name":   "rename",
	"unhide": "show",
	"kick":   "disconnect",
	"give":   "transfer",
}

func runOp(b *Bot, name string, r *opRequest) *discordgo.MessageEmbed {
	if canonical, ok := opAliases[name]; ok {
		name = canonical
	}
	op, ok := ops[name]
	if !ok {
		return nil
	}

	embed, err := op(b, r)
	if err != nil {
		return errorEmbed(b, name, r, err)
	}
	return embed
}

func simpleOp(f func(c *voice.Controller, r *opRequest) (string, error)) opFunc {
	return func(b *Bot, r *opRequest) (*discordgo.MessageEmbed, error) {
		msg, err := f(b.ctrl, r)
		if err != nil {
			return nil, err
		}
		return SuccessEmbed(msg), nil
	}
}

func opLimit(b *Bot, r *opRequest) (*discordgo.MessageEmbed, error) {
	n, err := strconv.Atoi(r.arg)
	if err != nil {
		return nil, voice.Validationf("give me a number between 0 and %v", voice.MaxUserLimit)
	}
	msg, err := b.ctrl.Limit(r.guildID, r.memberID, n)
	if err != nil {
		return nil, err
	}
	return SuccessEmbed(msg), nil
}

func opLimitDelta(delta int) opFunc {
	return func(b *Bot, r *opRequest) (*discordgo.MessageEmbed, error) {
		msg, err := b.ctrl.LimitDelta(r.guildID, r.memberID, delta)
		if err != nil {
			return nil, err
		}
		return SuccessEmbed(msg), nil
	}
}

func opBitrate(b *Bot, r *opRequest) (*discordgo.MessageEmbed, error) {
	n, err := strconv.Atoi(r.arg)
	if err != nil {
		return nil, voice.Validationf("give me a number between %v and %v", voice.MinBitrate, voice.MaxBitrate)
	}
	msg, err := b.ctrl.Bitrate(r.guildID, r.memberID, n)
	if err != nil {
		return nil, err
	}
	return SuccessEmbed(msg), nil
}

func opInfo(b *Bot, r *opRequest) (*discordgo.MessageEmbed, error) {
	info, err := b.ctrl.Info(r.guildID, r.memberID)
	if err != nil {
		return nil, err
	}

	limit := "none"
	if info.UserLimit > 0 {
		limit = strconv.Itoa(info.UserLimit)
	}
	state := "open"
	if info.Locked {
		state = "locked"
	}
	if info.Hidden {
		state += ", hidden"
	}

	embed := &discordgo.MessageEmbed{
		Title: info.Name,
		Color: Blue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Owner", Value: fmt.Sprintf("<@%v>", info.OwnerID), Inline: true},
			{Name: "Members", Value: strconv.Itoa(info.Occupants), Inline: true},
			{Name: "User limit", Value: limit, Inline: true},
			{Name: "Bitrate", Value: fmt.Sprintf("%vkbps", info.Bitrate/1000), Inline: true},
			{Name: "State", Value: state, Inline: true},
			{Name: "Created", Value: fmt.Sprintf("<t:%v:R>", info.CreatedAt), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	return embed, nil
}

// errorEmbed turns an op failure into the embed the invoker sees. Expected
// failures show their own message; anything else is logged and masked.
func errorEmbed(b *Bot, name string, r *opRequest, err error) *discordgo.MessageEmbed {
	var verr *voice.ValidationError
	if errors.As(err, &verr) {
		return WarningEmbed(verr.Msg)
	}
	if errors.Is(err, voice.ErrNotInVoice) ||
		errors.Is(err, voice.ErrNotOwner) ||
		errors.Is(err, voice.ErrNotTempChannel) ||
		errors.Is(err, voice.ErrOwnerPresent) {
		return WarningEmbed(err.Error())
	}

	b.log.Error("op failed",
		zap.String("op", name),
		zap.String("guild", r.guildID),
		zap.String("member", r.memberID),
		zap.Error(err))
	return ErrorEmbed("Something went wrong, try again later.")
}

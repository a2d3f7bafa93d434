package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

func TrimChannelString(chStr string) string {
	chStr = strings.TrimPrefix(chStr, "<#")
	chStr = strings.TrimSuffix(chStr, ">")
	return chStr
}

func SuccessEmbed(msg string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Color: int(Green), Description: msg}
}

func WarningEmbed(msg string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Color: int(Orange), Description: msg}
}

func ErrorEmbed(msg string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Color: int(Red), Description: msg}
}

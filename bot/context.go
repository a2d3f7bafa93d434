package bot

import (
	"github.com/bwmarrin/discordgo"
)

type Context struct {
	b *Bot
	s *discordgo.Session
}

package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func readyHandler(c *Context, r *discordgo.Ready) {
	statusTimer := time.NewTicker(time.Second * 15)

	go func() {
		// run every 15 seconds
		i := 0
		for range statusTimer.C {
			switch i {
			case 0:
				_ = c.s.UpdateGameStatus(0, c.b.config.DefaultPrefix+"vm help")
			case 1:
				_ = c.s.UpdateListeningStatus("empty voice channels")
			}

			i = (i + 1) % 2
		}
	}()

	c.b.log.Info("logged in", zap.String("user", r.User.String()))
}

func disconnectHandler(c *Context, _ *discordgo.Disconnect) {
	c.b.log.Info("disconnected")
}

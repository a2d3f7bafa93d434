package bot

import (
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/intrntsrfr/voicemaster/database"
	"github.com/intrntsrfr/voicemaster/discord"
	"github.com/intrntsrfr/voicemaster/kvstore"
	"github.com/intrntsrfr/voicemaster/voice"
)

type Bot struct {
	store     *kvstore.Store
	log       *zap.Logger
	db        database.DB
	disc      *discord.Discord
	sess      *discordgo.Session
	config    *Config
	prov      *voice.Provisioner
	ctrl      *voice.Controller
	prompts   *promptRegistry
	startTime time.Time
}

type Config struct {
	Store         *kvstore.Store
	Log           *zap.Logger
	DB            database.DB
	Token         string
	DefaultPrefix string
}

func NewBot(c *Config) (*Bot, error) {
	b := &Bot{
		store:     c.Store,
		log:       c.Log,
		db:        c.DB,
		config:    c,
		prompts:   newPromptRegistry(),
		startTime: time.Now(),
	}

	disc, err := discord.NewDiscord(c.Token, c.Log.Named("discord"))
	if err != nil {
		return nil, err
	}
	b.disc = disc
	b.sess = disc.Sess

	owners := voice.NewOwnership(c.DB, c.Store, c.Log.Named("owners"))
	b.prov = voice.NewProvisioner(c.DB, owners, disc, c.Log.Named("provisioner"))
	b.ctrl = voice.NewController(c.DB, owners, disc, c.Log.Named("control"))

	return b, nil
}

func (b *Bot) Close() {
	b.disc.Close()
}

func (b *Bot) Run() error {
	go b.listen(b.disc.Events)

	err := b.disc.Open()
	if err != nil {
		return err
	}
	return nil
}

// StartTime is when the process came up, for the status endpoint.
func (b *Bot) StartTime() time.Time {
	return b.startTime
}

func (b *Bot) GuildCount() int {
	return len(b.sess.State.Guilds)
}

func (b *Bot) listen(evtCh <-chan interface{}) {
	for {
		evt := <-evtCh
		ctx := &Context{
			b: b,
			s: b.sess,
		}

		if e, ok := evt.(*discordgo.Ready); ok {
			go readyHandler(ctx, e)
		} else if e, ok := evt.(*discordgo.Disconnect); ok {
			go disconnectHandler(ctx, e)
		} else if e, ok := evt.(*discordgo.VoiceStateUpdate); ok {
			// joins and leaves must stay in order, so no goroutine here
			b.prov.HandleVoiceState(e)
		} else if e, ok := evt.(*discordgo.MessageCreate); ok {
			go messageCreateHandler(ctx, e)
		} else if e, ok := evt.(*discordgo.InteractionCreate); ok {
			go interactionCreateHandler(ctx, e)
		}
	}
}

// prefix resolves the command prefix for a guild, cache first.
func (b *Bot) prefix(gid string) string {
	if p, err := b.store.GetPrefix(gid); err == nil {
		return p
	}

	p, err := b.db.GetPrefix(gid)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			b.log.Error("failed to get prefix", zap.String("guild", gid), zap.Error(err))
		}
		return b.config.DefaultPrefix
	}

	if err := b.store.SetPrefix(gid, p); err != nil {
		b.log.Warn("failed to cache prefix", zap.String("guild", gid), zap.Error(err))
	}
	return p
}

func (b *Bot) setPrefix(gid, prefix string) error {
	if err := b.db.SetPrefix(gid, prefix); err != nil {
		return err
	}
	if err := b.store.SetPrefix(gid, prefix); err != nil {
		b.log.Warn("failed to cache prefix", zap.String("guild", gid), zap.Error(err))
	}
	return nil
}

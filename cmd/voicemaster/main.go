package main

import (
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/lib/pq"

	"github.com/intrntsrfr/voicemaster/bot"
	"github.com/intrntsrfr/voicemaster/database"
	"github.com/intrntsrfr/voicemaster/kvstore"
	"github.com/intrntsrfr/voicemaster/status"
)

type Config struct {
	Token            string `json:"token"`
	ConnectionString string `json:"connection_string"`
	BadgerDir        string `json:"badger_dir"`
	Prefix           string `json:"prefix"`
	StatusAddr       string `json:"status_addr"`
}

func loadConfig() (*Config, error) {
	config := &Config{
		BadgerDir:  "./data",
		Prefix:     ".",
		StatusAddr: ":8080",
	}

	if d, err := os.ReadFile("./config.json"); err == nil {
		if err := json.Unmarshal(d, config); err != nil {
			return nil, err
		}
	}

	// env vars win over the file
	_ = godotenv.Load()
	if v := os.Getenv("VM_TOKEN"); v != "" {
		config.Token = v
	}
	if v := os.Getenv("VM_CONNECTION_STRING"); v != "" {
		config.ConnectionString = v
	}
	if v := os.Getenv("VM_BADGER_DIR"); v != "" {
		config.BadgerDir = v
	}
	if v := os.Getenv("VM_PREFIX"); v != "" {
		config.Prefix = v
	}
	if v := os.Getenv("VM_STATUS_ADDR"); v != "" {
		config.StatusAddr = v
	}

	return config, nil
}

func newLogger() (*zap.Logger, error) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "name",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(zapcore.InfoLevel),
	)
	return zap.New(core), nil
}

func main() {
	config, err := loadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if config.Token == "" {
		log.Fatal("no token provided")
	}

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewPSQLDatabase(&database.Config{
		Log:     logger.Named("database"),
		ConnStr: config.ConnectionString,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	store, err := kvstore.NewStore(config.BadgerDir, logger.Named("kvstore"))
	if err != nil {
		logger.Fatal("failed to open kvstore", zap.Error(err))
	}
	defer store.Close()

	b, err := bot.NewBot(&bot.Config{
		Store:         store,
		Log:           logger.Named("bot"),
		DB:            db,
		Token:         config.Token,
		DefaultPrefix: config.Prefix,
	})
	if err != nil {
		logger.Fatal("failed to create bot", zap.Error(err))
	}
	defer b.Close()

	st := status.NewServer(logger.Named("status"))
	st.Register("bot", func() map[string]string {
		channels, err := db.CountTempChannels()
		if err != nil {
			channels = -1
		}
		return map[string]string{
			"guilds":        strconv.Itoa(b.GuildCount()),
			"temp_channels": strconv.Itoa(channels),
			"running_since": b.StartTime().Format("2006-01-02 15:04:05"),
		}
	})
	go func() {
		if err := st.Run(config.StatusAddr); err != nil {
			logger.Error("status server stopped", zap.Error(err))
		}
	}()

	if err := b.Run(); err != nil {
		logger.Fatal("failed to start bot", zap.Error(err))
	}

	// block until ctrl-c
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc
}

package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"argo-chat/internal/config"
	"argo-chat/internal/database"
	"argo-chat/internal/storage"
	"argo-chat/internal/widget"
)

type settings struct {
	config.ClientConfig
	Timeout  time.Duration
	LogLevel string
}

func main() {
	cfg := config.LoadClient()
	s := &settings{ClientConfig: *cfg}

	rootCmd := &cobra.Command{
		Use:           "argochat",
		Short:         "Ask the ARGO ocean data assistant from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(s.LogLevel)
			if err != nil {
				return errors.Wrap(err, "parse log level")
			}
			zerolog.SetGlobalLevel(level)
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&s.RelayURL, "relay-url", s.RelayURL, "base URL of the chat relay server")
	flags.StringVar(&s.Store, "store", s.Store, "where to keep the conversation: file, redis or sqlite")
	flags.StringVar(&s.StorePath, "store-path", s.StorePath, "directory for the file store, or database path stem for sqlite")
	flags.StringVar(&s.RedisURL, "redis-url", s.RedisURL, "Redis URL for the redis store")
	flags.StringVar(&s.Namespace, "namespace", s.Namespace, "conversation namespace")
	flags.DurationVar(&s.Timeout, "timeout", 90*time.Second, "HTTP timeout for relay calls")
	flags.StringVar(&s.LogLevel, "log-level", "warn", "log level")

	rootCmd.AddCommand(
		newAskCommand(s),
		newChatCommand(s),
		newHistoryCommand(s),
		newClearCommand(s),
		newToggleCommand(s),
		newModelsCommand(s),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("argochat failed")
		os.Exit(1)
	}
}

// openStore returns the configured key-value store and a func releasing it.
func openStore(s *settings) (storage.KeyValue, func(), error) {
	switch s.Store {
	case "file", "":
		fs, err := storage.NewFileStore(s.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil

	case "redis":
		if s.RedisURL == "" {
			return nil, nil, errors.New("--redis-url is required for the redis store")
		}
		client, err := database.NewRedisClient(s.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisStore(client, "argochat:"), func() { client.Close() }, nil

	case "sqlite":
		db, err := database.OpenSQLite(filepath.Join(s.StorePath, "argochat.db"))
		if err != nil {
			return nil, nil, err
		}
		return storage.NewSQLiteStore(db), func() { db.Close() }, nil

	default:
		return nil, nil, errors.Errorf("unknown store %q", s.Store)
	}
}

func openWidget(ctx context.Context, s *settings) (*widget.Widget, func(), error) {
	store, closeStore, err := openStore(s)
	if err != nil {
		return nil, nil, err
	}
	relay := widget.NewHTTPRelay(s.RelayURL, s.Timeout)
	return widget.New(ctx, relay, store, widget.WithNamespace(s.Namespace)), closeStore, nil
}

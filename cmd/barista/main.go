// Command barista synchronizes moderation state across a set of Bluesky
// accounts: personal blocks into shared moderation lists, cross-subscription to
// moderation lists, merged muted-word and labeler preferences, and link-card
// article posting.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	cli "github.com/urfave/cli/v2"

	"tangled.org/arabica.social/barista/internal/article"
	"tangled.org/arabica.social/barista/internal/bluesky"
	"tangled.org/arabica.social/barista/internal/config"
	"tangled.org/arabica.social/barista/internal/metrics"
	"tangled.org/arabica.social/barista/internal/sync"
)

func main() {
	app := &cli.App{
		Name:  "barista",
		Usage: "multi-account Bluesky moderation and preference sync",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: config.DefaultPath,
				Usage: "path to the accounts/lists YAML config",
			},
			&cli.StringFlag{
				Name:  "pds-host",
				Value: bluesky.DefaultHost,
				Usage: "PDS entryway to authenticate against",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "serve prometheus metrics on this address for the duration of the run",
			},
		},
		Before: func(cctx *cli.Context) error {
			setupLogging()
			return nil
		},
		Commands: []*cli.Command{
			syncBlocksCmd,
			syncListsCmd,
			syncPrefsCmd,
			postArticleCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}

// setupLogging configures zerolog from the environment: LOG_LEVEL selects the
// level, LOG_FORMAT=json switches from console to JSON output.
func setupLogging() {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if os.Getenv("LOG_FORMAT") == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}

// newRunner loads the config and builds a sync runner whose dialer creates one
// session per account against the configured PDS host. The returned stop
// function shuts down the metrics listener, if one was requested.
func newRunner(cctx *cli.Context) (*sync.Runner, func(), error) {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return nil, nil, err
	}

	stop := func() {}
	if addr := cctx.String("metrics-addr"); addr != "" {
		stop = metrics.Serve(addr)
	}

	host := cctx.String("pds-host")
	dial := func(ctx context.Context, acct config.Account) (sync.Client, error) {
		return bluesky.CreateSession(ctx, host, acct.Email, acct.Password)
	}

	return sync.NewRunner(cfg, dial), stop, nil
}

var syncBlocksCmd = &cli.Command{
	Name:  "sync-blocks",
	Usage: "move each account's personal blocks into the configured moderation lists, then unblock",
	Action: func(cctx *cli.Context) error {
		runner, stop, err := newRunner(cctx)
		if err != nil {
			return err
		}
		defer stop()

		runner.SyncBlocklists(cctx.Context)
		return nil
	},
}

var syncListsCmd = &cli.Command{
	Name:  "sync-lists",
	Usage: "subscribe every account to the union of moderation lists any account blocks",
	Action: func(cctx *cli.Context) error {
		runner, stop, err := newRunner(cctx)
		if err != nil {
			return err
		}
		defer stop()

		runner.SyncModlists(cctx.Context)
		return nil
	},
}

var syncPrefsCmd = &cli.Command{
	Name:  "sync-prefs",
	Usage: "merge muted words and labeler subscriptions across accounts and broadcast the result",
	Action: func(cctx *cli.Context) error {
		runner, stop, err := newRunner(cctx)
		if err != nil {
			return err
		}
		defer stop()

		runner.SyncPreferences(cctx.Context)
		return nil
	},
}

var postArticleCmd = &cli.Command{
	Name:  "post-article",
	Usage: "post a link card with metadata scraped from a URL",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "account",
			Usage:    "config name of the account to post as",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "url",
			Usage:    "URL of the article to share",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "text",
			Usage: "optional commentary to include with the post",
		},
		&cli.BoolFlag{
			Name:  "backdate",
			Value: true,
			Usage: "use the article's published time when it is more than a day old",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := config.Load(cctx.String("config"))
		if err != nil {
			return err
		}

		name := cctx.String("account")
		acct, ok := cfg.Accounts[name]
		if !ok {
			return fmt.Errorf("account %q not found in config", name)
		}

		client, err := bluesky.CreateSession(cctx.Context, cctx.String("pds-host"), acct.Email, acct.Password)
		if err != nil {
			return err
		}

		poster := article.NewPoster(client)
		permalink, posted, err := poster.Post(cctx.Context, article.Options{
			URL:      cctx.String("url"),
			Text:     cctx.String("text"),
			Backdate: cctx.Bool("backdate"),
		})
		if err != nil {
			return err
		}
		if !posted {
			log.Warn().Str("url", cctx.String("url")).Msg("nothing to post")
			return nil
		}

		log.Info().Str("permalink", permalink).Msg("article posted")
		fmt.Println(permalink)
		return nil
	},
}

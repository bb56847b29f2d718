package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/Kambucha375/faproulette-bot/app/handlers"
	"github.com/Kambucha375/faproulette-bot/app/sessions"
	"github.com/Kambucha375/faproulette-bot/app/telegram"
	"github.com/Kambucha375/faproulette-bot/pkg/faproulette"
	"github.com/Kambucha375/faproulette-bot/pkg/imaging"
	"github.com/Kambucha375/faproulette-bot/pkg/logger"
)

var opts struct {
	TelegramAPIToken   string        `long:"telegram-api-token" env:"TELEGRAM_API_TOKEN" required:"true" description:"telegram api token"`
	TelegramWorkersNum int           `long:"telegram-workers-num" env:"TELEGRAM_WORKERS_NUM" default:"5" description:"number of workers for telegram bot"`
	APIBaseURL         string        `long:"api-base-url" env:"API_BASE_URL" default:"https://faproulette.co" description:"content api base url"`
	FilesBaseURL       string        `long:"files-base-url" env:"FILES_BASE_URL" default:"https://files.faproulette.co" description:"media files base url"`
	MaxDimensionSum    int           `long:"max-dimension-sum" env:"MAX_DIMENSION_SUM" default:"10000" description:"width+height at which an image becomes a pdf document"`
	MaxAspectRatio     float64       `long:"max-aspect-ratio" env:"MAX_ASPECT_RATIO" default:"15" description:"height/width ratio at which an image becomes a pdf document"`
	SendAttempts       int           `long:"send-attempts" env:"SEND_ATTEMPTS" default:"3" description:"total photo send attempts before giving up"`
	RetryBackoff       time.Duration `long:"retry-backoff" env:"RETRY_BACKOFF" default:"2s" description:"wait between photo send attempts"`
	SentryDSN          string        `long:"sentry-dsn" env:"SENTRY_DSN" description:"sentry dsn, error reporting is off when empty"`
	Debug              bool          `long:"debug" env:"DEBUG" description:"enable debug logging"`
}

var Revision = "dev"

func main() {
	_ = godotenv.Load()

	_, err := flags.Parse(&opts)
	if err != nil {
		os.Exit(1)
	}

	log := logger.NewLogger(opts.Debug)
	log.Info("starting bot", "revision", Revision)

	if err := sentry.Init(sentry.ClientOptions{Dsn: opts.SentryDSN, Release: Revision}); err != nil {
		log.Error("initializing sentry", "error", err)
		os.Exit(1)
	}
	defer sentry.Flush(2 * time.Second)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	defer httpClient.CloseIdleConnections()

	bot := &telegram.Client{
		Log:          log,
		APIToken:     opts.TelegramAPIToken,
		WorkersNum:   opts.TelegramWorkersNum,
		SendAttempts: opts.SendAttempts,
		RetryBackoff: opts.RetryBackoff,
	}

	bot.Handler = &handlers.Handler{
		Log:        log,
		Roulettes:  faproulette.NewClient(opts.APIBaseURL, opts.FilesBaseURL, httpClient),
		Normalizer: imaging.NewNormalizer(opts.MaxDimensionSum, opts.MaxAspectRatio),
		Gateway:    bot,
		Sessions:   sessions.NewStore(),
	}

	err = bot.Start(ctx)
	if err != nil {
		log.Error("starting bot", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	log.Info("stopping bot")

	bot.Wait()

	os.Exit(0)
}

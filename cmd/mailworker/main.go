package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"conference-management-api/config"
	"conference-management-api/services"
)

// The mail worker consumes the AMQP email queue and delivers through the
// configured transport. Run it alongside the API when MAIL_QUEUE_URL is set.
func main() {
	if err := godotenv.Load(); err != nil {
		config.Logger.Info().Msg("No .env file found, using environment variables")
	}

	logFile := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	cfg := config.Load()
	if cfg.Mail.QueueURL == "" {
		config.Logger.Fatal().Msg("MAIL_QUEUE_URL is required for the mail worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mailer := services.NewMailer(cfg.Mail, config.Logger)

	config.Logger.Info().
		Str("queue", cfg.Mail.QueueName).
		Str("transport", cfg.Mail.Transport).
		Msg("mail worker starting")

	err := services.StartAMQPConsumer(ctx, cfg.Mail.QueueURL, cfg.Mail.QueueName, mailer, config.Logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		config.Logger.Fatal().Err(err).Msg("mail worker stopped")
	}
	config.Logger.Info().Msg("mail worker stopped")
}

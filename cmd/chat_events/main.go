package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"portfolio-chat-be/internal/config"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/pkg/events"
	pktNats "portfolio-chat-be/pkg/nats"

	"github.com/fatih/color"
)

// Tails chat and contact events from the stream through a durable consumer.
func main() {
	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		color.Red("NATS_URL is not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL, logger.NewZapLogger(cfg.App.LogFilePath, false))
	if err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
	defer sub.Close()

	show := func(_ context.Context, event events.Event) error {
		payload, err := json.Marshal(event.Payload())
		if err != nil {
			return err
		}
		switch event.EventType() {
		case events.TypeContactQueued:
			color.Yellow("%s %s %s", event.Timestamp().Format("15:04:05"), event.EventType(), payload)
		default:
			color.Cyan("%s %s %s", event.Timestamp().Format("15:04:05"), event.EventType(), payload)
		}
		return nil
	}

	for subject, durable := range map[string]string{"chat.>": "chat-events-tail", "contact.>": "contact-events-tail"} {
		if err := sub.Subscribe(ctx, subject, durable, show); err != nil {
			color.Red("Subscribe %s: %v", subject, err)
			os.Exit(1)
		}
	}

	color.Green("Listening on %s (Ctrl+C to stop)", pktNats.StreamName)
	<-ctx.Done()
}

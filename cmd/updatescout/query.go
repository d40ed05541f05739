package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/omerch/updatescout/internal/app"
	"github.com/omerch/updatescout/internal/interfaces"
)

// consoleTransport delivers replies to stdout. It stands in for a real chat
// transport (Telegram, webhook) when running from a terminal.
type consoleTransport struct{}

func newConsoleTransport() *consoleTransport {
	return &consoleTransport{}
}

func (t *consoleTransport) Send(_ context.Context, _ string, text string) error {
	fmt.Println()
	fmt.Println(text)
	fmt.Println()
	return nil
}

var _ interfaces.ChatTransport = (*consoleTransport)(nil)

// runOnce answers a single question and exits. Used by the -q flag.
func runOnce(application *app.App, userID, question string) error {
	return application.ChatService.HandleMessage(context.Background(), interfaces.IncomingMessage{
		ChatID: "console",
		UserID: userID,
		Text:   question,
	})
}

// runInteractive reads questions from stdin until EOF or an interrupt.
func runInteractive(application *app.App, userID string, logger arbor.ILogger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info().Msg("Interrupt signal received")
		cancel()
	}()

	fmt.Println("Ask about a phone or tablet update (Ctrl+D to quit):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		if err := application.ChatService.HandleMessage(ctx, interfaces.IncomingMessage{
			ChatID: "console",
			UserID: userID,
			Text:   line,
		}); err != nil {
			logger.Error().Err(err).Msg("Failed to handle message")
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

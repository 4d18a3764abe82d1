package main

import (
	"bufio"
	"chat-relay/client"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	ServerURL string `envconfig:"RELAY_URL" default:"http://localhost:8080"`
	Username  string `envconfig:"RELAY_USERNAME" required:"true"`
	Colours   bool   `envconfig:"RELAY_COLOURS" default:"true"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"INFO"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run registers, joins the room, then prints every broadcast while stdin lines are sent.
func run() (int, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cookie, err := client.Register(ctx, http.DefaultClient, config.ServerURL, config.Username)
	if err != nil {
		return exitRuntime, err
	}
	session, err := client.Dial(ctx, config.ServerURL, cookie)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		log.Info("Closing connection...")
		_ = session.Close()
	}()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				if err := session.Say(ctx, line); err != nil {
					log.Warn("Message not sent", "error", err)
				}
			}
		}
		stop()
	}()

	banner := fmt.Sprintf(">>> Connected to %s as %s (Ctrl+C to quit)", config.ServerURL, config.Username)
	if config.Colours {
		banner = color.Green.Render(banner)
	}
	fmt.Println(banner)
	for {
		envelope, err := session.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return exitOK, nil
			}
			return exitRuntime, fmt.Errorf("connection lost: %w", err)
		}
		fmt.Println(client.Render(envelope, config.Colours))
	}
}

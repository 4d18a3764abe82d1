package main

import (
	"chat-relay/repositories"
	"chat-relay/services"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	RecommendIndex string `env:"RECOMMEND_INDEX,default=final_data"`
	SearchSize     int    `env:"SEARCH_SIZE,default=10"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Indexer terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run loads a JSON lines corpus into the recommendation index the relay searches.
func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	input := flag.String("input", "-", "JSON lines corpus, - for stdin")
	index := flag.String("index", config.RecommendIndex, "Index name")
	batchSize := flag.Int("batch", 500, "Documents per index batch")
	flag.Parse()

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var r io.Reader = os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			return exitConfig, err
		}
		defer f.Close()
		r = f
	}

	documents := repositories.NewDocumentRepository(config.BlugeFilepath, config.SearchSize, logger)
	defer func() {
		logger.Info("Closing Bluge...")
		_ = documents.Close()
	}()

	report, err := services.NewIndexerService(logger, documents, *batchSize).Load(ctx, r, *index)
	if err != nil {
		return exitRuntime, err
	}
	logger.Info("Corpus indexed", "index", *index, "indexed", report.Indexed, "skipped", report.Skipped)
	return exitOK, nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/scipunch/jobscout/config"
	"github.com/scipunch/jobscout/fetcher"
	"github.com/scipunch/jobscout/pipeline"
	"github.com/scipunch/jobscout/server"
)

const onceLimit = 25

func main() {
	var cfgPath string
	var once bool
	flag.StringVar(&cfgPath, "config", config.DefaultPath(), "path to a TOML config")
	flag.BoolVar(&once, "once", false, "run the pipeline once, print results and exit")
	flag.Parse()

	// Optional .env next to the binary; real environment still wins
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("failed to load .env with %s", err)
	}

	// Read config and create if default is missing
	conf, err := config.Read(cfgPath)
	if errors.Is(err, os.ErrNotExist) && cfgPath == config.DefaultPath() {
		if err := config.Write(cfgPath, conf); err != nil {
			log.Fatalf("failed to write default config with %s", err)
		}
	} else if err != nil {
		log.Fatalf("failed to read config with %s", err)
	}
	if err := conf.ApplyEnv(); err != nil {
		log.Fatalf("failed to apply environment overrides with %s", err)
	}

	logger, err := buildLogger()
	if err != nil {
		log.Fatalf("failed to initialize logger with %s", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := pipeline.New(fetcher.NewRSSFetcher(), sugar)

	if once {
		runOnce(ctx, conf, runner)
		return
	}

	srv := server.New(conf, runner, sugar)
	if err := srv.Serve(ctx); err != nil {
		log.Fatalf("server exited with %s", err)
	}
}

// runOnce executes a single pipeline pass with process-level configuration
// and prints a human-readable listing of the first results.
func runOnce(ctx context.Context, conf config.Config, runner *pipeline.Runner) {
	feeds, err := conf.ResolveFeeds()
	if err != nil {
		log.Fatalf("failed to resolve feeds with %s", err)
	}
	if len(feeds) == 0 {
		fmt.Println("No feeds configured. Set FEED_URLS or provide a feeds file.")
		return
	}

	items := runner.Run(ctx, pipeline.Query{
		Feeds:    feeds,
		Hours:    conf.Hours,
		Keywords: conf.Keywords,
		Exclude:  conf.Exclude,
		Workers:  conf.FetchWorkers,
	})

	fmt.Printf("Found %d postings in last %dh matching %v\n", len(items), conf.Hours, conf.Keywords)
	for i, item := range items {
		if i == onceLimit {
			break
		}
		switch it := item.(type) {
		case pipeline.Posting:
			fmt.Printf("- %s  [%s]\n", it.Title, it.Source)
			fmt.Printf("  %s\n", it.Link)
			if it.Published != nil {
				fmt.Printf("  published: %s\n", it.Published.Format(time.RFC3339))
			}
		case pipeline.FetchError:
			fmt.Printf("- failed feed %s: %s\n", it.Feed, it.Error)
		}
	}
}

func buildLogger() (*zap.Logger, error) {
	if os.Getenv("DEBUG") != "" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

package main

import (
	"context"
	"flag"
	"log"

	"mathsketch/internal/analysis"
	"mathsketch/internal/config"
	"mathsketch/internal/net"
	"mathsketch/internal/notify"
	"mathsketch/internal/sketch"
	"mathsketch/internal/speech"
	"mathsketch/internal/state"
	"mathsketch/internal/surface"
	"mathsketch/internal/ui"
)

func main() {
	configPath := flag.String("config", config.Path(), "path to the TOML config file")
	endpoint := flag.String("endpoint", "", "analysis service URL (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *endpoint != "" {
		cfg.Endpoint = *endpoint
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg.Endpoint = resolveEndpoint(ctx, cfg)
	log.Printf("Using analysis service at %s", cfg.Endpoint)

	var engine speech.Engine = speech.NopEngine{}
	if cfg.Speech.Enabled {
		engine = speech.NewCommandEngine(cfg.Speech.Command)
	}
	announcer := speech.NewAnnouncer(engine, speech.Voice{
		Language: cfg.Speech.Language,
		Rate:     cfg.Speech.Rate,
		Pitch:    cfg.Speech.Pitch,
	})

	board := surface.New(state.Background)
	client := analysis.NewClient(cfg.Endpoint, cfg.Timeout.Duration)
	view := sketch.New(board, client, announcer, sketch.WithPrompt(cfg.Prompt))

	notifier := notify.New(cfg.Notify.Enabled)
	var feed *net.Feed
	if cfg.Feed.Enabled {
		feed = startFeed(ctx, cfg.Feed)
	}

	// Every finished submission goes to the desktop and to feed subscribers.
	view.OnResult = func(s sketch.Submission) {
		notifier.Result(s.Result)
		if feed != nil {
			feed.Broadcast(net.Message{ID: s.ID, Text: s.Result.Text, IsError: s.Result.IsError, At: s.At})
		}
	}

	ui.RunApp(view, board, announcer)
}

// resolveEndpoint falls back to mDNS discovery when no endpoint is configured.
func resolveEndpoint(ctx context.Context, cfg *config.Config) string {
	if cfg.Endpoint != "" || !cfg.Discovery.Enabled {
		return cfg.Endpoint
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Discovery.Wait.Duration)
	defer cancel()
	found, err := net.DiscoverEndpoint(ctx, cfg.Discovery.Service)
	if err != nil {
		log.Printf("[MDNS] Discovery failed, using %s: %v", analysis.DefaultEndpoint, err)
		return analysis.DefaultEndpoint
	}
	return found
}

// startFeed binds the result feed and advertises it. A busy port disables the
// feed for this run.
func startFeed(ctx context.Context, cfg config.Feed) *net.Feed {
	ln, err := net.Listen(cfg.Port)
	if err != nil {
		log.Printf("[FEED] %v; results will not be shared", err)
		return nil
	}
	feed := net.NewFeed()
	go func() {
		if err := feed.Serve(ctx, ln); err != nil {
			log.Printf("[FEED] %v", err)
		}
	}()

	server, err := net.Advertise(cfg.Service, cfg.Port, "MathSketch results")
	if err != nil {
		log.Printf("[MDNS] %v", err)
	} else {
		go func() {
			<-ctx.Done()
			server.Shutdown()
		}()
	}

	log.Printf("[FEED] Results are shared at %s", net.FeedURL(net.OutgoingIP(), cfg.Port))
	return feed
}

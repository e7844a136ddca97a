// matchupd is the matchup simulator daemon. It serves the session API
// over HTTP, streams recompute results over WebSocket, and persists
// baseline simulations to a local history database.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/statline/matchup-sim/pkg/history"
	"github.com/statline/matchup-sim/pkg/metrics"
	"github.com/statline/matchup-sim/pkg/server"
	"github.com/statline/matchup-sim/pkg/session"
	"github.com/statline/matchup-sim/pkg/streaming"
	"github.com/statline/matchup-sim/pkg/upstream"
)

var (
	// Flags
	httpAddr    = flag.String("http", ":8080", "HTTP server address")
	upstreamURL = flag.String("upstream", "", "Simulation API base URL (or MATCHUP_UPSTREAM_URL env)")
	dbPath      = flag.String("db", "matchup-history.db", "History database path (empty disables history)")
	rateLimit   = flag.Float64("rate", 5, "Upstream requests per second")
)

func main() {
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("Starting matchup simulator daemon")

	baseURL := *upstreamURL
	if baseURL == "" {
		baseURL = os.Getenv("MATCHUP_UPSTREAM_URL")
	}

	opts := []upstream.ClientOption{upstream.WithRateLimit(*rateLimit, 3)}
	if baseURL != "" {
		opts = append(opts, upstream.WithBaseURL(baseURL))
	}
	client := upstream.NewClient(opts...)

	var store *history.Store
	if *dbPath != "" {
		var err error
		store, err = history.New(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open history database: %v", err)
		}
		defer store.Close()

		if err := store.Migrate(); err != nil {
			log.Fatalf("Failed to migrate history database: %v", err)
		}
		log.Printf("History database ready at %s", *dbPath)
	} else {
		log.Println("History disabled")
	}

	hub := streaming.NewHub()
	go hub.Run()

	manager := session.NewManager(client)
	m := metrics.NewSimMetrics()
	srv := server.NewServer(manager, store, hub, m)

	httpServer := &http.Server{
		Addr:         *httpAddr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", *httpAddr)
		log.Printf("WebSocket streaming available at ws://%s/ws", *httpAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	log.Printf("Final stats: %d sessions live at shutdown", manager.Count())
	log.Println("Goodbye!")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"nav-tracking-service/internal/adapters/cache"
	"nav-tracking-service/internal/adapters/routing"
	"nav-tracking-service/internal/adapters/triplog"
	"nav-tracking-service/internal/api"
	"nav-tracking-service/internal/api/handlers"
	"nav-tracking-service/internal/config"
	"nav-tracking-service/internal/platform/db"
	"nav-tracking-service/internal/ports"
	"nav-tracking-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (OSRM, Redis, Postgres) behind ports and starts
// the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yml"))
	if err != nil {
		log.Fatal(err)
	}

	// Redis is optional: without it every route request hits OSRM.
	var routeCache ports.RouteCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("parse redis url: %v", err)
		}
		rc, err := cache.NewRedisRouteCache(redis.NewClient(opts), cfg.CacheTTL())
		if err != nil {
			log.Fatal(err)
		}
		routeCache = rc
		log.Printf("route cache enabled ttl=%s", cfg.CacheTTL())
	}

	routeService, err := routing.NewOSRMRouteService(cfg.Routing.BaseURL, routeCache)
	if err != nil {
		log.Fatal(err)
	}

	// Postgres is optional: without it finished trips are not persisted and
	// GET /trips reports the log as unconfigured.
	var trips ports.TripStore
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		if err := triplog.InitSchema(conn); err != nil {
			log.Fatal(err)
		}
		trips = triplog.NewPostgresTripStore(conn)
		log.Println("trip log enabled")
	}

	sessionDefaults := services.Options{
		RerouteThresholdMeters: cfg.Session.RerouteThresholdMeters,
		ProgressInterval:       time.Duration(cfg.Session.ProgressIntervalSec) * time.Second,
		DebounceWindow:         time.Duration(cfg.Session.DebounceMS) * time.Millisecond,
		FixTimeout:             time.Duration(cfg.Session.FixTimeoutSec) * time.Second,
		ViewZoom:               cfg.Session.ViewZoom,
	}

	router := api.NewRouter(handlers.NewSessionRegistry(), routeService, trips, sessionDefaults,
		handlers.FixSourceConfig{
			BrokerURL:   cfg.MQTTURL,
			TopicPrefix: cfg.MQTTTopicPrefix,
		})

	// WriteTimeout is deliberately unset: /sessions/{id}/stream holds the
	// connection open for the life of the session.
	addr := ":" + strconv.Itoa(cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadHeaderTimeout) * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening addr=%s osrm=%s", addr, cfg.Routing.BaseURL)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal(err)
	case sig := <-stop:
		log.Printf("shutting down signal=%s", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownGraceSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

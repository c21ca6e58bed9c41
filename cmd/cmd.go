package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/config"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/handlers"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/middleware"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/repository"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	configPath := os.Getenv("WIMY_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to the store
	store, err := repository.NewStore(context.Background(), cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer store.Close()
	log.Info().Str("type", cfg.Database.Type).Msg("Store ready")

	// Initialize services
	eventsHub := services.NewEventsHub()
	stopService := services.NewStopService(store.Stops, eventsHub)
	cafeService := services.NewCafeService(store.Cafes, store.Stops, eventsHub)
	userService := services.NewUserService(store.Users, store.Stops, store.Cafes, store.Visits, eventsHub)

	// Initialize handlers
	stopHandler := handlers.NewStopHandler(stopService)
	cafeHandler := handlers.NewCafeHandler(cafeService)
	userHandler := handlers.NewUserHandler(userService)
	wsHandler := handlers.NewWebSocketHandler(eventsHub)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Query surface: absence is data, no identity needed
		r.Get("/stops", stopHandler.ListStops)
		r.Get("/stops/search", stopHandler.SearchStops)
		r.Get("/stops/{stop_id}", stopHandler.GetStop)
		r.Get("/stops/{stop_id}/nearby", stopHandler.GetNearbyStops)
		r.Get("/cafes", cafeHandler.ListCafes)
		r.Get("/cafes/{cafe_id}", cafeHandler.GetCafe)

		// Import surface, used by the seed tooling
		r.Post("/stops", stopHandler.CreateStop)
		r.Delete("/stops", stopHandler.ClearAllStops)

		// Per-device routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireDeviceID)
			r.Post("/cafes", cafeHandler.CreateCafe)
			r.Post("/users", userHandler.CreateOrGetUser)
			r.Put("/users/home-stop", userHandler.SetHomeStop)
			r.Post("/users/favorites", userHandler.AddFavorite)
			r.Delete("/users/favorites/{cafe_id}", userHandler.RemoveFavorite)
			r.Post("/visits", userHandler.RecordVisit)
			r.Get("/visits", userHandler.ListVisits)
		})
	})

	// WebSocket live-update feed
	r.Get("/ws", wsHandler.HandleWebSocket)

	r.Get("/health", handlers.Health)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "X-Device-ID, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

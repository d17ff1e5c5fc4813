package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"CiviAI/internal/calc/beam"
	"CiviAI/internal/calc/loads"
	"CiviAI/internal/calc/material"
	"CiviAI/internal/calc/report"
	"CiviAI/internal/calc/soil"
	"CiviAI/internal/chat"
	"CiviAI/internal/config"
	"CiviAI/internal/iscode"
	"CiviAI/internal/middleware"
	"CiviAI/internal/ratelimit"
	"CiviAI/internal/version"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var wg sync.WaitGroup

func HandleList(mux *mux.Router, cfg *config.Config, limiter ratelimit.Limiter, logger *zerolog.Logger) error {
	backend := chat.NewBackend(chat.Options{
		Backend:         cfg.ChatBackend,
		OpenRouterKey:   cfg.OpenRouterKey,
		OpenRouterModel: cfg.OpenRouterModel,
		OpenRouterURL:   cfg.OpenRouterURL,
		AppURL:          cfg.AppURL,
		OllamaURL:       cfg.OllamaURL,
		OllamaModel:     cfg.OllamaModel,
		Timeout:         cfg.LLMTimeout,
	})
	if backend == nil {
		logger.Warn().Str("backend", cfg.ChatBackend).Msg("chat backend not configured, IS-code lookups use the knowledge base only")
	}

	kb, err := iscode.LoadKnowledgeBase()
	if err != nil {
		return err
	}

	api := mux.PathPrefix("/api").Subrouter()

	beamH := &beam.Handler{}
	materialH := &material.Handler{}
	soilH := &soil.Handler{}
	loadsH := &loads.Handler{}
	reportH := &report.Handler{}
	chatH := &chat.Handler{Backend: backend}
	isCodeH := &iscode.Handler{Service: &iscode.Service{Backend: backend, Knowledge: kb}}

	api.HandleFunc("/tools/beam/calc", beamH.Calc).Methods("POST")
	api.HandleFunc("/tools/beam/batch", beamH.Batch).Methods("POST")
	api.HandleFunc("/tools/beam/import", beamH.Import).Methods("POST")
	api.HandleFunc("/tools/beam/export", beamH.Export).Methods("POST")
	api.HandleFunc("/tools/beam/chart", beamH.Chart).Methods("POST")
	api.HandleFunc("/tools/beam/design", beamH.Design).Methods("POST")
	api.HandleFunc("/tools/material/calc", materialH.Calc).Methods("POST")
	api.HandleFunc("/tools/soil/calc", soilH.Calc).Methods("POST")
	api.HandleFunc("/tools/loads/calc", loadsH.Calc).Methods("POST")
	api.HandleFunc("/tools/report/pdf", reportH.Generate).Methods("POST")
	api.HandleFunc("/generate-report", reportH.Generate).Methods("POST")

	api.Handle("/chat", ratelimit.Middleware(limiter)(http.HandlerFunc(chatH.Chat))).Methods("POST")
	api.HandleFunc("/is-code/codes", isCodeH.Codes).Methods("GET")
	api.HandleFunc("/is-code", isCodeH.Lookup).Methods("POST")

	api.HandleFunc("/version", version.Handler).Methods("GET")

	mux.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))
	return nil
}

// newLimiter prefers the shared Redis limiter and falls back to the
// in-process one when REDIS_URL is unset or unreachable. The returned
// closer releases the Redis connection pool.
func newLimiter(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (ratelimit.Limiter, func() error, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		err = client.Ping(pingCtx).Err()
		if err == nil {
			limiter, err := ratelimit.NewRedis(client, cfg.ChatRateLimit, cfg.ChatRateWindow, "civiai:chat:")
			if err != nil {
				client.Close()
				return nil, nil, err
			}
			logger.Info().Str("addr", opts.Addr).Msg("using redis rate limiter")
			return limiter, client.Close, nil
		}
		logger.Warn().Err(err).Msg("redis unavailable, using in-memory rate limiter")
		client.Close()
	}

	m, err := ratelimit.NewMemory(cfg.ChatRateLimit, cfg.ChatRateWindow)
	if err != nil {
		return nil, nil, err
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.Run(ctx, cfg.ChatRateWindow)
	}()
	return m, func() error { return nil }, nil
}

func main() {
	configPath := flag.String("config", "", "path to a config file")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("invalid log level")
	}
	logger = logger.Level(level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	limiter, closeLimiter, err := newLimiter(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create rate limiter")
	}

	router := mux.NewRouter()
	if err := HandleList(router, cfg, limiter, &logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to register handlers")
	}
	handler := middleware.Logger(&logger)(middleware.Recover(middleware.CORS(cfg.Origins())(router)))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info().Str("addr", cfg.Addr).Bool("tls", cfg.TLS()).Str("version", version.Version).Msg("starting server")
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received, closing active connections")

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	if err := closeLimiter(); err != nil {
		logger.Error().Err(err).Msg("failed to close rate limiter")
	}
	logger.Info().Msg("server stopped")

	wg.Wait()
}

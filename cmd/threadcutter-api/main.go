// Package main is the entry point for the threadcutter-api server.
// Note: user accounts, OAuth, and sessions are handled by the hosted auth
// service; this server only verifies its tokens.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/threadcutter/threadcutter-api/internal/auth"
	"github.com/threadcutter/threadcutter-api/internal/config"
	"github.com/threadcutter/threadcutter-api/internal/constants"
	"github.com/threadcutter/threadcutter-api/internal/database"
	"github.com/threadcutter/threadcutter-api/internal/http/handlers"
	"github.com/threadcutter/threadcutter-api/internal/http/mw"
	"github.com/threadcutter/threadcutter-api/internal/identity"
	"github.com/threadcutter/threadcutter-api/internal/logging"
	"github.com/threadcutter/threadcutter-api/internal/repository"
	"github.com/threadcutter/threadcutter-api/internal/service"
	"github.com/threadcutter/threadcutter-api/internal/version"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger := logging.SetDefault()

	v := version.Get()
	logger.Info("starting threadcutter-api",
		"version", v.Version,
		"commit", v.Commit,
		"built", v.Date,
		"go_version", v.GoVersion,
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := database.MigrateWithLogger(db, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)

	services, err := service.NewServices(cfg, repos, logger)
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	verifier := auth.NewVerifier(cfg.JWTKey, cfg.JWTIssuer)
	identityProvider := identity.NewHMACProvider(cfg.FingerprintKey)

	ctx, cancel := context.WithCancel(context.Background())

	// Background loops
	if cfg.CleanupEnabled {
		go services.Cleanup.RunScheduledCleanup(ctx, cfg.CleanupMaxAgeUsage, cfg.CleanupMaxAgeChats, cfg.CleanupInterval)
	}
	if services.Settings.IsEnabled() {
		go services.Settings.RunScheduledRefresh(ctx, cfg.SettingsRefresh)
		logger.Info("settings refresh started",
			"bucket", cfg.SettingsBucket,
			"key", cfg.SettingsKey,
			"interval", cfg.SettingsRefresh.String(),
		)
	}

	// Create router
	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(mw.Timeout(mw.TimeoutConfig{
		Default:  constants.DefaultRequestTimeout,
		Extended: constants.FormatRequestTimeout,
		// Generation endpoints wait on the provider
		ExtendedPatterns: []string{"/format", "/rewrite"},
	}))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type", "X-Request-ID",
			"X-Device-Timezone", "X-Device-Screen", "X-Device-Platform",
		},
		ExposedHeaders:   []string{"Link", "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Request size limit - prevent large payload attacks
	router.Use(middleware.RequestSize(constants.MaxRequestBodySize))

	// Global rate limit by IP (identities are resolved per-group below)
	router.Use(mw.RateLimitByIP(constants.GlobalIPRateLimitPerMinute))

	// Global concurrency throttle
	router.Use(middleware.Throttle(constants.GlobalConcurrencyLimit))

	// Huma API config with OpenAPI docs
	humaConfig := huma.DefaultConfig("ThreadCutter API", v.Version)
	humaConfig.Info.Description = "Splits long-form text into platform-sized social post threads, with per-identity daily quotas and premium subscriptions."
	humaConfig.Servers = []*huma.Server{
		{URL: cfg.BaseURL, Description: "API Server"},
	}
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:        "http",
			Scheme:      "bearer",
			Description: "Bearer token issued by the hosted auth service.",
		},
	}
	api := humachi.New(router, humaConfig)

	// Config for hidden routes (K8s probes - no docs needed)
	hiddenConfig := huma.DefaultConfig("ThreadCutter API", v.Version)
	hiddenConfig.DocsPath = ""
	hiddenConfig.OpenAPIPath = ""
	hiddenConfig.SchemasPath = ""
	hiddenAPI := humachi.New(router, hiddenConfig)

	// Config for grouped routes (docs served by the main API only)
	groupConfig := huma.DefaultConfig("ThreadCutter API", v.Version)
	groupConfig.Info.Description = humaConfig.Info.Description
	groupConfig.Servers = humaConfig.Servers
	groupConfig.DocsPath = ""
	groupConfig.OpenAPIPath = ""
	groupConfig.SchemasPath = ""

	// Public routes
	huma.Get(api, "/api/v1/health", handlers.HealthCheck)
	huma.Get(api, "/api/v1/pricing/tiers", handlers.ListTierLimits)
	huma.Get(api, "/api/v1/pricing/platforms", handlers.ListPlatforms)
	billingHandler := handlers.NewBillingHandler(services.Billing)
	huma.Get(api, "/api/v1/pricing/plans", billingHandler.ListPlans)

	// Kubernetes probes (hidden from docs - internal use only)
	huma.Get(hiddenAPI, "/healthz", handlers.Livez)
	huma.Get(hiddenAPI, "/readyz", handlers.NewReadyzHandler(db).Readyz)

	// Stripe webhook (signature verified by the handler, not user auth)
	if cfg.StripeEnabled() {
		stripeWebhook := handlers.NewStripeWebhookHandler(cfg, services.Billing, logger)
		router.Post("/api/v1/webhooks/stripe", stripeWebhook.HandleWebhook)
		logger.Info("stripe webhook endpoint enabled")
	}

	// Identity-resolved routes: formatting and usage are open to anonymous
	// devices, quotas keyed by the resolved identity
	router.Group(func(r chi.Router) {
		r.Use(mw.Identity(verifier, identityProvider))
		r.Use(mw.RateLimitByIdentity(mw.DefaultRateLimitConfig(), services.Ledger))

		openAPI := humachi.New(r, groupConfig)

		formatHandler := handlers.NewFormatHandler(services.Formatter, services.Ledger, services.Chat, logger)
		huma.Post(openAPI, "/api/v1/format", formatHandler.Format)
		huma.Post(openAPI, "/api/v1/rewrite", formatHandler.Rewrite)

		huma.Get(openAPI, "/api/v1/usage", handlers.NewUsageHandler(services.Ledger).GetUsage)
	})

	// Signed-in routes: chat history and billing
	router.Group(func(r chi.Router) {
		r.Use(mw.Identity(verifier, identityProvider))
		r.Use(mw.RequireUser())
		r.Use(mw.RateLimitByIdentity(mw.DefaultRateLimitConfig(), services.Ledger))

		userAPI := humachi.New(r, groupConfig)

		chatHandler := handlers.NewChatHandler(services.Chat)
		huma.Get(userAPI, "/api/v1/chats", chatHandler.ListChats)
		huma.Post(userAPI, "/api/v1/chats", chatHandler.CreateChat)
		huma.Get(userAPI, "/api/v1/chats/{id}", chatHandler.GetChat)
		huma.Put(userAPI, "/api/v1/chats/{id}", chatHandler.UpdateChat)
		huma.Delete(userAPI, "/api/v1/chats/{id}", chatHandler.DeleteChat)
		huma.Put(userAPI, "/api/v1/chats/{id}/messages/{messageId}/posts", chatHandler.UpdateMessagePosts)

		huma.Get(userAPI, "/api/v1/subscription", billingHandler.GetSubscription)
		huma.Post(userAPI, "/api/v1/subscription", billingHandler.Subscribe)
		huma.Delete(userAPI, "/api/v1/subscription", billingHandler.CancelSubscription)
		huma.Get(userAPI, "/api/v1/payments", billingHandler.ListPayments)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: constants.FormatRequestTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		<-sigChan

		logger.Info("shutting down server")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("starting server", "port", cfg.Port, "base_url", cfg.BaseURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mlm-membership-platform/internal/config"
	"mlm-membership-platform/internal/infra/api"
	"mlm-membership-platform/internal/infra/api/apiv1"
	pg "mlm-membership-platform/internal/infra/db/postgres"
	"mlm-membership-platform/internal/infra/logging"
	"mlm-membership-platform/internal/infra/metrics"
	red "mlm-membership-platform/internal/infra/redis"
	"mlm-membership-platform/internal/infra/security"
	"mlm-membership-platform/internal/infra/storage"
	"mlm-membership-platform/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no sampling)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	// ---- Metrics ----
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Encryption + document store ----
	encKey := cfg.Storage.EncryptionKey
	if len(encKey) != 32 {
		logger.Warn().Msg("storage.encryption_key not 32 bytes; falling back to dev key (INSECURE)")
		encKey = "0123456789abcdef0123456789abcdef"
	}
	encSvc, err := security.NewEncryptionService(encKey)
	if err != nil {
		log.Fatalf("encryption: %v", err)
	}
	docStore, err := storage.NewEncryptedDiskStore(cfg.Storage.DocumentDir, encSvc)
	if err != nil {
		log.Fatalf("document store: %v", err)
	}

	// ---- Repositories + procedure adapters ----
	txManager := pg.NewTxManager(pool)
	memberRepo := pg.NewPostgresMemberRepo(pool)
	epinRepo := pg.NewEPinRepo(pool)
	planRepo := pg.NewPlanRepo(pool)
	enrollmentRepo := pg.NewEnrollmentRepo(pool)
	rewardRepo := pg.NewRewardRepo(pool)
	profileRepo := pg.NewProfileRepo(pool)
	treePlacer := pg.NewTreePlacerProc(pool)
	treeRenderer := pg.NewTreeRendererProc(pool)
	rewardCalc := pg.NewRewardCalculatorProc(pool)
	sponsorChain := pg.NewSponsorChainProc(pool)

	// ---- Security ----
	hasher := security.NewBcryptHasher(0)
	authMgr := apiv1.NewAuthManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	// ---- Use cases ----
	registrationUC := usecase.NewRegistrationUseCase(memberRepo, epinRepo, planRepo, enrollmentRepo, treePlacer, hasher, txManager, logger)
	authUC := usecase.NewAuthUseCase(memberRepo, enrollmentRepo, hasher, authMgr, logger)
	epinUC := usecase.NewEPinUseCase(epinRepo, memberRepo, planRepo, txManager, logger)
	rewardUC := usecase.NewRewardUseCase(rewardRepo, planRepo, rewardCalc, logger)
	profileUC := usecase.NewProfileUseCase(profileRepo, docStore, logger)
	treeUC := usecase.NewTreeUseCase(treeRenderer, sponsorChain, enrollmentRepo, rewardRepo, logger)
	planUC := usecase.NewPlanUseCase(planRepo, logger)

	// ---- HTTP ----
	apiServer := apiv1.NewServer(registrationUC, authUC, epinUC, rewardUC, profileUC, treeUC, planUC, authMgr, rateLimiter, cfg.RateLimit, logger)

	root := chi.NewRouter()
	root.Mount("/api/v1", apiServer.Routes())
	root.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := redisClient.Ping(r.Context()); err != nil {
			http.Error(w, "degraded", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	root.Method(http.MethodGet, "/metrics", promhttp.Handler())

	handler := api.Chain(root,
		api.TraceID(),
		api.RequestLog(logger),
		api.Recover(logger),
		api.Timeout(30*time.Second),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- DB pool gauge ----
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st := pool.Stat()
				metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
			}
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}

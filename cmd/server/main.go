package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"internship-portal/backend/internal/access"
	accesshandler "internship-portal/backend/internal/access/handler"
	"internship-portal/backend/internal/audit"
	auditrepo "internship-portal/backend/internal/audit/repository"
	"internship-portal/backend/internal/config"
	"internship-portal/backend/internal/db"
	healthhandler "internship-portal/backend/internal/health/handler"
	"internship-portal/backend/internal/identity/provider"
	identityrepo "internship-portal/backend/internal/identity/repository"
	identityservice "internship-portal/backend/internal/identity/service"
	"internship-portal/backend/internal/identity/store"
	"internship-portal/backend/internal/logger"
	"internship-portal/backend/internal/policy/engine"
	profilehandler "internship-portal/backend/internal/profile/handler"
	profilerepo "internship-portal/backend/internal/profile/repository"
	profileservice "internship-portal/backend/internal/profile/service"
	"internship-portal/backend/internal/security"
	"internship-portal/backend/internal/server"
	sessionhandler "internship-portal/backend/internal/session/handler"
	sessionrepo "internship-portal/backend/internal/session/repository"
	sessionservice "internship-portal/backend/internal/session/service"
	"internship-portal/backend/internal/telemetry"
	telemetryotel "internship-portal/backend/internal/telemetry/otel"
	"internship-portal/backend/internal/telemetry/producer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, flush, err := logger.Install(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("agent stopped", zap.Error(err))
		flush()
		os.Exit(1)
	}
}

// backend is the optional remote identity backend. All fields are nil in demo-only mode.
type backend struct {
	db      *sql.DB
	redis   *redis.Client
	store   *store.RemoteStore
	roles   *identityrepo.PostgresRepository
	profile *profilerepo.PostgresRepository
	audit   *audit.Logger
}

func (b *backend) close(log *zap.Logger) {
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.Warn("redis close", zap.Error(err))
		}
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			log.Warn("database close", zap.Error(err))
		}
	}
}

func openBackend(cfg *config.Config, log *zap.Logger) (*backend, error) {
	b := &backend{}
	if !cfg.RemoteBackendEnabled() {
		log.Info("remote backend not configured; serving demo identities only")
		return b, nil
	}
	var err error
	if b.db, err = db.Open(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if b.redis, err = db.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		b.close(log)
		return nil, fmt.Errorf("redis: %w", err)
	}
	priv, pub, err := security.LoadKeyPair(cfg.JWTPrivateKey, cfg.JWTPublicKey)
	if err != nil {
		b.close(log)
		return nil, fmt.Errorf("jwt keys: %w", err)
	}
	tokens := security.NewTokenProvider(priv, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.SessionTTL())
	b.roles = identityrepo.NewPostgresRepository(b.db)
	b.profile = profilerepo.NewPostgresRepository(b.db)
	b.audit = audit.NewLogger(auditrepo.NewPostgresRepository(b.db), log)
	sessions := sessionrepo.NewRedisRepository(b.redis, cfg.SessionKeyPrefix, cfg.SessionChannel, log)
	b.store = store.NewRemoteStore(b.roles, sessions, tokens, security.NewHasher(cfg.BcryptCost), store.FileToken{Path: cfg.SessionTokenFile}, log)
	return b, nil
}

func newDecider(ctx context.Context, cfg *config.Config, log *zap.Logger) (access.Decider, healthhandler.PolicyChecker, error) {
	if cfg.AccessPolicyEngine != "opa" {
		return access.TableDecider{}, nil, nil
	}
	policy := engine.DefaultPolicy()
	if cfg.AccessPolicyFile != "" {
		b, err := os.ReadFile(cfg.AccessPolicyFile)
		if err != nil {
			return nil, nil, fmt.Errorf("access policy: %w", err)
		}
		policy = string(b)
	}
	d, err := engine.NewOPADecider(ctx, policy)
	if err != nil {
		return nil, nil, fmt.Errorf("access policy: %w", err)
	}
	log.Info("route gate uses OPA policy", zap.String("file", cfg.AccessPolicyFile))
	return d, d, nil
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Settings{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	providers.SetGlobal()
	defer func() {
		time.Sleep(telemetry.ShutdownDrainDuration)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	metrics, err := telemetryotel.NewMetricsEmitter(providers.MeterProvider)
	if err != nil {
		return fmt.Errorf("telemetry metrics: %w", err)
	}
	requestEvents := telemetry.Multi{telemetryotel.NewEventEmitter(providers.LoggerProvider), metrics}
	sessionEvents := append(telemetry.Multi{}, requestEvents...)

	if brokers := cfg.TelemetryKafkaBrokersList(); len(brokers) > 0 {
		var kafka producer.Producer = producer.NewKafkaProducer(brokers, cfg.TelemetryKafkaTopic)
		defer func() {
			if err := kafka.Close(); err != nil {
				log.Warn("kafka producer close", zap.Error(err))
			}
		}()
		sessionEvents = append(sessionEvents, kafka)
	}

	b, err := openBackend(cfg, log)
	if err != nil {
		return err
	}
	defer b.close(log)

	var (
		identityStore store.Store
		roleLookup    identityservice.RoleLookup
		profileRepo   profilerepo.Repository
		pinger        healthhandler.Pinger
		selector      provider.Selector
		demoRoles     identityservice.DemoRoles
	)
	if b.store != nil {
		identityStore = b.store
		roleLookup = b.roles
		profileRepo = b.profile
		pinger = b.db
		selector.Remote = provider.NewStoreProvider(b.store)
		if len(cfg.TelemetryKafkaBrokersList()) == 0 {
			sessionEvents = append(sessionEvents, b.audit)
		}
	}
	if cfg.DemoAccountsEnabled {
		selector.Demo = provider.NewDemoProvider(provider.DefaultDemoAccounts())
		demoRoles = selector.Demo
	}

	manager := sessionservice.NewManager(sessionservice.Options{
		Store:            identityStore,
		Providers:        selector,
		Roles:            identityservice.NewRoleResolver(roleLookup, demoRoles, log),
		Emitter:          sessionEvents,
		Logger:           log,
		BootstrapTimeout: cfg.BootstrapTimeout(),
	})
	profiles := profileservice.NewResolver(profileservice.Options{
		Repo:         profileRepo,
		DemoProfiles: cfg.DemoAccountsEnabled,
		Emitter:      sessionEvents,
		Logger:       log,
	})
	unfollow := manager.Subscribe(profiles.Follow(ctx))
	defer unfollow()

	decider, policyCheck, err := newDecider(ctx, cfg, log)
	if err != nil {
		return err
	}

	grpcServer := server.NewGRPCServer(log, requestEvents)
	server.RegisterServices(grpcServer, server.Deps{
		Health: healthhandler.NewServer(manager.Ready(), pinger, policyCheck, log),
	})

	httpServer := server.NewHTTPServer(cfg.HTTPAddr, server.NewRouter(server.RouterOptions{
		Session:     sessionhandler.NewHandler(manager, log),
		Access:      accesshandler.NewHandler(access.NewGate(manager, decider, log)),
		Profile:     profilehandler.NewHandler(profiles, log),
		Sessions:    manager,
		CORSOrigins: cfg.CORSOrigins(),
		Logger:      log,
	}))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	manager.Start(ctx)
	defer manager.Stop()

	g, gctx := errgroup.WithContext(ctx)
	if b.store != nil {
		g.Go(func() error {
			if err := b.store.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("session change stream: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		log.Info("gRPC health server listening", zap.String("addr", cfg.GRPCAddr))
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		log.Info("HTTP API listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

package cmd

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/securecookie"
	"github.com/heartscript/storefront/app/configs"
	"github.com/heartscript/storefront/app/models/migrations"
	"github.com/heartscript/storefront/app/repositories"
	"github.com/heartscript/storefront/app/routes"
	"github.com/heartscript/storefront/app/services"
	"github.com/heartscript/storefront/app/services/invoice"
	"github.com/heartscript/storefront/app/services/mirror"
	"github.com/heartscript/storefront/app/utils/renderer"
	"github.com/heartscript/storefront/app/utils/sessions"
	"github.com/heartscript/storefront/app/utils/storage"
	"github.com/heartscript/storefront/app/utils/token"
	"github.com/rs/zerolog/log"
)

const (
	adminTokenTTL   = 8 * time.Hour
	shutdownTimeout = 10 * time.Second
)

// Serve wires the storefront and blocks until ctx is cancelled or the
// process receives SIGINT/SIGTERM.
func Serve(ctx context.Context, env configs.ENV) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := configs.OpenConnection(env)
	if err != nil {
		return err
	}
	if err := migrations.AutoMigrate(db); err != nil {
		return err
	}
	log.Info().Str("driver", env.DBDriver).Msg("Database connected")

	keys, err := configs.LoadSessionKeys(env)
	if err != nil {
		if env.IsProduction() {
			return err
		}
		log.Warn().Err(err).Msg("Using throwaway session keys")
		keys = configs.DevSessionKeys()
	}
	sessionStore := sessions.NewCookieSessionStore(env.IsProduction(), keys.AuthKey, keys.EncKey)

	tokens, err := newTokenManager(env)
	if err != nil {
		return err
	}

	disk, err := newDisk(ctx, env)
	if err != nil {
		return err
	}

	sinks, closeSinks := openMirrors(ctx, env)
	defer closeSinks()
	syncer := mirror.NewSyncer(sinks, mirror.DefaultTimeout)

	var policy services.StatusPolicy = services.FreeFormPolicy{}
	if env.OrderStatusStrict {
		policy = services.DefaultTransitions
	}

	userRepo := repositories.NewUserRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	productRepo := repositories.NewProductRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)

	var csrfKey []byte
	if env.CSRFKey != "" {
		if csrfKey, err = base64.URLEncoding.DecodeString(env.CSRFKey); err != nil {
			return fmt.Errorf("failed to decode CSRF_KEY from Base64: %w", err)
		}
	}
	if env.AdminPassword == "" {
		log.Warn().Msg("ADMIN_PASSWORD is empty, admin login is disabled")
	}

	router := routes.NewRouter(routes.Deps{
		Render:        renderer.New(!env.IsProduction()),
		Validator:     validator.New(),
		Logger:        log.Logger,
		Sessions:      sessionStore,
		Users:         userRepo,
		Accounts:      services.NewAccountService(userRepo, orderRepo, disk, syncer),
		Catalog:       services.NewCatalogService(categoryRepo, productRepo, disk, syncer),
		Orders:        services.NewOrderService(orderRepo, productRepo, invoice.NewPDFRenderer(), policy, syncer),
		Tokens:        tokens,
		AdminPassword: env.AdminPassword,
		SecureCookies: env.IsProduction(),
		CSRFKey:       csrfKey,
		StaticDir:     "static",
	})

	server := &http.Server{
		Addr:              env.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newTokenManager(env configs.ENV) (*token.Manager, error) {
	secret := []byte(env.JWTSecret)
	if len(secret) == 0 {
		if env.IsProduction() {
			return nil, errors.New("JWT_SECRET environment variable not set")
		}
		log.Warn().Msg("JWT_SECRET is empty, admin tokens will not survive a restart")
		secret = securecookie.GenerateRandomKey(32)
	}
	return token.NewManager(secret, adminTokenTTL)
}

func newDisk(ctx context.Context, env configs.ENV) (storage.Disk, error) {
	switch env.StorageDisk {
	case "s3":
		return storage.NewS3Disk(ctx, storage.S3Config{
			Bucket:   env.S3Bucket,
			Region:   env.S3Region,
			Key:      env.S3Key,
			Secret:   env.S3Secret,
			Endpoint: env.S3Endpoint,
			BaseURL:  env.S3URL,
		})
	case "", "local":
		return storage.NewLocalDisk(env.StorageLocalRoot, env.StorageURL)
	default:
		return nil, fmt.Errorf("unknown STORAGE_DISK %q", env.StorageDisk)
	}
}

// openMirrors connects every configured secondary store. A sink that fails
// to connect is skipped; the primary database never depends on it.
func openMirrors(ctx context.Context, env configs.ENV) (mirror.Mirror, func()) {
	var (
		sinks   mirror.Multi
		closers []func()
	)

	mongoDB, err := configs.OpenMongo(ctx, env)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("MongoDB mirror disabled")
	case mongoDB != nil:
		m := mirror.NewMongoMirror(mongoDB)
		if err := m.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("MongoDB mirror indexes not created")
		}
		sinks = append(sinks, m)
		closers = append(closers, func() {
			if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("MongoDB disconnect")
			}
		})
	}

	if w := configs.NewKafkaWriter(env); w != nil {
		sinks = append(sinks, mirror.NewKafkaMirror(w))
		closers = append(closers, func() {
			if err := w.Close(); err != nil {
				log.Warn().Err(err).Msg("Kafka writer close")
			}
		})
		log.Info().Strs("brokers", env.KafkaBrokers).Str("topic", env.KafkaTopic).Msg("Kafka mirror enabled")
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	if len(sinks) == 0 {
		return mirror.Noop{}, closeAll
	}
	return sinks, closeAll
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modaltela/modal-tela-api/app/configs"
	"github.com/modaltela/modal-tela-api/app/handlers"
	"github.com/modaltela/modal-tela-api/app/routes"
	"github.com/modaltela/modal-tela-api/app/services"
	"github.com/modaltela/modal-tela-api/app/storage"
	"github.com/modaltela/modal-tela-api/app/utils/renderer"
	"github.com/modaltela/modal-tela-api/app/utils/sessions"
)

// serviceConfig maps env onto the service layer. images may be nil for
// commands that never touch product images.
func serviceConfig(env configs.ENV, images storage.ImageStore) routes.ServiceConfig {
	return routes.ServiceConfig{
		JWTSecret:            env.JWTSecret,
		AccessTokenTTL:       env.AccessTokenTTL,
		RefreshTokenTTL:      env.RefreshTokenTTL,
		GuestTTL:             env.GuestTTL,
		DefaultAssigneeEmail: env.DefaultAssigneeEmail,
		CurrencySymbol:       env.CurrencySymbol,
		Images:               images,
	}
}

func imageStore(ctx context.Context, env configs.ENV) (storage.ImageStore, error) {
	if env.S3Bucket == "" {
		log.Printf("S3_BUCKET not set, storing images under %s", env.MediaRoot)
		return storage.NewLocalStore(env.MediaRoot, env.MediaURL), nil
	}
	client, err := configs.NewS3Client(ctx, env)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Images stored in s3://%s", env.S3Bucket)
	return storage.NewS3Store(client, env.S3Bucket, env.S3PublicBaseURL), nil
}

// Serve wires every dependency and blocks until the server stops.
func Serve(ctx context.Context, env configs.ENV) error {
	if env.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable not set")
	}

	keys, err := configs.LoadSessionKeys(env)
	if err != nil {
		return err
	}

	db, err := configs.OpenConnection(env)
	if err != nil {
		return fmt.Errorf("DB connection failed: %w", err)
	}
	log.Println("✅ Database connected.")

	images, err := imageStore(ctx, env)
	if err != nil {
		return err
	}

	cfg := serviceConfig(env, images)

	rdb, err := configs.OpenRedis(ctx, env)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		cfg.TokenStore = services.NewRedisTokenStore(rdb)
	}

	if snapClient := configs.NewSnapClient(env); snapClient != nil {
		cfg.Gateway = services.NewMidtransGateway(snapClient, env.AppURL)
	}

	sessionStore := sessions.NewCookieSessionStore(env.GuestTTL, env.IsProduction(), keys.AuthKey, keys.EncKey)
	log.Println("✅ Session store initialized.")

	opts := routes.Options{
		Sessions:     sessionStore,
		Paging:       handlers.Paging{DefaultSize: env.PageSize, MaxSize: env.MaxPageSize},
		SecureCookie: env.IsProduction(),
	}
	if env.CSRFEnabled {
		if len(keys.AuthKey) < 32 {
			return errors.New("APP_AUTH_KEY must decode to at least 32 bytes to enable CSRF")
		}
		opts.CSRFKey = keys.AuthKey[:32]
	}
	if env.S3Bucket == "" {
		opts.MediaURL = env.MediaURL
		opts.MediaRoot = env.MediaRoot
	}

	router := routes.NewRouter(renderer.New(!env.IsProduction()), routes.NewServices(db, cfg), opts)

	server := &http.Server{
		Addr:              env.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Server starting on %s", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"database/sql"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/mealdiary/mealdiary"
	"github.com/mealdiary/mealdiary/mailer"
	"github.com/mealdiary/mealdiary/rest"
)

func main() {
	// Optional; env vars win over .env entries.
	_ = godotenv.Load()

	cfg, err := mealdiary.NewConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	logger := mealdiary.DefaultLogger()

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	repo := mealdiary.NewRepositoryManager(db)
	repo.MustValidate()

	tokens := mealdiary.NewTokenService([]byte(cfg.Auth.SigningKey), cfg.Auth.Issuer, logger)
	sessions := newSessionValidator(cfg, tokens, logger)
	resets := mealdiary.NewResetTokenService([]byte(cfg.Auth.ServerSecret), cfg.Auth.Issuer, logger)

	external, err := newExternalDecoder(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}

	auth := mealdiary.NewAuthenticator(repo.Users(), tokens).WithLogger(logger)

	app := fiber.New(fiber.Config{
		AppName: "mealdiary",
	})

	rest.RegisterRoutes(app, rest.Dependencies{
		Logger:   logger,
		Repo:     repo,
		Auth:     auth,
		Tokens:   tokens,
		External: external,
		Resets:   resets,
		Mailer:   newMailer(cfg, logger),
		ResetURL: cfg.Auth.ResetURL,
		Sessions: sessions,
	})

	go func() {
		if err := app.Listen(cfg.Server.Address()); err != nil {
			log.Fatal(err)
		}
	}()

	waitExitSignal()

	if err := app.Shutdown(); err != nil {
		logger.Error("server shutdown: %v", err)
	}
}

func openDatabase(ctx context.Context, cfg *mealdiary.Config) (*bun.DB, error) {
	db, err := sql.Open(sqliteshim.ShimName, cfg.Persistence.GetDSN())
	if err != nil {
		return nil, err
	}

	persistence.RegisterModel((*mealdiary.User)(nil))
	persistence.RegisterModel((*mealdiary.Diary)(nil))

	client, err := persistence.New(cfg.Persistence, db, sqlitedialect.New())
	if err != nil {
		return nil, err
	}

	migrationsFS, err := fs.Sub(mealdiary.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return nil, err
	}
	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	if err := client.ValidateDialects(ctx); err != nil {
		return nil, err
	}

	if err := client.Migrate(ctx); err != nil {
		return nil, err
	}

	return client.DB(), nil
}

// newSessionValidator chains validators for every configured signing
// key so sessions minted before a rotation stay valid. Previous keys
// are wrapped as validate-only funcs and never sign.
func newSessionValidator(cfg *mealdiary.Config, tokens mealdiary.TokenService, logger mealdiary.Logger) mealdiary.TokenValidator {
	if len(cfg.Auth.PreviousSigningKeys) == 0 {
		return tokens
	}

	chain := []mealdiary.TokenValidator{tokens}
	for _, key := range cfg.Auth.PreviousSigningKeys {
		svc := mealdiary.NewTokenService([]byte(key), cfg.Auth.Issuer, logger)
		chain = append(chain, mealdiary.TokenValidatorFunc(svc.Validate))
	}
	return mealdiary.NewMultiTokenValidator(chain...)
}

func newExternalDecoder(cfg *mealdiary.Config, logger mealdiary.Logger) (mealdiary.ExternalDecoder, error) {
	if len(cfg.Auth.JWKSetURLs) > 0 {
		return mealdiary.NewVerifyingExternalTokenDecoder(cfg.Auth.JWKSetURLs, logger)
	}
	return mealdiary.NewExternalTokenDecoder(logger), nil
}

func newMailer(cfg *mealdiary.Config, logger mealdiary.Logger) mealdiary.Mailer {
	if cfg.Mailer.APIKey != "" {
		m, err := mailer.NewResendMailer(cfg.Mailer.APIKey, cfg.Mailer.From)
		if err == nil {
			return m
		}
		logger.Warn("falling back to log mailer: %v", err)
	}
	return mailer.NewLogMailer(logger)
}

func waitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}

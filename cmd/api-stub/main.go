package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tu-usuario/prospect-board/internal/domain/entity"
	"github.com/tu-usuario/prospect-board/internal/infrastructure/sqlite"
	httpRouter "github.com/tu-usuario/prospect-board/internal/interfaces/http"
	"github.com/tu-usuario/prospect-board/pkg/config"
	"github.com/tu-usuario/prospect-board/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("sqlite", cfg.Stub.SQLitePath).
		Msg("iniciando backend stub")

	ctx := context.Background()
	db, err := sqlite.Open(ctx, cfg.Stub.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("apertura de sqlite")
	}
	defer db.Close()

	users := sqlite.NewUserRepository(db)
	if err := seedUsers(ctx, users, cfg.Stub.SeedPassword, log); err != nil {
		log.Fatal().Err(err).Msg("siembra de usuarios")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Users:      users,
		Prospects:  sqlite.NewProspectRepository(db),
		Projects:   sqlite.NewProjectRepository(db),
		Subtasks:   sqlite.NewSubtaskRepository(db),
		JWTSecret:  cfg.JWT.Secret,
		JWTIssuer:  cfg.JWT.Issuer,
		JWTMinutes: cfg.JWT.Expiration,
	})

	go func() {
		if err := app.Listen(cfg.Stub.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("backend stub detenido")
}

// seedUsers crea un usuario por rol si la base está vacía, con la contraseña
// de siembra configurada. Solo para desarrollo local.
func seedUsers(ctx context.Context, users *sqlite.UserRepo, password string, log *logger.Logger) error {
	n, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	for _, role := range []entity.Role{entity.RoleSuperadmin, entity.RoleManager, entity.RoleSales, entity.RoleEngineer} {
		err := users.Create(ctx, sqlite.UserRecord{
			ID:           uuid.NewString(),
			Username:     string(role),
			PasswordHash: string(hash),
			Role:         role,
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		log.Info().Str("username", string(role)).Msg("usuario sembrado")
	}
	return nil
}

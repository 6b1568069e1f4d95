package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	auth "github.com/toccatech/raspiauth"
)

func main() {
	cfg, err := auth.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	strategy, err := auth.NewSigningStrategy(cfg)
	if err != nil {
		log.Fatal(err)
	}

	tokens := auth.NewTokenService(cfg, strategy, nil)

	store, err := auth.NewCredentialStore(context.Background(), cfg, tokens, nil)
	if err != nil {
		log.Fatal(err)
	}

	accounts := auth.NewAccounts(store, tokens)

	if cfg.JWKSEndpoint != "" {
		validator, err := auth.NewJWKSValidator(cfg, nil)
		if err != nil {
			log.Fatal(err)
		}
		accounts = accounts.WithTokenValidator(validator)
	}

	app := fiber.New(fiber.Config{
		AppName: "raspiauth",
	})

	app.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"ok": true,
		})
	})

	auth.RegisterAuthRoutes(app, auth.NewAuthController(accounts, cfg))

	log.Fatal(app.Listen(cfg.ListenAddr))
}

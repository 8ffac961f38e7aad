// Command assign-role writes the profile of a user: their role and, for
// bazaar admins, the bazaar they manage. Users without a profile are donors.
//
// Usage:
//
//	assign-role --user=<id> --role=admin
//	assign-role --user=<id> --role=bazaar-admin --bazaar=<bazaar id>
//	assign-role --user=<id> --email=a@b.c --role=donor --token
//
// With --token a bearer token for the identity is printed, for local
// development without an identity provider.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/heartmarshall/bazaar-backend/internal/adapter/cache"
	"github.com/heartmarshall/bazaar-backend/internal/app"
	"github.com/heartmarshall/bazaar-backend/internal/auth"
	"github.com/heartmarshall/bazaar-backend/internal/config"
	"github.com/heartmarshall/bazaar-backend/internal/domain"
	"github.com/heartmarshall/bazaar-backend/internal/service/bazaar"
	"github.com/heartmarshall/bazaar-backend/internal/service/profile"
)

func main() {
	userID := flag.String("user", "", "identity provider user id")
	email := flag.String("email", "", "email of the user")
	role := flag.String("role", "", "donor, admin or bazaar-admin")
	bazaarID := flag.String("bazaar", "", "bazaar managed by a bazaar-admin")
	printToken := flag.Bool("token", false, "print a bearer token for the user")
	flag.Parse()

	if *userID == "" || *role == "" {
		fmt.Fprintln(os.Stderr, "Usage: assign-role --user=<id> --role=<role> [--bazaar=<id>] [--email=<email>] [--token]")
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backends, err := app.OpenStore(ctx, cfg, logger, nil)
	if err != nil {
		logger.Error("open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer backends.Close()

	bazaars := bazaar.NewService(logger, backends.Store, cache.NewMemory(cfg.Cache.BazaarTTL), backends.Tx, nil)
	profiles := profile.NewService(logger, backends.Store, bazaars)

	input := profile.AssignInput{UserID: *userID, Email: *email, Role: *role}
	if *bazaarID != "" {
		input.BazaarID = bazaarID
	}
	p, err := profiles.Assign(ctx, input)
	if err != nil {
		logger.Error("assign role", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("User %q is now %s.\n", p.UserID, p.Role)

	if *printToken {
		tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
		tok, err := tokens.GenerateAccessToken(domain.Identity{UserID: p.UserID, Email: p.Email})
		if err != nil {
			logger.Error("generate token", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Println(tok)
	}
}

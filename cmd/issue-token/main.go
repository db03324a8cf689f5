// Command issue-token finds or creates a customer account and prints a
// bearer token for it, for local runs against cmd/api.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/safar/coffee-shop/internal/accounts"
	"github.com/safar/coffee-shop/internal/auth"
	"github.com/safar/coffee-shop/internal/config"
	"github.com/safar/coffee-shop/internal/database"
	"github.com/safar/coffee-shop/internal/models"
)

func main() {
	email := flag.String("email", "", "customer email (required)")
	firstName := flag.String("first", "", "first name for a new account")
	lastName := flag.String("last", "", "last name for a new account")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *email == "" {
		log.Fatal("Usage: issue-token -email someone@example.com [-first Ada -last Lovelace] [-ttl 24h]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx := context.Background()

	client, err := database.NewMongoClient(ctx, &cfg.Mongo)
	if err != nil {
		log.Fatalf("Connect to mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	users := accounts.NewStore(client.Database(cfg.Mongo.Database))
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Ensure user indexes: %v", err)
	}

	user, err := users.FindByEmail(ctx, *email)
	if errors.Is(err, database.ErrUserNotFound) {
		user, err = users.CreateUser(ctx, models.User{
			Email:     *email,
			FirstName: *firstName,
			LastName:  *lastName,
		})
		if err == nil {
			log.Printf("Created user %s", user.ID.Hex())
		}
	}
	if err != nil {
		log.Fatalf("Load user: %v", err)
	}

	token, err := auth.IssueToken(cfg.Auth.JWTSecret, user.ID.Hex(), *ttl)
	if err != nil {
		log.Fatalf("Sign token: %v", err)
	}

	fmt.Println(token)
}

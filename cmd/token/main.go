package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"infinite-experiment/hangar/internal/auth"
	"infinite-experiment/hangar/internal/config"

	"github.com/google/uuid"
)

// Issues a bearer token for local development, signed with JWT_SECRET.
func main() {
	userID := flag.String("user", "", "user id (UUID); a new one is generated when empty")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	if *userID == "" {
		*userID = uuid.NewString()
	}

	token, err := auth.NewTokenService([]byte(cfg.JWTSecret)).Issue(*userID, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Println("User:", *userID)
	fmt.Println("Token:", token)
}

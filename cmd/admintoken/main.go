// Command admintoken prints an admin bearer token for the catalog API, or a
// bcrypt hash suitable for AUTH_BASIC_PASS.
//
//	admintoken -sub ops@example.com -exp 12h
//	admintoken -hash 's3cret'
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"storefront/internal/auth"
	"storefront/internal/env"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	var (
		subject  = flag.String("sub", "admin", "token subject")
		exp      = flag.Duration("exp", 24*time.Hour, "token lifetime")
		password = flag.String("hash", "", "bcrypt-hash this password instead of issuing a token")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	if *password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(hash))
		return
	}

	secret := env.GetString("AUTH_TOKEN_SECRET", "")
	if secret == "" {
		log.Fatal("AUTH_TOKEN_SECRET is not set")
	}
	iss := env.GetString("AUTH_TOKEN_ISS", "storefront")

	token, err := auth.NewJWTAuthenticator(secret, iss, iss, *exp).GenerateToken(*subject)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}

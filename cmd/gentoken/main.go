// Dev tool to mint bearer tokens for manual testing. Production tokens come
// from the external identity provider; this signs with the local JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/codingevents/server/internal/auth"
)

func main() {
	subject := flag.String("subject", "dev-user-1", "provider-unique subject claim")
	name := flag.String("name", "Dev User", "display name claim")
	email := flag.String("email", "dev@example.com", "email claim")
	expiry := flag.Duration("expiry", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "Error: JWT_SECRET is required")
		os.Exit(1)
	}

	manager := auth.NewJWTManager(secret, *expiry, os.Getenv("JWT_ISSUER"))
	token, err := manager.Generate(*subject, *name, *email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "\nTest with:\ncurl -H 'Authorization: Bearer %s' http://localhost:8080/api/events\n", token)
}

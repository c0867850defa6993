// devtoken mints an access token for local development and API testing.
// Production tokens come from the auth system; this signs with the same
// JWT_SECRET_KEY so the engine accepts them.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/barangay-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	adminID := flag.String("admin-id", "", "subject admin ID (default: random UUID)")
	role := flag.String("role", "admin", "token role: admin, treasurer or personnel")
	flag.Parse()

	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET_KEY is required")
		os.Exit(1)
	}
	expiration := os.Getenv("JWT_ACCESS_EXPIRATION_TIME")
	if expiration == "" {
		expiration = "1h"
	}

	subject := *adminID
	if subject == "" {
		subject = uuid.NewString()
	}

	jwtService := jwt.NewJWTService(secret, expiration)
	token, expiresAt, err := jwtService.GenerateAccessToken(subject, *role)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to generate token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "admin_id=%s role=%s expires=%s\n",
		subject, *role, time.Unix(expiresAt, 0).Format(time.RFC3339))
}

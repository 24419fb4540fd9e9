// jwt-mint prints a signed bearer token for local testing against a server
// running with JWT auth enabled. The secret must match server.auth.jwt_secret.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	currentUser, err := user.Current()
	if err != nil {
		currentUser = &user.User{Username: "user-1"}
	}

	secret := flag.String("secret", "", "Shared HMAC secret (required)")
	issuer := flag.String("issuer", "", "Token issuer (optional)")
	audience := flag.String("audience", "", "Token audience (optional)")
	subject := flag.String("subject", currentUser.Username, "Token subject")
	tenant := flag.String("tenant", "", "Tenant ID claim (required)")
	perms := flag.String("perms", "", "Permissions claim (comma-separated, optional)")
	expires := flag.Duration("expires", time.Hour, "Token lifetime (e.g. 1h)")
	flag.Parse()

	if *secret == "" {
		exitErr(fmt.Errorf("-secret is required"))
	}
	if *tenant == "" {
		exitErr(fmt.Errorf("-tenant is required"))
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": *subject,
		"tid": *tenant,
		"iat": now.Unix(),
		"exp": now.Add(*expires).Unix(),
		"nbf": now.Add(-1 * time.Minute).Unix(),
	}
	if *issuer != "" {
		claims["iss"] = *issuer
	}
	if *audience != "" {
		claims["aud"] = splitList(*audience)
	}
	if *perms != "" {
		claims["perms"] = splitList(*perms)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(*secret))
	if err != nil {
		exitErr(err)
	}

	fmt.Println(signed)
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

// issue-token prints a signed JWT for local testing of the dashboard API.
// API_SECRET is read from the environment or from the -env file, like the server does.
//
// Usage:
//   go run ./cmd/issue-token -tenant tenant-a -username alice
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/mmdatafocus/dashboard_backend/utils"
)

func main() {
	tenantId := flag.String("tenant", "", "tenant id carried in the tenant_id claim")
	userId := flag.Int("user-id", 1, "user id claim")
	username := flag.String("username", "dev", "username claim")
	envFile := flag.String("env", ".env", "dotenv file to load before signing")
	flag.Parse()

	if *tenantId == "" {
		fmt.Fprintln(os.Stderr, "warning: no -tenant given; the token resolves to the empty default tenant")
	}

	token, err := issueToken(*envFile, *userId, *username, *tenantId)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

// issueToken loads envFile (a missing file is fine) and signs the claims.
func issueToken(envFile string, userId int, username, tenantId string) (string, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("load %s: %w", envFile, err)
	}
	return utils.JwtGenerate(userId, username, tenantId)
}

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/noah-isme/instructor-directory-api/internal/models"
	"github.com/noah-isme/instructor-directory-api/internal/service"
	"github.com/noah-isme/instructor-directory-api/pkg/config"
)

func main() {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	flag.StringVar(&subject, "subject", "", "Operator name, or franchise number for instructor tokens")
	flag.StringVar(&role, "role", string(models.RoleAdmin), "Token role (ADMIN or INSTRUCTOR)")
	flag.DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	token, err := issue(cfg, subject, role, ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}
	fmt.Println(token)
}

func issue(cfg *config.Config, subject, rawRole string, ttl time.Duration) (string, error) {
	role := models.Role(strings.ToUpper(strings.TrimSpace(rawRole)))
	if role != models.RoleAdmin && role != models.RoleInstructor {
		return "", fmt.Errorf("unknown role %q", rawRole)
	}
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("-subject is required")
	}
	accounts := service.NewAccountService(nil, nil, nil, service.AccountConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	token, _, err := accounts.IssueToken(subject, role, ttl)
	return token, err
}

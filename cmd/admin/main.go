// Command admin bootstraps the administrator account and checks stored
// credentials.
//
//	admin bootstrap [--email admin@example.com] [--password Admin123!]
//	admin check-password [--email admin@example.com] [--password Admin123!]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"bulkwala/internal/config"
	"bulkwala/internal/db"
	"bulkwala/internal/domain/storage"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	defaultEmail    = "admin@example.com"
	defaultPassword = "Admin123!"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		fallDown()
	}

	cmd := os.Args[1]
	flags := pflag.NewFlagSet(cmd, pflag.ExitOnError)
	email := flags.StringP("email", "e", defaultEmail, "admin email")
	password := flags.StringP("password", "p", defaultPassword, "admin password")
	name := flags.String("name", "Admin User", "display name (bootstrap)")
	phone := flags.String("phone", "1234567890", "phone number (bootstrap)")
	migrate := flags.Bool("migrate", false, "apply schema migrations first")
	envFile := flags.String("env-file", ".env", "optional dotenv file")
	_ = flags.Parse(os.Args[2:])

	logger := zap.Must(zap.NewDevelopment()).Sugar()
	defer logger.Sync()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Fatal(err)
	}
	if cfg.DB.Addr == "" {
		logger.Fatal("DB_ADDR is not set")
	}

	if *migrate {
		version, err := db.Migrate(cfg.DB.Addr)
		if err != nil {
			logger.Fatalw("migration failed", "error", err)
		}
		logger.Infow("schema migrated", "version", version)
	}

	pool, err := db.New(cfg.DB.Addr, cfg.DB.MaxConns, cfg.DB.MaxIdleTime)
	if err != nil {
		logger.Fatalw("database connection failed", "error", err)
	}
	defer pool.Close()
	logger.Info("database connected successfully")

	store := storage.NewContainer(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {
	case "bootstrap":
		res, err := bootstrapAdmin(ctx, store.WithUsersTx, adminAccount{
			Name:     *name,
			Email:    *email,
			Phone:    *phone,
			Password: *password,
		})
		if err != nil {
			logger.Fatalw("error creating admin user", "error", err)
		}
		if res.Replaced > 0 {
			logger.Infow("existing admin user deleted", "email", *email)
		}
		logger.Infow("admin user created", "id", res.User.ID, "email", res.User.Email)

	case "check-password":
		report, err := checkPassword(ctx, store.Users, *email, *password)
		if err != nil {
			logger.Fatalw("error testing password", "error", err)
		}
		fmt.Println(report)
		if !report.PasswordCorrect {
			fallDown()
		}

	default:
		usage()
		fallDown()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: admin <bootstrap|check-password> [--email] [--password] [--migrate]")
}

func fallDown() {
	os.Exit(2)
}

var errMissingFlag = errors.New("email and password are required")

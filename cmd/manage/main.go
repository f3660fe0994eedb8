// cmd/manage/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pawverse/petstore-backend/internal/config"
	"github.com/pawverse/petstore-backend/internal/infrastructure/database/postgres"
	"github.com/pawverse/petstore-backend/internal/pkg/auth"
	"github.com/pawverse/petstore-backend/internal/pkg/email"
	"github.com/pawverse/petstore-backend/internal/pkg/logger"
)

const usage = `Usage: manage <command> [args]

Commands:
  migrate              run migrations and create indexes
  seed                 migrate, then seed the development catalog
  tables               print row counts per table
  drop -force          drop every application table
  hash-password <pw>   print a bcrypt hash for a password
  test-email <to>      send a test message through the configured provider
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logger.New(cfg)

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "hash-password":
		if len(args) != 1 {
			logger.Fatal("Usage: manage hash-password <password>")
		}
		passwords := auth.NewPasswordManager(cfg)
		hash, err := passwords.HashPassword(args[0])
		if err != nil {
			logger.Fatalf("Error generating hash: %v", err)
		}
		if err := passwords.VerifyPassword(args[0], hash); err != nil {
			logger.Fatalf("Hash verification failed: %v", err)
		}
		fmt.Println(hash)
		return

	case "test-email":
		if len(args) != 1 {
			logger.Fatal("Usage: manage test-email <recipient>")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		mailer := email.NewEmailService(cfg, logger)
		err := mailer.SendEmail(ctx, &email.Email{
			To:          []string{args[0]},
			Subject:     "Test email from " + cfg.App.Name,
			HTMLContent: "<h1>Success!</h1><p>Outgoing email is configured correctly.</p>",
			Type:        "test",
		})
		if err != nil {
			logger.Fatalf("Send failed: %v", err)
		}
		logger.Info("✅ Email sent successfully!")
		return
	}

	db, err := postgres.NewConnection(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	migration := postgres.NewMigration(db.GetDB(), logger)

	switch cmd {
	case "migrate", "seed":
		if err := migration.RunAutoMigrations(); err != nil {
			logger.Fatalf("Database migration failed: %v", err)
		}
		if err := migration.CreateIndexes(); err != nil {
			logger.Fatalf("Index creation failed: %v", err)
		}
		if cmd == "seed" {
			if err := migration.SeedInitialData(); err != nil {
				logger.Fatalf("Data seeding failed: %v", err)
			}
		}

	case "tables":
		if err := migration.GetTableInfo(); err != nil {
			logger.Fatalf("Could not list tables: %v", err)
		}

	case "drop":
		fs := flag.NewFlagSet("drop", flag.ExitOnError)
		force := fs.Bool("force", false, "confirm dropping every table")
		_ = fs.Parse(args)
		if !*force {
			logger.Fatal("Refusing to drop tables without -force")
		}
		if cfg.IsProduction() {
			logger.Fatal("Refusing to drop tables in production")
		}
		if err := migration.DropAllTables(); err != nil {
			logger.Fatalf("Drop failed: %v", err)
		}

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"court_filing_app_go/config"
	"court_filing_app_go/db"
	"court_filing_app_go/logger"
	"court_filing_app_go/models"
	"court_filing_app_go/services"
)

func main() {
	name := flag.String("name", "", "display name of the admin")
	email := flag.String("email", "", "login email (required)")
	password := flag.String("password", "", "password for a new account; read from ADMIN_PASSWORD or stdin when empty")
	flag.Parse()

	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(os.Stderr, `usage: create-admin -email admin@example.com [-name "Court Registrar"] [-password ...]`)
		os.Exit(2)
	}

	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.Environment)

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(models.All()...); err != nil {
		logger.Log.WithError(err).Fatal("Failed to run migrations")
	}

	seed := services.AdminSeed{Name: *name, Email: *email, Password: *password}
	var exists int64
	db.DB.Model(&models.User{}).Where("email = ?", services.NormalizeEmail(*email)).Count(&exists)
	if exists == 0 && seed.Password == "" {
		seed.Password = os.Getenv("ADMIN_PASSWORD")
		if seed.Password == "" {
			fmt.Print("Password: ")
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			seed.Password = strings.TrimSpace(line)
		}
	}

	user, created, err := services.EnsureAdmin(db.DB, seed)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to create admin")
	}

	if created {
		fmt.Printf("Admin created: %s (%s)\n", user.Email, user.ID)
	} else {
		fmt.Printf("Promoted %s (%s) to admin\n", user.Email, user.ID)
	}
	fmt.Printf("Sign in at %s\n", cfg.AppURL)
}

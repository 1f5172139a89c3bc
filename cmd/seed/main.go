package main

import (
	"context"
	"flag"

	"github.com/labstack/gommon/log"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/seed"
)

func main() {
	catalogPath := flag.String("catalog", "", "YAML file with the products to seed (defaults to a built-in sample)")
	skipCatalog := flag.Bool("admin-only", false, "only create the admin account")
	flag.Parse()

	logger := log.New("seed")
	logger.SetLevel(log.INFO)
	logger.Info("Starting seed script...")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			logger.Errorf("Failed to close database: %v", err)
		}
	}()
	logger.Info("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Product{}, &model.Order{}, &model.OrderItem{}); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Database migrations completed")

	ctx := context.Background()

	created, err := seed.Admin(ctx, repository.NewUserRepository(gormDB), cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logger.Fatalf("Failed to seed admin: %v", err)
	}
	if created {
		logger.Infof("Admin %s created", cfg.AdminEmail)
	} else {
		logger.Infof("Admin %s already present", cfg.AdminEmail)
	}

	if *skipCatalog {
		return
	}

	items := seed.DefaultCatalog
	if *catalogPath != "" {
		items, err = seed.LoadCatalog(*catalogPath)
		if err != nil {
			logger.Fatalf("Failed to load catalog: %v", err)
		}
	}

	seeded, updated, err := seed.Catalog(ctx, repository.NewProductRepository(gormDB), items)
	if err != nil {
		logger.Fatalf("Failed to seed catalog: %v", err)
	}

	logger.Info("Seed completed successfully!")
	logger.Infof("  - New products created: %d", seeded)
	logger.Infof("  - Existing products updated: %d", updated)
}

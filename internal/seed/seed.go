// Package seed creates the initial admin account and a sample catalog.
// Both operations are safe to re-run.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/validation"
)

// CatalogItem is one product in a seed catalog file.
type CatalogItem struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Stock       int    `yaml:"stock"`
	Category    string `yaml:"category"`
	ImageURL    string `yaml:"image_url"`
}

// DefaultCatalog is used when no catalog file is given.
var DefaultCatalog = []CatalogItem{
	{Name: "Desk Lamp", Description: "Adjustable LED desk lamp", Price: "34.90", Stock: 25, Category: "lighting"},
	{Name: "Ceramic Mug", Description: "350ml stoneware mug", Price: "9.50", Stock: 120, Category: "kitchen"},
	{Name: "Notebook A5", Description: "Dotted, 192 pages", Price: "12.00", Stock: 80, Category: "stationery"},
	{Name: "Wireless Mouse", Description: "2.4GHz, silent clicks", Price: "24.99", Stock: 40, Category: "electronics"},
	{Name: "Floor Lamp", Description: "Arc floor lamp with linen shade", Price: "129.00", Stock: 5, Category: "lighting"},
}

// LoadCatalog reads a YAML list of catalog items.
func LoadCatalog(path string) ([]CatalogItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var items []CatalogItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return items, nil
}

// Admin makes sure an admin account exists for email. An existing account
// with that email is promoted; its password is left alone.
func Admin(ctx context.Context, users repository.UserRepository, email, password string) (created bool, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, errors.New("admin email and password are required")
	}

	existing, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == model.RoleAdmin {
			return false, nil
		}
		if err := users.UpdateProfile(ctx, existing.ID, map[string]interface{}{"role": model.RoleAdmin}); err != nil {
			return false, fmt.Errorf("promote %s: %w", email, err)
		}
		return false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, fmt.Errorf("find %s: %w", email, err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	admin := &model.User{
		Email:        email,
		Name:         "Administrator",
		PasswordHash: hashed,
		Role:         model.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}

// Catalog creates products whose name is not in the catalog yet and
// refreshes the price, stock and details of those that are.
func Catalog(ctx context.Context, products repository.ProductRepository, items []CatalogItem) (seeded, updated int, err error) {
	current, err := products.List(ctx, repository.ProductFilter{})
	if err != nil {
		return 0, 0, fmt.Errorf("list products: %w", err)
	}
	byName := make(map[string]model.Product, len(current))
	for _, p := range current {
		byName[p.Name] = p
	}

	for _, item := range items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return seeded, updated, fmt.Errorf("product %q has invalid price %q: %w", item.Name, item.Price, err)
		}
		if !validation.ValidMoney(price) {
			return seeded, updated, fmt.Errorf("product %q price %s must be positive with at most 2 decimal places", item.Name, item.Price)
		}
		if item.Stock < 0 {
			return seeded, updated, fmt.Errorf("product %q has negative stock", item.Name)
		}

		product, exists := byName[item.Name]
		product.Name = item.Name
		product.Price = price
		product.Stock = item.Stock
		product.Description = optional(item.Description)
		product.Category = optional(item.Category)
		product.ImageURL = optional(item.ImageURL)

		if exists {
			if err := products.Update(ctx, &product); err != nil {
				return seeded, updated, fmt.Errorf("update product %q: %w", item.Name, err)
			}
			updated++
			continue
		}
		if err := products.Create(ctx, &product); err != nil {
			return seeded, updated, fmt.Errorf("create product %q: %w", item.Name, err)
		}
		seeded++
	}

	return seeded, updated, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

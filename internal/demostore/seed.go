package demostore

import (
	"time"

	"github.com/google/uuid"

	"github.com/shophub/ecommerce-api/internal/auth"
	"github.com/shophub/ecommerce-api/internal/catalog"
	"github.com/shophub/ecommerce-api/internal/users"
)

// Demo admin credentials, fixed so the dashboard works out of the box.
const (
	SeedAdminEmail    = "admin@shophub.local"
	SeedAdminPassword = "admin123"
)

func seedDocument() document {
	now := time.Now().UTC()
	hash, err := auth.HashPassword(SeedAdminPassword)
	if err != nil {
		panic(err)
	}
	admin := userRecord{User: users.User{
		ID:           uuid.NewString(),
		FirstName:    "Demo",
		LastName:     "Admin",
		Email:        SeedAdminEmail,
		PasswordHash: hash,
		Roles:        []string{users.RoleUser, users.RoleAdmin},
		CreatedAt:    now,
		UpdatedAt:    now,
	}}

	return document{
		Users:    []userRecord{admin},
		Products: seedProducts(now),
		Sessions: map[string]string{},
	}
}

func seedProducts(now time.Time) []catalog.Product {
	mk := func(name, desc, category string, priceCents int, status catalog.Status, image string, rating float64) catalog.Product {
		return catalog.Product{
			ID:          uuid.NewString(),
			Name:        name,
			Description: desc,
			PriceCents:  priceCents,
			Category:    category,
			Status:      status,
			Image:       image,
			Rating:      rating,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}
	return []catalog.Product{
		mk("Wireless Headphones", "Over-ear, 30h battery, active noise cancelling.", "Audio", 799900, catalog.StatusInStock, "/images/headphones.jpg", 4.5),
		mk("Smart Watch Pro", "AMOLED display, GPS, heart-rate tracking.", "Wearables", 1249900, catalog.StatusInStock, "/images/watch.jpg", 4.2),
		mk("Mechanical Keyboard", "Hot-swappable switches, RGB, USB-C.", "Accessories", 459900, catalog.StatusInStock, "/images/keyboard.jpg", 4.7),
		mk("4K Action Camera", "Waterproof to 10m, image stabilisation.", "Cameras", 1899900, catalog.StatusOutOfStock, "/images/camera.jpg", 4.1),
		mk("Portable Speaker", "12h playtime, IPX7, stereo pairing.", "Audio", 349900, catalog.StatusInStock, "/images/speaker.jpg", 4.3),
		mk("Ergonomic Mouse", "Vertical grip, 6 buttons, silent clicks.", "Accessories", 229900, catalog.StatusInStock, "/images/mouse.jpg", 4.0),
		mk("Fitness Band 6", "Sleep tracking, SpO2, 14-day battery.", "Wearables", 279900, catalog.StatusComingSoon, "/images/band.jpg", 0),
		mk("USB-C Hub", "7-in-1: HDMI, SD, 100W passthrough.", "Accessories", 189900, catalog.StatusInStock, "/images/hub.jpg", 4.4),
	}
}

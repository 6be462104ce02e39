package main

import (
	"context"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taply/internal/auth"
	"taply/internal/config"
	"taply/internal/db"
	"taply/internal/model"
	"taply/internal/repository"
)

const (
	adminEmail    = "admin@taply.local"
	adminPassword = "admin-change-me"

	demoEmail    = "alice@taply.local"
	demoPassword = "alice-change-me"
	demoUsername = "alice"
)

// Seeds an admin account plus a demo user with one profile and one QR code,
// so a fresh install has something to scan.
func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.QRCode{},
		&model.ScanEvent{},
		&model.AuditLog{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	profileRepo := repository.NewProfileRepository(gormDB)
	qrRepo := repository.NewQRCodeRepository(gormDB)

	if _, err := ensureUser(ctx, userRepo, adminEmail, adminPassword, model.RoleAdmin); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	log.Printf("Admin account ready: %s", adminEmail)

	demo, err := ensureUser(ctx, userRepo, demoEmail, demoPassword, model.RoleUser)
	if err != nil {
		log.Fatalf("Failed to seed demo user: %v", err)
	}

	profile, err := profileRepo.FindByUsername(ctx, demoUsername)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = &model.Profile{
			UserID:      demo.ID,
			Username:    demoUsername,
			DisplayName: "Alice Example",
			Title:       "Product Designer",
			Email:       demoEmail,
			ShowEmail:   true,
		}
		if err := profileRepo.Create(ctx, profile); err != nil {
			log.Fatalf("Failed to seed profile: %v", err)
		}
	} else if err != nil {
		log.Fatalf("Failed to look up profile: %v", err)
	}
	log.Printf("Demo profile ready: /u/%s", profile.Username)

	codes, err := qrRepo.ListByProfile(ctx, profile.ID)
	if err != nil {
		log.Fatalf("Failed to list qr codes: %v", err)
	}
	if len(codes) == 0 {
		code, err := auth.GenerateOpaqueToken(16)
		if err != nil {
			log.Fatalf("Failed to generate qr code: %v", err)
		}
		qr := &model.QRCode{Code: code, ProfileID: profile.ID}
		if err := qrRepo.Create(ctx, qr); err != nil {
			log.Fatalf("Failed to seed qr code: %v", err)
		}
		codes = []model.QRCode{*qr}
	}
	log.Printf("Demo QR code ready: /qr/%s", codes[0].Code)

	log.Println("Seed completed")
}

func ensureUser(ctx context.Context, repo repository.UserRepository, email, password string, role model.Role) (*model.User, error) {
	existing, err := repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       model.StatusActive,
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

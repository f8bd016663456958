package config

import (
	"context"
	"errors"
	"log"

	"hostel-leave-api/internal/adapters/persistence/models"
	"hostel-leave-api/internal/adapters/persistence/repositories"
	"hostel-leave-api/internal/core/domain"
	"hostel-leave-api/internal/pkg/password"
)

// Seeder handles database seeding
type Seeder struct {
	users repositories.UserRepository
	admin AdminConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(users repositories.UserRepository, admin AdminConfig) *Seeder {
	return &Seeder{users: users, admin: admin}
}

// Run executes all seeders
func (s *Seeder) Run(ctx context.Context) error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(ctx); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser creates the configured admin when no admin exists yet
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	if s.admin.Email == "" || s.admin.Password == "" {
		log.Println("⚠️ Skipping admin seed: ADMIN_EMAIL / ADMIN_PASSWORD not set")
		return nil
	}

	count, err := s.users.CountByRole(ctx, string(domain.RoleAdmin))
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Admin already exists
	}

	if !password.ValidatePassword(s.admin.Password) {
		return errors.New("ADMIN_PASSWORD is shorter than 8 characters")
	}

	hashedPassword, err := password.Hash(s.admin.Password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:     s.admin.Name,
		Email:    s.admin.Email,
		Password: hashedPassword,
		Role:     string(domain.RoleAdmin),
	}

	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return errors.New("admin email already registered as a student")
		}
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Email)
	return nil
}

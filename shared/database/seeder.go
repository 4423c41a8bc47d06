package database

import (
	"fmt"
	"log"

	"clientconsole-backend/shared/config"
	"clientconsole-backend/shared/database/models"
	utils "clientconsole-backend/shared/utils/auth"

	"github.com/google/uuid"
)

// SeedDatabase seeds the database with initial data
func SeedDatabase() error {
	log.Println("🌱 Checking database seed data...")

	if err := CreateSuperAdminFromConfig(); err != nil {
		return err
	}

	clientsCreated, err := seedDemoClients()
	if err != nil {
		return err
	}

	if clientsCreated > 0 {
		log.Printf("✅ Database seeding completed (%d demo clients created)", clientsCreated)
	} else {
		log.Println("✅ Database seed data is up to date")
	}

	return nil
}

// CreateSuperAdminFromConfig creates the super admin using config values
func CreateSuperAdminFromConfig() error {
	cfg := config.GetConfig()
	return CreateSuperAdmin(cfg.SuperAdminEmail, cfg.SuperAdminPassword, "Super", "Admin")
}

// CreateSuperAdmin creates a super admin user
func CreateSuperAdmin(email, password, firstName, lastName string) error {
	var existingUser models.User
	if err := DB.Where("email = ?", email).First(&existingUser).Error; err == nil {
		log.Println("Super admin already exists")
		return nil
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash super admin password: %w", err)
	}

	admin := models.User{
		Email:      email,
		Password:   hashedPassword,
		FirstName:  firstName,
		LastName:   lastName,
		Status:     "ACTIVE",
		SuperAdmin: true,
	}

	if err := DB.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}

	log.Printf("✅ Super admin created: %s", email)
	return nil
}

// seedDemoClients creates a handful of client records for a fresh install
func seedDemoClients() (int, error) {
	var count int64
	if err := DB.Model(&models.Client{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count clients: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	var admin models.User
	if err := DB.Where("super_admin = ?", true).First(&admin).Error; err != nil {
		return 0, fmt.Errorf("failed to find super admin for seeding: %w", err)
	}

	retail := "Retail"
	finance := "Financial Services"
	verified := models.VerificationStatusVerified
	pending := models.VerificationStatusPending
	weekly := models.DrawFrequencyWeekly
	monthly := models.DrawFrequencyMonthly

	demoClients := []models.Client{
		{
			TenantID:                   uuid.New(),
			OrganizationName:           "Acme Retail Group",
			BusinessCategory:           retail,
			TenantAdminFullName:        "Jordan Reeves",
			TenantAdminEmail:           "jordan.reeves@acme-retail.example",
			TenantAdminMobile:          "+14155550101",
			DrawFrequency:              &weekly,
			BusinessVerificationStatus: &verified,
			DataUsageConsent:           true,
			DataPrivacyAcknowledgment:  true,
			Status:                     models.ClientStatusActive,
			CreatedBy:                  admin.ID,
			UpdatedBy:                  admin.ID,
		},
		{
			TenantID:                   uuid.New(),
			OrganizationName:           "Northwind Finance",
			BusinessCategory:           finance,
			TenantAdminFullName:        "Sam Okafor",
			TenantAdminEmail:           "sam.okafor@northwind.example",
			TenantAdminMobile:          "+442071230456",
			DrawFrequency:              &monthly,
			BusinessVerificationStatus: &pending,
			DataUsageConsent:           true,
			DataPrivacyAcknowledgment:  false,
			Status:                     models.ClientStatusPendingVerification,
			CreatedBy:                  admin.ID,
			UpdatedBy:                  admin.ID,
		},
	}

	created := 0
	for i := range demoClients {
		if err := DB.Create(&demoClients[i]).Error; err != nil {
			return created, fmt.Errorf("failed to seed client %s: %w", demoClients[i].OrganizationName, err)
		}
		created++
	}

	return created, nil
}

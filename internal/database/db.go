package database

import (
	"log"
	"time"

	"riskmatrix/internal/config"
	"riskmatrix/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		log.Printf("trying to connect to DB (attempt %d/%d)...", i, maxAttempts)

		DB, err = gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
		if err == nil {
			log.Println("connected to DB successfully")
			break
		}

		log.Printf("failed to connect to DB: %v", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatalf("failed to connect to db after %d attempts: %v", maxAttempts, err)
	}

	// миграции
	if err := Migrate(DB); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	// дефолтная организация и админ
	seedDefaults(cfg)
}

// Migrate прогоняет автомиграции всех сущностей; вынесено отдельно,
// чтобы тесты могли поднять схему на своей БД.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.RiskCatalog{},
		&models.Risk{},
		&models.Asset{},
		&models.AssetCatalog{},
		&models.AssessmentRound{},
		&models.AssessmentEntry{},
		&models.AuditLog{},
	)
}

// админ и его организация только из кода/конфига
func seedDefaults(cfg *config.Config) {
	orgName := cfg.DefaultOrgName
	email := cfg.AdminEmail
	password := cfg.AdminPassword

	var count int64
	if err := DB.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		log.Printf("failed to check admin user: %v", err)
		return
	}
	if count > 0 {
		// админ уже есть — ничего не делаем
		return
	}

	org := models.Organization{Name: orgName, Email: email}
	if err := DB.Create(&org).Error; err != nil {
		log.Printf("failed to create default organization: %v", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("failed to hash default admin password: %v", err)
		return
	}

	admin := models.User{
		OrganizationID: org.ID,
		Email:          email,
		PasswordHash:   string(hash),
		Role:           models.RoleAdmin,
	}

	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("failed to create default admin: %v", err)
		return
	}

	log.Printf("created default admin user: %s (password: %s)", email, password)
}

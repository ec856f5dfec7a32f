package database

import (
	"fmt"
	"log"
	"time"

	"hms-ipd-backend/internal/config"
	"hms-ipd-backend/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect initializes and returns a GORM database connection
func Connect(cfg *config.Config) *gorm.DB {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Database,
	)

	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.Server.GinMode == "release" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})

	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	log.Println("Successfully connected to database")

	return db
}

// Migrate creates or updates the schema for every persisted model. The
// unique indexes it creates back the single-active-allocation and
// single-reservation guarantees, so it must run before the server starts
// accepting requests.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Ward{},
		&models.Bed{},
		&models.Patient{},
		&models.Doctor{},
		&models.AdmissionPriorityRule{},
		&models.SpecialAdmissionConsideration{},
		&models.IPDAdmission{},
		&models.BedAllocation{},
		&models.TransferRecommendation{},
		&models.TransferConsent{},
		&models.TransferBedReservation{},
		&models.PatientTransfer{},
		&models.PriorityAuditLog{},
		&models.AdmissionStatusAuditLog{},
		&models.TransferAuditLog{},
	)
}

package database

import (
	"fmt"

	"srm-service/internal/model"
	"srm-service/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB initializes the database connection and runs migrations
func InitDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.DBName, cfg.DB.SSLMode)

	logLevel := logger.Warn
	switch cfg.DB.LogLevel {
	case "silent":
		logLevel = logger.Silent
	case "error":
		logLevel = logger.Error
	case "info":
		logLevel = logger.Info
	}

	// PreferSimpleProtocol avoids "prepared statement already exists"
	// errors behind connection poolers.
	pgConfig := postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}

	var err error
	db, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	// AutoMigrate will automatically create or update the table structure
	// based on our models
	return db.AutoMigrate(
		&model.Principal{},
		&model.PrincipalTerminal{},
		&model.DepartmentMember{},
		&model.BackendRole{},
		&model.MenuGrant{},
		&model.RoleAssignment{},
		&model.MenuItem{},
		&model.Supplier{},
		&model.SupplierProduct{},
		&model.SupplierQualification{},
		&model.SupplierContact{},
		&model.DepartmentSupplierLink{},
		&model.AuditRecord{},
	)
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}

package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tenantconsole-backend/shared/config"
	"tenantconsole-backend/shared/database/models"
)

var DB *gorm.DB

// getLogLevel returns appropriate log level based on environment
func getLogLevel(cfg *config.Config) logger.LogLevel {
	if cfg.DBHost == "localhost" || cfg.DBHost == "127.0.0.1" {
		return logger.Warn
	}
	return logger.Error
}

// DSN builds the postgres connection string from config.
func DSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
	)
}

// InitDatabase opens the connection and runs migrations.
func InitDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(getLogLevel(cfg)),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(DSN(cfg)), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established", zap.String("host", cfg.DBHost), zap.String("database", cfg.DBName))

	if err := RunMigrations(db, log); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	DB = db
	return db, nil
}

// Models lists every table of the console schema.
func Models() []interface{} {
	return []interface{}{
		&models.Tenant{},
		&models.Organization{},
		&models.User{},
		&models.Role{},
		&models.UserRoleLink{},
		&models.Privilege{},
		&models.LegalEntity{},
		&models.AuditLogEntry{},
		&models.TenantSettings{},
		&models.SetupProgress{},
	}
}

// RunMigrations creates or updates every table of the schema.
func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	migrator := db.Migrator()
	created := 0

	for _, model := range Models() {
		if !migrator.HasTable(model) {
			log.Info("creating table", zap.String("model", fmt.Sprintf("%T", model)))
			created++
		}
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	log.Info("database schema is up to date", zap.Int("tables_created", created))
	return nil
}

// DropAll drops every table of the schema.
func DropAll(db *gorm.DB) error {
	tables := Models()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			return fmt.Errorf("failed to drop %T: %w", tables[i], err)
		}
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// CloseDatabase closes the database connection
func CloseDatabase() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

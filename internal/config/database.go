package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"hostel-leave-api/internal/adapters/persistence/models"
	"hostel-leave-api/internal/adapters/persistence/repositories"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenStore connects the configured backend and returns its repositories
func OpenStore(ctx context.Context, cfg *Config) (*repositories.Store, error) {
	switch cfg.Database.Driver {
	case DriverMongo:
		return openMongoStore(ctx, cfg)
	case DriverMySQL, DriverPostgres:
		return openSQLStore(cfg)
	case DriverMemory:
		log.Println("⚠️ Using in-memory store, data is lost on restart")
		return repositories.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

func openSQLStore(cfg *Config) (*repositories.Store, error) {
	db, err := ConnectDatabase(cfg)
	if err != nil {
		return nil, err
	}

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}
	log.Println("✅ Database migration completed")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	return &repositories.Store{
		Users:  repositories.NewUserRepository(db),
		Leaves: repositories.NewLeaveRepository(db),
		Ping:   sqlDB.PingContext,
		Close:  sqlDB.Close,
	}, nil
}

// ConnectDatabase establishes a GORM connection to MySQL or PostgreSQL
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	// Configure GORM logger based on mode
	var gormLogger logger.Interface
	if cfg.IsDev() {
		gormLogger = logger.Default.LogMode(logger.Info)
	} else {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	var dialector gorm.Dialector
	if cfg.Database.Driver == DriverPostgres {
		dialector = postgres.Open(buildDSN(cfg.Database))
	} else {
		dialector = mysql.Open(buildDSN(cfg.Database))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		TranslateError:         true, // surfaces gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("✅ Database connected successfully [%s %s:%s/%s]",
		cfg.Database.Driver,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
	)

	return db, nil
}

// buildDSN returns the connection string; DATABASE_URL wins over the discrete fields
func buildDSN(d DatabaseConfig) string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == DriverPostgres {
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			d.Host, d.User, d.Password, d.Name, d.Port)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
	)
}

// ConnectMongo opens a MongoDB client and verifies it with a ping
func ConnectMongo(ctx context.Context, cfg *Config) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Database.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Printf("✅ MongoDB connected successfully [%s]", cfg.Database.Name)
	return client, nil
}

func openMongoStore(ctx context.Context, cfg *Config) (*repositories.Store, error) {
	client, err := ConnectMongo(ctx, cfg)
	if err != nil {
		return nil, err
	}

	db := client.Database(cfg.Database.Name)
	if err := repositories.EnsureMongoIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return &repositories.Store{
		Users:  repositories.NewMongoUserRepository(db),
		Leaves: repositories.NewMongoLeaveRepository(db),
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		Close: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(ctx)
		},
	}, nil
}

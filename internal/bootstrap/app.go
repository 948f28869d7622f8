package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"todo-api/internal/config"
	"todo-api/internal/logging"
	"todo-api/internal/metrics"
	mysqlClient "todo-api/internal/platform/mysql"
	postgresClient "todo-api/internal/platform/postgres"
	rabbitmqClient "todo-api/internal/platform/rabbitmq"
	redisClient "todo-api/internal/platform/redis"
	sqliteClient "todo-api/internal/platform/sqlite"
	"todo-api/internal/repository"
)

// App holds the process-wide resources. Redis and MQConn are nil when the
// corresponding section is disabled.
type App struct {
	Config  *config.Config
	DB      *gorm.DB
	Redis   *redis.Client
	MQConn  *amqp.Connection
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	app := &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics.New("todo_api"),
		StartedAt: time.Now(),
	}

	app.DB, err = OpenDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := repository.AutoMigrate(app.DB); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}
	logger.Info("database ready", "driver", cfg.Database.Driver)

	if cfg.Redis.Enabled {
		app.Redis, err = redisClient.New(ctx, redisClient.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		logger.Info("redis account cache enabled", "addr", cfg.Redis.Addr)
	}

	if cfg.RabbitMQ.Enabled {
		app.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.EventQueue)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		logger.Info("rabbitmq event publishing enabled", "queue", cfg.RabbitMQ.EventQueue)
	}

	return app, nil
}

// OpenDatabase picks the gorm dialector named by database.driver.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		return mysqlClient.New(ctx, cfg.MySQLDSN())
	case config.DriverPostgres:
		return postgresClient.New(ctx, cfg.PostgresDSN())
	case config.DriverSQLite:
		return sqliteClient.New(ctx, cfg.Database.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rabbitmq: %w", err))
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close database: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

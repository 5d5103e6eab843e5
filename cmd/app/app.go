package app

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/api"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/config"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/db"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/logger"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/repository/dao"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/service"
)

const configPath = "./cmd/app/config.yml"

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	var postgresDB *gorm.DB
	if conf.Storage.Driver != api.StorageMemory {
		postgresDB, err = openDatabase(conf)
		if err != nil {
			return fmt.Errorf("failed to initialize database -> %w", err)
		}
		if err = dao.InitTables(postgresDB); err != nil {
			return fmt.Errorf("failed to migrate database -> %w", err)
		}
	}

	storage, err := api.NewStorage(conf.Storage.Driver, postgresDB, conf.Inventory.LockTimeout)
	if err != nil {
		return fmt.Errorf("failed to initialize storage -> %w", err)
	}

	s, err := api.NewServer(conf, storage)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}

	err = config.Watch(configPath, func(next *config.AppConfig) {
		err := s.Classifier.SetThresholds(service.Thresholds{
			LowStockThreshold:  next.Inventory.LowStockThreshold,
			ExpiringWindowDays: next.Inventory.ExpiringWindowDays,
		})
		if err != nil {
			zap.L().Warn("failed to apply inventory thresholds", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to watch config -> %w", err)
	}

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr), zap.String("storage", conf.Storage.Driver))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

func openDatabase(conf *config.AppConfig) (*gorm.DB, error) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return db.OpenPostgresWithURL(dbURL)
	}
	return db.OpenPostgres(conf.Postgres)
}

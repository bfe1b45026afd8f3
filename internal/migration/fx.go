package migration

import (
	"github.com/smallbiznis/robobooks/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg db.Config, log *zap.Logger) error {
		log = log.Named("migration")

		switch cfg.Type {
		case db.TypePostgres:
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		case db.TypeSQLite:
			return AutoMigrate(conn)
		default:
			log.Warn("schema is not managed for this database type, apply migrations manually",
				zap.String("type", cfg.Type))
			return nil
		}
	}),
)

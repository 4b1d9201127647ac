package migration

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/smallbiznis/tractionlens/internal/seed"
	"github.com/smallbiznis/tractionlens/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg db.Config, log *zap.Logger) error {
		if err := Migrate(conn, cfg.Type); err != nil {
			return eris.Wrap(err, "migrate reference database")
		}

		counts, err := seed.EnsureReferenceData(context.Background(), conn)
		if err != nil {
			return eris.Wrap(err, "seed reference database")
		}

		log.Named("migration").Info("reference data ready",
			zap.String("db_type", cfg.Type),
			zap.Any("rows", counts),
		)
		return nil
	}),
)

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("SELECT id FROM growth_stages"))
	assert.Equal(t, "INSERT", operationFromSQL(`INSERT INTO "metrics" ("id") VALUES (1) ON CONFLICT DO NOTHING`))
	assert.Equal(t, "SELECT", operationFromSQL("WITH x AS (SELECT 1) SELECT * FROM x"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestGormLoggerLogModeDoesNotMutateReceiver(t *testing.T) {
	base := NewGormLogger(DefaultGormLoggerConfig())
	verbose := base.LogMode(gormlogger.Info).(*GormLogger)

	assert.Equal(t, gormlogger.Warn, base.cfg.Level)
	assert.Equal(t, gormlogger.Info, verbose.cfg.Level)
}

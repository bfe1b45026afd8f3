package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("select * from quotes"))
	assert.Equal(t, "INSERT", operationFromSQL("  INSERT INTO quote_items (id) VALUES (?)"))
	assert.Equal(t, "UPDATE", operationFromSQL("WITH x AS (SELECT 1) UPDATE quotes SET version = 2"))
	assert.Equal(t, "DELETE", operationFromSQL("with recursive due(id) as (select id from quotes where status = 'SENT') delete from quotes where id in (select id from due)"))
	assert.Equal(t, "UPDATE", operationFromSQL("WITH a AS (SELECT (1)), b AS (SELECT 'select (') UPDATE quotes SET status = ?"))
	assert.Equal(t, "SELECT", operationFromSQL("(SELECT id FROM quotes) UNION (SELECT id FROM quote_items)"))
	assert.Equal(t, "SELECT", operationFromSQL("SELECT count(*) FROM quotes WHERE status IN (SELECT 'UPDATE')"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
	assert.Equal(t, "UNKNOWN", operationFromSQL("PRAGMA foreign_keys = ON"))
}

func TestGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), DefaultGormLoggerConfig())
	query := func() (string, int64) { return "UPDATE quotes SET total = ?", 1 }

	l.Trace(context.Background(), time.Now(), query, nil)
	assert.Equal(t, 0, logs.Len(), "fast successful queries are not logged at warn level")

	l.Trace(context.Background(), time.Now(), query, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len(), "record not found is ignored")

	l.Trace(context.Background(), time.Now(), query, errors.New("boom"))
	assert.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "UPDATE", entry.ContextMap()["operation"])

	l.Trace(context.Background(), time.Now().Add(-time.Second), query, nil)
	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
}

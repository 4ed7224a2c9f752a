package gormlogger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormLog "gorm.io/gorm/logger"
)

func newTestLogger(buf *bytes.Buffer, slow time.Duration) *GormLogger {
	h := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewGormLogger(slog.New(h), slow, true)
}

func TestTrace(t *testing.T) {
	sql := func() (string, int64) { return `SELECT * FROM "posts"`, 1 }

	tests := []struct {
		name  string
		slow  time.Duration
		begin time.Time
		err   error
		want  string
	}{
		{"error", time.Second, time.Now(), errors.New("boom"), "level=ERROR"},
		{"not found is not an error", time.Second, time.Now(), gorm.ErrRecordNotFound, "level=DEBUG"},
		{"slow", time.Millisecond, time.Now().Add(-time.Second), nil, "SLOW SQL"},
		{"trace", 0, time.Now().Add(-time.Second), nil, "SQL trace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newTestLogger(&buf, tt.slow).Trace(context.Background(), tt.begin, sql, tt.err)
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "posts")
		})
	}
}

func TestLogModeSilent(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, time.Second).LogMode(gormLog.Silent)
	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("boom"))
	l.Error(context.Background(), "failed %s", "query")
	assert.Empty(t, buf.String())
}

func TestParamsFilter(t *testing.T) {
	var buf bytes.Buffer
	sql, params := newTestLogger(&buf, 0).ParamsFilter(context.Background(), "SELECT ?", "secret")
	assert.Equal(t, "SELECT ?", sql)
	assert.Nil(t, params)
}

package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/activity-feed/pkg/database"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// fakeQueue 记录入队的扇出任务
type fakeQueue struct {
	mu       sync.Mutex
	enqueued []DistributeActivityPayload
}

func (f *fakeQueue) Enqueue(_ context.Context, _ string, payload interface{}) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := payload.(DistributeActivityPayload); ok {
		f.enqueued = append(f.enqueued, p)
	}
	return uuid.New().String(), nil
}

func (f *fakeQueue) jobs() []DistributeActivityPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]DistributeActivityPayload(nil), f.enqueued...)
}

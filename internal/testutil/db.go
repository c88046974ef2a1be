// Package testutil contains helpers shared by the package tests
package testutil

import (
	"bitwise74/movie-api/db"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewDB returns a migrated in-memory SQLite database private to t
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	gdb, err := db.New(db.Options{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)

	// SQLite allows a single writer, queue callers instead of failing with
	// "database table is locked"
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { sqlDB.Close() })

	return gdb
}

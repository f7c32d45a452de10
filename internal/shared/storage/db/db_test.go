package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"resume-scorer/internal/shared/metrics"
)

// useMockOpen points Connect at a sqlmock pool that records pings.
func useMockOpen(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	prev := openDB
	openDB = func(driverName, dsn string) (*sql.DB, error) {
		if driverName != "pgx" {
			t.Fatalf("expected pgx driver, got %q", driverName)
		}
		return sqlDB, nil
	}
	t.Cleanup(func() {
		openDB = prev
		_ = sqlDB.Close()
	})
	return mock
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultServerOptions()); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestConnectAppliesPoolOptions(t *testing.T) {
	mock := useMockOpen(t)
	mock.ExpectPing()

	sqlDB, err := Connect(context.Background(), "postgres://ignored", DefaultMigrateOptions())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("expected MaxOpenConnections=1, got %d", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestConnectClosesPoolWhenPingFails(t *testing.T) {
	mock := useMockOpen(t)
	mock.ExpectPing().WillReturnError(errors.New("no route to host"))
	mock.ExpectClose()

	_, err := Connect(context.Background(), "postgres://ignored", DefaultServerOptions())
	if err == nil || !strings.Contains(err.Error(), "ping database") {
		t.Fatalf("expected ping error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestConnectPropagatesOpenError(t *testing.T) {
	prev := openDB
	openDB = func(string, string) (*sql.DB, error) {
		return nil, errors.New("bad dsn")
	}
	t.Cleanup(func() { openDB = prev })

	_, err := Connect(context.Background(), "postgres://ignored", DefaultServerOptions())
	if err == nil || !strings.Contains(err.Error(), "open database: bad dsn") {
		t.Fatalf("expected wrapped open error, got %v", err)
	}
}

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")

	got := OptionsFromEnv(DefaultServerOptions())
	want := Options{
		MaxOpenConns:    7,
		MaxIdleConns:    3,
		ConnMaxLifetime: 20 * time.Minute,
		ConnMaxIdleTime: 45 * time.Second,
		PingTimeout:     time.Second,
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestOptionsFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "lots")
	t.Setenv("DB_PING_TIMEOUT", "soon")

	got := OptionsFromEnv(DefaultMigrateOptions())
	if got != DefaultMigrateOptions() {
		t.Fatalf("expected defaults kept, got %+v", got)
	}
}

func TestPing(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()
	mock.ExpectPing()

	if err := Ping(context.Background(), sqlDB, time.Second); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := Ping(context.Background(), nil, time.Second); err == nil {
		t.Fatalf("expected error for nil db")
	}
}

func TestOpenGormWrapsExistingPool(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()

	gdb, err := OpenGorm(sqlDB)
	if err != nil {
		t.Fatalf("OpenGorm: %v", err)
	}
	inner, err := gdb.DB()
	if err != nil {
		t.Fatalf("gorm DB: %v", err)
	}
	if inner != sqlDB {
		t.Fatalf("expected gorm to reuse the given pool")
	}
	if _, err := OpenGorm(nil); err == nil {
		t.Fatalf("expected error for nil pool")
	}
}

func TestExportPoolStatsRegistersGauges(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()

	ExportPoolStats(sqlDB)
	out := metrics.Render()
	for _, name := range []string{"db_open_connections", "db_in_use_connections", "db_idle_connections", "db_wait_count"} {
		if !strings.Contains(out, "# TYPE "+name+" gauge") {
			t.Fatalf("expected gauge %s in output:\n%s", name, out)
		}
	}
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/vault"
)

// setupTestDB creates a named shared in-memory SQLite database with
// migrations applied. Writer and reader share the database via cache=shared;
// a unique name derived from t.Name() isolates parallel tests.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so it's a safe SQLite URI filename
	// component and cannot be misread as query parameters in the DSN.
	safeName := url.PathEscape(t.Name())
	// WAL mode is not applicable to in-memory databases; omit the pragma.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)",
		safeName,
	)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("create test db writer: %v", err)
	}
	writer.SetMaxOpenConns(1)
	if err := writer.PingContext(context.Background()); err != nil {
		_ = writer.Close()
		t.Fatalf("ping test db writer: %v", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		t.Fatalf("create test db reader: %v", err)
	}
	reader.SetMaxOpenConns(4)
	if err := reader.PingContext(context.Background()); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		t.Fatalf("ping test db reader: %v", err)
	}

	db := &DB{Writer: writer, Reader: reader, path: dsn}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

// setupTestVault creates a vault with a fixed test key.
func setupTestVault(t *testing.T) *vault.Vault {
	t.Helper()

	key := make([]byte, vault.KeyLength)
	for i := range key {
		key[i] = byte(i * 3)
	}
	v, err := vault.New(key)
	if err != nil {
		t.Fatalf("create test vault: %v", err)
	}
	return v
}

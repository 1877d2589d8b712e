package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/port/driven"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/vault"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of the SessionStore port.
// Cookie maps are encrypted as one blob per (account, scope) row.
type SessionRepo struct {
	db    *DB
	vault *vault.Vault
}

// NewSessionRepo creates a new SessionRepo backed by the given DB and vault.
func NewSessionRepo(db *DB, v *vault.Vault) *SessionRepo {
	return &SessionRepo{db: db, vault: v}
}

// Upsert stores or replaces session credentials for the (account, scope) pair.
func (r *SessionRepo) Upsert(ctx context.Context, creds model.SessionCredentials) error {
	encryptedCookies, err := r.vault.EncryptCookies(creds.Cookies)
	if err != nil {
		return fmt.Errorf("encrypt cookies for account %q: %w", creds.AccountName, err)
	}

	const query = `
		INSERT INTO session_credentials (account_name, persona, scope_id, encrypted_cookies, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(account_name, scope_id) DO UPDATE SET
			persona = excluded.persona,
			encrypted_cookies = excluded.encrypted_cookies,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err = r.db.Writer.ExecContext(ctx, query,
		creds.AccountName, string(creds.Persona), creds.ScopeID.String(), encryptedCookies,
	)
	if err != nil {
		return fmt.Errorf("upsert session credentials for %q scope %s: %w", creds.AccountName, creds.ScopeID, err)
	}
	return nil
}

// Get retrieves decrypted session credentials for the (account, scope) pair.
// Returns (nil, nil) when none are stored.
func (r *SessionRepo) Get(ctx context.Context, accountName string, scopeID uuid.UUID) (*model.SessionCredentials, error) {
	const query = `
		SELECT account_name, persona, scope_id, encrypted_cookies, updated_at
		FROM session_credentials
		WHERE account_name = ? AND scope_id = ?
	`

	var (
		creds            model.SessionCredentials
		persona          string
		scope            string
		encryptedCookies string
		updatedAt        string
	)
	err := r.db.Reader.QueryRowContext(ctx, query, accountName, scopeID.String()).Scan(
		&creds.AccountName, &persona, &scope, &encryptedCookies, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session credentials for %q scope %s: %w", accountName, scopeID, err)
	}

	creds.Persona = model.Persona(persona)
	if creds.ScopeID, err = uuid.Parse(scope); err != nil {
		return nil, fmt.Errorf("parse scope_id for %q: %w", accountName, err)
	}
	if creds.Cookies, err = r.vault.DecryptCookies(encryptedCookies); err != nil {
		return nil, fmt.Errorf("decrypt cookies for %q scope %s: %w", accountName, scopeID, err)
	}
	if creds.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for %q: %w", accountName, err)
	}

	return &creds, nil
}

// ListTargets returns every registered refresh target.
func (r *SessionRepo) ListTargets(ctx context.Context) ([]model.SessionTarget, error) {
	const query = `
		SELECT account_name, persona, scope_id
		FROM session_targets
		ORDER BY account_name, scope_id
	`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list session targets: %w", err)
	}
	defer rows.Close()

	var targets []model.SessionTarget
	for rows.Next() {
		var (
			target  model.SessionTarget
			persona string
			scope   string
		)
		if err := rows.Scan(&target.AccountName, &persona, &scope); err != nil {
			return nil, fmt.Errorf("scan session target: %w", err)
		}
		target.Persona = model.Persona(persona)
		if target.ScopeID, err = uuid.Parse(scope); err != nil {
			return nil, fmt.Errorf("parse target scope_id for %q: %w", target.AccountName, err)
		}
		targets = append(targets, target)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session targets: %w", err)
	}

	return targets, nil
}

// AddTarget registers a refresh target.
func (r *SessionRepo) AddTarget(ctx context.Context, target model.SessionTarget) error {
	if !target.Persona.Valid() {
		return fmt.Errorf("unknown persona %q", target.Persona)
	}

	const query = `
		INSERT INTO session_targets (account_name, persona, scope_id)
		VALUES (?, ?, ?)
	`
	_, err := r.db.Writer.ExecContext(ctx, query,
		target.AccountName, string(target.Persona), target.ScopeID.String(),
	)
	if err != nil {
		return fmt.Errorf("add session target for %q: %w", target.AccountName, err)
	}
	return nil
}

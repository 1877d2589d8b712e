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
var _ driven.TokenStore = (*TokenRepo)(nil)

// TokenRepo is the SQLite implementation of the TokenStore port.
type TokenRepo struct {
	db    *DB
	vault *vault.Vault
}

// NewTokenRepo creates a new TokenRepo backed by the given DB and vault.
func NewTokenRepo(db *DB, v *vault.Vault) *TokenRepo {
	return &TokenRepo{db: db, vault: v}
}

// Get retrieves the decrypted token pair for an account.
// Returns (nil, nil) when the account has no stored pair.
func (r *TokenRepo) Get(ctx context.Context, accountName string) (*model.APICredentials, error) {
	const query = `
		SELECT account_name, encrypted_access_token, encrypted_refresh_token, department_id, updated_at
		FROM api_credentials
		WHERE account_name = ?
	`

	var (
		creds            model.APICredentials
		encryptedAccess  string
		encryptedRefresh string
		departmentID     sql.NullString
		updatedAt        string
	)
	err := r.db.Reader.QueryRowContext(ctx, query, accountName).Scan(
		&creds.AccountName, &encryptedAccess, &encryptedRefresh, &departmentID, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get api credentials for %q: %w", accountName, err)
	}

	if creds.AccessToken, err = r.vault.DecryptString(encryptedAccess); err != nil {
		return nil, fmt.Errorf("decrypt access token for %q: %w", accountName, err)
	}
	if creds.RefreshToken, err = r.vault.DecryptString(encryptedRefresh); err != nil {
		return nil, fmt.Errorf("decrypt refresh token for %q: %w", accountName, err)
	}
	if departmentID.Valid {
		id, err := uuid.Parse(departmentID.String)
		if err != nil {
			return nil, fmt.Errorf("parse department_id for %q: %w", accountName, err)
		}
		creds.DepartmentID = &id
	}
	if creds.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for %q: %w", accountName, err)
	}

	return &creds, nil
}

// Replace stores a new token pair for the account. Both tokens land in one
// upsert statement so a crash cannot leave a half-replaced pair.
func (r *TokenRepo) Replace(ctx context.Context, creds model.APICredentials) error {
	encryptedAccess, err := r.vault.EncryptString(creds.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token for %q: %w", creds.AccountName, err)
	}
	encryptedRefresh, err := r.vault.EncryptString(creds.RefreshToken)
	if err != nil {
		return fmt.Errorf("encrypt refresh token for %q: %w", creds.AccountName, err)
	}

	var departmentID any
	if creds.DepartmentID != nil {
		departmentID = creds.DepartmentID.String()
	}

	const query = `
		INSERT INTO api_credentials (account_name, encrypted_access_token, encrypted_refresh_token, department_id, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(account_name) DO UPDATE SET
			encrypted_access_token = excluded.encrypted_access_token,
			encrypted_refresh_token = excluded.encrypted_refresh_token,
			department_id = excluded.department_id,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err = r.db.Writer.ExecContext(ctx, query,
		creds.AccountName, encryptedAccess, encryptedRefresh, departmentID,
	)
	if err != nil {
		return fmt.Errorf("replace api credentials for %q: %w", creds.AccountName, err)
	}
	return nil
}

// ListAccounts returns the names of all accounts holding a token pair.
func (r *TokenRepo) ListAccounts(ctx context.Context) ([]string, error) {
	const query = `SELECT account_name FROM api_credentials ORDER BY account_name`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list api credential accounts: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan account name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api credential accounts: %w", err)
	}

	return names, nil
}

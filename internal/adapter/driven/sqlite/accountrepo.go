package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/port/driven"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/vault"
)

// Compile-time interface satisfaction check.
var _ driven.AccountStore = (*AccountRepo)(nil)

// AccountRepo is the SQLite implementation of the AccountStore port.
// Login and password are encrypted before write and decrypted after read.
type AccountRepo struct {
	db    *DB
	vault *vault.Vault
}

// NewAccountRepo creates a new AccountRepo backed by the given DB and vault.
func NewAccountRepo(db *DB, v *vault.Vault) *AccountRepo {
	return &AccountRepo{db: db, vault: v}
}

// GetByName retrieves one account with decrypted credentials.
func (r *AccountRepo) GetByName(ctx context.Context, name string) (*model.Account, error) {
	const query = `
		SELECT id, name, encrypted_login, encrypted_password
		FROM accounts
		WHERE name = ?
	`

	var (
		account           model.Account
		encryptedLogin    string
		encryptedPassword string
	)
	err := r.db.Reader.QueryRowContext(ctx, query, name).Scan(
		&account.ID, &account.Name, &encryptedLogin, &encryptedPassword,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, driven.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account %q: %w", name, err)
	}

	if account.Login, err = r.vault.DecryptString(encryptedLogin); err != nil {
		return nil, fmt.Errorf("decrypt login for account %q: %w", name, err)
	}
	if account.Password, err = r.vault.DecryptString(encryptedPassword); err != nil {
		return nil, fmt.Errorf("decrypt password for account %q: %w", name, err)
	}

	return &account, nil
}

// Add stores a new account with encrypted credentials.
func (r *AccountRepo) Add(ctx context.Context, account model.Account) error {
	encryptedLogin, err := r.vault.EncryptString(account.Login)
	if err != nil {
		return fmt.Errorf("encrypt login for account %q: %w", account.Name, err)
	}
	encryptedPassword, err := r.vault.EncryptString(account.Password)
	if err != nil {
		return fmt.Errorf("encrypt password for account %q: %w", account.Name, err)
	}

	const query = `INSERT INTO accounts (name, encrypted_login, encrypted_password) VALUES (?, ?, ?)`
	if _, err := r.db.Writer.ExecContext(ctx, query, account.Name, encryptedLogin, encryptedPassword); err != nil {
		return fmt.Errorf("add account %q: %w", account.Name, err)
	}
	return nil
}

// Command credtool seeds and inspects the bridge's credential store from the
// command line: registering platform accounts, refresh targets, and the
// initial API token pair that the scheduler rotates from then on.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	sqliteadapter "github.com/goretsky-integration/dodo-auth-bridge/internal/adapter/driven/sqlite"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/config"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/port/driven"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/vault"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: credtool <command> [flags]

commands:
  add-account  -name NAME -login LOGIN -password PASSWORD
  add-target   -account NAME -persona office_manager|shift_manager -scope UUID
  seed-tokens  -account NAME -access TOKEN -refresh TOKEN [-department UUID]
  show-session -account NAME -scope UUID
  encrypt      -value PLAINTEXT
  decrypt      -value CIPHERTEXT`)
	os.Exit(2)
}

func run() error {
	if len(os.Args) < 2 {
		usage()
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}

	v, err := vault.New(cfg.SecretKey)
	if err != nil {
		return err
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "add-account":
		return addAccount(ctx, sqliteadapter.NewAccountRepo(db, v), os.Args[2:])
	case "add-target":
		return addTarget(ctx, sqliteadapter.NewSessionRepo(db, v), os.Args[2:])
	case "seed-tokens":
		return seedTokens(ctx, sqliteadapter.NewTokenRepo(db, v), os.Args[2:])
	case "show-session":
		return showSession(ctx, sqliteadapter.NewSessionRepo(db, v), os.Args[2:])
	case "encrypt":
		return encryptValue(v, os.Args[2:])
	case "decrypt":
		return decryptValue(v, os.Args[2:])
	default:
		usage()
		return nil
	}
}

func addAccount(ctx context.Context, accounts driven.AccountStore, args []string) error {
	fs := flag.NewFlagSet("add-account", flag.ExitOnError)
	name := fs.String("name", "", "account name, unique within the store")
	login := fs.String("login", "", "platform login")
	password := fs.String("password", "", "platform password")
	_ = fs.Parse(args)

	if *name == "" || *login == "" || *password == "" {
		return fmt.Errorf("add-account requires -name, -login and -password")
	}

	err := accounts.Add(ctx, model.Account{Name: *name, Login: *login, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("account %q added\n", *name)
	return nil
}

func addTarget(ctx context.Context, sessions driven.SessionStore, args []string) error {
	fs := flag.NewFlagSet("add-target", flag.ExitOnError)
	account := fs.String("account", "", "account name")
	persona := fs.String("persona", "", "office_manager or shift_manager")
	scope := fs.String("scope", "", "department or unit uuid")
	_ = fs.Parse(args)

	if *account == "" || *persona == "" || *scope == "" {
		return fmt.Errorf("add-target requires -account, -persona and -scope")
	}

	scopeID, err := uuid.Parse(*scope)
	if err != nil {
		return fmt.Errorf("parse scope uuid: %w", err)
	}

	err = sessions.AddTarget(ctx, model.SessionTarget{
		AccountName: *account,
		Persona:     model.Persona(*persona),
		ScopeID:     scopeID,
	})
	if err != nil {
		return err
	}
	fmt.Printf("target %s/%s/%s added\n", *account, *persona, scopeID)
	return nil
}

func seedTokens(ctx context.Context, tokens driven.TokenStore, args []string) error {
	fs := flag.NewFlagSet("seed-tokens", flag.ExitOnError)
	account := fs.String("account", "", "account name")
	access := fs.String("access", "", "initial access token")
	refresh := fs.String("refresh", "", "initial refresh token")
	department := fs.String("department", "", "optional department uuid")
	_ = fs.Parse(args)

	if *account == "" || *access == "" || *refresh == "" {
		return fmt.Errorf("seed-tokens requires -account, -access and -refresh")
	}

	creds := model.APICredentials{
		AccountName:  *account,
		AccessToken:  *access,
		RefreshToken: *refresh,
	}
	if *department != "" {
		departmentID, err := uuid.Parse(*department)
		if err != nil {
			return fmt.Errorf("parse department uuid: %w", err)
		}
		creds.DepartmentID = &departmentID
	}

	if err := tokens.Replace(ctx, creds); err != nil {
		return err
	}
	fmt.Printf("token pair for %q stored\n", *account)
	return nil
}

func encryptValue(v *vault.Vault, args []string) error {
	fs := flag.NewFlagSet("encrypt", flag.ExitOnError)
	value := fs.String("value", "", "plaintext to encrypt")
	_ = fs.Parse(args)

	if *value == "" {
		return fmt.Errorf("encrypt requires -value")
	}

	artifact, err := v.EncryptString(*value)
	if err != nil {
		return err
	}
	fmt.Println(artifact)
	return nil
}

func decryptValue(v *vault.Vault, args []string) error {
	fs := flag.NewFlagSet("decrypt", flag.ExitOnError)
	value := fs.String("value", "", "stored ciphertext artifact")
	_ = fs.Parse(args)

	if *value == "" {
		return fmt.Errorf("decrypt requires -value")
	}

	plaintext, err := v.DecryptString(*value)
	if err != nil {
		return err
	}
	fmt.Println(plaintext)
	return nil
}

func showSession(ctx context.Context, sessions driven.SessionStore, args []string) error {
	fs := flag.NewFlagSet("show-session", flag.ExitOnError)
	account := fs.String("account", "", "account name")
	scope := fs.String("scope", "", "department or unit uuid")
	_ = fs.Parse(args)

	if *account == "" || *scope == "" {
		return fmt.Errorf("show-session requires -account and -scope")
	}

	scopeID, err := uuid.Parse(*scope)
	if err != nil {
		return fmt.Errorf("parse scope uuid: %w", err)
	}

	creds, err := sessions.Get(ctx, *account, scopeID)
	if err != nil {
		return err
	}
	if creds == nil {
		fmt.Println("no session stored")
		return nil
	}

	fmt.Printf("persona: %s\nupdated: %s\ncookies: %d\n", creds.Persona, creds.UpdatedAt, len(creds.Cookies))
	for name := range creds.Cookies {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

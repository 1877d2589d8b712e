package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/port/driven"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/vault"
)

// RefreshService periodically re-authenticates every registered session
// target and rotates every stored token pair. Targets run concurrently up to
// a bounded limit, but work for one account is serialized so two targets of
// the same account never interleave their login flows.
type RefreshService struct {
	authenticator *Authenticator
	refresher     *TokenRefresher
	accounts      driven.AccountStore
	sessions      driven.SessionStore
	logger        *slog.Logger

	interval      time.Duration
	maxConcurrent int
	maxAttempts   int
	retryBackoff  time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// RefreshServiceConfig carries the scheduler knobs.
type RefreshServiceConfig struct {
	Interval      time.Duration
	MaxConcurrent int
	MaxAttempts   int
	// RetryBackoff is the pause between attempts at the same item, so a
	// struggling gateway is not hit again back-to-back.
	RetryBackoff time.Duration
}

// NewRefreshService creates a RefreshService. refresher may be nil when no
// token grant credentials are configured; token rotation is then skipped.
func NewRefreshService(
	authenticator *Authenticator,
	refresher *TokenRefresher,
	accounts driven.AccountStore,
	sessions driven.SessionStore,
	logger *slog.Logger,
	cfg RefreshServiceConfig,
) *RefreshService {
	return &RefreshService{
		authenticator: authenticator,
		refresher:     refresher,
		accounts:      accounts,
		sessions:      sessions,
		logger:        logger,
		interval:      cfg.Interval,
		maxConcurrent: cfg.MaxConcurrent,
		maxAttempts:   cfg.MaxAttempts,
		retryBackoff:  cfg.RetryBackoff,
		locks:         make(map[string]*sync.Mutex),
	}
}

// Start runs an immediate batch and then one batch per interval until the
// context is cancelled.
func (s *RefreshService) Start(ctx context.Context) {
	s.logger.Info("refresh service started", "interval", s.interval)

	s.RunBatch(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("refresh service stopped")
			return
		case <-ticker.C:
			s.RunBatch(ctx)
		}
	}
}

// RunBatch refreshes all session targets and all token pairs once. Failures
// are logged per item and never abort the rest of the batch.
func (s *RefreshService) RunBatch(ctx context.Context) {
	start := time.Now()

	s.RefreshSessions(ctx)
	s.RefreshTokens(ctx)

	s.logger.Info("refresh batch finished", "elapsed", time.Since(start))
}

// RefreshSessions re-authenticates every registered target and stores the
// resulting cookies. A target that fails permanently is logged and skipped;
// transient failures are retried up to the attempt budget.
func (s *RefreshService) RefreshSessions(ctx context.Context) {
	targets, err := s.sessions.ListTargets(ctx)
	if err != nil {
		s.logger.Error("list session targets", "error", err)
		return
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.maxConcurrent)

	for _, target := range targets {
		target := target
		group.Go(func() error {
			unlock := s.lockAccount(target.AccountName)
			defer unlock()

			if err := s.refreshTarget(groupCtx, target); err != nil {
				s.logger.Error("refresh session",
					"account", target.AccountName,
					"persona", target.Persona,
					"scope_id", target.ScopeID,
					"error", err)
				return nil
			}

			s.logger.Info("session refreshed",
				"account", target.AccountName,
				"persona", target.Persona,
				"scope_id", target.ScopeID)
			return nil
		})
	}

	_ = group.Wait()
}

func (s *RefreshService) refreshTarget(ctx context.Context, target model.SessionTarget) error {
	account, err := s.accounts.GetByName(ctx, target.AccountName)
	if err != nil {
		return err
	}

	var cookies map[string]string
	err = s.withRetries(ctx, func() error {
		var runErr error
		cookies, runErr = s.authenticator.Authenticate(ctx, *account, target.Persona, target.ScopeID)
		return runErr
	})
	if err != nil {
		return err
	}

	return s.sessions.Upsert(ctx, model.SessionCredentials{
		AccountName: target.AccountName,
		Persona:     target.Persona,
		ScopeID:     target.ScopeID,
		Cookies:     cookies,
	})
}

// RefreshTokens rotates the token pair of every account that has one.
// No-op when the service was built without a token refresher.
func (s *RefreshService) RefreshTokens(ctx context.Context) {
	if s.refresher == nil {
		return
	}

	names, err := s.refresher.tokens.ListAccounts(ctx)
	if err != nil {
		s.logger.Error("list token accounts", "error", err)
		return
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.maxConcurrent)

	for _, name := range names {
		name := name
		group.Go(func() error {
			unlock := s.lockAccount(name)
			defer unlock()

			err := s.withRetries(groupCtx, func() error {
				return s.refresher.RefreshAccount(groupCtx, name)
			})
			if err != nil {
				s.logger.Error("refresh token pair", "account", name, "error", err)
				return nil
			}

			s.logger.Info("token pair refreshed", "account", name)
			return nil
		})
	}

	_ = group.Wait()
}

// withRetries runs fn up to the attempt budget, pausing between attempts.
// Permanent failures, a dead context, and undecryptable stored secrets stop
// retrying immediately; a repeat will not change any of them.
func (s *RefreshService) withRetries(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if model.IsPermanent(lastErr) || errors.Is(lastErr, vault.ErrDecrypt) {
			return lastErr
		}
		if attempt < s.maxAttempts {
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(s.retryBackoff):
			}
		}
	}
	return lastErr
}

// lockAccount serializes work per account name.
func (s *RefreshService) lockAccount(name string) func() {
	s.mu.Lock()
	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

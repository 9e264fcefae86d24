// Package numbering assigns sequential account numbers to chart-of-accounts
// entries that have none.
package numbering

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/MMC-CONVERT2505/reckonex/internal/domain"
	"github.com/MMC-CONVERT2505/reckonex/internal/qbxml"
)

const (
	// seedNumber is the first number issued when no account carries a
	// numeric number yet.
	seedNumber = 1000

	// defaultDelay is the pause between consecutive updates, a courtesy to
	// avoid overloading the SDK endpoint.
	defaultDelay = 50 * time.Millisecond
)

// Client is the slice of the session API the engine needs. *qbxml.Session
// satisfies it.
type Client interface {
	Accounts(ctx context.Context) ([]*domain.Account, error)
	ModifyAccount(ctx context.Context, mod qbxml.AccountMod) error
}

var _ Client = (*qbxml.Session)(nil)

type Engine struct {
	client Client
	delay  time.Duration
}

type Option func(*Engine)

// WithDelay overrides the pause between updates. A non-positive delay
// disables the pause.
func WithDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.delay = d
	}
}

func New(client Client, opts ...Option) *Engine {
	e := &Engine{
		client: client,
		delay:  defaultDelay,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(e)
	}

	return e
}

// Run fetches the full chart of accounts and issues one update per account
// missing a number. Numbers start above the highest numeric number already
// in use, or at the seed when none exist, and strictly increase across
// successful updates. A single account's update failure is logged and
// skipped; the batch continues. Run returns the number of accounts updated.
func (e *Engine) Run(ctx context.Context) (int, error) {
	accounts, err := e.client.Accounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch accounts: %w", err)
	}

	next := nextNumber(accounts)
	taken := claimedNames(accounts)

	zerolog.Ctx(ctx).Info().
		Int("account.total", len(accounts)).
		Int("numbering.next", next).
		Msg("starting auto numbering")

	updated := 0

	for _, account := range accounts {
		if account.HasNumber() {
			continue
		}

		if account.EditSequence == "" {
			zerolog.Ctx(ctx).Warn().
				Str("account.name", account.Name).
				Msg("skipped account: edit sequence missing")

			continue
		}

		name := resolveName(account.Name, taken)
		taken[name] = struct{}{}

		err := e.client.ModifyAccount(ctx, qbxml.AccountMod{
			ListID:        account.ListID,
			EditSequence:  account.EditSequence,
			Name:          name,
			AccountType:   account.Type,
			AccountNumber: strconv.Itoa(next),
		})
		if err != nil {
			zerolog.Ctx(ctx).Error().
				Err(err).
				Str("account.name", account.Name).
				Msg("failed to update account")

			continue
		}

		zerolog.Ctx(ctx).Info().
			Str("account.name", name).
			Int("account.number", next).
			Msg("assigned account number")

		next++
		updated++

		if e.delay > 0 {
			select {
			case <-ctx.Done():
				return updated, ctx.Err()
			case <-time.After(e.delay):
			}
		}
	}

	zerolog.Ctx(ctx).Info().
		Int("account.updated", updated).
		Msg("auto numbering complete")

	return updated, nil
}

// nextNumber seeds the cursor at one past the highest numeric account number
// in use.
func nextNumber(accounts []*domain.Account) int {
	max := 0
	seen := false

	for _, account := range accounts {
		if !isDigits(account.Number) {
			continue
		}

		n, err := strconv.Atoi(account.Number)
		if err != nil {
			continue
		}

		seen = true
		if n > max {
			max = n
		}
	}

	if !seen {
		return seedNumber
	}

	return max + 1
}

// isDigits reports whether s is a non-empty sequence of ASCII digits. Only
// such numbers seed the cursor; alphanumeric schemes are ignored.
func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// claimedNames collects the display names of accounts the engine will not
// rename: those already numbered and those it cannot modify. Duplicate names
// among the accounts being renumbered are resolved against this set as the
// run claims them.
func claimedNames(accounts []*domain.Account) map[string]struct{} {
	taken := make(map[string]struct{})

	for _, account := range accounts {
		if account.Name == "" {
			continue
		}

		if account.HasNumber() || account.EditSequence == "" {
			taken[account.Name] = struct{}{}
		}
	}

	return taken
}

// resolveName returns the first free form of name, appending a numeric
// suffix in parentheses on collision. The modify request must carry the
// account's resolved name, and the source permits duplicates, so two
// renumbered accounts may not claim the same form.
func resolveName(name string, taken map[string]struct{}) string {
	candidate := name

	for suffix := 2; ; suffix++ {
		if _, exists := taken[candidate]; !exists {
			return candidate
		}

		candidate = fmt.Sprintf("%s (%d)", name, suffix)
	}
}

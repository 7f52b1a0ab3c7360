// Package sync implements barista's multi-account synchronization jobs:
// blocklist-to-modlist migration, modlist cross-subscription, and preference
// merging. Jobs run sequentially, one account at a time; a failure on one
// account or one item is reported and never aborts the rest of the run.
package sync

import (
	"context"

	"github.com/bluesky-social/indigo/atproto/syntax"

	"tangled.org/arabica.social/barista/internal/bluesky"
	"tangled.org/arabica.social/barista/internal/config"
	"tangled.org/arabica.social/barista/internal/lexicons"
)

// Client is the slice of the Bluesky client the sync jobs use. *bluesky.Client
// satisfies it; tests substitute fakes.
type Client interface {
	DID() syntax.DID
	Handle() string
	GetBlocks(ctx context.Context) ([]bluesky.BlockedUser, error)
	GetListBlocks(ctx context.Context) ([]bluesky.ModList, error)
	GetListMembers(ctx context.Context, listURI string) ([]bluesky.ListMember, error)
	AddListItem(ctx context.Context, subjectDID, listURI string) (string, error)
	BlockList(ctx context.Context, listURI string) error
	Unblock(ctx context.Context, did string) error
	GetPreferences(ctx context.Context) ([]lexicons.Preference, error)
	PutPreferences(ctx context.Context, prefs []lexicons.Preference) error
}

// Dialer authenticates one configured account.
type Dialer func(ctx context.Context, acct config.Account) (Client, error)

// Runner executes sync jobs against the configured accounts. Sessions are
// created on first use and reused for the rest of the run, one per account.
type Runner struct {
	cfg      *config.Config
	dial     Dialer
	sessions map[string]Client
}

// NewRunner builds a Runner over cfg using dial to authenticate accounts.
func NewRunner(cfg *config.Config, dial Dialer) *Runner {
	return &Runner{
		cfg:      cfg,
		dial:     dial,
		sessions: make(map[string]Client),
	}
}

// client returns the session for a configured account, dialing it on first use.
func (r *Runner) client(ctx context.Context, name string) (Client, error) {
	if c, ok := r.sessions[name]; ok {
		return c, nil
	}
	c, err := r.dial(ctx, r.cfg.Accounts[name])
	if err != nil {
		return nil, err
	}
	r.sessions[name] = c
	return c, nil
}

// Package bluesky is a small authenticated client for the Bluesky / AT Protocol
// HTTP API. It covers exactly the surface the sync jobs need: session creation,
// cursor-paginated listings, record create/delete, preferences, and blob upload.
package bluesky

import (
	"context"
	"net/http"
	"time"

	"github.com/bluesky-social/indigo/atproto/syntax"
	"github.com/bluesky-social/indigo/xrpc"
	"github.com/rs/zerolog/log"
)

// DefaultHost is the PDS entryway most accounts authenticate against.
const DefaultHost = "https://bsky.social"

// requestTimeout bounds every API call. The jobs are sequential, so a hung
// request would otherwise stall the whole run.
const requestTimeout = 30 * time.Second

// Client is an authenticated session with a single account's PDS. One session
// is created per account per run; nothing is cached across processes. The
// bearer credential is read-only after authentication.
type Client struct {
	xrpc   *xrpc.Client
	did    syntax.DID
	handle string
}

// CreateSession authenticates with an identifier (handle or email) and an app
// password. Failures surface as *AuthError so callers can isolate them per
// account.
func CreateSession(ctx context.Context, host, identifier, password string) (*Client, error) {
	if host == "" {
		host = DefaultHost
	}

	c := &xrpc.Client{
		Host:   host,
		Client: &http.Client{Timeout: requestTimeout},
	}

	body := map[string]interface{}{
		"identifier": identifier,
		"password":   password,
	}

	var out struct {
		Did        string `json:"did"`
		Handle     string `json:"handle"`
		AccessJwt  string `json:"accessJwt"`
		RefreshJwt string `json:"refreshJwt"`
	}

	if err := c.Do(ctx, xrpc.Procedure, "", "com.atproto.server.createSession", nil, body, &out); err != nil {
		return nil, &AuthError{Identifier: identifier, Err: err}
	}

	did, err := syntax.ParseDID(out.Did)
	if err != nil {
		return nil, &AuthError{Identifier: identifier, Err: err}
	}

	c.Auth = &xrpc.AuthInfo{
		AccessJwt:  out.AccessJwt,
		RefreshJwt: out.RefreshJwt,
		Did:        out.Did,
		Handle:     out.Handle,
	}

	log.Debug().
		Str("did", out.Did).
		Str("handle", out.Handle).
		Msg("session created")

	return &Client{xrpc: c, did: did, handle: out.Handle}, nil
}

// DID returns the resolved identity of the authenticated account.
func (c *Client) DID() syntax.DID { return c.did }

// Handle returns the account's handle as reported at session creation.
func (c *Client) Handle() string { return c.handle }

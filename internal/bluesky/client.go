package bluesky

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/bluesky-social/indigo/xrpc"

	"tangled.org/arabica.social/barista/internal/lexicons"
)

// BlockedUser is one account on the caller's personal block list. Identity is
// the DID; the handle is carried for reporting.
type BlockedUser struct {
	DID    string `json:"did"`
	Handle string `json:"handle"`
}

// ModList is a moderation list as returned by getListBlocks. Identity is the URI.
type ModList struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// ListMember is one membership edge of a moderation list: the listitem record's
// at-uri plus the subject it names.
type ListMember struct {
	URI        string
	SubjectDID string
}

// Profile is the subset of app.bsky.actor.getProfile this tool reads. Viewer is
// the relationship between the authenticated account and the profiled one.
type Profile struct {
	DID    string       `json:"did"`
	Handle string       `json:"handle"`
	Viewer *ViewerState `json:"viewer,omitempty"`
}

// ViewerState carries viewer-relationship fields. Blocking, when present, is
// the at-uri of the viewer's block record for this account.
type ViewerState struct {
	Blocking *string `json:"blocking,omitempty"`
}

// GetBlocks returns every account the authenticated user blocks, following the
// pagination cursor to exhaustion.
func (c *Client) GetBlocks(ctx context.Context) ([]BlockedUser, error) {
	return fetchAll(ctx, "app.bsky.graph.getBlocks", func(ctx context.Context, cursor string) (Page[BlockedUser], error) {
		params := map[string]interface{}{}
		if cursor != "" {
			params["cursor"] = cursor
		}

		var out struct {
			Blocks []BlockedUser `json:"blocks"`
			Cursor *string       `json:"cursor,omitempty"`
		}
		if err := c.xrpc.Do(ctx, xrpc.Query, "", "app.bsky.graph.getBlocks", params, nil, &out); err != nil {
			return Page[BlockedUser]{}, err
		}
		return Page[BlockedUser]{Items: out.Blocks, Cursor: out.Cursor}, nil
	})
}

// GetListBlocks returns every moderation list the authenticated user has
// block-subscribed to.
func (c *Client) GetListBlocks(ctx context.Context) ([]ModList, error) {
	return fetchAll(ctx, "app.bsky.graph.getListBlocks", func(ctx context.Context, cursor string) (Page[ModList], error) {
		params := map[string]interface{}{}
		if cursor != "" {
			params["cursor"] = cursor
		}

		var out struct {
			Lists  []ModList `json:"lists"`
			Cursor *string   `json:"cursor,omitempty"`
		}
		if err := c.xrpc.Do(ctx, xrpc.Query, "", "app.bsky.graph.getListBlocks", params, nil, &out); err != nil {
			return Page[ModList]{}, err
		}
		return Page[ModList]{Items: out.Lists, Cursor: out.Cursor}, nil
	})
}

// GetListMembers returns the current membership of a moderation list. Used to
// skip subjects that are already present; the server does not dedupe listitem
// records on its own.
func (c *Client) GetListMembers(ctx context.Context, listURI string) ([]ListMember, error) {
	return fetchAll(ctx, "app.bsky.graph.getList", func(ctx context.Context, cursor string) (Page[ListMember], error) {
		params := map[string]interface{}{"list": listURI}
		if cursor != "" {
			params["cursor"] = cursor
		}

		var out struct {
			Items []struct {
				URI     string `json:"uri"`
				Subject struct {
					DID string `json:"did"`
				} `json:"subject"`
			} `json:"items"`
			Cursor *string `json:"cursor,omitempty"`
		}
		if err := c.xrpc.Do(ctx, xrpc.Query, "", "app.bsky.graph.getList", params, nil, &out); err != nil {
			return Page[ListMember]{}, err
		}

		members := make([]ListMember, len(out.Items))
		for i, item := range out.Items {
			members[i] = ListMember{URI: item.URI, SubjectDID: item.Subject.DID}
		}
		return Page[ListMember]{Items: members, Cursor: out.Cursor}, nil
	})
}

// GetProfile fetches a profile, including the viewer relationship.
func (c *Client) GetProfile(ctx context.Context, actor string) (*Profile, error) {
	params := map[string]interface{}{"actor": actor}

	var profile Profile
	if err := c.xrpc.Do(ctx, xrpc.Query, "", "app.bsky.actor.getProfile", params, nil, &profile); err != nil {
		return nil, fmt.Errorf("fetching profile for %s: %w", actor, err)
	}
	return &profile, nil
}

// CreateRecord writes a typed record into the authenticated account's
// repository and returns the new record's at-uri. This is a live, irreversible
// mutation; there is no staging.
func (c *Client) CreateRecord(ctx context.Context, collection string, record any) (string, error) {
	body := map[string]interface{}{
		"repo":       c.did.String(),
		"collection": collection,
		"record":     record,
	}

	var out struct {
		URI string `json:"uri"`
		CID string `json:"cid"`
	}
	if err := c.xrpc.Do(ctx, xrpc.Procedure, "", "com.atproto.repo.createRecord", nil, body, &out); err != nil {
		return "", &WriteError{Collection: collection, Repo: c.did.String(), Err: err}
	}
	return out.URI, nil
}

// DeleteRecordURI removes a record from the authenticated account's repository
// given its at-uri. Collection and record key are the uri's trailing two path
// segments.
func (c *Client) DeleteRecordURI(ctx context.Context, uri string) error {
	collection, rkey, err := splitRecordURI(uri)
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"repo":       c.did.String(),
		"collection": collection,
		"rkey":       rkey,
	}
	if err := c.xrpc.Do(ctx, xrpc.Procedure, "", "com.atproto.repo.deleteRecord", nil, body, nil); err != nil {
		return &WriteError{Collection: collection, Repo: c.did.String(), Err: err}
	}
	return nil
}

// AddListItem adds subjectDID as a member of the moderation list at listURI and
// returns the membership record's at-uri.
func (c *Client) AddListItem(ctx context.Context, subjectDID, listURI string) (string, error) {
	record := lexicons.NewListItem(subjectDID, listURI, time.Now())
	return c.CreateRecord(ctx, lexicons.NSIDGraphListItem, record)
}

// BlockList subscribes the authenticated account to the moderation list at
// listURI, blocking every member as a unit.
func (c *Client) BlockList(ctx context.Context, listURI string) error {
	record := lexicons.NewListBlock(listURI, time.Now())
	_, err := c.CreateRecord(ctx, lexicons.NSIDGraphListBlock, record)
	return err
}

// Unblock removes the authenticated account's personal block on did, if one
// exists. A missing block relationship is a no-op, not an error.
func (c *Client) Unblock(ctx context.Context, did string) error {
	profile, err := c.GetProfile(ctx, did)
	if err != nil {
		return err
	}
	if profile.Viewer == nil || profile.Viewer.Blocking == nil || *profile.Viewer.Blocking == "" {
		return nil
	}
	return c.DeleteRecordURI(ctx, *profile.Viewer.Blocking)
}

// GetPreferences returns the account's full preference sequence. Blocks this
// tool does not manage are carried as raw JSON.
func (c *Client) GetPreferences(ctx context.Context) ([]lexicons.Preference, error) {
	var out struct {
		Preferences []lexicons.Preference `json:"preferences"`
	}
	if err := c.xrpc.Do(ctx, xrpc.Query, "", "app.bsky.actor.getPreferences", nil, nil, &out); err != nil {
		return nil, &FetchError{Endpoint: "app.bsky.actor.getPreferences", Err: err}
	}
	return out.Preferences, nil
}

// PutPreferences replaces the account's full preference sequence.
func (c *Client) PutPreferences(ctx context.Context, prefs []lexicons.Preference) error {
	body := map[string]interface{}{"preferences": prefs}
	if err := c.xrpc.Do(ctx, xrpc.Procedure, "", "app.bsky.actor.putPreferences", nil, body, nil); err != nil {
		return &WriteError{Collection: "app.bsky.actor.putPreferences", Repo: c.did.String(), Err: err}
	}
	return nil
}

// UploadBlob uploads raw bytes with the given content type and returns the blob
// reference exactly as the server encoded it, for embedding in records.
func (c *Client) UploadBlob(ctx context.Context, contentType string, r io.Reader) (json.RawMessage, error) {
	var out struct {
		Blob json.RawMessage `json:"blob"`
	}
	if err := c.xrpc.Do(ctx, xrpc.Procedure, contentType, "com.atproto.repo.uploadBlob", nil, r, &out); err != nil {
		return nil, &UploadError{Err: err}
	}
	return out.Blob, nil
}

// CreatePost writes a feed post record and returns its at-uri.
func (c *Client) CreatePost(ctx context.Context, post lexicons.Post) (string, error) {
	return c.CreateRecord(ctx, lexicons.NSIDFeedPost, post)
}

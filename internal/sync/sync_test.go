package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/bluesky-social/indigo/atproto/syntax"
	"github.com/stretchr/testify/require"

	"tangled.org/arabica.social/barista/internal/bluesky"
	"tangled.org/arabica.social/barista/internal/config"
	"tangled.org/arabica.social/barista/internal/lexicons"
)

// fakeClient implements Client in memory. List membership is stored on the
// owning fake, so adds made through it are visible to later GetListMembers
// calls, like a real repository.
type fakeClient struct {
	did      syntax.DID
	handle   string
	blocked  []bluesky.BlockedUser
	modlists []bluesky.ModList
	members  map[string][]bluesky.ListMember
	prefs    []lexicons.Preference

	unblocked  []string
	subscribed []string
	written    [][]lexicons.Preference

	dialErr      error
	addItemErr   func(subjectDID string) error
	unblockErr   func(did string) error
	blockListErr func(listURI string) error
}

func newFakeClient(did string) *fakeClient {
	return &fakeClient{
		did:     syntax.DID(did),
		handle:  did + ".test",
		members: make(map[string][]bluesky.ListMember),
	}
}

func (f *fakeClient) DID() syntax.DID { return f.did }
func (f *fakeClient) Handle() string  { return f.handle }

func (f *fakeClient) GetBlocks(ctx context.Context) ([]bluesky.BlockedUser, error) {
	return append([]bluesky.BlockedUser(nil), f.blocked...), nil
}

func (f *fakeClient) GetListBlocks(ctx context.Context) ([]bluesky.ModList, error) {
	return append([]bluesky.ModList(nil), f.modlists...), nil
}

func (f *fakeClient) GetListMembers(ctx context.Context, listURI string) ([]bluesky.ListMember, error) {
	return append([]bluesky.ListMember(nil), f.members[listURI]...), nil
}

func (f *fakeClient) AddListItem(ctx context.Context, subjectDID, listURI string) (string, error) {
	if f.addItemErr != nil {
		if err := f.addItemErr(subjectDID); err != nil {
			return "", err
		}
	}
	uri := fmt.Sprintf("at://%s/app.bsky.graph.listitem/item-%d", f.did, len(f.members[listURI]))
	f.members[listURI] = append(f.members[listURI], bluesky.ListMember{URI: uri, SubjectDID: subjectDID})
	return uri, nil
}

func (f *fakeClient) BlockList(ctx context.Context, listURI string) error {
	if f.blockListErr != nil {
		if err := f.blockListErr(listURI); err != nil {
			return err
		}
	}
	f.subscribed = append(f.subscribed, listURI)
	f.modlists = append(f.modlists, bluesky.ModList{URI: listURI})
	return nil
}

func (f *fakeClient) Unblock(ctx context.Context, did string) error {
	if f.unblockErr != nil {
		if err := f.unblockErr(did); err != nil {
			return err
		}
	}
	f.unblocked = append(f.unblocked, did)
	for i, b := range f.blocked {
		if b.DID == did {
			f.blocked = append(f.blocked[:i], f.blocked[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeClient) GetPreferences(ctx context.Context) ([]lexicons.Preference, error) {
	return append([]lexicons.Preference(nil), f.prefs...), nil
}

func (f *fakeClient) PutPreferences(ctx context.Context, prefs []lexicons.Preference) error {
	f.prefs = append([]lexicons.Preference(nil), prefs...)
	f.written = append(f.written, prefs)
	return nil
}

// testRunner wires fakes into a Runner. Accounts are dialed by their config
// email, so fakes are registered under "<name>@test".
func testRunner(t *testing.T, cfg *config.Config, fakes map[string]*fakeClient) *Runner {
	t.Helper()
	dial := func(ctx context.Context, acct config.Account) (Client, error) {
		f, ok := fakes[acct.Email]
		require.True(t, ok, "no fake registered for %s", acct.Email)
		if f.dialErr != nil {
			return nil, f.dialErr
		}
		return f, nil
	}
	return NewRunner(cfg, dial)
}

func testConfig(names ...string) *config.Config {
	accounts := make(map[string]config.Account, len(names))
	for _, name := range names {
		accounts[name] = config.Account{Email: name + "@test", Password: "app-password"}
	}
	return &config.Config{Accounts: accounts}
}

func mustPreference(t *testing.T, v any) lexicons.Preference {
	t.Helper()
	p, err := lexicons.NewPreference(v)
	require.NoError(t, err)
	return p
}

func rawPreference(t *testing.T, raw string) lexicons.Preference {
	t.Helper()
	var p lexicons.Preference
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

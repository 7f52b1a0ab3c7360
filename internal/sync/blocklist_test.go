package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tangled.org/arabica.social/barista/internal/bluesky"
	"tangled.org/arabica.social/barista/internal/config"
)

const listURL = "https://bsky.app/profile/alice.test/lists/3kshared"

// sharedListURI is what ListURIFromURL derives for a list owned by alice.
const sharedListURI = "at://did:plc:alice/app.bsky.graph.list/3kshared"

func blocklistConfig() *config.Config {
	cfg := testConfig("alice", "bob")
	cfg.Lists = []config.ListTarget{{Account: "alice", URL: listURL}}
	return cfg
}

func TestSyncBlocklistsEndToEnd(t *testing.T) {
	// alice blocks {X,Y}, bob blocks {Y,Z}; after the sync the shared list
	// holds exactly {X,Y,Z} and both accounts have unblocked everything they
	// contributed.
	alice := newFakeClient("did:plc:alice")
	alice.blocked = []bluesky.BlockedUser{
		{DID: "did:plc:x", Handle: "x.test"},
		{DID: "did:plc:y", Handle: "y.test"},
	}
	bob := newFakeClient("did:plc:bob")
	bob.blocked = []bluesky.BlockedUser{
		{DID: "did:plc:y", Handle: "y.test"},
		{DID: "did:plc:z", Handle: "z.test"},
	}

	runner := testRunner(t, blocklistConfig(), map[string]*fakeClient{
		"alice@test": alice,
		"bob@test":   bob,
	})
	runner.SyncBlocklists(context.Background())

	members := alice.members[sharedListURI]
	var subjects []string
	for _, m := range members {
		subjects = append(subjects, m.SubjectDID)
	}
	assert.ElementsMatch(t, []string{"did:plc:x", "did:plc:y", "did:plc:z"}, subjects)

	assert.ElementsMatch(t, []string{"did:plc:x", "did:plc:y"}, alice.unblocked)
	assert.ElementsMatch(t, []string{"did:plc:y", "did:plc:z"}, bob.unblocked)
	assert.Empty(t, alice.blocked)
	assert.Empty(t, bob.blocked)
}

func TestSyncBlocklistsSkipsExistingMembers(t *testing.T) {
	alice := newFakeClient("did:plc:alice")
	alice.blocked = []bluesky.BlockedUser{
		{DID: "did:plc:x", Handle: "x.test"},
		{DID: "did:plc:y", Handle: "y.test"},
	}
	// X is already on the list from an earlier, partially failed run.
	alice.members[sharedListURI] = []bluesky.ListMember{
		{URI: "at://did:plc:alice/app.bsky.graph.listitem/old", SubjectDID: "did:plc:x"},
	}

	runner := testRunner(t, blocklistConfig(), map[string]*fakeClient{"alice@test": alice})
	runner.SyncBlocklists(context.Background())

	var subjects []string
	for _, m := range alice.members[sharedListURI] {
		subjects = append(subjects, m.SubjectDID)
	}
	// No duplicate X, and Y got added.
	assert.Equal(t, []string{"did:plc:x", "did:plc:y"}, subjects)

	// The unblock still runs for the skipped subject.
	assert.ElementsMatch(t, []string{"did:plc:x", "did:plc:y"}, alice.unblocked)
}

func TestSyncBlocklistsItemFailureIsolation(t *testing.T) {
	alice := newFakeClient("did:plc:alice")
	alice.blocked = []bluesky.BlockedUser{
		{DID: "did:plc:x", Handle: "x.test"},
		{DID: "did:plc:y", Handle: "y.test"},
	}
	alice.addItemErr = func(subjectDID string) error {
		if subjectDID == "did:plc:x" {
			return errors.New("add rejected")
		}
		return nil
	}

	runner := testRunner(t, blocklistConfig(), map[string]*fakeClient{"alice@test": alice})
	runner.SyncBlocklists(context.Background())

	// Y's outcome is independent of X's failure.
	require.Len(t, alice.members[sharedListURI], 1)
	assert.Equal(t, "did:plc:y", alice.members[sharedListURI][0].SubjectDID)

	// The unblock is attempted even for the failed add.
	assert.ElementsMatch(t, []string{"did:plc:x", "did:plc:y"}, alice.unblocked)
}

func TestSyncBlocklistsAccountFailureIsolation(t *testing.T) {
	alice := newFakeClient("did:plc:alice")
	alice.dialErr = &bluesky.AuthError{Identifier: "alice@test", Err: errors.New("bad password")}

	bob := newFakeClient("did:plc:bob")
	bob.blocked = []bluesky.BlockedUser{{DID: "did:plc:z", Handle: "z.test"}}

	cfg := testConfig("alice", "bob")
	cfg.Lists = []config.ListTarget{{Account: "bob", URL: "https://bsky.app/profile/bob.test/lists/3kbob"}}

	runner := testRunner(t, cfg, map[string]*fakeClient{
		"alice@test": alice,
		"bob@test":   bob,
	})
	runner.SyncBlocklists(context.Background())

	// alice's auth failure does not stop bob's sync.
	members := bob.members["at://did:plc:bob/app.bsky.graph.list/3kbob"]
	require.Len(t, members, 1)
	assert.Equal(t, "did:plc:z", members[0].SubjectDID)
}

func TestSyncBlocklistsNoBlocks(t *testing.T) {
	alice := newFakeClient("did:plc:alice")

	runner := testRunner(t, blocklistConfig(), map[string]*fakeClient{"alice@test": alice})
	runner.SyncBlocklists(context.Background())

	assert.Empty(t, alice.members[sharedListURI])
	assert.Empty(t, alice.unblocked)
}

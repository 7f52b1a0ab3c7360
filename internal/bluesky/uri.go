package bluesky

import (
	"fmt"
	"strings"

	"github.com/bluesky-social/indigo/atproto/syntax"

	"tangled.org/arabica.social/barista/internal/lexicons"
)

// splitRecordURI extracts the collection NSID and record key from an at-uri,
// e.g. at://did:plc:abc/app.bsky.graph.block/3jxyz -> (app.bsky.graph.block, 3jxyz).
func splitRecordURI(uri string) (collection, rkey string, err error) {
	atURI, err := syntax.ParseATURI(uri)
	if err != nil {
		return "", "", fmt.Errorf("invalid at-uri %q: %w", uri, err)
	}

	collection = atURI.Collection().String()
	rkey = atURI.RecordKey().String()
	if collection == "" || rkey == "" {
		return "", "", fmt.Errorf("at-uri %q does not address a record", uri)
	}
	return collection, rkey, nil
}

// ListURIFromURL converts a moderation list's public bsky.app URL into the
// at-uri of the list record in ownerDID's repository. Only the URL's trailing
// path segment (the record key) is used.
func ListURIFromURL(ownerDID syntax.DID, listURL string) string {
	trimmed := strings.TrimRight(listURL, "/")
	segments := strings.Split(trimmed, "/")
	rkey := segments[len(segments)-1]
	return fmt.Sprintf("at://%s/%s/%s", ownerDID, lexicons.NSIDGraphList, rkey)
}

// PostURL converts a feed post's at-uri into its public bsky.app permalink.
func PostURL(postURI string) (string, error) {
	atURI, err := syntax.ParseATURI(postURI)
	if err != nil {
		return "", fmt.Errorf("invalid post uri %q: %w", postURI, err)
	}
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", atURI.Authority(), atURI.RecordKey()), nil
}

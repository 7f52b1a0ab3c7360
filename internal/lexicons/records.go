// Package lexicons defines the AT Protocol record and preference schemas barista
// reads and writes. Payloads are typed structs keyed by their lexicon $type string
// rather than untyped maps.
package lexicons

import (
	"encoding/json"
	"time"
)

// Collection NSIDs for the records this tool touches.
const (
	NSIDGraphList      = "app.bsky.graph.list"
	NSIDGraphListItem  = "app.bsky.graph.listitem"
	NSIDGraphListBlock = "app.bsky.graph.listblock"
	NSIDGraphBlock     = "app.bsky.graph.block"
	NSIDFeedPost       = "app.bsky.feed.post"
	NSIDEmbedExternal  = "app.bsky.embed.external"
)

// ListItem is an app.bsky.graph.listitem record: one membership edge between a
// moderation list and a subject account. Deleting the record removes the member.
type ListItem struct {
	Type      string `json:"$type"`
	Subject   string `json:"subject"`
	List      string `json:"list"`
	CreatedAt string `json:"createdAt"`
}

// NewListItem builds a listitem record adding subject to the list at listURI.
func NewListItem(subjectDID, listURI string, now time.Time) ListItem {
	return ListItem{
		Type:      NSIDGraphListItem,
		Subject:   subjectDID,
		List:      listURI,
		CreatedAt: now.UTC().Format(time.RFC3339),
	}
}

// ListBlock is an app.bsky.graph.listblock record: the account that owns the
// repository block-subscribes to the moderation list at Subject.
type ListBlock struct {
	Type      string `json:"$type"`
	Subject   string `json:"subject"`
	CreatedAt string `json:"createdAt"`
}

// NewListBlock builds a listblock record subscribing to the list at listURI.
func NewListBlock(listURI string, now time.Time) ListBlock {
	return ListBlock{
		Type:      NSIDGraphListBlock,
		Subject:   listURI,
		CreatedAt: now.UTC().Format(time.RFC3339),
	}
}

// EmbedExternal is an app.bsky.embed.external embed: a link card with metadata
// scraped from the target page. Thumb carries the blob reference returned by
// uploadBlob verbatim.
type EmbedExternal struct {
	Type     string        `json:"$type"`
	External ExternalEmbed `json:"external"`
}

// ExternalEmbed is the inner object of an external embed.
type ExternalEmbed struct {
	URI         string          `json:"uri"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Thumb       json.RawMessage `json:"thumb,omitempty"`
}

// Post is an app.bsky.feed.post record. Text is always present, possibly empty;
// the protocol requires the field even for link-only posts.
type Post struct {
	Type      string         `json:"$type"`
	Text      string         `json:"text"`
	CreatedAt string         `json:"createdAt"`
	Embed     *EmbedExternal `json:"embed,omitempty"`
}

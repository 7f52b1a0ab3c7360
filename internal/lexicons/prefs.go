package lexicons

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Preference $type strings for the two blocks barista manages. Every other block
// in an account's preference stream is opaque to this tool.
const (
	PrefTypeMutedWords = "app.bsky.actor.defs#mutedWordsPref"
	PrefTypeLabelers   = "app.bsky.actor.defs#labelersPref"
)

// Preference is one element of an account's preference sequence. The original
// JSON is retained so that blocks this tool does not understand round-trip
// byte-for-byte through a getPreferences / putPreferences cycle.
type Preference struct {
	Type string
	raw  json.RawMessage
}

// UnmarshalJSON keeps a copy of the raw block and peeks at its $type.
func (p *Preference) UnmarshalJSON(b []byte) error {
	var peek struct {
		Type string `json:"$type"`
	}
	if err := json.Unmarshal(b, &peek); err != nil {
		return fmt.Errorf("decoding preference block: %w", err)
	}
	p.Type = peek.Type
	p.raw = append(p.raw[:0], b...)
	return nil
}

// MarshalJSON emits the block exactly as it was received or built.
func (p Preference) MarshalJSON() ([]byte, error) {
	if p.raw == nil {
		return []byte("null"), nil
	}
	return p.raw, nil
}

// Decode unmarshals the block into a typed view.
func (p Preference) Decode(out any) error {
	return json.Unmarshal(p.raw, out)
}

// NewPreference builds a Preference from a typed block. The block must marshal
// to an object carrying a $type field.
func NewPreference(v any) (Preference, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Preference{}, fmt.Errorf("encoding preference block: %w", err)
	}
	var p Preference
	if err := p.UnmarshalJSON(b); err != nil {
		return Preference{}, err
	}
	return p, nil
}

// MutedWordsPref is the app.bsky.actor.defs#mutedWordsPref block.
type MutedWordsPref struct {
	Type  string      `json:"$type"`
	Items []MutedWord `json:"items"`
}

// MutedWord is a single muted-word entry. All lexicon fields are carried so a
// merge does not strip expiry or id metadata from entries it moves around.
type MutedWord struct {
	ID          *string  `json:"id,omitempty"`
	Value       string   `json:"value"`
	Targets     []string `json:"targets"`
	ActorTarget *string  `json:"actorTarget,omitempty"`
	ExpiresAt   *string  `json:"expiresAt,omitempty"`
}

// Key returns the identity of a muted word for deduplication: the word itself,
// its targets (order-insensitive), and the actor-target scope.
func (w MutedWord) Key() string {
	targets := append([]string(nil), w.Targets...)
	sort.Strings(targets)
	actor := ""
	if w.ActorTarget != nil {
		actor = *w.ActorTarget
	}
	return w.Value + "\x00" + strings.Join(targets, "\x01") + "\x00" + actor
}

// NewMutedWordsPref builds the managed muted-words block.
func NewMutedWordsPref(items []MutedWord) MutedWordsPref {
	if items == nil {
		items = []MutedWord{}
	}
	return MutedWordsPref{Type: PrefTypeMutedWords, Items: items}
}

// LabelersPref is the app.bsky.actor.defs#labelersPref block.
type LabelersPref struct {
	Type     string    `json:"$type"`
	Labelers []Labeler `json:"labelers"`
}

// Labeler identifies one labeler subscription.
type Labeler struct {
	DID string `json:"did"`
}

// NewLabelersPref builds the managed labelers block.
func NewLabelersPref(labelers []Labeler) LabelersPref {
	if labelers == nil {
		labelers = []Labeler{}
	}
	return LabelersPref{Type: PrefTypeLabelers, Labelers: labelers}
}

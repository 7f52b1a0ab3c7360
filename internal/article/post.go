package article

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog/log"

	"tangled.org/arabica.social/barista/internal/bluesky"
	"tangled.org/arabica.social/barista/internal/lexicons"
)

// BackdateWindow is how old a published time must be before it replaces the
// current time as the post's creation time. Anything fresher posts as "now".
const BackdateWindow = 24 * time.Hour

// maxImageBytes caps thumbnail downloads; PDS blob limits are lower anyway.
const maxImageBytes = 10 << 20

// Repository is the slice of the Bluesky client a Poster writes through.
type Repository interface {
	UploadBlob(ctx context.Context, contentType string, r io.Reader) (json.RawMessage, error)
	CreatePost(ctx context.Context, post lexicons.Post) (string, error)
}

// Poster publishes link-card posts for an authenticated account.
type Poster struct {
	repo Repository
	http *http.Client
	now  func() time.Time
}

// NewPoster builds a Poster writing through repo.
func NewPoster(repo Repository) *Poster {
	return &Poster{
		repo: repo,
		http: &http.Client{Timeout: 30 * time.Second},
		now:  time.Now,
	}
}

// Options controls a single post attempt.
type Options struct {
	// URL of the article to share.
	URL string
	// Text is optional commentary; it is run through SmartPunctuation. Absent
	// text posts as an explicit empty string.
	Text string
	// Backdate uses the article's published time as the post's creation time
	// when that time is more than BackdateWindow in the past.
	Backdate bool
}

// Post scrapes opts.URL and publishes a link-card post. It returns the public
// permalink, or posted=false (with no error) when the page carries neither an
// Open Graph title nor a description.
func (p *Poster) Post(ctx context.Context, opts Options) (permalink string, posted bool, err error) {
	meta, err := FetchMetadata(ctx, p.http, opts.URL)
	if err != nil {
		return "", false, err
	}

	post, ok := BuildPost(meta, opts.URL, opts.Text, opts.Backdate, p.now())
	if !ok {
		log.Info().Str("url", opts.URL).Msg("page has no Open Graph metadata, nothing to post")
		return "", false, nil
	}

	if meta.Image != "" {
		thumb, err := p.uploadImage(ctx, meta.Image)
		if err != nil {
			return "", false, err
		}
		post.Embed.External.Thumb = thumb
	}

	uri, err := p.repo.CreatePost(ctx, post)
	if err != nil {
		return "", false, err
	}

	permalink, err = bluesky.PostURL(uri)
	if err != nil {
		return "", false, err
	}
	return permalink, true, nil
}

// BuildPost assembles the post record from scraped metadata. It returns
// ok=false when there is nothing worth posting. The thumbnail blob is attached
// separately by the caller.
func BuildPost(meta *Metadata, pageURL, text string, backdate bool, now time.Time) (lexicons.Post, bool) {
	if meta.Empty() {
		return lexicons.Post{}, false
	}

	createdAt := now
	if backdate && meta.Published != "" {
		published, err := dateparse.ParseAny(meta.Published)
		if err != nil {
			log.Warn().Str("published", meta.Published).Msg("unparseable published time, posting as now")
		} else if now.Sub(published) > BackdateWindow {
			createdAt = published
		}
	}

	return lexicons.Post{
		Type:      lexicons.NSIDFeedPost,
		Text:      SmartPunctuation(text),
		CreatedAt: createdAt.UTC().Format(time.RFC3339),
		Embed: &lexicons.EmbedExternal{
			Type: lexicons.NSIDEmbedExternal,
			External: lexicons.ExternalEmbed{
				URI:         pageURL,
				Title:       meta.Title,
				Description: meta.Description,
			},
		},
	}, true
}

// uploadImage downloads the og:image and uploads it as a blob, returning the
// server's blob reference. Any failure here fails the whole post attempt.
func (p *Poster) uploadImage(ctx context.Context, imageURL string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating image request: %w", err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image request failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return p.repo.UploadBlob(ctx, contentType, bytes.NewReader(data))
}

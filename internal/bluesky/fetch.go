package bluesky

import "context"

// Page is one response from a cursor-paginated listing endpoint.
type Page[T any] struct {
	Items  []T
	Cursor *string
}

// fetchAll follows an opaque pagination cursor until the server stops returning
// one. Each call receives the cursor from the previous page (empty on the first
// request). There is no page-count bound; the loop ends only when a response
// carries no cursor. Any failed request fails the whole fetch and discards
// pages already collected.
func fetchAll[T any](ctx context.Context, endpoint string, fetch func(ctx context.Context, cursor string) (Page[T], error)) ([]T, error) {
	var all []T
	cursor := ""
	for {
		page, err := fetch(ctx, cursor)
		if err != nil {
			return nil, &FetchError{Endpoint: endpoint, Err: err}
		}
		all = append(all, page.Items...)
		if page.Cursor == nil || *page.Cursor == "" {
			return all, nil
		}
		cursor = *page.Cursor
	}
}

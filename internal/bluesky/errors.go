package bluesky

import "fmt"

// AuthError reports a failed session creation. It is isolated per account by the
// sync orchestrators: one account failing to authenticate never aborts a run.
type AuthError struct {
	Identifier string
	Err        error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("creating session for %s: %v", e.Identifier, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError reports a paginated retrieval that aborted mid-stream. No partial
// results accompany it.
type FetchError struct {
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// WriteError reports a rejected record create or delete.
type WriteError struct {
	Collection string
	Repo       string
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s record in %s: %v", e.Collection, e.Repo, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// UploadError reports a rejected blob upload.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("uploading blob: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

package favorites

import "context"

// Repository describes favorites persistence needs from use cases. Save
// replaces the whole persisted document; there are no partial writes.
type Repository interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

package blob

import (
	"context"
	"errors"
	"mime/multipart"
)

// ErrOutsideStore rejects paths the store did not hand out.
var ErrOutsideStore = errors.New("blob path outside upload dir")

// Store persists uploaded artifacts and hands back an opaque path.
type Store interface {
	Save(ctx context.Context, field string, file *multipart.FileHeader) (string, error)
	// Delete removes a stored artifact. Deleting a missing path is not an error.
	Delete(ctx context.Context, path string) error
}

package ports

import (
	"context"

	"github.com/pixelmuse/imagevault/internal/core/domain"
)

// ImagePatch carries a partial image update. Nil fields are left untouched;
// the author reference is never patchable.
type ImagePatch struct {
	Title              *string
	TransformationType *string
	PublicID           *string
	SecureURL          *string
	TransformationURL  *string
	AspectRatio        *string
	Prompt             *string
	Color              *string
	Width              *int
	Height             *int
	Config             map[string]any
}

// ListImagesFilter carries the query parameters for paged catalog listings.
type ListImagesFilter struct {
	AuthorID  string   // non-empty = scoped to one owner
	PublicIDs []string // nil = unrestricted; non-nil = restrict to this id set
	Page      int      // 1-based
	Limit     int      // max rows per page
}

// ImageRepository defines persistence operations for the image catalog.
type ImageRepository interface {
	Create(ctx context.Context, img *domain.Image) (*domain.Image, error)
	FindByID(ctx context.Context, id string) (*domain.Image, error)
	// FindWithOwner joins the owner summary onto the image. A dangling author
	// reference yields a zero-valued owner, not an error.
	FindWithOwner(ctx context.Context, id string) (*domain.ImageWithOwner, error)
	// UpdateOwned applies patch to the image only if authorID matches the
	// stored author, as a single conditional update. A filter miss (absent
	// image or foreign author) returns domain.ErrImageNotFound.
	UpdateOwned(ctx context.Context, id, authorID string, patch ImagePatch) (*domain.Image, error)
	// DeleteOwned removes the image under the same conditional filter.
	DeleteOwned(ctx context.Context, id, authorID string) error
	// Delete removes the image unconditionally (administrative path).
	Delete(ctx context.Context, id string) error
	// List returns a page sorted by last update descending and the total
	// count of documents matching the filter.
	List(ctx context.Context, filter ListImagesFilter) ([]*domain.Image, int64, error)
}

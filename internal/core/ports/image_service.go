package ports

import (
	"context"

	"github.com/pixelmuse/imagevault/internal/core/domain"
)

// ImageData carries the transformation metadata returned by the external
// image-processing provider after a successful transformation call.
type ImageData struct {
	Title              string
	TransformationType string
	PublicID           string
	SecureURL          string
	TransformationURL  string
	AspectRatio        string
	Prompt             string
	Color              string
	Width              int
	Height             int
	Config             map[string]any
}

// CreateImageInput carries all data needed to add an image to the catalog.
// Path is the logical render path whose cached output becomes stale.
type CreateImageInput struct {
	Image           ImageData
	OwnerExternalID string
	Path            string
}

// UpdateImageInput carries an ownership-checked partial update.
type UpdateImageInput struct {
	ID               string
	Patch            ImagePatch
	CallerExternalID string
	Path             string
}

// DeleteImageInput carries an ownership-checked delete.
type DeleteImageInput struct {
	ID               string
	CallerExternalID string
	Path             string
}

// SearchImagesInput carries the parameters for a catalog search. An empty
// Query lists the whole catalog without consulting the provider's index.
type SearchImagesInput struct {
	Query string
	Page  int
	Limit int
}

// ListImagesByOwnerInput pages through one owner's images.
type ListImagesByOwnerInput struct {
	OwnerExternalID string
	Page            int
	Limit           int
}

// ImagePage is a single page of catalog results.
type ImagePage struct {
	Items      []*domain.Image
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ImageService defines the catalog use-cases.
type ImageService interface {
	CreateImage(ctx context.Context, input CreateImageInput) (*domain.Image, error)
	UpdateImage(ctx context.Context, input UpdateImageInput) (*domain.Image, error)
	DeleteImage(ctx context.Context, input DeleteImageInput) error
	GetImageByID(ctx context.Context, id string) (*domain.ImageWithOwner, error)
	SearchImages(ctx context.Context, input SearchImagesInput) (*ImagePage, error)
	ListImagesByOwner(ctx context.Context, input ListImagesByOwnerInput) (*ImagePage, error)
}

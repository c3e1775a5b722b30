package search

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/admin/search"
)

const defaultMaxResults = 500

// CloudinarySearcher implements ports.AssetSearcher against the Cloudinary
// Admin Search API. The provider stores the underlying asset bytes; the
// catalog only consumes public ids from it.
type CloudinarySearcher struct {
	cld        *cloudinary.Cloudinary
	maxResults int
}

// NewCloudinarySearcher builds a searcher from a cloudinary:// credential URL.
func NewCloudinarySearcher(url string) (*CloudinarySearcher, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinarySearcher{cld: cld, maxResults: defaultMaxResults}, nil
}

// Search returns the public ids of assets matching the expression.
func (s *CloudinarySearcher) Search(ctx context.Context, expression string) ([]string, error) {
	res, err := s.cld.Admin.Search(ctx, search.Query{
		Expression: expression,
		MaxResults: s.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary search: %w", err)
	}

	ids := make([]string, 0, len(res.Assets))
	for _, asset := range res.Assets {
		ids = append(ids, asset.PublicID)
	}
	return ids, nil
}

package ports

import "context"

// AssetSearcher queries the image-processing provider's asset index and
// returns the public ids of matching assets. The provider is an opaque
// collaborator; callers bound the call through ctx.
type AssetSearcher interface {
	Search(ctx context.Context, expression string) ([]string, error)
}

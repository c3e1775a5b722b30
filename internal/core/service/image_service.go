package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pixelmuse/imagevault/internal/core/domain"
	"github.com/pixelmuse/imagevault/internal/core/ports"
)

// ImageService implements the catalog use-cases: ownership-scoped CRUD,
// provider-index search, and offset pagination.
type ImageService struct {
	images   ports.ImageRepository
	users    ports.UserRepository
	searcher ports.AssetSearcher
	notifier ports.CacheNotifier
	folder   string
	log      zerolog.Logger
}

func NewImageService(
	images ports.ImageRepository,
	users ports.UserRepository,
	searcher ports.AssetSearcher,
	notifier ports.CacheNotifier,
	folder string,
	log zerolog.Logger,
) *ImageService {
	return &ImageService{
		images:   images,
		users:    users,
		searcher: searcher,
		notifier: notifier,
		folder:   folder,
		log:      log,
	}
}

// CreateImage resolves the owner by external id, stores the image with the
// owner's internal id as author, and invalidates the caller-supplied path.
func (s *ImageService) CreateImage(ctx context.Context, input ports.CreateImageInput) (*domain.Image, error) {
	author, err := s.users.FindByExternalID(ctx, input.OwnerExternalID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("resolve owner: %w", err)
	}

	now := time.Now().UTC()
	img := &domain.Image{
		Title:              input.Image.Title,
		TransformationType: input.Image.TransformationType,
		PublicID:           input.Image.PublicID,
		SecureURL:          input.Image.SecureURL,
		TransformationURL:  input.Image.TransformationURL,
		AspectRatio:        input.Image.AspectRatio,
		Prompt:             input.Image.Prompt,
		Color:              input.Image.Color,
		Width:              input.Image.Width,
		Height:             input.Image.Height,
		Config:             input.Image.Config,
		Author:             author.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	created, err := s.images.Create(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}

	s.invalidate(input.Path)
	s.log.Info().
		Str("image_id", created.ID).
		Str("public_id", created.PublicID).
		Str("author", created.Author).
		Msg("image created")

	return created, nil
}

// UpdateImage applies patch only when the caller owns the image. Ownership is
// enforced inside a single conditional update on (id, author) so there is no
// window between check and write. A filter miss is disambiguated into
// not-found vs not-owner with a follow-up existence probe.
func (s *ImageService) UpdateImage(ctx context.Context, input ports.UpdateImageInput) (*domain.Image, error) {
	caller, err := s.users.FindByExternalID(ctx, input.CallerExternalID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrNotOwner
		}
		return nil, fmt.Errorf("resolve caller: %w", err)
	}

	updated, err := s.images.UpdateOwned(ctx, input.ID, caller.ID, input.Patch)
	if err != nil {
		return nil, s.disambiguateOwned(ctx, input.ID, err)
	}

	s.invalidate(input.Path)
	s.log.Info().Str("image_id", updated.ID).Str("author", caller.ID).Msg("image updated")

	return updated, nil
}

// DeleteImage removes the image after the same resolved-owner check the
// update path performs. Failures are surfaced to the caller; any navigation
// decision belongs to the transport layer.
func (s *ImageService) DeleteImage(ctx context.Context, input ports.DeleteImageInput) error {
	caller, err := s.users.FindByExternalID(ctx, input.CallerExternalID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrNotOwner
		}
		return fmt.Errorf("resolve caller: %w", err)
	}

	if err := s.images.DeleteOwned(ctx, input.ID, caller.ID); err != nil {
		return s.disambiguateOwned(ctx, input.ID, err)
	}

	s.invalidate(input.Path)
	s.log.Info().Str("image_id", input.ID).Str("author", caller.ID).Msg("image deleted")

	return nil
}

// GetImageByID returns the image joined with its owner summary.
func (s *ImageService) GetImageByID(ctx context.Context, id string) (*domain.ImageWithOwner, error) {
	return s.images.FindWithOwner(ctx, id)
}

// SearchImages lists the catalog sorted by last update descending. When a
// query is present the provider's asset index is consulted first and the
// catalog query is restricted to the matching public ids; without a query no
// provider call is made.
func (s *ImageService) SearchImages(ctx context.Context, input ports.SearchImagesInput) (*ports.ImagePage, error) {
	if err := validatePagination(input.Page, input.Limit); err != nil {
		return nil, err
	}

	filter := ports.ListImagesFilter{Page: input.Page, Limit: input.Limit}

	if q := strings.TrimSpace(input.Query); q != "" {
		expression := fmt.Sprintf("folder=%s AND %s", s.folder, q)
		ids, err := s.searcher.Search(ctx, expression)
		if err != nil {
			return nil, fmt.Errorf("search assets: %w", err)
		}
		if len(ids) == 0 {
			return emptyPage(input.Page, input.Limit), nil
		}
		filter.PublicIDs = ids
	}

	items, total, err := s.images.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	return newPage(items, total, input.Page, input.Limit), nil
}

// ListImagesByOwner pages through one owner's images, newest update first.
func (s *ImageService) ListImagesByOwner(ctx context.Context, input ports.ListImagesByOwnerInput) (*ports.ImagePage, error) {
	if err := validatePagination(input.Page, input.Limit); err != nil {
		return nil, err
	}

	owner, err := s.users.FindByExternalID(ctx, input.OwnerExternalID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("resolve owner: %w", err)
	}

	items, total, err := s.images.List(ctx, ports.ListImagesFilter{
		AuthorID: owner.ID,
		Page:     input.Page,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	return newPage(items, total, input.Page, input.Limit), nil
}

// disambiguateOwned resolves a conditional-filter miss: the image either does
// not exist (not found) or exists under another author (not owner).
func (s *ImageService) disambiguateOwned(ctx context.Context, id string, err error) error {
	if !errors.Is(err, domain.ErrImageNotFound) {
		return err
	}
	if _, probeErr := s.images.FindByID(ctx, id); probeErr == nil {
		return domain.ErrNotOwner
	}
	return domain.ErrImageNotFound
}

func (s *ImageService) invalidate(path string) {
	if path != "" && s.notifier != nil {
		s.notifier.Invalidate(path)
	}
}

func validatePagination(page, limit int) error {
	if limit <= 0 || page < 1 {
		return domain.ErrInvalidPagination
	}
	return nil
}

func emptyPage(page, limit int) *ports.ImagePage {
	return &ports.ImagePage{Items: []*domain.Image{}, Page: page, Limit: limit}
}

func newPage(items []*domain.Image, total int64, page, limit int) *ports.ImagePage {
	return &ports.ImagePage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
}

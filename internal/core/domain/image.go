package domain

import (
	"errors"
	"time"
)

var ErrImageNotFound = errors.New("image not found")
var ErrNotOwner = errors.New("caller is not the image owner")
var ErrInvalidPagination = errors.New("invalid pagination parameters")

// Image is a single transformation record in the catalog. PublicID correlates
// the record with the asset stored by the external image-processing provider.
type Image struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	TransformationType string         `json:"transformation_type"`
	PublicID           string         `json:"public_id"`
	SecureURL          string         `json:"secure_url,omitempty"`
	TransformationURL  string         `json:"transformation_url,omitempty"`
	AspectRatio        string         `json:"aspect_ratio,omitempty"`
	Prompt             string         `json:"prompt,omitempty"`
	Color              string         `json:"color,omitempty"`
	Width              int            `json:"width,omitempty"`
	Height             int            `json:"height,omitempty"`
	Config             map[string]any `json:"config,omitempty"`
	// Author is the internal id of the owning user. It is immutable after
	// creation; the ownership-checked update path never rewrites it.
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnerSummary is the slice of the owner record joined onto an image view.
type OwnerSummary struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	ExternalID string `json:"external_id"`
}

// ImageWithOwner is an image enriched with its owner summary. A dangling
// author reference leaves Owner zero-valued rather than failing the read.
type ImageWithOwner struct {
	Image
	Owner OwnerSummary `json:"owner"`
}

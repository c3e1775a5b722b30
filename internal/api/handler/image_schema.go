package handler

import (
	"github.com/pixelmuse/imagevault/internal/core/domain"
)

// Request/response types for the image catalog endpoints. Path fields name
// the logical render path whose cached output becomes stale after the
// mutation; the redirect decision stays with the client.

type createImageRequest struct {
	Title              string         `json:"title"               validate:"required"`
	TransformationType string         `json:"transformation_type" validate:"required,oneof=restore removeBackground fill remove recolor"`
	PublicID           string         `json:"public_id"           validate:"required"`
	SecureURL          string         `json:"secure_url"`
	TransformationURL  string         `json:"transformation_url"`
	AspectRatio        string         `json:"aspect_ratio"`
	Prompt             string         `json:"prompt"`
	Color              string         `json:"color"`
	Width              int            `json:"width"`
	Height             int            `json:"height"`
	Config             map[string]any `json:"config"`
	Path               string         `json:"path" validate:"required"`
}

type updateImageRequest struct {
	Title              *string        `json:"title"`
	TransformationType *string        `json:"transformation_type"`
	PublicID           *string        `json:"public_id"`
	SecureURL          *string        `json:"secure_url"`
	TransformationURL  *string        `json:"transformation_url"`
	AspectRatio        *string        `json:"aspect_ratio"`
	Prompt             *string        `json:"prompt"`
	Color              *string        `json:"color"`
	Width              *int           `json:"width"`
	Height             *int           `json:"height"`
	Config             map[string]any `json:"config"`
	Path               string         `json:"path" validate:"required"`
}

type imagePageResponse struct {
	Items      []*domain.Image `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

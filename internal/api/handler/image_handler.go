package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/pixelmuse/imagevault/internal/api/metrics"
	"github.com/pixelmuse/imagevault/internal/core/domain"
	"github.com/pixelmuse/imagevault/internal/core/ports"
)

// transformationCreditFee is debited from the owner once per stored
// transformation.
const transformationCreditFee = 1

// defaultPageLimit matches the gallery page size of the web client.
const defaultPageLimit = 9

// ImageHandler exposes the image catalog over HTTP.
type ImageHandler struct {
	images ports.ImageService
	users  ports.UserService
	log    zerolog.Logger
}

func NewImageHandler(images ports.ImageService, users ports.UserService, log zerolog.Logger) *ImageHandler {
	return &ImageHandler{images: images, users: users, log: log}
}

// Create handles POST /v1/images - records a completed transformation and
// debits one credit from the owner.
//
// @Summary      Add a transformed image to the catalog
// @Tags         images
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createImageRequest  true  "Transformation metadata"
// @Success      201   {object}  domain.Image
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/images [post]
func (h *ImageHandler) Create(c echo.Context) error {
	externalID, err := ctxExternalID(c)
	if err != nil {
		return err
	}

	var req createImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	img, err := h.images.CreateImage(c.Request().Context(), ports.CreateImageInput{
		Image: ports.ImageData{
			Title:              req.Title,
			TransformationType: req.TransformationType,
			PublicID:           req.PublicID,
			SecureURL:          req.SecureURL,
			TransformationURL:  req.TransformationURL,
			AspectRatio:        req.AspectRatio,
			Prompt:             req.Prompt,
			Color:              req.Color,
			Width:              req.Width,
			Height:             req.Height,
			Config:             req.Config,
		},
		OwnerExternalID: externalID,
		Path:            req.Path,
	})
	if err != nil {
		return err
	}

	// The transformation already ran upstream; a failed debit must not roll
	// back the catalog record. Log it and let reconciliation pick it up.
	if _, err := h.users.AdjustCredits(c.Request().Context(), img.Author, -transformationCreditFee); err != nil {
		h.log.Error().Err(err).Str("user_id", img.Author).Str("image_id", img.ID).Msg("credit debit failed after image create")
	} else {
		metrics.CreditAdjustmentsTotal.WithLabelValues("debit").Inc()
	}

	metrics.ImagesCreatedTotal.WithLabelValues(img.TransformationType).Inc()

	return c.JSON(http.StatusCreated, img)
}

// Get handles GET /v1/images/:id - the image joined with its owner summary.
//
// @Summary      Get an image with its owner
// @Tags         images
// @Produce      json
// @Param        id  path      string  true  "Image id"
// @Success      200  {object}  domain.ImageWithOwner
// @Failure      404  {object}  errorResponse
// @Router       /v1/images/{id} [get]
func (h *ImageHandler) Get(c echo.Context) error {
	img, err := h.images.GetImageByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, img)
}

// Search handles GET /v1/images - paged catalog listing, optionally
// restricted by a provider-index search expression.
//
// @Summary      Search the image catalog
// @Tags         images
// @Produce      json
// @Param        query  query     string  false  "Free-text search expression"
// @Param        page   query     int     false  "1-based page"  default(1)
// @Param        limit  query     int     false  "Page size"     default(9)
// @Success      200    {object}  imagePageResponse
// @Failure      400    {object}  errorResponse
// @Router       /v1/images [get]
func (h *ImageHandler) Search(c echo.Context) error {
	page, limit, err := parsePagination(c)
	if err != nil {
		return err
	}

	timer := prometheus.NewTimer(metrics.SearchDuration)
	result, err := h.images.SearchImages(c.Request().Context(), ports.SearchImagesInput{
		Query: c.QueryParam("query"),
		Page:  page,
		Limit: limit,
	})
	timer.ObserveDuration()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, pageResponse(result))
}

// Update handles PATCH /v1/images/:id - ownership-checked partial update.
//
// @Summary      Update an owned image
// @Tags         images
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Image id"
// @Param        body  body      updateImageRequest  true  "Fields to change"
// @Success      200   {object}  domain.Image
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/images/{id} [patch]
func (h *ImageHandler) Update(c echo.Context) error {
	externalID, err := ctxExternalID(c)
	if err != nil {
		return err
	}

	var req updateImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	img, err := h.images.UpdateImage(c.Request().Context(), ports.UpdateImageInput{
		ID: c.Param("id"),
		Patch: ports.ImagePatch{
			Title:              req.Title,
			TransformationType: req.TransformationType,
			PublicID:           req.PublicID,
			SecureURL:          req.SecureURL,
			TransformationURL:  req.TransformationURL,
			AspectRatio:        req.AspectRatio,
			Prompt:             req.Prompt,
			Color:              req.Color,
			Width:              req.Width,
			Height:             req.Height,
			Config:             req.Config,
		},
		CallerExternalID: externalID,
		Path:             req.Path,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, img)
}

// Delete handles DELETE /v1/images/:id. Failures are reported, never
// swallowed; the client decides where to navigate afterwards.
//
// @Summary      Delete an owned image
// @Tags         images
// @Security     BearerAuth
// @Param        id    path   string  true   "Image id"
// @Param        path  query  string  false  "Logical path to invalidate"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/images/{id} [delete]
func (h *ImageHandler) Delete(c echo.Context) error {
	externalID, err := ctxExternalID(c)
	if err != nil {
		return err
	}

	err = h.images.DeleteImage(c.Request().Context(), ports.DeleteImageInput{
		ID:               c.Param("id"),
		CallerExternalID: externalID,
		Path:             c.QueryParam("path"),
	})
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// ListMine handles GET /profile/images - the caller's own images.
//
// @Summary      List the caller's images
// @Tags         images
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "1-based page"  default(1)
// @Param        limit  query     int  false  "Page size"     default(9)
// @Success      200    {object}  imagePageResponse
// @Failure      400    {object}  errorResponse
// @Router       /profile/images [get]
func (h *ImageHandler) ListMine(c echo.Context) error {
	externalID, err := ctxExternalID(c)
	if err != nil {
		return err
	}

	page, limit, err := parsePagination(c)
	if err != nil {
		return err
	}

	result, err := h.images.ListImagesByOwner(c.Request().Context(), ports.ListImagesByOwnerInput{
		OwnerExternalID: externalID,
		Page:            page,
		Limit:           limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, pageResponse(result))
}

// parsePagination coerces page/limit query params. Absent params fall back to
// sane defaults; malformed ones are client errors, not silent page one.
func parsePagination(c echo.Context) (page, limit int, err error) {
	page, err = intParam(c, "page", 1)
	if err != nil {
		return 0, 0, domain.ErrInvalidPagination
	}
	limit, err = intParam(c, "limit", defaultPageLimit)
	if err != nil {
		return 0, 0, domain.ErrInvalidPagination
	}
	return page, limit, nil
}

func intParam(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func pageResponse(p *ports.ImagePage) imagePageResponse {
	return imagePageResponse{
		Items:      p.Items,
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}

package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pixelmuse/imagevault/internal/api"
	. "github.com/pixelmuse/imagevault/internal/api/handler"
	"github.com/pixelmuse/imagevault/internal/core/domain"
	"github.com/pixelmuse/imagevault/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Service stubs
// ---------------------------------------------------------------------------

type stubImageService struct {
	createIn  *ports.CreateImageInput
	createOut *domain.Image
	createErr error

	getOut *domain.ImageWithOwner
	getErr error

	searchIn  *ports.SearchImagesInput
	searchOut *ports.ImagePage
	searchErr error

	updateOut *domain.Image
	updateErr error

	deleteIn  *ports.DeleteImageInput
	deleteErr error

	listIn  *ports.ListImagesByOwnerInput
	listOut *ports.ImagePage
	listErr error
}

func (s *stubImageService) CreateImage(_ context.Context, in ports.CreateImageInput) (*domain.Image, error) {
	s.createIn = &in
	return s.createOut, s.createErr
}

func (s *stubImageService) UpdateImage(_ context.Context, _ ports.UpdateImageInput) (*domain.Image, error) {
	return s.updateOut, s.updateErr
}

func (s *stubImageService) DeleteImage(_ context.Context, in ports.DeleteImageInput) error {
	s.deleteIn = &in
	return s.deleteErr
}

func (s *stubImageService) GetImageByID(_ context.Context, _ string) (*domain.ImageWithOwner, error) {
	return s.getOut, s.getErr
}

func (s *stubImageService) SearchImages(_ context.Context, in ports.SearchImagesInput) (*ports.ImagePage, error) {
	s.searchIn = &in
	return s.searchOut, s.searchErr
}

func (s *stubImageService) ListImagesByOwner(_ context.Context, in ports.ListImagesByOwnerInput) (*ports.ImagePage, error) {
	s.listIn = &in
	return s.listOut, s.listErr
}

type stubUserService struct {
	adjustUserID string
	adjustDelta  int64
	adjustErr    error
}

func (s *stubUserService) CreateUser(_ context.Context, _ ports.CreateUserInput) (*domain.User, error) {
	return nil, nil
}

func (s *stubUserService) GetUserByExternalID(_ context.Context, _ string) (*domain.User, error) {
	return nil, nil
}

func (s *stubUserService) UpdateUser(_ context.Context, _ string, _ ports.UpdateUserInput) (*domain.User, error) {
	return nil, nil
}

func (s *stubUserService) DeleteUser(_ context.Context, _ string) (*domain.User, error) {
	return nil, nil
}

func (s *stubUserService) AdjustCredits(_ context.Context, userID string, delta int64) (*domain.User, error) {
	s.adjustUserID = userID
	s.adjustDelta = delta
	if s.adjustErr != nil {
		return nil, s.adjustErr
	}
	return &domain.User{ID: userID, CreditBalance: 9}, nil
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = api.NewHTTPErrorHandler(discardLogger)
	return e
}

// do routes the request through the full echo stack so binding, validation,
// and the central error handler all run.
func do(e *echo.Echo, method, target, body, externalID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if externalID != "" {
		req.Header.Set("X-Test-External-ID", externalID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// withIdentity injects the external id the way the auth middleware does.
func withIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id := c.Request().Header.Get("X-Test-External-ID"); id != "" {
			c.Set("external_id", id)
		}
		return next(c)
	}
}

func mountImageRoutes(e *echo.Echo, h *ImageHandler) {
	e.GET("/v1/images", h.Search)
	e.GET("/v1/images/:id", h.Get)
	e.POST("/v1/images", withIdentity(h.Create))
	e.PATCH("/v1/images/:id", withIdentity(h.Update))
	e.DELETE("/v1/images/:id", withIdentity(h.Delete))
	e.GET("/profile/images", withIdentity(h.ListMine))
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestImageHandler_Search_OK(t *testing.T) {
	svc := &stubImageService{
		searchOut: &ports.ImagePage{
			Items:      []*domain.Image{{ID: "img_1", PublicID: "p1"}},
			Total:      10,
			Page:       2,
			Limit:      1,
			TotalPages: 10,
		},
	}
	e := newTestEcho()
	mountImageRoutes(e, NewImageHandler(svc, &stubUserService{}, discardLogger))

	rec := do(e, http.MethodGet, "/v1/images?query=cats&page=2&limit=1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.searchIn == nil || svc.searchIn.Query != "cats" || svc.searchIn.Page != 2 || svc.searchIn.Limit != 1 {
		t.Errorf("search input: %+v", svc.searchIn)
	}

	var resp ImagePageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalPages != 10 || len(resp.Items) != 1 {
		t.Errorf("response: %+v", resp)
	}
}

func TestImageHandler_Search_Defaults(t *testing.T) {
	svc := &stubImageService{searchOut: &ports.ImagePage{Items: []*domain.Image{}}}
	e := newTestEcho()
	mountImageRoutes(e, NewImageHandler(svc, &stubUserService{}, discardLogger))

	rec := do(e, http.MethodGet, "/v1/images", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if svc.searchIn.Page != 1 || svc.searchIn.Limit != DefaultPageLimit {
		t.Errorf("defaults not applied: page=%d limit=%d", svc.searchIn.Page, svc.searchIn.Limit)
	}
}

func TestImageHandler_Search_MalformedLimit(t *testing.T) {
	svc := &stubImageService{}
	e := newTestEcho()
	mountImageRoutes(e, NewImageHandler(svc, &stubUserService{}, discardLogger))

	rec := do(e, http.MethodGet, "/v1/images?limit=banana", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	if svc.searchIn != nil {
		t.Error("malformed input must not reach the service")
	}
}

func TestImageHandler_Get_NotFound(t *testing.T) {
	svc := &stubImageService{getErr: domain.ErrImageNotFound}
	e := newTestEcho()
	mountImageRoutes(e, NewImageHandler(svc, &stubUserService{}, discardLogger))

	rec := do(e, http.MethodGet, "/v1/images/img_404", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rec.Code)
	}
}

func TestImageHandler_Create_DebitsOneCredit(t *testing.T) {
	svc := &stubImageService{
		createOut: &domain.Image{ID: "img_1", Author: "user_1", TransformationType: "fill"},
	}
	users := &stubUserService{}
	e := newTestEcho()
	mountImageRoutes(e, NewImageHandler(svc, users, discardLogger))

	body := `{"title":"sunset","transformation_type":"fill","public_id":"p1","path":"/transformations/1"}`
	rec := do(e, http.MethodPost, "/v1/images", body, "ext_1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.createIn.OwnerExternalID != "ext_1" {
		t.Errorf("owner external id: got %q", svc.createIn.OwnerExternalID)
	}
	if users.adjustUserID != "user_1" || users.adjustDelta != -1 {
		t.Errorf("debit: user=%q delta=%d, want user_1 / -1", users.adjustUserID, users.adjustDelta)
	}
}

func TestImageHandler_Create_ValidationRejectsUnknownTransformation(t *testing.T) {
	svc := &stubImageService{}
	e := newTestEcho()
	mountImageRoutes(e, NewImageHandler(svc, &stubUserService{}, discardLogger))

	body := `{"title":"x","transformation_type":"sharpen","public_id":"p1","path":"/"}`
	rec := do(e, http.MethodPost, "/v1/images", body, "ext_1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	if svc.createIn != nil {
		t.Error("invalid payload must not reach the service")
	}
}

func TestImageHandler_Create_MissingIdentity(t *testing.T) {
	e := newTestEcho()
	mountImageRoutes(e, NewImageHandler(&stubImageService{}, &stubUserService{}, discardLogger))

	body := `{"title":"x","transformation_type":"fill","public_id":"p1","path":"/"}`
	rec := do(e, http.MethodPost, "/v1/images", body, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rec.Code)
	}
}

func TestImageHandler_Update_NotOwner(t *testing.T) {
	svc := &stubImageService{updateErr: domain.ErrNotOwner}
	e := newTestEcho()
	mountImageRoutes(e, NewImageHandler(svc, &stubUserService{}, discardLogger))

	body := `{"title":"hijacked","path":"/"}`
	rec := do(e, http.MethodPatch, "/v1/images/img_1", body, "ext_2")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want 403", rec.Code)
	}
}

func TestImageHandler_Delete_NoContent(t *testing.T) {
	svc := &stubImageService{}
	e := newTestEcho()
	mountImageRoutes(e, NewImageHandler(svc, &stubUserService{}, discardLogger))

	rec := do(e, http.MethodDelete, "/v1/images/img_1?path=/", "", "ext_1")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want 204", rec.Code)
	}
	if svc.deleteIn.ID != "img_1" || svc.deleteIn.CallerExternalID != "ext_1" || svc.deleteIn.Path != "/" {
		t.Errorf("delete input: %+v", svc.deleteIn)
	}
}

func TestImageHandler_Delete_FailureSurfaced(t *testing.T) {
	svc := &stubImageService{deleteErr: domain.ErrImageNotFound}
	e := newTestEcho()
	mountImageRoutes(e, NewImageHandler(svc, &stubUserService{}, discardLogger))

	rec := do(e, http.MethodDelete, "/v1/images/img_404", "", "ext_1")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rec.Code)
	}
}

func TestImageHandler_ListMine_ScopedToCaller(t *testing.T) {
	svc := &stubImageService{listOut: &ports.ImagePage{Items: []*domain.Image{}}}
	e := newTestEcho()
	mountImageRoutes(e, NewImageHandler(svc, &stubUserService{}, discardLogger))

	rec := do(e, http.MethodGet, "/profile/images?page=3", "", "ext_1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if svc.listIn.OwnerExternalID != "ext_1" || svc.listIn.Page != 3 {
		t.Errorf("list input: %+v", svc.listIn)
	}
}

package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	. "github.com/pixelmuse/imagevault/internal/api/handler"
	"github.com/pixelmuse/imagevault/internal/core/domain"
	"github.com/pixelmuse/imagevault/internal/core/ports"
)

type recordingUserService struct {
	stubUserService

	createIn  *ports.CreateUserInput
	createOut *domain.User
	createErr error

	getOut *domain.User
	getErr error
}

func (s *recordingUserService) CreateUser(_ context.Context, in ports.CreateUserInput) (*domain.User, error) {
	s.createIn = &in
	return s.createOut, s.createErr
}

func (s *recordingUserService) GetUserByExternalID(_ context.Context, _ string) (*domain.User, error) {
	return s.getOut, s.getErr
}

func mountUserRoutes(e *echo.Echo, h *UserHandler) {
	e.POST("/v1/users", h.Create)
	e.GET("/v1/users/:external_id", h.Get)
	e.PATCH("/v1/users/:external_id", h.Update)
	e.DELETE("/v1/users/:external_id", h.Delete)
	e.POST("/v1/users/:id/credits", h.AdjustCredits)
}

func TestUserHandler_Create_OK(t *testing.T) {
	svc := &recordingUserService{
		createOut: &domain.User{ID: "user_1", ExternalID: "ext_1", CreditBalance: 10},
	}
	e := newTestEcho()
	mountUserRoutes(e, NewUserHandler(svc))

	body := `{"external_id":"ext_1","first_name":"Ada","credit_balance":10}`
	rec := do(e, http.MethodPost, "/v1/users", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.createIn.ExternalID != "ext_1" || svc.createIn.CreditBalance != 10 {
		t.Errorf("create input: %+v", svc.createIn)
	}

	var resp domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "user_1" {
		t.Errorf("response id: got %q", resp.ID)
	}
}

func TestUserHandler_Create_MissingExternalID(t *testing.T) {
	svc := &recordingUserService{}
	e := newTestEcho()
	mountUserRoutes(e, NewUserHandler(svc))

	rec := do(e, http.MethodPost, "/v1/users", `{"first_name":"Ada"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	if svc.createIn != nil {
		t.Error("invalid payload must not reach the service")
	}
}

func TestUserHandler_Create_Duplicate(t *testing.T) {
	svc := &recordingUserService{createErr: domain.ErrUserExists}
	e := newTestEcho()
	mountUserRoutes(e, NewUserHandler(svc))

	rec := do(e, http.MethodPost, "/v1/users", `{"external_id":"ext_1"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want 409", rec.Code)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	svc := &recordingUserService{getErr: domain.ErrUserNotFound}
	e := newTestEcho()
	mountUserRoutes(e, NewUserHandler(svc))

	rec := do(e, http.MethodGet, "/v1/users/ghost", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rec.Code)
	}
}

func TestUserHandler_AdjustCredits_Debit(t *testing.T) {
	svc := &recordingUserService{}
	e := newTestEcho()
	mountUserRoutes(e, NewUserHandler(svc))

	rec := do(e, http.MethodPost, "/v1/users/user_1/credits", `{"delta":-1}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.adjustUserID != "user_1" || svc.adjustDelta != -1 {
		t.Errorf("adjust input: user=%q delta=%d", svc.adjustUserID, svc.adjustDelta)
	}
}

func TestUserHandler_AdjustCredits_ZeroDeltaRejected(t *testing.T) {
	svc := &recordingUserService{}
	e := newTestEcho()
	mountUserRoutes(e, NewUserHandler(svc))

	rec := do(e, http.MethodPost, "/v1/users/user_1/credits", `{"delta":0}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}

package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gousers/internal/api/user"
	"gousers/internal/domain"
	apperror "gousers/internal/errors"
	"gousers/internal/pkg/logger"
	"gousers/internal/pkg/validation"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, dto domain.UserDTO) (domain.UserDTO, error) {
	args := m.Called(ctx, dto)
	return args.Get(0).(domain.UserDTO), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id string) (domain.UserDTO, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.UserDTO), args.Bool(1), args.Error(2)
}

func (m *MockUserService) Update(ctx context.Context, id string, dto domain.UserDTO) (domain.UserDTO, bool, error) {
	args := m.Called(ctx, id, dto)
	return args.Get(0).(domain.UserDTO), args.Bool(1), args.Error(2)
}

func (m *MockUserService) ChangePassword(ctx context.Context, id string, newPassword string) error {
	return m.Called(ctx, id, newPassword).Error(0)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req domain.LoginRequest) (int, *domain.LoginResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(1).(*domain.LoginResponse)
	return args.Int(0), resp, args.Error(2)
}

func newMux(svc *MockUserService, auth *MockAuthService) *http.ServeMux {
	h := user.NewHandler(svc, auth, validation.New(), logger.NewNopLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/users", h.CreateUserHandler)
	mux.HandleFunc("POST /v1/login", h.LoginUserHandler)
	mux.HandleFunc("GET /v1/users/{id}", h.GetUserHandler)
	mux.HandleFunc("PUT /v1/users/{id}", h.UpdateUserHandler)
	mux.HandleFunc("PUT /v1/users/{id}/password", h.ChangePasswordHandler)
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) domain.ErrorResponse {
	t.Helper()
	var resp domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestCreateUserHandler(t *testing.T) {
	active := true

	t.Run("created", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(d domain.UserDTO) bool {
			return d.FirstName == "Maria" && d.Active != nil && *d.Active && d.Password == "secret123"
		})).Return(domain.UserDTO{ID: "abc", FirstName: "Maria", Active: &active}, nil)

		rr := do(newMux(svc, nil), http.MethodPost, "/v1/users",
			`{"first_name":"Maria","last_name":"Silva","email":"maria@example.com","cpf":"111.444.777-35","password":"secret123","active":true}`)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "abc", got["id"])
		assert.NotContains(t, got, "password")
	})

	t.Run("missing active reaches the service as nil", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(d domain.UserDTO) bool { return d.Active == nil })).
			Return(domain.UserDTO{}, apperror.NewInvalidActiveValueError())

		rr := do(newMux(svc, nil), http.MethodPost, "/v1/users", `{"first_name":"Maria"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, apperror.CodeInvalidActiveValue, decodeError(t, rr).Category)
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := new(MockUserService)

		rr := do(newMux(svc, nil), http.MethodPost, "/v1/users", `{"first_name":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, apperror.CodeInvalidUserData, decodeError(t, rr).Category)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate cpf", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("Create", mock.Anything, mock.Anything).Return(domain.UserDTO{}, apperror.NewDuplicateCpfError())

		rr := do(newMux(svc, nil), http.MethodPost, "/v1/users", `{}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
		resp := decodeError(t, rr)
		assert.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, apperror.CodeDuplicateCpf, resp.Category)
	})

	t.Run("internal error hides details", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("Create", mock.Anything, mock.Anything).
			Return(domain.UserDTO{}, apperror.NewInternalError("x", errors.New("pq: password authentication failed")))

		rr := do(newMux(svc, nil), http.MethodPost, "/v1/users", `{}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "pq:")
	})
}

func TestGetUserHandler(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("GetByID", mock.Anything, "abc").Return(domain.UserDTO{ID: "abc", FirstName: "Maria"}, true, nil)

		rr := do(newMux(svc, nil), http.MethodGet, "/v1/users/abc", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		var got domain.UserDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "Maria", got.FirstName)
	})

	t.Run("absent", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("GetByID", mock.Anything, "ghost").Return(domain.UserDTO{}, false, nil)

		rr := do(newMux(svc, nil), http.MethodGet, "/v1/users/ghost", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "NOT_FOUND", decodeError(t, rr).Category)
	})
}

func TestUpdateUserHandler(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("Update", mock.Anything, "abc", mock.MatchedBy(func(d domain.UserDTO) bool { return d.FirstName == "Joana" })).
			Return(domain.UserDTO{ID: "abc", FirstName: "Joana"}, true, nil)

		rr := do(newMux(svc, nil), http.MethodPut, "/v1/users/abc", `{"first_name":"Joana"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Joana")
	})

	t.Run("absent", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("Update", mock.Anything, "ghost", mock.Anything).Return(domain.UserDTO{}, false, nil)

		rr := do(newMux(svc, nil), http.MethodPut, "/v1/users/ghost", `{"first_name":"Joana"}`)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("invalid data", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("Update", mock.Anything, "abc", mock.Anything).Return(domain.UserDTO{}, false, apperror.NewInvalidUserDataError("email: must be a valid email"))

		rr := do(newMux(svc, nil), http.MethodPut, "/v1/users/abc", `{"email":"x"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeError(t, rr).Message, "email")
	})
}

func TestChangePasswordHandler(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("ChangePassword", mock.Anything, "abc", "newpass1").Return(nil)

		rr := do(newMux(svc, nil), http.MethodPut, "/v1/users/abc/password", `{"password":"newpass1"}`)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("missing password", func(t *testing.T) {
		svc := new(MockUserService)

		rr := do(newMux(svc, nil), http.MethodPut, "/v1/users/abc/password", `{}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, apperror.CodeInvalidUserData, decodeError(t, rr).Category)
		svc.AssertNotCalled(t, "ChangePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("service failure", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("ChangePassword", mock.Anything, "abc", "newpass1").Return(apperror.NewInternalError("x", nil))

		rr := do(newMux(svc, nil), http.MethodPut, "/v1/users/abc/password", `{"password":"newpass1"}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestLoginUserHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		auth := new(MockAuthService)
		auth.On("Login", mock.Anything, domain.LoginRequest{Email: "maria@example.com", Password: "secret123"}).
			Return(http.StatusOK, &domain.LoginResponse{Token: "t", TokenType: "Bearer", Username: "maria@example.com"}, nil)

		rr := do(newMux(nil, auth), http.MethodPost, "/v1/login", `{"email":"maria@example.com","password":"secret123"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		var got domain.LoginResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "t", got.Token)
		assert.Equal(t, "Bearer", got.TokenType)
		assert.Equal(t, "maria@example.com", got.Username)
	})

	t.Run("rejected credentials have no body", func(t *testing.T) {
		auth := new(MockAuthService)
		auth.On("Login", mock.Anything, mock.Anything).Return(http.StatusUnauthorized, nil, nil)

		rr := do(newMux(nil, auth), http.MethodPost, "/v1/login", `{"email":"x@y.com","password":"bad"}`)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Empty(t, rr.Body.String())
	})

	t.Run("malformed json", func(t *testing.T) {
		auth := new(MockAuthService)

		rr := do(newMux(nil, auth), http.MethodPost, "/v1/login", `nope`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})

	t.Run("infrastructure failure", func(t *testing.T) {
		auth := new(MockAuthService)
		auth.On("Login", mock.Anything, mock.Anything).Return(http.StatusInternalServerError, nil, apperror.NewInternalError("x", nil))

		rr := do(newMux(nil, auth), http.MethodPost, "/v1/login", `{}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, rr).Category)
	})
}

package user

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"gousers/internal/domain"
	apperror "gousers/internal/errors"
	"gousers/internal/pkg/logger"
	"gousers/internal/pkg/validation"
)

// UserService define o contrato que o Handler espera do serviço de contas.
type UserService interface {
	Create(ctx context.Context, dto domain.UserDTO) (domain.UserDTO, error)
	GetByID(ctx context.Context, id string) (domain.UserDTO, bool, error)
	Update(ctx context.Context, id string, dto domain.UserDTO) (domain.UserDTO, bool, error)
	ChangePassword(ctx context.Context, id string, newPassword string) error
}

// AuthService define o contrato de login.
type AuthService interface {
	Login(ctx context.Context, req domain.LoginRequest) (int, *domain.LoginResponse, error)
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service   UserService
	Auth      AuthService
	Validator *validation.Validator
	Logger    logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando os Services e o Logger.
func NewHandler(svc UserService, auth AuthService, v *validation.Validator, log logger.Logger) *Handler {
	return &Handler{
		Service:   svc,
		Auth:      auth,
		Validator: v,
		Logger:    log,
	}
}

// handleServiceResponse padroniza o tratamento de erros e respostas HTTP.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	// Mapeamento de Erros de Negócio para Status HTTP
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= http.StatusInternalServerError {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, id string) {
	h.handleServiceResponse(w, r, nil, apperror.NewNotFoundError(fmt.Sprintf("Usuário com ID '%s' não encontrado", id)), http.StatusOK)
}

// CreateUserHandler lida com a requisição POST /v1/users.
// @Summary Cria um novo usuário
// @Description Valida o payload (nomes, senha, CPF, email, active), hasheia a senha e salva o usuário.
// @Tags users
// @Accept json
// @Produce json
// @Param user body domain.UserDTO true "Dados do usuário"
// @Success 201 {object} domain.UserDTO "Usuário criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "CPF ou email já cadastrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /users [post]
func (h *Handler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var dto domain.UserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewInvalidUserDataError("payload JSON inválido"), http.StatusCreated)
		return
	}

	created, err := h.Service.Create(r.Context(), dto)
	h.handleServiceResponse(w, r, created, err, http.StatusCreated)
}

// GetUserHandler lida com a requisição GET /v1/users/{id}.
// @Summary Busca um usuário pelo ID
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do usuário"
// @Success 200 {object} domain.UserDTO
// @Failure 401 "Token ausente ou inválido"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Router /users/{id} [get]
func (h *Handler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	dto, found, err := h.Service.GetByID(r.Context(), id)
	if err == nil && !found {
		h.notFound(w, r, id)
		return
	}
	h.handleServiceResponse(w, r, dto, err, http.StatusOK)
}

// UpdateUserHandler lida com a requisição PUT /v1/users/{id}.
// @Summary Atualiza um usuário
// @Description Substitui nome, sobrenome, email, CPF, data de nascimento e active. A senha não é alterada.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do usuário"
// @Param user body domain.UserDTO true "Novos dados do usuário"
// @Success 200 {object} domain.UserDTO
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 "Token ausente ou inválido"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Failure 409 {object} domain.ErrorResponse "CPF ou email já cadastrado"
// @Router /users/{id} [put]
func (h *Handler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var dto domain.UserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewInvalidUserDataError("payload JSON inválido"), http.StatusOK)
		return
	}

	updated, found, err := h.Service.Update(r.Context(), id, dto)
	if err == nil && !found {
		h.notFound(w, r, id)
		return
	}
	h.handleServiceResponse(w, r, updated, err, http.StatusOK)
}

// ChangePasswordHandler lida com a requisição PUT /v1/users/{id}/password.
// @Summary Troca a senha de um usuário
// @Tags users
// @Accept json
// @Security BearerAuth
// @Param id path string true "ID do usuário"
// @Param password body domain.PasswordChange true "Nova senha"
// @Success 204 "Senha alterada (ou usuário inexistente)"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 "Token ausente ou inválido"
// @Router /users/{id}/password [put]
func (h *Handler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req domain.PasswordChange
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewInvalidUserDataError("payload JSON inválido"), http.StatusNoContent)
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewInvalidUserDataError(validation.Summary(err)), http.StatusNoContent)
		return
	}

	if err := h.Service.ChangePassword(r.Context(), id, req.Password); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoginUserHandler lida com a requisição POST /v1/login.
// @Summary Autentica um usuário e retorna um JWT
// @Description Recebe email/senha e emite um token Bearer. Credenciais inválidas retornam 401 sem corpo.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body domain.LoginRequest true "Credenciais do usuário (email e senha)"
// @Success 200 {object} domain.LoginResponse "Token JWT emitido"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 "Credenciais inválidas"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /login [post]
func (h *Handler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	status, resp, err := h.Auth.Login(r.Context(), req)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	if resp == nil {
		// Falha de autenticação: apenas o status, sem corpo.
		w.WriteHeader(status)
		return
	}
	h.handleServiceResponse(w, r, resp, nil, status)
}

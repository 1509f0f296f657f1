package router

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"gousers/internal/api/user"
)

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências e o
// middleware de autenticação aplicado às rotas do recurso de usuário.
func NewRouter(userHandler *user.Handler, auth func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	// --- 1. Health Check ---
	mux.HandleFunc("GET /ping", PingHandler)

	// --- 2. Rotas públicas ---
	mux.HandleFunc("POST /v1/users", userHandler.CreateUserHandler)
	mux.HandleFunc("POST /v1/login", userHandler.LoginUserHandler)

	// --- 3. Rotas protegidas (Bearer token) ---
	mux.Handle("GET /v1/users/{id}", auth(http.HandlerFunc(userHandler.GetUserHandler)))
	mux.Handle("PUT /v1/users/{id}", auth(http.HandlerFunc(userHandler.UpdateUserHandler)))
	mux.Handle("PUT /v1/users/{id}/password", auth(http.HandlerFunc(userHandler.ChangePasswordHandler)))

	// --- 4. Documentação ---
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return mux
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

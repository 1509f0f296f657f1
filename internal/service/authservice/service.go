package authservice

import (
	"context"
	"errors"
	"net/http"

	"gousers/internal/domain"
	apperror "gousers/internal/errors"
	"gousers/internal/pkg/logger"
)

// dummyPassword é a senha descartável cujo hash é verificado quando o email
// não existe, para que "email desconhecido" e "senha incorreta" levem o mesmo tempo.
const dummyPassword = "gousers-dummy-password"

// fallbackDummyHash (bcrypt, custo 10) só é usado se o hasher falhar na construção.
const fallbackDummyHash = "$2b$10$zf3quBAkRS6Qq4fymM4C8ucIsAN/Byf0xE2Ef1setTEwVh6aIdcES"

// AuthService verifica credenciais e emite o token de sessão.
type AuthService struct {
	repo      domain.UserRepository
	hasher    domain.PasswordHasher
	tokens    domain.TokenIssuer
	logger    logger.Logger
	dummyHash string
}

// NewService cria uma nova instância do AuthService.
// O hash de comparação para emails desconhecidos é gerado aqui, com o mesmo custo
// configurado no hasher.
func NewService(repo domain.UserRepository, hasher domain.PasswordHasher, tokens domain.TokenIssuer, log logger.Logger) *AuthService {
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		log.Warn("Falha ao gerar hash de comparação; usando o padrão.", map[string]interface{}{"error": err.Error()})
		dummy = fallbackDummyHash
	}
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		logger:    log,
		dummyHash: dummy,
	}
}

// VerifyCredentials devolve o usuário quando o email existe e a senha confere.
// Email desconhecido e senha incorreta resultam no mesmo AuthenticationFailed.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !apperror.IsNotFound(err) {
			return domain.User{}, apperror.NewInternalError("Falha ao buscar usuário para login.", err)
		}
		s.hasher.Check(password, s.dummyHash)
		return domain.User{}, apperror.NewAuthenticationFailedError()
	}

	if !s.hasher.Check(password, user.PasswordHash) {
		return domain.User{}, apperror.NewAuthenticationFailedError()
	}

	return user, nil
}

// Login autentica e emite um token Bearer para o email.
// Credenciais inválidas resultam em 401 sem corpo e sem erro; o erro só é
// devolvido para falhas de infraestrutura (repositório, emissão do token).
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (int, *domain.LoginResponse, error) {
	if _, err := s.VerifyCredentials(ctx, req.Email, req.Password); err != nil {
		if errors.Is(err, apperror.ErrAuthenticationFailed) {
			s.logger.Info("Tentativa de login rejeitada.", map[string]interface{}{"email": req.Email})
			return http.StatusUnauthorized, nil, nil
		}
		s.logger.Error("Falha ao verificar credenciais.", err)
		return http.StatusInternalServerError, nil, err
	}

	token, err := s.tokens.GenerateToken(req.Email)
	if err != nil {
		s.logger.Error("Falha ao gerar token de autenticação.", err)
		return http.StatusInternalServerError, nil, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Login realizado com sucesso.", map[string]interface{}{"email": req.Email})
	return http.StatusOK, &domain.LoginResponse{
		Token:     token,
		TokenType: domain.TokenTypeBearer,
		Username:  req.Email,
	}, nil
}

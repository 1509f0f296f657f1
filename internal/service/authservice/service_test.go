package authservice_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gousers/internal/domain"
	apperror "gousers/internal/errors"
	"gousers/internal/pkg/hasher"
	"gousers/internal/pkg/logger"
	"gousers/internal/service/authservice"
)

// MockUserRepository cobre apenas o que o login usa; o resto não deve ser chamado.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	args := m.Called(ctx, cpf)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) GenerateToken(subject string) (string, error) {
	args := m.Called(subject)
	return args.String(0), args.Error(1)
}

// SpyHasher registra os hashes verificados e delega ao bcrypt real.
type SpyHasher struct {
	*hasher.BcryptHasher
	checked []string
}

func (s *SpyHasher) Check(password, hash string) bool {
	s.checked = append(s.checked, hash)
	return s.BcryptHasher.Check(password, hash)
}

const (
	email    = "maria@example.com"
	password = "secret123"
)

func setup(t *testing.T) (*authservice.AuthService, *MockUserRepository, *SpyHasher, *MockTokenIssuer, domain.User) {
	t.Helper()
	h := &SpyHasher{BcryptHasher: hasher.NewBcryptHasher(4)}
	hash, err := h.Hash(password)
	require.NoError(t, err)

	repo := new(MockUserRepository)
	tokens := new(MockTokenIssuer)
	svc := authservice.NewService(repo, h, tokens, logger.NewNopLogger())

	user := domain.User{ID: "2a4d5c4e-0f8e-4b1a-9c39-6c1f3f0c8d11", Email: email, PasswordHash: hash, Active: true}
	return svc, repo, h, tokens, user
}

func TestLogin_Success(t *testing.T) {
	svc, repo, _, tokens, user := setup(t)
	repo.On("FindByEmail", mock.Anything, email).Return(user, nil)
	tokens.On("GenerateToken", email).Return("signed.jwt.token", nil)

	status, resp, err := svc.Login(context.Background(), domain.LoginRequest{Email: email, Password: password})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, resp)
	assert.Equal(t, "signed.jwt.token", resp.Token)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, email, resp.Username)
	tokens.AssertExpectations(t)
}

// TestLogin_FailuresAreIndistinguishable testa que senha errada e email
// desconhecido produzem exatamente a mesma resposta.
func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, repo, h, tokens, user := setup(t)
	repo.On("FindByEmail", mock.Anything, email).Return(user, nil)
	repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(domain.User{}, apperror.NewNotFoundError("x"))

	wrongStatus, wrongResp, wrongErr := svc.Login(context.Background(), domain.LoginRequest{Email: email, Password: "wrong-password"})
	ghostStatus, ghostResp, ghostErr := svc.Login(context.Background(), domain.LoginRequest{Email: "ghost@example.com", Password: password})

	assert.Equal(t, http.StatusUnauthorized, wrongStatus)
	assert.Nil(t, wrongResp)
	assert.NoError(t, wrongErr)
	assert.Equal(t, wrongStatus, ghostStatus)
	assert.Equal(t, wrongResp, ghostResp)
	assert.Equal(t, wrongErr, ghostErr)

	// Email desconhecido também passa por uma verificação bcrypt.
	assert.Len(t, h.checked, 2)
	tokens.AssertNotCalled(t, "GenerateToken", mock.Anything)
}

func TestVerifyCredentials(t *testing.T) {
	t.Run("returns the user", func(t *testing.T) {
		svc, repo, _, _, user := setup(t)
		repo.On("FindByEmail", mock.Anything, email).Return(user, nil)

		got, err := svc.VerifyCredentials(context.Background(), email, password)

		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, repo, _, _, user := setup(t)
		repo.On("FindByEmail", mock.Anything, email).Return(user, nil)

		_, err := svc.VerifyCredentials(context.Background(), email, "nope-nope")

		assert.ErrorIs(t, err, apperror.ErrAuthenticationFailed)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, repo, _, _, _ := setup(t)
		repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(domain.User{}, apperror.NewNotFoundError("x"))

		_, err := svc.VerifyCredentials(context.Background(), "ghost@example.com", password)

		assert.ErrorIs(t, err, apperror.ErrAuthenticationFailed)
		assert.Equal(t, "Não autorizado: Usuário não encontrado ou senha incorreta.", err.Error())
	})
}

func TestLogin_InfrastructureErrors(t *testing.T) {
	t.Run("repository failure", func(t *testing.T) {
		svc, repo, _, tokens, _ := setup(t)
		repo.On("FindByEmail", mock.Anything, email).Return(domain.User{}, errors.New("db down"))

		status, resp, err := svc.Login(context.Background(), domain.LoginRequest{Email: email, Password: password})

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Nil(t, resp)
		assert.IsType(t, &apperror.InternalError{}, err)
		tokens.AssertNotCalled(t, "GenerateToken", mock.Anything)
	})

	t.Run("token failure", func(t *testing.T) {
		svc, repo, _, tokens, user := setup(t)
		repo.On("FindByEmail", mock.Anything, email).Return(user, nil)
		tokens.On("GenerateToken", email).Return("", errors.New("signing failed"))

		status, resp, err := svc.Login(context.Background(), domain.LoginRequest{Email: email, Password: password})

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Nil(t, resp)
		assert.Error(t, err)
	})
}

// TestVerifyCredentials_UnknownEmailUsesConfiguredCost garante que o hash de
// comparação tem o mesmo custo dos hashes reais.
func TestVerifyCredentials_UnknownEmailUsesConfiguredCost(t *testing.T) {
	svc, repo, h, _, user := setup(t)
	repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(domain.User{}, apperror.NewNotFoundError("x"))

	_, err := svc.VerifyCredentials(context.Background(), "ghost@example.com", password)
	require.ErrorIs(t, err, apperror.ErrAuthenticationFailed)

	require.Len(t, h.checked, 1)
	dummyCost, err := bcrypt.Cost([]byte(h.checked[0]))
	require.NoError(t, err)
	realCost, err := bcrypt.Cost([]byte(user.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, realCost, dummyCost)
	assert.Equal(t, 4, dummyCost)
}

type failingHasher struct {
	checked []string
}

func (f *failingHasher) Hash(string) (string, error) { return "", errors.New("entropy exhausted") }

func (f *failingHasher) Check(_, hash string) bool {
	f.checked = append(f.checked, hash)
	return false
}

func TestNewService_HasherFailureFallsBack(t *testing.T) {
	h := &failingHasher{}
	repo := new(MockUserRepository)
	repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(domain.User{}, apperror.NewNotFoundError("x"))
	svc := authservice.NewService(repo, h, new(MockTokenIssuer), logger.NewNopLogger())

	_, err := svc.VerifyCredentials(context.Background(), "ghost@example.com", password)

	assert.ErrorIs(t, err, apperror.ErrAuthenticationFailed)
	require.Len(t, h.checked, 1)
	assert.NotEmpty(t, h.checked[0])
}

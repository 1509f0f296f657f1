package userservice

import (
	"context"

	"gousers/internal/domain"
	apperror "gousers/internal/errors"
	"gousers/internal/pkg/logger"
	"gousers/internal/pkg/validation"
)

// UserService orquestra criação, leitura, atualização e troca de senha de usuários.
// Não guarda estado entre chamadas: toda operação relê o repositório.
type UserService struct {
	repo      domain.UserRepository
	hasher    domain.PasswordHasher
	validator *validation.Validator
	logger    logger.Logger
}

// NewService cria uma nova instância do UserService, injetando Repositório, Hasher e Validator.
func NewService(repo domain.UserRepository, hasher domain.PasswordHasher, v *validation.Validator, log logger.Logger) *UserService {
	return &UserService{
		repo:      repo,
		hasher:    hasher,
		validator: v,
		logger:    log,
	}
}

// Create valida o candidato por completo, faz o hash da senha e persiste o usuário.
// Nenhuma escrita acontece se qualquer etapa da validação falhar.
func (s *UserService) Create(ctx context.Context, dto domain.UserDTO) (domain.UserDTO, error) {
	s.logger.Debug("Iniciando criação de usuário no serviço.", map[string]interface{}{"email": dto.Email})

	// 1. Pipeline de validação (fail-fast)
	if err := s.validateForCreate(ctx, dto); err != nil {
		s.logger.Info("Criação de usuário rejeitada na validação.", map[string]interface{}{"email": dto.Email, "error": err.Error()})
		return domain.UserDTO{}, err
	}

	// 2. Hashing da Senha
	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		s.logger.Error("Falha ao gerar hash da senha.", err)
		return domain.UserDTO{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	user := dto.ToUser()
	user.ID = "" // O ID é sempre atribuído pelo repositório
	user.PasswordHash = hash

	// 3. Persistência
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return domain.UserDTO{}, wrapRepoError("Falha ao salvar usuário.", err)
	}

	s.logger.Info("Usuário criado com sucesso.", map[string]interface{}{"user_id": saved.ID})
	return saved.ToDTO(), nil
}

// GetByID devolve found=false (sem erro) quando o usuário não existe.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.UserDTO, bool, error) {
	user, found, err := s.findByID(ctx, id)
	if err != nil || !found {
		return domain.UserDTO{}, found, err
	}
	return user.ToDTO(), true, nil
}

// Update substitui nome, sobrenome, email, CPF, data de nascimento e active.
// A senha não é alterada por este caminho. Um ID inexistente devolve found=false
// qualquer que seja o payload. Apenas a validação estrutural e a presença de
// active são aplicadas; as checagens de unicidade e formato do Create não são refeitas.
func (s *UserService) Update(ctx context.Context, id string, dto domain.UserDTO) (domain.UserDTO, bool, error) {
	s.logger.Debug("Iniciando atualização de usuário no serviço.", map[string]interface{}{"user_id": id})

	// 1. Existência
	existing, found, err := s.findByID(ctx, id)
	if err != nil || !found {
		return domain.UserDTO{}, found, err
	}

	// 2. Schema (sem senha) e active explícito: ausência nunca vira false.
	if err := s.validateUserDTO(dto, "Password"); err != nil {
		return domain.UserDTO{}, true, err
	}
	if err := validateActiveValue(dto.Active); err != nil {
		return domain.UserDTO{}, true, err
	}

	candidate := dto.ToUser()
	existing.FirstName = candidate.FirstName
	existing.LastName = candidate.LastName
	existing.Email = candidate.Email
	existing.CPF = candidate.CPF
	existing.Birthdate = candidate.Birthdate
	existing.Active = candidate.Active

	// O hash pode vir vazio de uma leitura do cache; o repositório preserva o armazenado.
	if err := s.validator.StructExcept(existing, "PasswordHash"); err != nil {
		return domain.UserDTO{}, true, apperror.NewInvalidUserDataError(validation.Summary(err))
	}

	saved, err := s.repo.Save(ctx, existing)
	if err != nil {
		return domain.UserDTO{}, true, wrapRepoError("Falha ao atualizar usuário.", err)
	}

	s.logger.Info("Usuário atualizado com sucesso.", map[string]interface{}{"user_id": saved.ID})
	return saved.ToDTO(), true, nil
}

// ChangePassword troca o hash da senha. Para um ID inexistente não faz nada e não retorna erro.
func (s *UserService) ChangePassword(ctx context.Context, id string, newPassword string) error {
	user, found, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		s.logger.Info("Troca de senha ignorada: usuário inexistente.", map[string]interface{}{"user_id": id})
		return nil
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.logger.Error("Falha ao gerar hash da nova senha.", err)
		return apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}
	user.PasswordHash = hash

	if _, err := s.repo.Save(ctx, user); err != nil {
		return wrapRepoError("Falha ao salvar nova senha.", err)
	}

	s.logger.Info("Senha do usuário alterada.", map[string]interface{}{"user_id": id})
	return nil
}

// findByID traduz NotFoundError do repositório para found=false.
func (s *UserService) findByID(ctx context.Context, id string) (domain.User, bool, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, wrapRepoError("Falha ao buscar usuário.", err)
	}
	return user, true, nil
}

// wrapRepoError preserva erros de domínio (conflito, não encontrado, etc.)
// e encapsula qualquer outro como InternalError.
func wrapRepoError(msg string, err error) error {
	if _, ok := err.(apperror.AppError); ok {
		return err
	}
	return apperror.NewInternalError(msg, err)
}

package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gousers/internal/domain"
	apperror "gousers/internal/errors"
	"gousers/internal/pkg/cache"
	"gousers/internal/pkg/logger"
)

// Nomes das constraints UNIQUE criadas pela migration de users.
const (
	emailUniqueConstraint = "users_email_key"
	cpfUniqueConstraint   = "users_cpf_key"

	pqUniqueViolation = "23505"
)

// Define a chave de cache para usuários.
const userCacheKey = "user:%s"

const userColumns = `id, first_name, last_name, email, cpf, birthdate, password_hash, active, created_at, updated_at`

// UserRepository implementa a interface domain.UserRepository sobre PostgreSQL,
// com cache-aside (Redis) na busca por ID.
type UserRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
	now       func() time.Time
}

// NewUserRepository cria uma nova instância do UserRepository, injetando DB e Cache.
// Um cacheClient nil desliga o cache.
func NewUserRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, log logger.Logger) *UserRepository {
	if cacheClient == nil {
		cacheClient = cache.NopClient{}
	}
	return &UserRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// cachedUser é a forma serializada no cache. O hash da senha nunca sai do
// PostgreSQL: um usuário lido do cache tem PasswordHash vazio, e o update
// preserva o hash armazenado nesse caso.
type cachedUser struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CPF       string    `json:"cpf"`
	Birthdate time.Time `json:"birthdate"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Save insere (ID vazio) ou atualiza (ID preenchido) um usuário.
// Violações das constraints UNIQUE viram DuplicateEmail/DuplicateCpf.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if user.ID == "" {
		return r.insert(ctxTimeout, user)
	}
	return r.update(ctxTimeout, user)
}

func (r *UserRepository) insert(ctx context.Context, user domain.User) (domain.User, error) {
	user.ID = uuid.NewString()
	user.CreatedAt = r.now()
	user.UpdatedAt = user.CreatedAt
	r.logger.Debug("Gerado novo ID e timestamps para o usuário.", map[string]interface{}{"user_id": user.ID, "email": user.Email})

	const insertSQL = `INSERT INTO users (` + userColumns + `)
                       VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(ctx, insertSQL,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		nullString(user.CPF),
		nullTime(user.Birthdate),
		user.PasswordHash,
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if dupErr := mapUniqueViolation(err); dupErr != nil {
			r.logger.Info("Inserção rejeitada por constraint UNIQUE.", map[string]interface{}{"email": user.Email})
			return domain.User{}, dupErr
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to insert user", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

func (r *UserRepository) update(ctx context.Context, user domain.User) (domain.User, error) {
	user.UpdatedAt = r.now()

	const updateSQL = `UPDATE users
                       SET first_name = $2, last_name = $3, email = $4, cpf = $5, birthdate = $6,
                           password_hash = COALESCE(NULLIF($7, ''), password_hash), active = $8, updated_at = $9
                       WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, updateSQL,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		nullString(user.CPF),
		nullTime(user.Birthdate),
		user.PasswordHash,
		user.Active,
		user.UpdatedAt,
	)
	if err != nil {
		if dupErr := mapUniqueViolation(err); dupErr != nil {
			r.logger.Info("Atualização rejeitada por constraint UNIQUE.", map[string]interface{}{"user_id": user.ID})
			return domain.User{}, dupErr
		}
		r.logger.Error("Falha ao atualizar usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to update user", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.User{}, apperror.NewDBError("failed to read affected rows", err)
	}
	if affected == 0 {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com ID '%s' não encontrado", user.ID))
	}

	// Invalida o cache depois da escrita para que a próxima leitura venha do DB.
	if err := r.Cache.Delete(ctx, fmt.Sprintf(userCacheKey, user.ID)); err != nil {
		r.logger.Warn("Falha ao invalidar cache do usuário.", map[string]interface{}{"user_id": user.ID, "error": err.Error()})
	}

	r.logger.Info("Usuário atualizado com sucesso no repositório.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// FindByID busca um usuário pelo ID, utilizando a estratégia Cache-Aside.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	// IDs fora do formato UUID nunca existem na tabela.
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com ID '%s' não encontrado", id))
	}

	key := fmt.Sprintf(userCacheKey, id)

	// --- 1. Cache-Aside (READ) ---
	var cu cachedUser
	err := cache.GetJSON(ctxTimeout, r.Cache, key, &cu)
	switch {
	case err == nil:
		r.logger.Debug("Usuário encontrado no cache.", map[string]interface{}{"user_id": id})
		return fromCached(cu), nil
	case !errors.Is(err, cache.ErrCacheMiss):
		r.logger.Warn("Falha ao ler do cache, consultando o DB.", map[string]interface{}{"user_id": id, "error": err.Error()})
	}

	// --- 2. Busca no Banco de Dados ---
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Info("Usuário não encontrado no DB por ID.", map[string]interface{}{"user_id": id})
			return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com ID '%s' não encontrado", id))
		}
		r.logger.Error("Falha ao buscar usuário por ID no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to find user by id", err)
	}

	// --- 3. Cache-Aside (WRITE) ---
	if err := cache.SetJSON(ctxTimeout, r.Cache, key, toCached(user), r.CacheTTL); err != nil {
		r.logger.Warn("Falha ao gravar usuário no cache.", map[string]interface{}{"user_id": id, "error": err.Error()})
	}

	return user, nil
}

// FindByEmail busca um usuário pelo endereço de e-mail.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.DB.QueryRowContext(ctxTimeout, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Info("Usuário não encontrado no DB por email.", map[string]interface{}{"email": email})
			return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com email '%s' não encontrado", email))
		}
		r.logger.Error("Falha ao buscar usuário por email no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to find user by email", err)
	}

	return user, nil
}

// ExistsByCPF informa se já existe usuário com o CPF. CPF vazio nunca existe.
func (r *UserRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	if cpf == "" {
		return false, nil
	}
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE cpf = $1)`, cpf)
}

// ExistsByEmail informa se já existe usuário com o email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *UserRepository) exists(ctx context.Context, query string, arg string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var found bool
	if err := r.DB.QueryRowContext(ctxTimeout, query, arg).Scan(&found); err != nil {
		r.logger.Error("Falha na checagem de existência no DB.", err)
		return false, apperror.NewDBError("failed to check user existence", err)
	}
	return found, nil
}

// --- Helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		user      domain.User
		cpf       sql.NullString
		birthdate sql.NullTime
	)
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&cpf,
		&birthdate,
		&user.PasswordHash,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	user.CPF = cpf.String
	if birthdate.Valid {
		user.Birthdate = birthdate.Time
	}
	return user, nil
}

// mapUniqueViolation traduz a violação de UNIQUE do PostgreSQL para o erro de domínio.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pqUniqueViolation {
		return nil
	}
	switch pqErr.Constraint {
	case cpfUniqueConstraint:
		return apperror.NewDuplicateCpfError()
	case emailUniqueConstraint:
		return apperror.NewDuplicateEmailError()
	default:
		return apperror.NewConflictError(fmt.Sprintf("violação de unicidade (%s)", pqErr.Constraint))
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func toCached(u domain.User) cachedUser {
	return cachedUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		CPF:       u.CPF,
		Birthdate: u.Birthdate,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func fromCached(c cachedUser) domain.User {
	return domain.User{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		CPF:       c.CPF,
		Birthdate: c.Birthdate,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

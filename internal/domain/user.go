package domain

import (
	"context"
	"time"
)

// BirthdateLayout é o formato de data aceito e devolvido no DTO.
const BirthdateLayout = "2006-01-02"

// TokenTypeBearer é o tipo de token devolvido no login.
const TokenTypeBearer = "Bearer"

// User representa a entidade do usuário persistida no sistema.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name" validate:"required,max=100"`
	LastName     string    `json:"last_name" validate:"required,max=100"`
	Email        string    `json:"email" validate:"required,email,max=255"`
	CPF          string    `json:"cpf" validate:"omitempty,max=14"`
	Birthdate    time.Time `json:"birthdate"`
	PasswordHash string    `json:"-" validate:"required"` // Oculta o hash da senha no JSON de resposta
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserDTO é a representação externa do usuário (entrada e saída da API).
// Active é um ponteiro para distinguir "ausente" (nil) de true/false.
// Password só é lido na entrada; nunca é devolvido preenchido.
type UserDTO struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	CPF       string `json:"cpf" validate:"omitempty,max=14"`
	Birthdate string `json:"birthdate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Password  string `json:"password,omitempty" validate:"required,max=72"`
	Active    *bool  `json:"active"`
}

// PasswordChange é o payload de troca de senha.
type PasswordChange struct {
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest representa o payload de entrada para o login. Nunca é persistido.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse é gerado a cada login bem-sucedido.
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	Username  string `json:"username"`
}

// ToUser converte o DTO em entidade. A senha não é copiada: o hash é responsabilidade do serviço.
func (d UserDTO) ToUser() User {
	u := User{
		ID:        d.ID,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		CPF:       d.CPF,
	}
	if d.Active != nil {
		u.Active = *d.Active
	}
	if d.Birthdate != "" {
		// O formato já foi garantido pela validação estrutural.
		if b, err := time.Parse(BirthdateLayout, d.Birthdate); err == nil {
			u.Birthdate = b
		}
	}
	return u
}

// ToDTO converte a entidade para a representação externa, sem a senha.
func (u User) ToDTO() UserDTO {
	active := u.Active
	d := UserDTO{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		CPF:       u.CPF,
		Active:    &active,
	}
	if !u.Birthdate.IsZero() {
		d.Birthdate = u.Birthdate.Format(BirthdateLayout)
	}
	return d
}

// --- Contratos dos colaboradores ---

// UserRepository define o contrato de persistência para a entidade User.
// FindByID e FindByEmail devolvem um NotFoundError quando o usuário não existe.
// Save insere quando ID está vazio (o repositório atribui o ID) e atualiza caso contrário.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	ExistsByCPF(ctx context.Context, cpf string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user User) (User, error)
}

// PasswordHasher abstrai o algoritmo de hash de senha (bcrypt).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(password, hash string) bool
}

// TokenIssuer emite um token assinado para um identificador de sujeito.
type TokenIssuer interface {
	GenerateToken(subject string) (string, error)
}

package domain

// ErrorResponse é a estrutura padronizada para respostas de erro na API.
// @Description Estrutura padronizada para respostas de erro na API.
type ErrorResponse struct {
	Code     int    `json:"code" example:"409"`
	Category string `json:"category" example:"DUPLICATE_CPF"`
	Message  string `json:"message" example:"Conflito de estado: CPF duplicado. Um usuário com o mesmo CPF já existe."`
}

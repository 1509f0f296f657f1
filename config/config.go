package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config armazena todas as configurações do serviço GoUsers.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Banco de Dados (PostgreSQL)
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache (Redis). RedisAddr vazio desliga o cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Segurança (JWT e bcrypt)
	JWTSecretKey string
	TokenExpiry  time.Duration
	BcryptCost   int
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
// Retorna erro se alguma variável obrigatória não estiver definida.
func LoadConfig() (*Config, error) {
	var missing []string

	cfg := &Config{
		// 1. Geral
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// 2. Banco de Dados (PostgreSQL)
		DatabaseURL: requireEnv("DATABASE_URL", &missing),
		DBTimeout:   time.Duration(getIntEnv("DB_TIMEOUT_SEC", 5)) * time.Second,

		// 3. Cache (Redis)
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		CacheTTL:      time.Duration(getIntEnv("CACHE_TTL_SEC", 300)) * time.Second,

		// 4. Segurança
		JWTSecretKey: requireEnv("JWT_SECRET_KEY", &missing),
		TokenExpiry:  time.Duration(getIntEnv("JWT_EXPIRY_MIN", 60)) * time.Minute,
		BcryptCost:   getIntEnv("BCRYPT_COST", 10),
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("variáveis de ambiente obrigatórias não definidas: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// Funções Helpers (Auxiliares)

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// requireEnv lê a variável obrigatória e registra o nome em missing se estiver ausente ou vazia.
func requireEnv(key string, missing *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*missing = append(*missing, key)
	}
	return value
}

// getIntEnv lê uma variável de ambiente numérica. Valores inválidos usam o padrão.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

package handlers

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ThensiB/Task-Recommendation/ai_services"
	"github.com/ThensiB/Task-Recommendation/storage"
	"github.com/ThensiB/Task-Recommendation/utilities"
)

const (
	accessTokenCookie = "access_token"
	tokenLifetime     = 24 * time.Hour
	bcryptCost        = 12
)

var store storage.TaskStore
var recommender *ai_services.Recommender

// Init injeta o repositório e o serviço de recomendação usados pelos
// handlers. Chamado uma vez na inicialização.
func Init(s storage.TaskStore, r *ai_services.Recommender) {
	utilities.LogInfo("Inicializando handlers com o backend selecionado")
	store = s
	recommender = r
}

func jwtSecret() []byte {
	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		// Valor de desenvolvimento; defina SECRET_KEY em produção.
		secret = "your-secret-key-for-jwt-should-be-very-long-and-secure"
	}
	return []byte(secret)
}

// HashPassword gera o hash bcrypt da senha.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("erro ao gerar hash de senha: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword verifica a senha contra o hash armazenado.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CreateAccessToken emite um JWT HS256 com o username como subject.
func CreateAccessToken(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret())
	if err != nil {
		return "", fmt.Errorf("erro ao assinar token: %w", err)
	}
	return signed, nil
}

// parseAccessToken valida o token e devolve o username.
func parseAccessToken(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", t.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return "", fmt.Errorf("token inválido: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("token inválido")
	}
	return claims.Subject, nil
}

// usernameFromRequest extrai o username do cookie de sessão ou, na falta
// dele, do header Authorization. Tolera o prefixo "Bearer ".
func usernameFromRequest(r *http.Request) (string, error) {
	tokenStr := ""
	if cookie, err := r.Cookie(accessTokenCookie); err == nil {
		tokenStr = cookie.Value
	}
	if tokenStr == "" {
		tokenStr = r.Header.Get("Authorization")
	}
	if tokenStr == "" {
		return "", fmt.Errorf("token não fornecido")
	}
	tokenStr = strings.TrimPrefix(tokenStr, "Bearer ")
	return parseAccessToken(tokenStr)
}

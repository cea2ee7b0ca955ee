package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/ThensiB/Task-Recommendation/storage"
	"github.com/ThensiB/Task-Recommendation/utilities"
)

// RegisterHandler registra um usuário novo
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	utilities.LogDebug("Iniciando registro de usuário")

	var req struct {
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utilities.LogError(err, "Erro ao decodificar JSON de registro")
		http.Error(w, "Requisição inválida", http.StatusBadRequest)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Nome de usuário e senha são obrigatórios", http.StatusBadRequest)
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		http.Error(w, "E-mail inválido", http.StatusBadRequest)
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		http.Error(w, "As senhas não coincidem", http.StatusBadRequest)
		return
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		utilities.LogError(err, "Erro ao gerar hash da senha")
		http.Error(w, "Erro interno", http.StatusInternalServerError)
		return
	}

	user, err := store.CreateUser(r.Context(), req.Username, hashed, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			http.Error(w, "Nome de usuário já existe", http.StatusConflict)
			return
		}
		utilities.LogError(err, "Erro ao criar usuário")
		http.Error(w, "Erro ao criar usuário", http.StatusInternalServerError)
		return
	}

	utilities.LogInfo("Usuário registrado com sucesso: %s", user.Username)
	writeJSON(w, http.StatusCreated, map[string]string{
		"username":   user.Username,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	})
}

// LoginHandler autentica o usuário e emite o cookie de sessão
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utilities.LogError(err, "Erro ao decodificar JSON de login")
		http.Error(w, "Requisição inválida", http.StatusBadRequest)
		return
	}

	user, err := store.GetUser(r.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			utilities.LogError(err, "Erro ao buscar usuário no login")
		}
		// Usuário inexistente e senha errada respondem igual.
		http.Error(w, "Usuário ou senha incorretos", http.StatusUnauthorized)
		return
	}
	if !CheckPassword(req.Password, user.Password) {
		http.Error(w, "Usuário ou senha incorretos", http.StatusUnauthorized)
		return
	}

	token, err := CreateAccessToken(user.Username)
	if err != nil {
		utilities.LogError(err, "Erro ao emitir token de acesso")
		http.Error(w, "Erro interno", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(tokenLifetime),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	utilities.LogInfo("Login efetuado: %s", user.Username)
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// LogoutHandler expira o cookie de sessão
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

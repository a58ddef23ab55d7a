package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	mw "mindjournal/internal/middleware"
	"mindjournal/internal/services"
)

type AuthHandler struct {
	auth      *services.AuthService
	jwtSecret []byte
	ttl       time.Duration
	now       services.Clock
}

func NewAuthHandler(auth *services.AuthService, jwtSecret []byte, ttl time.Duration, now services.Clock) *AuthHandler {
	return &AuthHandler{auth: auth, jwtSecret: jwtSecret, ttl: ttl, now: now}
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// Signup godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} authResponse
// @Failure 400 {string} string "Invalid body"
// @Failure 409 {string} string "Email already registered"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	sess, user, err := h.auth.Register(r.Context(), c.Name, c.Email, c.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := h.issueJWT(sess)
	if err != nil {
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: ToUserDTO(user)})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	sess, user, err := h.auth.Login(r.Context(), c.Email, c.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := h.issueJWT(sess)
	if err != nil {
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: ToUserDTO(user)})
}

// Logout ends the session. Tokens are stateless, so the client discards its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := mw.SessionFrom(r.Context())
	h.auth.Logout(&sess)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) issueJWT(sess services.Session) (string, error) {
	now := h.now()
	claims := mw.Claims{
		Admin: sess.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}

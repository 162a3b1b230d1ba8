// Package auth выпускает и проверяет bearer-токены (JWT HS256), которыми клиент
// подтверждает личность на каждом защищённом запросе.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity — то, что зашито в токен и попадает в контекст запроса.
type Identity struct {
	UserID string
	Name   string
}

// TokenIssuer выпускает токен для пользователя.
type TokenIssuer interface {
	Issue(id Identity) (token string, expiresAt time.Time, err error)
}

// TokenVerifier проверяет подпись и срок токена и возвращает зашитую личность.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// Claims — стандартные утверждения плюс id и имя пользователя.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Name   string `json:"name"`
}

// JWTManager реализует TokenIssuer и TokenVerifier на общем секрете.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var (
	_ TokenIssuer   = (*JWTManager)(nil)
	_ TokenVerifier = (*JWTManager)(nil)
)

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *JWTManager) Issue(id Identity) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: id.UserID,
		Name:   id.Name,
	})
	s, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, exp, nil
}

// Verify любые ошибки разбора (подпись, алгоритм, срок) сводит к ErrInvalidToken.
func (m *JWTManager) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrMissingToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.UserID, Name: claims.Name}, nil
}

// BearerToken достаёт токен из заголовка Authorization: Bearer <token>.
func BearerToken(r *http.Request) (string, error) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

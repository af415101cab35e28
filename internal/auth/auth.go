// Package auth проверяет bearer-токены провайдера идентификации и кладет
// текущего пользователя в контекст запроса.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrMissingToken = errors.New("missing authorization token")
	ErrInvalidToken = errors.New("invalid token")
)

type ctxKey struct{}

// Claims - утверждения токена, выпущенного провайдером идентификации.
type Claims struct {
	Admin  bool `json:"admin"`
	Active bool `json:"active"`
	jwt.RegisteredClaims
}

// Authenticator проверяет подпись HS256 и извлекает Actor.
type Authenticator struct {
	secret []byte
	logger *zap.Logger
}

// NewAuthenticator создает новый экземпляр Authenticator.
func NewAuthenticator(secret string, logger *zap.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), logger: logger}
}

// Issue подписывает токен; используется провайдером идентификации и в тестах.
func (a *Authenticator) Issue(actor models.Actor, ttl time.Duration) (string, error) {
	claims := Claims{
		Admin:  actor.Admin,
		Active: actor.Active,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse разбирает значение заголовка Authorization.
func (a *Authenticator) Parse(authHeader string) (models.Actor, error) {
	tokenStr := strings.TrimSpace(authHeader)
	if len(tokenStr) > 7 && strings.EqualFold(tokenStr[:7], "bearer ") {
		tokenStr = strings.TrimSpace(tokenStr[7:])
	}
	if tokenStr == "" {
		return models.Actor{}, ErrMissingToken
	}

	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return models.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid || claims.Subject == "" {
		return models.Actor{}, ErrInvalidToken
	}

	return models.Actor{
		UserID: claims.Subject,
		Admin:  claims.Admin,
		Active: claims.Active,
	}, nil
}

// Middleware требует валидный токен активного пользователя.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := a.Parse(r.Header.Get("Authorization"))
		if err != nil {
			a.reject(w, models.NewUnauthorizedError(err.Error()))
			return
		}
		if !actor.Active {
			a.reject(w, models.NewPermissionError("user is not active"))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

func (a *Authenticator) reject(w http.ResponseWriter, errorResponse *models.ErrorResponse) {
	if err := utils.SendError(w, errorResponse); err != nil {
		a.logger.Warn("failed to encode error response", zap.Error(err))
	}
}

// WithActor кладет пользователя в контекст.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

// ActorFrom достает пользователя из контекста.
func ActorFrom(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(ctxKey{}).(models.Actor)
	return actor, ok
}

package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

type contextKey int

const (
	actorKey contextKey = iota
	requestIDKey
)

const (
	msgMissingToken = "требуется авторизация"
	msgInvalidToken = "недействительный токен"
	msgForbidden    = "доступ запрещен"
)

var (
	errInvalidSubject = errors.New("token subject is not a positive integer")
	errInvalidRole    = errors.New("token role is unknown")
)

// Auth проверяет Bearer JWT (HS256) и кладет пользователя в контекст.
// Идентификатор берется из claim sub или id, число или строка с числом.
func Auth(secret string, logger Logger) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, raw, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				handlers.RespondUnauthorized(w, msgMissingToken)
				return
			}

			claims := jwt.MapClaims{}
			if _, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, keyFunc); err != nil {
				logger.Warn("Auth: invalid token: %v", err)
				handlers.RespondUnauthorized(w, msgInvalidToken)
				return
			}

			actor, err := actorFromClaims(claims)
			if err != nil {
				logger.Warn("Auth: invalid claims: %v", err)
				handlers.RespondUnauthorized(w, msgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRoles пропускает только пользователей с одной из ролей; ставится после Auth
func RequireRoles(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r.Context())
			if !ok {
				handlers.RespondUnauthorized(w, msgMissingToken)
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			handlers.RespondForbidden(w, msgForbidden)
		})
	}
}

// WithActor кладет пользователя в контекст
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor извлекает пользователя из контекста
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

func actorFromClaims(claims jwt.MapClaims) (domain.Actor, error) {
	raw, ok := claims["sub"]
	if !ok {
		raw = claims["id"]
	}

	id, err := normalizeID(raw)
	if err != nil {
		return domain.Actor{}, err
	}

	role, _ := claims["role"].(string)
	actor := domain.Actor{ID: id, Role: domain.Role(role)}
	if !actor.Role.IsValid() {
		return domain.Actor{}, fmt.Errorf("%w: %q", errInvalidRole, role)
	}
	return actor, nil
}

func normalizeID(v interface{}) (int64, error) {
	switch id := v.(type) {
	case float64:
		if id > 0 && id == float64(int64(id)) {
			return int64(id), nil
		}
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err == nil && n > 0 {
			return n, nil
		}
	}
	return 0, errInvalidSubject
}

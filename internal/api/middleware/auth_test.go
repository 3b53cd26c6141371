package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func serveAuth(token string) (*httptest.ResponseRecorder, *domain.Actor) {
	var seen *domain.Actor
	h := Auth(testSecret, logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := GetActor(r.Context())
		if ok {
			seen = &actor
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, seen
}

func TestAuth_Claims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   *domain.Actor
	}{
		{
			name:   "numeric sub",
			claims: jwt.MapClaims{"sub": 42, "role": "customer", "exp": exp},
			want:   &domain.Actor{ID: 42, Role: domain.RoleCustomer},
		},
		{
			name:   "string sub",
			claims: jwt.MapClaims{"sub": "17", "role": "worker", "exp": exp},
			want:   &domain.Actor{ID: 17, Role: domain.RoleWorker},
		},
		{
			name:   "id claim",
			claims: jwt.MapClaims{"id": 3, "role": "admin", "exp": exp},
			want:   &domain.Actor{ID: 3, Role: domain.RoleAdmin},
		},
		{
			name:   "unknown role",
			claims: jwt.MapClaims{"sub": 42, "role": "owner", "exp": exp},
		},
		{
			name:   "non-numeric sub",
			claims: jwt.MapClaims{"sub": "abc", "role": "customer", "exp": exp},
		},
		{
			name:   "expired",
			claims: jwt.MapClaims{"sub": 42, "role": "customer", "exp": time.Now().Add(-time.Hour).Unix()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, actor := serveAuth(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), tt.claims))
			if tt.want == nil {
				assert.Equal(t, http.StatusUnauthorized, rec.Code)
				assert.Nil(t, actor)
				return
			}
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.want, actor)
		})
	}
}

func TestAuth_RejectsBadTokens(t *testing.T) {
	claims := jwt.MapClaims{"sub": 1, "role": "admin"}

	rec, _ := serveAuth("")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serveAuth(signToken(t, jwt.SigningMethodHS256, []byte("other-secret"), claims))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serveAuth(signToken(t, jwt.SigningMethodHS512, []byte(testSecret), claims))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	h := RequireRoles(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name  string
		actor *domain.Actor
		want  int
	}{
		{name: "admin", actor: &domain.Actor{ID: 1, Role: domain.RoleAdmin}, want: http.StatusNoContent},
		{name: "worker", actor: &domain.Actor{ID: 2, Role: domain.RoleWorker}, want: http.StatusForbidden},
		{name: "anonymous", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/shopOpenTime", nil)
			if tt.actor != nil {
				req = req.WithContext(WithActor(req.Context(), *tt.actor))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

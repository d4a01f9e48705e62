package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("organizer-secret")

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func protected(t *testing.T, roles ...Role) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserIDFromContext(r.Context())
		assert.NoError(t, err)
		assert.Equal(t, 7, userID)
		w.WriteHeader(http.StatusOK)
	})
	return Authenticate(testSecret)(RequireRole(roles...)(next))
}

func TestAuthenticateAndRequireRole(t *testing.T) {
	valid := func(role string) string {
		return sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"user_id": 7, "role": role, "exp": time.Now().Add(time.Hour).Unix(),
		})
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"user_id": 7, "role": "organizer"}), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"user_id": 7, "role": "organizer", "exp": time.Now().Add(-time.Minute).Unix(),
		}), http.StatusUnauthorized},
		{"no user id", "Bearer " + sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"role": "organizer"}), http.StatusUnauthorized},
		{"no role", "Bearer " + sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"user_id": 7}), http.StatusUnauthorized},
		{"player", "Bearer " + valid("player"), http.StatusForbidden},
		{"organizer", "Bearer " + valid("organizer"), http.StatusOK},
		{"admin", "Bearer " + valid("admin"), http.StatusOK},
	}

	handler := protected(t, RoleOrganizer, RoleAdmin)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/tournaments", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want != http.StatusOK {
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}

func TestParseTokenRejectsNonHMAC(t *testing.T) {
	token := sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"user_id": 1, "role": "admin"})
	_, err := parseToken(token, testSecret)
	assert.Error(t, err)
}

func TestUserIDFromClaims(t *testing.T) {
	tests := []struct {
		name    string
		claims  jwt.MapClaims
		want    int
		wantErr bool
	}{
		{"number", jwt.MapClaims{"user_id": float64(12)}, 12, false},
		{"string", jwt.MapClaims{"user_id": "12"}, 12, false},
		{"fraction", jwt.MapClaims{"user_id": 1.5}, 0, true},
		{"zero", jwt.MapClaims{"user_id": float64(0)}, 0, true},
		{"bool", jwt.MapClaims{"user_id": true}, 0, true},
		{"missing", jwt.MapClaims{}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := userIDFromClaims(tt.claims)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

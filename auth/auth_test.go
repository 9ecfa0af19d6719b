package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snake-landing/models"
)

type finder map[string]*models.Player

func (f finder) FindPlayer(id string) (*models.Player, bool) {
	p, ok := f[id]
	return p, ok
}

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)

	token, err := issuer.GenerateToken("p1", "alice")
	require.NoError(t, err)

	claims, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "p1", claims.PlayerID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "p1", claims.Subject)
}

func TestIssuer_RejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	other := NewIssuer("other", time.Hour)

	token, err := other.GenerateToken("p1", "alice")
	require.NoError(t, err)
	_, err = issuer.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, err = issuer.GenerateToken("p1", "alice")
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := ExtractTokenFromHeader("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = ExtractTokenFromHeader("")
	assert.ErrorIs(t, err, ErrMissingToken)
	_, err = ExtractTokenFromHeader("Basic abc")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = ExtractTokenFromHeader("Bearer ")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestMiddleware(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	alice := &models.Player{ID: "p1", Username: "alice"}
	players := finder{"p1": alice}

	var seen *models.Player
	h := Middleware(issuer, players)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PlayerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	good, err := issuer.GenerateToken("p1", "alice")
	require.NoError(t, err)
	gone, err := issuer.GenerateToken("p2", "bob")
	require.NoError(t, err)
	renamed, err := issuer.GenerateToken("p1", "mallory")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"header", "Bearer " + good, "", http.StatusNoContent},
		{"query", "", good, http.StatusNoContent},
		{"missing", "", "", http.StatusUnauthorized},
		{"malformed", "Token " + good, "", http.StatusUnauthorized},
		{"disconnected player", "Bearer " + gone, "", http.StatusUnauthorized},
		{"username mismatch", "Bearer " + renamed, "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.query != "" {
				q := req.URL.Query()
				q.Set("token", tt.query)
				req.URL.RawQuery = q.Encode()
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				assert.Same(t, alice, seen)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

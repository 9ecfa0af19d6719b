package auth

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"snake-landing/models"
)

// PlayerFinder resolves a player ID to a currently connected player.
type PlayerFinder interface {
	FindPlayer(playerID string) (*models.Player, bool)
}

type contextKey struct{}

// Middleware validates the session token and stores the caller in the
// request context. The player must still be connected and the username in the
// token must match the live connection.
func Middleware(issuer *Issuer, players PlayerFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := ExtractTokenFromHeader(tokenFromRequest(r))
			if err != nil {
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}

			claims, err := issuer.ValidateToken(tokenString)
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
				return
			}

			player, ok := players.FindPlayer(claims.PlayerID)
			if !ok {
				http.Error(w, "Unauthorized: Player not found or inactive", http.StatusUnauthorized)
				return
			}
			if player.Username != claims.Username {
				http.Error(w, "Unauthorized: Username mismatch", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPlayer(r.Context(), player)))
		})
	}
}

func WithPlayer(ctx context.Context, player *models.Player) context.Context {
	return context.WithValue(ctx, contextKey{}, player)
}

// PlayerFromContext returns the player stored by Middleware.
func PlayerFromContext(ctx context.Context) (*models.Player, bool) {
	player, ok := ctx.Value(contextKey{}).(*models.Player)
	return player, ok && player != nil
}

// tokenFromRequest prefers the Authorization header and falls back to the
// token query parameter, which is all a browser WebSocket can send.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return h
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return "Bearer " + token
	}
	return ""
}

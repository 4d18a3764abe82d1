package auth

import (
	"chat-relay/errors"
	"context"
	"log/slog"
	"net/http"
)

// CookieName holds the signed identity token.
const CookieName = "X-Authorization"

type contextKey string

const participantKey contextKey = "participant"

// RequireIdentity rejects requests without a valid identity cookie with 401,
// before the wrapped handler runs. The participant name is injected into the request context.
func RequireIdentity(issuer *TokenIssuer, log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		participant, err := Identify(issuer, r)
		if err != nil {
			log.Debug("Rejected anonymous request", "path", r.URL.Path, "error", err)
			http.Error(w, err.Error(), errors.MapToHTTPStatus(err))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithParticipant(r.Context(), participant)))
	})
}

// Identify returns the participant named by the request's identity cookie.
func Identify(issuer *TokenIssuer, r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", errors.ErrInvalidIdentity
	}
	claims, err := issuer.ValidateToken(cookie.Value)
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}

// IdentityCookie builds the http-only cookie carrying token.
func IdentityCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func WithParticipant(ctx context.Context, participant string) context.Context {
	return context.WithValue(ctx, participantKey, participant)
}

func ParticipantFromContext(ctx context.Context) (string, bool) {
	participant, ok := ctx.Value(participantKey).(string)
	return participant, ok && participant != ""
}

package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const participantContextKey contextKey = "participant"

// Имена claims в токене участника.
const (
	jwtClaimSessionID     = "session_id"
	jwtClaimParticipantID = "participant_id"
)

// Authenticate проверяет Bearer-токен участника и кладет его claims в
// контекст. Это адресация внутри сессии, а не аутентификация личности:
// токен выдается при create/join.
func Authenticate(jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return jwtSecret, nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), participantContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func claimString(ctx context.Context, name string) (string, error) {
	claims, ok := ctx.Value(participantContextKey).(jwt.MapClaims)
	if !ok {
		return "", errors.New("participant claims not found in context")
	}
	value, ok := claims[name]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", name)
	}
	str, ok := value.(string)
	if !ok || str == "" {
		return "", fmt.Errorf("invalid type for '%s' claim: expected non-empty string, got %T", name, value)
	}
	return str, nil
}

func GetSessionIDFromContext(ctx context.Context) (string, error) {
	return claimString(ctx, jwtClaimSessionID)
}

func GetParticipantIDFromContext(ctx context.Context) (string, error) {
	return claimString(ctx, jwtClaimParticipantID)
}

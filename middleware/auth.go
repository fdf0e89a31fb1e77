package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"fitshare/errs"
	"fitshare/globals"
	"fitshare/utils"
)

// JWT claims. The registered ID carries the token id used for revocation.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Authenticator issues and verifies session tokens.
type Authenticator struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationChecker
	log     *slog.Logger
	now     func() time.Time
}

// NewAuthenticator builds an Authenticator. revoked may be nil, in which
// case logout cannot invalidate tokens before they expire.
func NewAuthenticator(secret []byte, ttl time.Duration, revoked RevocationChecker, log *slog.Logger) *Authenticator {
	return &Authenticator{secret: secret, ttl: ttl, revoked: revoked, log: log, now: time.Now}
}

// IssueToken signs a token for userID.
func (a *Authenticator) IssueToken(userID string) (string, *Claims, error) {
	now := a.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// ValidateToken parses raw and checks its signature, expiry and revocation.
func (a *Authenticator) ValidateToken(ctx context.Context, raw string) (*Claims, error) {
	if raw == "" {
		return nil, errs.Unauthorized("missing token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errs.Unauthorized("token expired")
		}
		return nil, errs.Unauthorized("invalid token")
	}
	if claims.UserID == "" {
		return nil, errs.Unauthorized("invalid token")
	}

	if a.revoked != nil {
		revoked, err := a.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, errs.Internal("checking token revocation").WithCause(err)
		}
		if revoked {
			return nil, errs.Unauthorized("token revoked")
		}
	}
	return claims, nil
}

// Authenticate rejects requests without a valid bearer token and stores the
// user id and claims in the request context. Websocket upgrades may pass the
// token as the "token" query parameter instead, since browsers cannot set
// headers on them.
func (a *Authenticator) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		raw, err := tokenFromRequest(r)
		if err != nil {
			utils.RespondWithError(w, a.log, err)
			return
		}
		claims, err := a.ValidateToken(r.Context(), raw)
		if err != nil {
			utils.RespondWithError(w, a.log, err)
			return
		}
		next(w, r.WithContext(withClaims(r.Context(), claims)), ps)
	}
}

// OptionalAuth attaches the user when a valid token is present and proceeds
// regardless.
func (a *Authenticator) OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if raw, err := tokenFromRequest(r); err == nil {
			if claims, err := a.ValidateToken(r.Context(), raw); err == nil {
				r = r.WithContext(withClaims(r.Context(), claims))
			}
		}
		next(w, r, ps)
	}
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(globals.ClaimsKey).(*Claims)
	return c, ok
}

func withClaims(ctx context.Context, c *Claims) context.Context {
	ctx = context.WithValue(ctx, globals.UserIDKey, c.UserID)
	return context.WithValue(ctx, globals.ClaimsKey, c)
}

func tokenFromRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if websocket.IsWebSocketUpgrade(r) {
			if q := r.URL.Query().Get("token"); q != "" {
				return q, nil
			}
		}
		return "", errs.Unauthorized("missing token")
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", errs.Unauthorized("invalid token format")
	}
	return strings.TrimSpace(raw), nil
}

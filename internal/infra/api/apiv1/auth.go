package apiv1

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mlm-membership-platform/internal/domain/model"
	"mlm-membership-platform/internal/domain/ports/adapter"
	"mlm-membership-platform/internal/infra/logging"

	"github.com/golang-jwt/jwt/v5"
)

// Compile-time check
var _ adapter.TokenIssuer = (*AuthManager)(nil)

type sessionCtxKey struct{}

// SessionClaims is the JWT payload for a logged-in member.
type SessionClaims struct {
	MemberID int64  `json:"member_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthManager mints and verifies HS256 session tokens.
type AuthManager struct {
	secret []byte
	ttl    time.Duration
}

func NewAuthManager(secret string, ttl time.Duration) *AuthManager {
	return &AuthManager{secret: []byte(secret), ttl: ttl}
}

func (a *AuthManager) Mint(memberID int64, role string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		MemberID: memberID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(memberID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *AuthManager) parse(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// session claims in the request context. The member id is also put on the
// context so downstream log lines carry it.
func (a *AuthManager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		claims, err := a.parse(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), sessionCtxKey{}, claims)
		ctx = logging.WithMemberID(ctx, claims.MemberID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must be mounted inside RequireAuth.
func (a *AuthManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := SessionFrom(r.Context())
		if claims == nil || claims.Role != model.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFrom returns the claims stored by RequireAuth, or nil.
func SessionFrom(ctx context.Context) *SessionClaims {
	claims, _ := ctx.Value(sessionCtxKey{}).(*SessionClaims)
	return claims
}

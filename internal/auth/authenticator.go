package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/DeafMist/federal-archive/backend/internal/logger"
	"github.com/DeafMist/federal-archive/backend/internal/metrics"
	"github.com/DeafMist/federal-archive/backend/internal/models"
)

// Provider error codes returned verbatim to the client.
const (
	CodeInvalidCredential   = "auth/invalid-credential"
	CodeOperationNotAllowed = "auth/operation-not-allowed"
	CodeInvalidEmail        = "auth/invalid-email"
)

// Error is a sign-in failure. Its message is the provider code.
type Error struct {
	Code string
}

func (e *Error) Error() string { return e.Code }

func (e *Error) Unwrap() error { return models.ErrUnauthenticated }

// Identity is who a session is signed in as.
type Identity struct {
	UID       string `json:"uid"`
	Anonymous bool   `json:"anonymous"`
	Email     string `json:"email,omitempty"`
}

// Claims are carried in session tokens.
type Claims struct {
	SessionID string `json:"sid"`
	UserID    string `json:"uid"`
	Anonymous bool   `json:"anon"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Identity extracts the signed-in identity.
func (c *Claims) Identity() Identity {
	return Identity{UID: c.UserID, Anonymous: c.Anonymous, Email: c.Email}
}

// Options configures an Authenticator.
type Options struct {
	AdminEmail        string
	AdminPasswordHash string
	SigningKey        string
	TokenTTL          time.Duration
	Revocations       RevocationList
	Log               *slog.Logger
	Metrics           *metrics.Metrics
}

// Authenticator verifies the administrator's credentials and issues and validates
// session tokens. One instance serves the whole process.
type Authenticator struct {
	adminEmail string
	adminHash  []byte
	signingKey []byte
	ttl        time.Duration
	revoked    RevocationList
	log        *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewAuthenticator builds an authenticator. Without admin credentials every password
// sign-in is refused.
func NewAuthenticator(opts Options) *Authenticator {
	if opts.Revocations == nil {
		opts.Revocations = NewMemoryRevocations()
	}
	if opts.Log == nil {
		opts.Log = logger.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 12 * time.Hour
	}
	return &Authenticator{
		adminEmail: strings.ToLower(strings.TrimSpace(opts.AdminEmail)),
		adminHash:  []byte(opts.AdminPasswordHash),
		signingKey: []byte(opts.SigningKey),
		ttl:        opts.TokenTTL,
		revoked:    opts.Revocations,
		log:        opts.Log,
		metrics:    opts.Metrics,
		now:        time.Now,
	}
}

// HashPassword produces a bcrypt hash for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword verifies the administrator's credentials.
func (a *Authenticator) CheckPassword(email, password string) (Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if a.adminEmail == "" {
		return Identity{}, a.fail(CodeOperationNotAllowed)
	}
	if email == "" || !strings.Contains(email, "@") {
		return Identity{}, a.fail(CodeInvalidEmail)
	}

	err := bcrypt.CompareHashAndPassword(a.adminHash, []byte(password))
	if email != a.adminEmail || err != nil {
		if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			a.log.Error("verify admin password", slog.Any("err", err))
		}
		return Identity{}, a.fail(CodeInvalidCredential)
	}

	return Identity{UID: AdminUID(a.adminEmail), Email: a.adminEmail}, nil
}

func (a *Authenticator) fail(code string) error {
	a.metrics.LoginFailures.Inc()
	return &Error{Code: code}
}

// AdminUID is the stable uid of the administrator account.
func AdminUID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("archive-admin:"+strings.ToLower(email))).String()
}

// IssueToken signs a token binding sessionID to id.
func (a *Authenticator) IssueToken(sessionID string, id Identity) (string, *Claims, error) {
	now := a.now()
	claims := &Claims{
		SessionID: sessionID,
		UserID:    id.UID,
		Anonymous: id.Anonymous,
		Email:     id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.signingKey)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// VerifyToken validates signature, expiry and revocation.
func (a *Authenticator) VerifyToken(ctx context.Context, token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return a.signingKey, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token expired: %w", models.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("invalid token: %w", models.ErrUnauthenticated)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return nil, fmt.Errorf("invalid token claims: %w", models.ErrUnauthenticated)
	}

	revoked, err := a.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("token revoked: %w", models.ErrUnauthenticated)
	}
	return claims, nil
}

// Revoke invalidates the token described by claims for the rest of its lifetime.
func (a *Authenticator) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return a.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(a.now()))
}

// NewClient creates a per-session provider handle.
func (a *Authenticator) NewClient() *Client {
	return &Client{auth: a, listeners: map[int]func(*Identity){}}
}

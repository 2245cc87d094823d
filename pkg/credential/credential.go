package credential

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName = "session_token"
	DateLayout = "2006-01-02"
)

var ErrMissingSecret = errors.New("credential: signing secret is empty")

// Claims is the quota record a caller carries between requests.
type Claims struct {
	IP           string `json:"ip"`
	Scope        string `json:"scope"`
	MessagesUsed int    `json:"messages_used"`
	Date         string `json:"date"`
	jwt.RegisteredClaims
}

// Matches reports whether the credential was issued for exactly this identity, scope and day.
func (c *Claims) Matches(identity, scope, date string) bool {
	return c != nil && c.IP == identity && c.Scope == scope && c.Date == date
}

// Manager signs and verifies HS256 credentials.
type Manager struct {
	secret []byte
	now    func() time.Time
}

func NewManager(secret string) (*Manager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Manager{secret: []byte(secret), now: time.Now}, nil
}

// WithClock replaces the time source. Used by tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Issue seals a credential that expires at the next UTC midnight.
func (m *Manager) Issue(identity, scope string, usage int, date string) (string, time.Time, error) {
	now := m.now().UTC()
	expiresAt := NextReset(now)

	claims := Claims{
		IP:           identity,
		Scope:        scope,
		MessagesUsed: usage,
		Date:         date,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify returns the claims of a valid credential, or nil when the token is
// malformed, forged, signed with another algorithm or expired.
func (m *Manager) Verify(token string) *Claims {
	if token == "" {
		return nil
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil
	}
	if claims.MessagesUsed < 0 {
		return nil
	}
	return claims
}

// Today is the UTC calendar date of t.
func Today(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// NextReset is the first UTC midnight strictly after t.
func NextReset(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

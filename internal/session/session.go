// Package session manages the stored login of the command-line client and
// derives the board identity from it.
//
// A login is either a bearer token (a JWT whose sub, uid or user_id claim
// names the identity) or a bare identity for servers without auth. The
// KANBAN_TOKEN environment variable overrides whatever is on disk.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	credFileName = "credentials.json"

	// EnvToken overrides the stored credentials.
	EnvToken = "KANBAN_TOKEN"
)

// ErrNotLoggedIn is returned when neither the environment nor the data
// directory holds credentials.
var ErrNotLoggedIn = errors.New("not logged in")

// Credentials is the persisted login.
type Credentials struct {
	Token     string     `json:"token,omitempty"`
	Identity  string     `json:"identity"`
	Source    string     `json:"source"` // "env" | "file"
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the token carried an expiry that has passed.
func (c *Credentials) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// Store reads and writes credentials under a data directory.
type Store struct {
	dir    string
	secret []byte
	now    func() time.Time
}

// NewStore creates a store rooted at dir. When secret is non-empty tokens are
// verified as HS256; otherwise their claims are read without verification and
// the remote server is trusted to enforce access.
func NewStore(dir string, secret []byte) *Store {
	return &Store{dir: dir, secret: secret, now: time.Now}
}

// Path returns the credentials file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, credFileName)
}

// Login validates token and/or identity and writes the credentials file.
// An explicit identity wins over the token's claims.
func (s *Store) Login(token, identity string) (*Credentials, error) {
	creds, err := s.resolve(stripBearer(strings.TrimSpace(token)), strings.TrimSpace(identity))
	if err != nil {
		return nil, err
	}
	creds.Source = "file"
	creds.CreatedAt = s.now()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.WriteFile(s.Path(), data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write credentials: %w", err)
	}
	return creds, nil
}

// Logout removes the credentials file. Logging out twice is not an error.
func (s *Store) Logout() error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// Current returns the active credentials, preferring KANBAN_TOKEN over the
// file. Returns ErrNotLoggedIn when there are none.
func (s *Store) Current() (*Credentials, error) {
	if env := strings.TrimSpace(os.Getenv(EnvToken)); env != "" {
		creds, err := s.resolve(stripBearer(env), "")
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvToken, err)
		}
		creds.Source = "env"
		return creds, nil
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if creds.Identity == "" {
		return nil, fmt.Errorf("credentials file has no identity")
	}
	return &creds, nil
}

// Identity returns the identity of the active credentials. Expired tokens
// count as logged out.
func (s *Store) Identity() (string, error) {
	creds, err := s.Current()
	if err != nil {
		return "", err
	}
	if creds.Expired(s.now()) {
		return "", fmt.Errorf("token expired at %s: %w", creds.ExpiresAt.Format(time.RFC3339), ErrNotLoggedIn)
	}
	return creds.Identity, nil
}

func (s *Store) resolve(token, identity string) (*Credentials, error) {
	if token == "" && identity == "" {
		return nil, fmt.Errorf("a token or an identity is required")
	}
	creds := &Credentials{Token: token, Identity: identity}
	if token == "" {
		return creds, nil
	}

	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		creds.ExpiresAt = &t
	}
	if creds.Identity == "" {
		creds.Identity = identityFromClaims(claims)
	}
	if creds.Identity == "" {
		return nil, fmt.Errorf("token has no sub, uid or user_id claim")
	}
	return creds, nil
}

func (s *Store) parse(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if len(s.secret) == 0 {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("failed to parse token: %w", err)
		}
		return claims, nil
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func identityFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"sub", "uid", "user_id"} {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}

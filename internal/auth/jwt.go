package auth

import (
	"errors"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidTokenType = errors.New("invalid token type")
)

const tokenTypeAccess = "access"

type Claims struct {
	UserID    string `json:"sub"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	JTI       string `json:"jti"`
	jwt.RegisteredClaims
}

// UserRole decodes the role claim. Unknown roles come back as zero.
func (c Claims) UserRole() user.Role {
	r, err := user.ParseRole(c.Role)
	if err != nil {
		return 0
	}
	return r
}

// AccessToken is what login hands back to the caller.
type AccessToken struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

type Manager struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewManager(secret string, accessTTL time.Duration) *Manager {
	return &Manager{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

func (m *Manager) GenerateAccessToken(u user.User) (AccessToken, error) {
	now := m.now().UTC()
	jti := uuid.NewString()
	expiresAt := now.Add(m.accessTTL)

	claims := Claims{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role.String(),
		TokenType: tokenTypeAccess,
		JTI:       jti,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   u.ID,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return AccessToken{}, err
	}

	return AccessToken{Token: signed, JTI: jti, ExpiresAt: expiresAt}, nil
}

func (m *Manager) parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (m *Manager) VerifyAccessToken(tokenStr string) (*Claims, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != tokenTypeAccess {
		return nil, ErrInvalidTokenType
	}
	if claims.JTI == "" || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

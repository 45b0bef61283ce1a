package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/Nixie-Tech-LLC/memo/internal/model"
)

// TokenTTL is the lifetime of every issued token.
const TokenTTL = 7 * 24 * time.Hour

const bearerPrefix = "Bearer "

var (
	ErrTokenMissing     = errors.New("token missing")
	ErrTokenInvalid     = errors.New("token invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenUnsupported = errors.New("token unsupported")
)

// Claims is the signed payload. Subject mirrors UserID as a decimal string.
type Claims struct {
	UserID int    `json:"uid"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// TokenCodec signs and verifies identity tokens with a process-wide HMAC secret.
// It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), now: time.Now}
}

// Issue signs a token embedding id that expires TokenTTL from now.
func (tc *TokenCodec) Issue(id Identity) (string, error) {
	now := tc.now()
	claims := Claims{
		UserID: id.UserID,
		Role:   string(id.Role),
		StandardClaims: jwt.StandardClaims{
			Subject:   strconv.Itoa(id.UserID),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(TokenTTL).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.secret)
}

// Decode verifies signature and expiry and returns the embedded identity.
func (tc *TokenCodec) Decode(raw string) (Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenUnsupported
		}
		return tc.secret, nil
	})
	if err != nil {
		return Identity{}, classify(err)
	}

	role := model.Role(claims.Role)
	if claims.UserID <= 0 || !role.Valid() || claims.ExpiresAt == 0 ||
		claims.Subject != strconv.Itoa(claims.UserID) {
		return Identity{}, ErrTokenUnsupported
	}
	return Identity{UserID: claims.UserID, Role: role}, nil
}

func classify(err error) error {
	var ve *jwt.ValidationError
	if !errors.As(err, &ve) {
		return ErrTokenInvalid
	}
	switch {
	case ve.Errors&jwt.ValidationErrorMalformed != 0:
		return ErrTokenInvalid
	case ve.Errors&jwt.ValidationErrorUnverifiable != 0:
		return ErrTokenUnsupported
	case ve.Errors&jwt.ValidationErrorSignatureInvalid != 0:
		return ErrTokenInvalid
	case ve.Errors&jwt.ValidationErrorExpired != 0:
		return ErrTokenExpired
	default:
		return ErrTokenInvalid
	}
}

// StripPrefix extracts the raw token from an Authorization header value.
func StripPrefix(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrTokenMissing
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if raw == "" {
		return "", ErrTokenMissing
	}
	return raw, nil
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// Token lifetime for issued sessions.
const TokenTTL = time.Hour

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Identity is the authenticated subject carried inside a token.
type Identity struct {
	ID       int
	Username string
	Email    string
}

// HashPassword produces a salted bcrypt hash. The result is one-way;
// only VerifyPassword can check it.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether plain matches the stored hash. Any
// mismatch or malformed hash yields false, never an error.
func VerifyPassword(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// GenerateToken issues an HS256 token carrying the identity, valid for
// TokenTTL from now.
func GenerateToken(identity Identity, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       identity.ID,
		"username": identity.Username,
		"email":    identity.Email,
		"exp":      time.Now().Add(TokenTTL).Unix(),
	})
	return token.SignedString(secret)
}

// ParseToken verifies signature and expiry and returns the embedded
// identity. Expired tokens report ErrTokenExpired; everything else that
// fails verification reports ErrTokenInvalid.
func ParseToken(tokenString string, secret []byte) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrTokenInvalid
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, ErrTokenInvalid
	}

	id, ok := claims["id"].(float64)
	if !ok {
		return Identity{}, ErrTokenInvalid
	}
	username, ok := claims["username"].(string)
	if !ok {
		return Identity{}, ErrTokenInvalid
	}
	email, ok := claims["email"].(string)
	if !ok {
		return Identity{}, ErrTokenInvalid
	}

	return Identity{ID: int(id), Username: username, Email: email}, nil
}

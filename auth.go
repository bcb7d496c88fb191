package main

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminTokenExpiry = 24 * time.Hour
	bcryptCost       = 12
)

var (
	errAdminDisabled = errors.New("admin access disabled")
	errBadPassword   = errors.New("incorrect password")
	errBadToken      = errors.New("invalid admin token")
)

// AdminAuth gates the shared admin password. The password itself is only
// held as a bcrypt hash; a successful login yields a signed token so an
// admin can re-auth after a reconnect without resending the password.
// Tokens are signed with a per-process secret and die with the process,
// like the rest of the world state.
type AdminAuth struct {
	passHash  []byte // nil when no admin password is configured
	jwtSecret []byte
}

// NewAdminAuth hashes the shared password at startup. An empty password
// disables admin access entirely.
func NewAdminAuth(password string) *AdminAuth {
	a := &AdminAuth{jwtSecret: make([]byte, 32)}
	if _, err := rand.Read(a.jwtSecret); err != nil {
		panic("failed to generate admin token secret: " + err.Error())
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
		if err != nil {
			panic("failed to hash admin password: " + err.Error())
		}
		a.passHash = hash
	}
	return a
}

// Authenticate checks the shared password and returns an admin token
func (a *AdminAuth) Authenticate(password string) (string, error) {
	if a.passHash == nil {
		return "", errAdminDisabled
	}
	if err := bcrypt.CompareHashAndPassword(a.passHash, []byte(password)); err != nil {
		return "", errBadPassword
	}
	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(adminTokenExpiry).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ValidateToken verifies a previously issued admin token
func (a *AdminAuth) ValidateToken(tokenStr string) error {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadToken
		}
		return a.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return errBadToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["role"] != "admin" {
		return errBadToken
	}
	return nil
}

// Package auth validates bearer tokens issued by the identity service. The
// core never issues tokens; it runs validation-only, with an RSA public key
// preferred and an HMAC secret as the legacy fallback.
package auth

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds token validation configuration.
type Config struct {
	// PublicKeyPEM is a PEM-encoded RSA public key (RS256).
	PublicKeyPEM string
	// Secret is the HMAC-SHA256 symmetric key used when no public key is set.
	Secret string
	// Issuer, when non-empty, is required to match the token's iss claim.
	Issuer string
}

// Validator validates platform JWTs.
type Validator struct {
	config    Config
	publicKey *rsa.PublicKey
}

// NewValidator creates a Validator from the configuration.
func NewValidator(cfg Config) (*Validator, error) {
	v := &Validator{config: cfg}
	switch {
	case cfg.PublicKeyPEM != "":
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("auth: parse RSA public key: %w", err)
		}
		v.publicKey = pub
	case cfg.Secret != "":
	default:
		return nil, fmt.Errorf("auth: either PublicKeyPEM or Secret is required")
	}
	return v, nil
}

// ValidateToken parses and validates a token string and returns its claims.
func (v *Validator) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	keyFunc := func(token *jwt.Token) (any, error) {
		if v.publicKey != nil {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return v.publicKey, nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(v.config.Secret), nil
	}

	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("auth: token not valid")
	}
	return claims, nil
}

// LoadKeyFromFile reads a PEM key file.
func LoadKeyFromFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("auth: read key file %s: %w", path, err)
	}
	return data, nil
}

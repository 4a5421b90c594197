// internal/idp/token.go
package idp

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionTTL is how long a minted access token stays valid.
const sessionTTL = time.Hour

// mintAccessToken issues an HS256 access token for the account.
func (p *Provider) mintAccessToken(acct *account, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   acct.ID,
		"email": acct.Email,
		"iss":   "donorlink-idp",
		"iat":   now.Unix(),
		"exp":   now.Add(sessionTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken parses and validates a token minted by this provider and
// returns the subject account id.
func (p *Provider) VerifyAccessToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid access token")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("access token subject: %w", err)
	}
	return sub, nil
}

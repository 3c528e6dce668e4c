package visitor

import (
	"fmt"
	"time"

	"github.com/JKPrasad01/FoodAppFrontend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// Claims identifies one browser/device talking to the storefront. The visitor
// id keys the per-visitor client and its persisted state.
type Claims struct {
	VisitorID uuid.UUID `json:"visitor_id"`
	jwt.RegisteredClaims
}

// Mint issues a signed visitor token valid for cfg.TTL.
func Mint(cfg config.VisitorConfig, now time.Time, visitorID uuid.UUID) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("visitor secret is required")
	}
	if cfg.Issuer == "" {
		return "", fmt.Errorf("visitor issuer is required")
	}
	if cfg.TTL <= 0 {
		return "", fmt.Errorf("visitor ttl must be positive")
	}
	if visitorID == uuid.Nil {
		return "", fmt.Errorf("visitor id is required")
	}

	claims := Claims{
		VisitorID: visitorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   visitorID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing visitor token: %w", err)
	}
	return signed, nil
}

// Parse validates the token string and returns typed claims.
func Parse(cfg config.VisitorConfig, tokenString string) (*Claims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("visitor secret is required")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return nil, err
	}
	if claims.VisitorID == uuid.Nil {
		return nil, fmt.Errorf("visitor token missing visitor_id")
	}

	return claims, nil
}

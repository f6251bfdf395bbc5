package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// TokenConfig carries the signing secret and token lifetimes.
type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenPair is returned to clients on register, login and refresh. Expiry
// fields are unix seconds.
type TokenPair struct {
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token"`
	AccessTokenExpiresAt  int64  `json:"access_token_expires_at"`
	RefreshTokenExpiresAt int64  `json:"refresh_token_expires_at"`
}

func generateToken(userID uint, email string, tokenType TokenType, ttl time.Duration, secret string) (string, time.Time, error) {
	now := time.Now()
	expirationTime := now.Add(ttl)

	claims := &Claims{
		UserID: userID,
		Email:  email,
		Type:   string(tokenType),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expirationTime, nil
}

// Generate access token
func GenerateAccessToken(userID uint, email string, cfg TokenConfig) (string, time.Time, error) {
	return generateToken(userID, email, AccessToken, cfg.AccessTTL, cfg.Secret)
}

// Generate refresh token
func GenerateRefreshToken(userID uint, email string, cfg TokenConfig) (string, time.Time, error) {
	return generateToken(userID, email, RefreshToken, cfg.RefreshTTL, cfg.Secret)
}

// Generate both tokens
func GenerateTokenPair(userID uint, email string, cfg TokenConfig) (*TokenPair, error) {
	accessToken, accessExp, err := GenerateAccessToken(userID, email, cfg)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExp, err := GenerateRefreshToken(userID, email, cfg)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  accessExp.Unix(),
		RefreshTokenExpiresAt: refreshExp.Unix(),
	}, nil
}

// Validate token and return claims
func ValidateToken(tokenString, jwtSecret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// ValidateTokenOfType additionally requires the token to be of the given type.
func ValidateTokenOfType(tokenString, jwtSecret string, tokenType TokenType) (*Claims, error) {
	claims, err := ValidateToken(tokenString, jwtSecret)
	if err != nil {
		return nil, err
	}
	if claims.Type != string(tokenType) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return []byte(secret), nil
}

// SignToken issues an HS256 token carrying the user id and username.
func SignToken(userID int, username string) (string, error) {
	secret, err := jwtSecret()
	if err != nil {
		return "", err
	}

	expiresIn, err := time.ParseDuration(GetEnv("JWT_EXPIRES_IN", "24h"))
	if err != nil {
		return "", ErrorHandler(err, "invalid JWT_EXPIRES_IN")
	}

	claims := jwt.MapClaims{
		"uid":  userID,
		"user": username,
		"exp":  jwt.NewNumericDate(time.Now().Add(expiresIn)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", ErrorHandler(err, "failed to sign token")
	}
	return signed, nil
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(tokenString string) (jwt.MapClaims, error) {
	secret, err := jwtSecret()
	if err != nil {
		return nil, err
	}

	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

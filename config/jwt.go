package config

import (
	"os"
	"time"
)

var JWTSecret []byte
var JWTExpiration time.Duration

func init() {
	loadJWT()
}

// loadJWT reads the token settings from the environment. The fallback secret
// only exists so a fresh checkout boots; any deployment sets JWT_SECRET.
func loadJWT() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "campus-news-dev-secret"
	}
	JWTSecret = []byte(secret)

	JWTExpiration = 24 * time.Hour
	if v := os.Getenv("JWT_EXPIRATION"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			JWTExpiration = parsed
		}
	}
}

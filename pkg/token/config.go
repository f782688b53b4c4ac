package token

import "time"

type Config struct {
	AccessSecret  string        `env:"JWT_SECRET,required"`                          // AccessSecret signs access and MFA challenge tokens.
	AccessTTL     time.Duration `env:"JWT_EXPIRES_IN" envDefault:"15m"`              // AccessTTL is the access token lifetime.
	RefreshSecret string        `env:"JWT_REFRESH_SECRET,required"`                  // RefreshSecret signs refresh tokens; must differ from AccessSecret.
	RefreshTTL    time.Duration `env:"JWT_REFRESH_EXPIRES_IN" envDefault:"168h"`     // RefreshTTL is the refresh token lifetime (7 days).
	ChallengeTTL  time.Duration `env:"JWT_MFA_CHALLENGE_EXPIRES_IN" envDefault:"5m"` // ChallengeTTL bounds the "second factor pending" window.
}

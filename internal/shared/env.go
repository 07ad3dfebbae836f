package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names that override values from the config file.
const (
	EnvClientID       = "SPOTIPY_CLIENT_ID"
	EnvClientSecret   = "SPOTIPY_CLIENT_SECRET"
	EnvRedirectURI    = "SPOTIPY_REDIRECT_URI"
	EnvUsername       = "SPOTIPY_USERNAME"
	EnvSenderEmail    = "GMAIL_SENDER_EMAIL"
	EnvSenderPassword = "GMAIL_SENDER_APP_PASSWORD"
	EnvRecipientEmail = "GMAIL_RECIPIENT_EMAIL"
	EnvTargetPlaylist = "LIKESYNC_TARGET_PLAYLIST"
)

// LoadEnv loads variables from the given .env files into the process environment.
// Files that do not exist are ignored; variables already set are not overwritten.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, p, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values with any non-empty environment variables.
func ApplyEnv(config *Config) {
	ApplyEnvFunc(config, os.Getenv)
}

// ApplyEnvFunc overrides config values using lookup, which returns "" for unset names.
func ApplyEnvFunc(config *Config, lookup func(string) string) {
	set := func(dst *string, name string) {
		if v := lookup(name); v != "" {
			*dst = v
		}
	}

	set(&config.Credentials.Spotify.ClientID, EnvClientID)
	set(&config.Credentials.Spotify.ClientSecret, EnvClientSecret)
	set(&config.Credentials.Spotify.RedirectURI, EnvRedirectURI)
	set(&config.Credentials.Spotify.Username, EnvUsername)
	set(&config.Email.Sender, EnvSenderEmail)
	set(&config.Email.Password, EnvSenderPassword)
	set(&config.Email.Recipient, EnvRecipientEmail)
	set(&config.Sync.TargetPlaylistID, EnvTargetPlaylist)
}

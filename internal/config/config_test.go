package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFinalize(t *testing.T) {
	var (
		addr   = "localhost:8080"
		dsn    = "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable"
		secret = "c29tZV9zZWNyZXQ="
	)

	tcases := []struct {
		name   string
		addr   string
		dsn    string
		secret string
		limit  int
		err    bool
	}{
		{
			name:   "valid config",
			addr:   addr,
			dsn:    dsn,
			secret: secret,
			limit:  50,
			err:    false,
		},
		{
			name:   "empty address",
			addr:   "",
			dsn:    dsn,
			secret: secret,
			limit:  50,
			err:    true,
		},
		{
			name:   "empty DSN",
			addr:   addr,
			dsn:    "",
			secret: secret,
			limit:  50,
			err:    true,
		},
		{
			name:   "empty signing secret",
			addr:   addr,
			dsn:    dsn,
			secret: "",
			limit:  50,
			err:    true,
		},
		{
			name:   "signing secret not base64",
			addr:   addr,
			dsn:    dsn,
			secret: "not-base64!!!",
			limit:  50,
			err:    true,
		},
		{
			name:   "non-positive history limit",
			addr:   addr,
			dsn:    dsn,
			secret: secret,
			limit:  0,
			err:    true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				ServerAddr:    tc.addr,
				DatabaseDSN:   tc.dsn,
				SigningSecret: tc.secret,
				HistoryLimit:  tc.limit,
			}

			err := cfg.Finalize()
			if tc.err {
				assert.Error(t, err, "expected error from Finalize")
				return
			}

			assert.NoError(t, err, "expected no error from Finalize")
			assert.Equal(t, []byte("some_secret"), cfg.SigningKey, "expected decoded signing key")
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CHATDM_DATABASE_DSN", "host=localhost dbname=chat")
	t.Setenv("CHATDM_SIGNING_SECRET", "c29tZV9zZWNyZXQ=")
	t.Setenv("CHATDM_TYPING_EXPIRY", "5s")

	cfg, err := FromEnv()
	assert.NoError(t, err, "expected no error loading config from env")
	assert.Equal(t, "localhost:8000", cfg.ServerAddr, "expected default server address")
	assert.Equal(t, "host=localhost dbname=chat", cfg.DatabaseDSN, "expected DSN from env")
	assert.Equal(t, 50, cfg.HistoryLimit, "expected default history limit")
	assert.Equal(t, 5*time.Second, cfg.TypingExpiry, "expected typing expiry from env")
	assert.Equal(t, 168*time.Hour, cfg.TokenExpiry, "expected default token expiry")
}

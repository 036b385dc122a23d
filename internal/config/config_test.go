package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func productionConfig() *Config {
	return &Config{
		Env:                     "production",
		Port:                    "8080",
		DBSSLMode:               "require",
		DBPassword:              "secure-password",
		ClerkJWTSecret:          "secure-secret-at-least-32-chars-long",
		UserClerkWebhookSecret:  "whsec_user",
		AdminClerkWebhookSecret: "whsec_admin",
		StorageDriver:           "local",
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := productionConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProductionSecrets(t *testing.T) {
	c := productionConfig()
	c.ClerkJWTSecret = defaultClerkSecret
	assert.Error(t, c.Validate())

	c = productionConfig()
	c.ClerkJWTSecret = ""
	c.ClerkJWTPublicKey = "-----BEGIN PUBLIC KEY-----"
	assert.NoError(t, c.Validate())

	c = productionConfig()
	c.AdminClerkWebhookSecret = ""
	assert.Error(t, c.Validate())

	c = productionConfig()
	c.StorageDriver = "s3"
	assert.Error(t, c.Validate())
	c.SpacesBucket, c.SpacesKey, c.SpacesSecret = "forum", "key", "secret"
	assert.NoError(t, c.Validate())

	c = productionConfig()
	c.StorageDriver = "ftp"
	assert.Error(t, c.Validate())
}

func TestConfig_IsAdminOrigin(t *testing.T) {
	c := &Config{AdminOrigins: "backoffice.example.com, localhost:3001"}

	assert.True(t, c.IsAdminOrigin("https://backoffice.example.com"))
	assert.True(t, c.IsAdminOrigin("http://localhost:3001/"))
	assert.True(t, c.IsAdminOrigin("https://dev-forum-admin.herokuapp.com"))
	assert.False(t, c.IsAdminOrigin("https://forum.example.com"))
	assert.False(t, c.IsAdminOrigin(""))
}

func TestLoadConfig_SSLModeNormalization(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "8375", c.Port)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000", "http://localhost:3001"}, c.OriginList())
}

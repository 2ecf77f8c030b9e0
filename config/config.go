package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// JWTConfig holds the settings for issuing and validating session tokens.
type JWTConfig struct {
	SecretKey       string        `mapstructure:"secretKey"`
	AccessTokenTTL  time.Duration `mapstructure:"accessTokenTTL"`
	RefreshTokenTTL time.Duration `mapstructure:"refreshTokenTTL"`
	Issuer          string        `mapstructure:"issuer"`
	Audience        string        `mapstructure:"audience"`
}

// StoreAuthConfig holds the settings for the day-token store login flow.
// SecretPhrase is shared out-of-band with the system minting deep links;
// it must never reach a client.
type StoreAuthConfig struct {
	SecretPhrase   string `mapstructure:"secretPhrase"`
	EmailDomain    string `mapstructure:"emailDomain"`
	MinStoreIDLen  int    `mapstructure:"minStoreIDLen"`
	MinTokenLen    int    `mapstructure:"minTokenLen"`
	ProfileRetries int    `mapstructure:"profileRetries"`
}

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port      string `mapstructure:"port"`
			CertFile  string `mapstructure:"certFile"`
			KeyFile   string `mapstructure:"keyFile"`
			EnableTLS bool   `mapstructure:"enableTLS"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
			MaxConns int32  `mapstructure:"maxConns"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort    string        `mapstructure:"HTTPPort"`
		Timeout     time.Duration `mapstructure:"HTTPTimeout"`
		CORSOrigins []string      `mapstructure:"corsOrigins"`
	} `mapstructure:"server"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	StoreAuth StoreAuthConfig `mapstructure:"storeauth"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Secrets come from the environment, not the yml file.
	v.SetEnvPrefix("PORTAL")
	v.AutomaticEnv()
	_ = v.BindEnv("storeauth.secretPhrase", "PORTAL_STORE_SECRET")
	_ = v.BindEnv("jwt.secretKey", "PORTAL_JWT_SECRET")
	_ = v.BindEnv("repositories.postgres.password", "POSTGRES_PASSWORD")

	// Try to load file-based config, falling back to the embedded one.
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}

	if config.StoreAuth.MinStoreIDLen == 0 {
		config.StoreAuth.MinStoreIDLen = 3
	}
	if config.StoreAuth.MinTokenLen == 0 {
		config.StoreAuth.MinTokenLen = 32
	}
	if config.StoreAuth.ProfileRetries == 0 {
		config.StoreAuth.ProfileRetries = 3
	}
	if len(config.Server.CORSOrigins) == 0 {
		config.Server.CORSOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	return config, nil
}

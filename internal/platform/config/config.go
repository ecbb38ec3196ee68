// Package config builds the process configuration from environment
// variables so main stays lean.
package config

import (
	"fmt"
	"os"
	"strings"
)

type Maskinporten struct {
	JWKSURI  string
	Issuer   string
	Audience string
}

type Service struct {
	BaseURL string
	Scope   string
}

type Azure struct {
	TokenEndpoint string
	ClientID      string
	ClientSecret  string
}

type Kafka struct {
	Brokers []string
	Topic   string
	// TLS material as mounted by the platform; all three empty means
	// plaintext (local development).
	CAPath   string
	CertPath string
	KeyPath  string
}

type Config struct {
	Addr string
	// Env is "prod" or "dev", derived from the cluster name. Field
	// policies may differ between the two.
	Env          string
	Maskinporten Maskinporten
	Spokelse     Service
	PDL          Service
	Azure        Azure
	Kafka        Kafka
}

// FromEnv reads the configuration. Missing required variables abort
// startup with one combined error.
func FromEnv() (Config, error) {
	var missing []string
	require := func(key string) string {
		value := os.Getenv(key)
		if value == "" {
			missing = append(missing, key)
		}
		return value
	}

	addr := os.Getenv("SPAPI_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	env := "dev"
	if strings.Contains(strings.ToLower(os.Getenv("NAIS_CLUSTER_NAME")), "prod") {
		env = "prod"
	}

	cfg := Config{
		Addr: addr,
		Env:  env,
		Maskinporten: Maskinporten{
			JWKSURI:  require("MASKINPORTEN_JWKS_URI"),
			Issuer:   require("MASKINPORTEN_ISSUER"),
			Audience: require("AUDIENCE"),
		},
		Spokelse: Service{
			BaseURL: require("SPOKELSE_BASE_URL"),
			Scope:   require("SPOKELSE_SCOPE"),
		},
		PDL: Service{
			BaseURL: require("PDL_BASE_URL"),
			Scope:   require("PDL_SCOPE"),
		},
		Azure: Azure{
			TokenEndpoint: require("AZURE_OPENID_CONFIG_TOKEN_ENDPOINT"),
			ClientID:      require("AZURE_APP_CLIENT_ID"),
			ClientSecret:  require("AZURE_APP_CLIENT_SECRET"),
		},
		Kafka: Kafka{
			Brokers:  strings.Split(require("KAFKA_BROKERS"), ","),
			Topic:    require("SPORINGSLOGG_TOPIC"),
			CAPath:   os.Getenv("KAFKA_CA_PATH"),
			CertPath: os.Getenv("KAFKA_CERTIFICATE_PATH"),
			KeyPath:  os.Getenv("KAFKA_PRIVATE_KEY_PATH"),
		},
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing config: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

package config

import (
	"encoding/json"
	"os"

	"github.com/sara-git-hub/diabcare/internal/flagx"
	"github.com/sara-git-hub/diabcare/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "30m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	DatabaseDSN           string         `json:"database_dsn"`
	SessionTTL            timex.Duration `json:"session_ttl"`
	SessionSlidingRenewal *bool          `json:"session_sliding_renewal"`
	PasswordMinLength     int            `json:"password_min_length"`
	ModelSource           string         `json:"model_source"`
	S3AccessKey           string         `json:"s3_access_key"`
	S3SecretKey           string         `json:"s3_secret_key"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path is taken from the -c or -config flags;
// if neither is set, no JSON file is loaded. Only fields present in the
// file override the current values. An unreadable or malformed file panics,
// since running with a half-applied configuration is worse than not
// starting at all.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SessionTTL != 0 {
		config.SessionTTL = c.SessionTTL.Std()
	}
	if c.SessionSlidingRenewal != nil {
		config.SessionSlidingRenewal = *c.SessionSlidingRenewal
	}
	if c.PasswordMinLength != 0 {
		config.PasswordMinLength = c.PasswordMinLength
	}
	if c.ModelSource != "" {
		config.ModelSource = c.ModelSource
	}
	if c.S3AccessKey != "" {
		config.S3AccessKey = c.S3AccessKey
	}
	if c.S3SecretKey != "" {
		config.S3SecretKey = c.S3SecretKey
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
}

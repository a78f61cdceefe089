package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/charstudio/internal/flagx"
	"github.com/dmitrijs2005/charstudio/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "5s" and integer nanoseconds are accepted. Absent
// keys leave the current value untouched.
type JsonConfig struct {
	EndpointAddrGRPC      *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           *string         `json:"database_dsn"`
	SecretKey             *string         `json:"secret_key"`
	S3RootUser            *string         `json:"s3_root_user"`
	S3RootPassword        *string         `json:"s3_root_password"`
	S3Bucket              *string         `json:"s3_bucket"`
	S3Region              *string         `json:"s3_region"`
	S3BaseEndpoint        *string         `json:"s3_base_endpoint"`
	PresignTTL            *timex.Duration `json:"presign_ttl"`
	GenAIBackend          *string         `json:"genai_backend"`
	GenAIAPIKey           *string         `json:"genai_api_key"`
	GenAIProject          *string         `json:"genai_project"`
	GenAILocation         *string         `json:"genai_location"`
	AnalysisModel         *string         `json:"analysis_model"`
	ImageModel            *string         `json:"image_model"`
	TrainingDelay         *timex.Duration `json:"training_delay"`
	MaxConcurrentAnalyses *int64          `json:"max_concurrent_analyses"`
	WatchPollInterval     *timex.Duration `json:"watch_poll_interval"`
	ShutdownTimeout       *timex.Duration `json:"shutdown_timeout"`
	LogLevel              *string         `json:"log_level"`
	OTLPEndpoint          *string         `json:"otlp_endpoint"`
}

// parseJson loads the file named by -c or -config in args, if any, and
// copies the keys it contains into config.
func parseJson(config *Config, args []string) error {
	jsonConfigFile := flagx.ConfigFile(args)

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", jsonConfigFile, err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.GenAIBackend, c.GenAIBackend)
	setString(&config.GenAIAPIKey, c.GenAIAPIKey)
	setString(&config.GenAIProject, c.GenAIProject)
	setString(&config.GenAILocation, c.GenAILocation)
	setString(&config.AnalysisModel, c.AnalysisModel)
	setString(&config.ImageModel, c.ImageModel)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.OTLPEndpoint, c.OTLPEndpoint)

	if c.PresignTTL != nil {
		config.PresignTTL = c.PresignTTL.Duration
	}
	if c.TrainingDelay != nil {
		config.TrainingDelay = c.TrainingDelay.Duration
	}
	if c.WatchPollInterval != nil {
		config.WatchPollInterval = c.WatchPollInterval.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.MaxConcurrentAnalyses != nil {
		config.MaxConcurrentAnalyses = *c.MaxConcurrentAnalyses
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

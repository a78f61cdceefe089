package config

import (
	"flag"

	"github.com/dmitrijs2005/charstudio/internal/flagx"
)

var serverFlags = []string{"-a", "-d", "-s", "-u", "-p", "-b", "-g", "-e", "-k", "-m", "-i", "-t", "-l", "-o"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     gRPC bind address (e.g., ":50051")
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket name
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000")
//	-k string     Gemini API key
//	-m string     analysis model
//	-i string     image model
//	-t duration   simulated training delay (e.g., "5s")
//	-l string     log level
//	-o string     OTLP/HTTP endpoint for traces
//
// Other arguments are filtered out with flagx.FilterArgs first, so the
// -c/-config flag handled by parseJson does not trip this flag set.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, serverFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.GenAIAPIKey, "k", config.GenAIAPIKey, "Gemini API key")
	fs.StringVar(&config.AnalysisModel, "m", config.AnalysisModel, "analysis model")
	fs.StringVar(&config.ImageModel, "i", config.ImageModel, "image model")
	fs.DurationVar(&config.TrainingDelay, "t", config.TrainingDelay, "simulated training delay")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&config.OTLPEndpoint, "o", config.OTLPEndpoint, "OTLP/HTTP trace endpoint")

	return fs.Parse(args)
}

package config

import (
	"flag"

	"github.com/dmitrijs2005/charstudio/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// args are filtered with flagx.FilterArgs first so -c/-config and anything
// else unknown does not trip the flag set.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-k", "-r", "-t"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.AccessToken, "k", cfg.AccessToken, "access token")
	fs.DurationVar(&cfg.ReadyDelay, "r", cfg.ReadyDelay, "delay before showing a ready character")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "timeout of a single call")

	return fs.Parse(args)
}

package cli

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/charstudio/internal/api"
	"github.com/dmitrijs2005/charstudio/internal/client/client"
	"github.com/dmitrijs2005/charstudio/internal/client/config"
)

// studioClient is the part of client.GRPCClient the commands use.
type studioClient interface {
	Ping(ctx context.Context) error
	Library(ctx context.Context) ([]*api.Character, error)
	StartTuning(ctx context.Context, paths []string) (string, error)
	Character(ctx context.Context, id string) (*api.Character, error)
	Visualize(ctx context.Context, id, prompt string) (string, error)
	UploadURL(ctx context.Context, fileName string) (*api.CreateUploadURLResponse, error)
	DownloadURL(ctx context.Context, path string) (string, error)
	Watch(ctx context.Context, id string) (client.Stream, error)
	Close() error
}

type App struct {
	config     *config.Config
	client     studioClient
	httpClient *http.Client
	out        io.Writer
	in         io.Reader
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, c.AccessToken, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return &App{
		config:     c,
		client:     apiClient,
		httpClient: &http.Client{Timeout: c.RequestTimeout},
		out:        os.Stdout,
		in:         os.Stdin,
	}, nil
}

// Run greets the user, checks the server and runs the REPL until exit.
func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	printlnFn("Welcome to Character Studio CLI (type 'help' for commands)")
	if a.config.AccessToken == "" {
		printlnFn("No access token configured; use -k or CHARSTUDIO_ACCESS_TOKEN.")
	}
	if err := a.client.Ping(ctx); err != nil {
		printlnFn("Server is not reachable:", err)
	}

	runREPL(ctx, a, bufio.NewScanner(a.in), interactive(a.in))
}

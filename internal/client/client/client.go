package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/charstudio/internal/api"
	"github.com/dmitrijs2005/charstudio/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

type GRPCClient struct {
	endpointURL string
	accessToken string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      *api.CharacterStudioClient
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func (s *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	return streamer(ctx, desc, cc, method, opts...)
}

// NewGRPCClient connects lazily to endpointURL. timeout bounds every unary
// call; streams live as long as their context.
func NewGRPCClient(endpointURL, accessToken string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken, timeout: timeout}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithStreamInterceptor(c.streamAccessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = api.NewCharacterStudioClient(conn)
	return c, nil
}

func (s *GRPCClient) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	_, err := s.client.Ping(ctx, &api.PingRequest{})
	return mapError(err)
}

func (s *GRPCClient) Library(ctx context.Context) ([]*api.Character, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.GetCharacterLibrary(ctx, &api.GetCharacterLibraryRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Characters, nil
}

// StartTuning creates a character from already uploaded images and returns
// its id.
func (s *GRPCClient) StartTuning(ctx context.Context, paths []string) (string, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.StartCharacterTuning(ctx, &api.StartCharacterTuningRequest{Files: paths})
	if err != nil {
		return "", mapError(err)
	}
	return resp.CharacterID, nil
}

func (s *GRPCClient) Character(ctx context.Context, id string) (*api.Character, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.GetCharacter(ctx, &api.GetCharacterRequest{CharacterID: id})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Character, nil
}

// Visualize returns the base64-encoded image of the character in a scene.
func (s *GRPCClient) Visualize(ctx context.Context, id, prompt string) (string, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.GenerateCharacterVisualization(ctx, &api.GenerateCharacterVisualizationRequest{CharacterID: id, Prompt: prompt})
	if err != nil {
		return "", mapError(err)
	}
	return resp.Base64Image, nil
}

func (s *GRPCClient) UploadURL(ctx context.Context, fileName string) (*api.CreateUploadURLResponse, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.CreateUploadURL(ctx, &api.CreateUploadURLRequest{FileName: fileName})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) DownloadURL(ctx context.Context, path string) (string, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.ResolveDownloadURL(ctx, &api.ResolveDownloadURLRequest{Path: path})
	if err != nil {
		return "", mapError(err)
	}
	return resp.URL, nil
}

// Stream is the receiving side of WatchCharacter.
type Stream interface {
	Recv() (*api.WatchCharacterResponse, error)
}

// Watch opens the status stream of one character. Errors from Recv are
// raw gRPC statuses.
func (s *GRPCClient) Watch(ctx context.Context, id string) (Stream, error) {
	stream, err := s.client.WatchCharacter(ctx, &api.WatchCharacterRequest{CharacterID: id})
	if err != nil {
		return nil, mapError(err)
	}
	return stream, nil
}

package api

import (
	"context"

	"google.golang.org/grpc"
)

// CharacterStudioClient is the client stub for the CharacterStudio service.
type CharacterStudioClient struct {
	cc grpc.ClientConnInterface
}

// NewCharacterStudioClient wraps a connection.
func NewCharacterStudioClient(cc grpc.ClientConnInterface) *CharacterStudioClient {
	return &CharacterStudioClient{cc: cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CharacterStudioClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingRequest, PingResponse](ctx, c.cc, PingFullMethod, in, opts)
}

func (c *CharacterStudioClient) GetCharacterLibrary(ctx context.Context, in *GetCharacterLibraryRequest, opts ...grpc.CallOption) (*GetCharacterLibraryResponse, error) {
	return invoke[GetCharacterLibraryRequest, GetCharacterLibraryResponse](ctx, c.cc, GetCharacterLibraryFullMethod, in, opts)
}

func (c *CharacterStudioClient) StartCharacterTuning(ctx context.Context, in *StartCharacterTuningRequest, opts ...grpc.CallOption) (*StartCharacterTuningResponse, error) {
	return invoke[StartCharacterTuningRequest, StartCharacterTuningResponse](ctx, c.cc, StartCharacterTuningFullMethod, in, opts)
}

func (c *CharacterStudioClient) GenerateCharacterVisualization(ctx context.Context, in *GenerateCharacterVisualizationRequest, opts ...grpc.CallOption) (*GenerateCharacterVisualizationResponse, error) {
	return invoke[GenerateCharacterVisualizationRequest, GenerateCharacterVisualizationResponse](ctx, c.cc, GenerateCharacterVisualizationFullMethod, in, opts)
}

func (c *CharacterStudioClient) GetCharacter(ctx context.Context, in *GetCharacterRequest, opts ...grpc.CallOption) (*GetCharacterResponse, error) {
	return invoke[GetCharacterRequest, GetCharacterResponse](ctx, c.cc, GetCharacterFullMethod, in, opts)
}

func (c *CharacterStudioClient) CreateUploadURL(ctx context.Context, in *CreateUploadURLRequest, opts ...grpc.CallOption) (*CreateUploadURLResponse, error) {
	return invoke[CreateUploadURLRequest, CreateUploadURLResponse](ctx, c.cc, CreateUploadURLFullMethod, in, opts)
}

func (c *CharacterStudioClient) ResolveDownloadURL(ctx context.Context, in *ResolveDownloadURLRequest, opts ...grpc.CallOption) (*ResolveDownloadURLResponse, error) {
	return invoke[ResolveDownloadURLRequest, ResolveDownloadURLResponse](ctx, c.cc, ResolveDownloadURLFullMethod, in, opts)
}

// WatchCharacter opens a server stream of character snapshots.
func (c *CharacterStudioClient) WatchCharacter(ctx context.Context, in *WatchCharacterRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[WatchCharacterResponse], error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], WatchCharacterFullMethod, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[WatchCharacterRequest, WatchCharacterResponse]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "charstudio.v1.CharacterStudio"

const (
	PingFullMethod                           = "/" + ServiceName + "/Ping"
	GetCharacterLibraryFullMethod            = "/" + ServiceName + "/GetCharacterLibrary"
	StartCharacterTuningFullMethod           = "/" + ServiceName + "/StartCharacterTuning"
	GenerateCharacterVisualizationFullMethod = "/" + ServiceName + "/GenerateCharacterVisualization"
	GetCharacterFullMethod                   = "/" + ServiceName + "/GetCharacter"
	WatchCharacterFullMethod                 = "/" + ServiceName + "/WatchCharacter"
	CreateUploadURLFullMethod                = "/" + ServiceName + "/CreateUploadURL"
	ResolveDownloadURLFullMethod             = "/" + ServiceName + "/ResolveDownloadURL"
)

// CharacterStudioServer is implemented by the server.
type CharacterStudioServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	GetCharacterLibrary(context.Context, *GetCharacterLibraryRequest) (*GetCharacterLibraryResponse, error)
	StartCharacterTuning(context.Context, *StartCharacterTuningRequest) (*StartCharacterTuningResponse, error)
	GenerateCharacterVisualization(context.Context, *GenerateCharacterVisualizationRequest) (*GenerateCharacterVisualizationResponse, error)
	GetCharacter(context.Context, *GetCharacterRequest) (*GetCharacterResponse, error)
	WatchCharacter(*WatchCharacterRequest, grpc.ServerStreamingServer[WatchCharacterResponse]) error
	CreateUploadURL(context.Context, *CreateUploadURLRequest) (*CreateUploadURLResponse, error)
	ResolveDownloadURL(context.Context, *ResolveDownloadURLRequest) (*ResolveDownloadURLResponse, error)
}

// RegisterCharacterStudioServer registers srv on s.
func RegisterCharacterStudioServer(s grpc.ServiceRegistrar, srv CharacterStudioServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// malformed reports a request body the codec could not decode as
// InvalidArgument. grpc-go reports decode failures as Internal; other
// receive errors pass through unchanged.
func malformed(err error) error {
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Internal {
		return err
	}
	return status.Errorf(codes.InvalidArgument, "malformed request: %s", st.Message())
}

// unaryHandler adapts a typed server method to grpc.MethodHandler the same
// way protoc-generated handlers do.
func unaryHandler[Req, Resp any](fullMethod string, call func(CharacterStudioServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, malformed(err)
		}
		if interceptor == nil {
			return call(srv.(CharacterStudioServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CharacterStudioServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchCharacterHandler(srv any, stream grpc.ServerStream) error {
	m := new(WatchCharacterRequest)
	if err := stream.RecvMsg(m); err != nil {
		return malformed(err)
	}
	return srv.(CharacterStudioServer).WatchCharacter(m, &grpc.GenericServerStream[WatchCharacterRequest, WatchCharacterResponse]{ServerStream: stream})
}

// ServiceDesc describes the CharacterStudio service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CharacterStudioServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Ping",
			Handler:    unaryHandler(PingFullMethod, CharacterStudioServer.Ping),
		},
		{
			MethodName: "GetCharacterLibrary",
			Handler:    unaryHandler(GetCharacterLibraryFullMethod, CharacterStudioServer.GetCharacterLibrary),
		},
		{
			MethodName: "StartCharacterTuning",
			Handler:    unaryHandler(StartCharacterTuningFullMethod, CharacterStudioServer.StartCharacterTuning),
		},
		{
			MethodName: "GenerateCharacterVisualization",
			Handler:    unaryHandler(GenerateCharacterVisualizationFullMethod, CharacterStudioServer.GenerateCharacterVisualization),
		},
		{
			MethodName: "GetCharacter",
			Handler:    unaryHandler(GetCharacterFullMethod, CharacterStudioServer.GetCharacter),
		},
		{
			MethodName: "CreateUploadURL",
			Handler:    unaryHandler(CreateUploadURLFullMethod, CharacterStudioServer.CreateUploadURL),
		},
		{
			MethodName: "ResolveDownloadURL",
			Handler:    unaryHandler(ResolveDownloadURLFullMethod, CharacterStudioServer.ResolveDownloadURL),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchCharacter",
			Handler:       watchCharacterHandler,
			ServerStreams: true,
		},
	},
	Metadata: "charstudio/v1/character_studio",
}

package grpc

import (
	"context"
	"encoding/base64"

	"github.com/dmitrijs2005/charstudio/internal/api"
)

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) GetCharacterLibrary(ctx context.Context, req *api.GetCharacterLibraryRequest) (*api.GetCharacterLibraryResponse, error) {
	list, err := s.characters.ListCharacters(ctx, userIDFromContext(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, "GetCharacterLibrary", err)
	}

	resp := &api.GetCharacterLibraryResponse{Characters: make([]*api.Character, 0, len(list))}
	for _, c := range list {
		resp.Characters = append(resp.Characters, toAPICharacter(c))
	}
	return resp, nil
}

func (s *GRPCServer) StartCharacterTuning(ctx context.Context, req *api.StartCharacterTuningRequest) (*api.StartCharacterTuningResponse, error) {
	userID := userIDFromContext(ctx)

	id, err := s.characters.CreateCharacter(ctx, userID, req.Files)
	if err != nil {
		return nil, s.toStatus(ctx, "StartCharacterTuning", err)
	}

	s.logger.Info(ctx, "Tuning started", "character_id", id, "user_id", userID)
	return &api.StartCharacterTuningResponse{CharacterID: id}, nil
}

func (s *GRPCServer) GenerateCharacterVisualization(ctx context.Context, req *api.GenerateCharacterVisualizationRequest) (*api.GenerateCharacterVisualizationResponse, error) {
	image, err := s.characters.GenerateVisualization(ctx, userIDFromContext(ctx), req.CharacterID, req.Prompt)
	if err != nil {
		return nil, s.toStatus(ctx, "GenerateCharacterVisualization", err)
	}
	return &api.GenerateCharacterVisualizationResponse{Base64Image: base64.StdEncoding.EncodeToString(image)}, nil
}

func (s *GRPCServer) GetCharacter(ctx context.Context, req *api.GetCharacterRequest) (*api.GetCharacterResponse, error) {
	c, err := s.characters.GetCharacter(ctx, userIDFromContext(ctx), req.CharacterID)
	if err != nil {
		return nil, s.toStatus(ctx, "GetCharacter", err)
	}
	return &api.GetCharacterResponse{Character: toAPICharacter(c)}, nil
}

func (s *GRPCServer) CreateUploadURL(ctx context.Context, req *api.CreateUploadURLRequest) (*api.CreateUploadURLResponse, error) {
	t, err := s.characters.CreateUploadURL(ctx, userIDFromContext(ctx), req.FileName)
	if err != nil {
		return nil, s.toStatus(ctx, "CreateUploadURL", err)
	}
	return &api.CreateUploadURLResponse{
		Path:         t.Path,
		URL:          t.URL,
		ExpiresInSec: int64(t.ExpiresIn.Seconds()),
	}, nil
}

func (s *GRPCServer) ResolveDownloadURL(ctx context.Context, req *api.ResolveDownloadURLRequest) (*api.ResolveDownloadURLResponse, error) {
	t, err := s.characters.ResolveDownloadURL(ctx, userIDFromContext(ctx), req.Path)
	if err != nil {
		return nil, s.toStatus(ctx, "ResolveDownloadURL", err)
	}
	return &api.ResolveDownloadURLResponse{
		URL:          t.URL,
		ExpiresInSec: int64(t.ExpiresIn.Seconds()),
	}, nil
}

package grpc

import (
	"time"

	"github.com/dmitrijs2005/charstudio/internal/api"
	"github.com/dmitrijs2005/charstudio/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// WatchCharacter streams the current snapshot of a character and then every
// later status until a terminal one has been sent. Changes committed by this
// process arrive through the subscriber; a periodic re-read picks up
// changes made elsewhere.
func (s *GRPCServer) WatchCharacter(req *api.WatchCharacterRequest, stream grpc.ServerStreamingServer[api.WatchCharacterResponse]) error {
	ctx := stream.Context()
	userID := userIDFromContext(ctx)

	// subscribe first so nothing committed between the snapshot and the
	// subscription is lost
	updates, cancel := s.watch.Subscribe(req.CharacterID)
	defer cancel()
	s.logger.Debug(ctx, "watch started", "character_id", req.CharacterID, "subscribers", s.watch.Subscribers(req.CharacterID))

	last, err := s.characters.GetCharacter(ctx, userID, req.CharacterID)
	if err != nil {
		return s.toStatus(ctx, "WatchCharacter", err)
	}
	if err := stream.Send(&api.WatchCharacterResponse{Character: toAPICharacter(last)}); err != nil {
		return err
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for !last.Status.IsTerminal() {
		var next *models.Character

		select {
		case <-ctx.Done():
			return s.toStatus(ctx, "WatchCharacter", ctx.Err())
		case <-s.stopping:
			return status.Error(codes.Unavailable, "server is shutting down")
		case c, ok := <-updates:
			if !ok {
				return nil
			}
			if c.OwnerID != userID {
				continue
			}
			next = c
		case <-ticker.C:
			c, err := s.characters.GetCharacter(ctx, userID, req.CharacterID)
			if err != nil {
				return s.toStatus(ctx, "WatchCharacter", err)
			}
			next = c
		}

		if next.Status.Rank() <= last.Status.Rank() {
			continue
		}
		if err := stream.Send(&api.WatchCharacterResponse{Character: toAPICharacter(next)}); err != nil {
			return err
		}
		last = next
	}

	s.logger.Debug(ctx, "watch finished", "character_id", req.CharacterID, "status", string(last.Status))
	return nil
}

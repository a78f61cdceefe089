package services

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/charstudio/internal/common"
	"github.com/google/uuid"
)

var (
	allowedImageExtensions = map[string]bool{
		".png":  true,
		".jpg":  true,
		".jpeg": true,
		".webp": true,
	}

	invalidKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

// UploadTicket tells a client where to PUT a reference image and which
// storage path to pass to CreateCharacter afterwards.
type UploadTicket struct {
	Path      string
	URL       string
	ExpiresIn time.Duration
}

// DownloadTicket is a short-lived URL for reading an object.
type DownloadTicket struct {
	URL       string
	ExpiresIn time.Duration
}

func uploadPrefix(ownerID string) string {
	return common.UserUploadsPrefix + "/" + ownerID + "/"
}

// uploadKey builds user_uploads/<owner>/<uuid>-<sanitized name>.
func uploadKey(ownerID, fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, `\`, "/"))
	ext := strings.ToLower(path.Ext(base))
	name := strings.TrimSuffix(base, path.Ext(base))
	name = invalidKeyChars.ReplaceAllString(name, "_")
	if len(name) > 100 {
		name = name[:100]
	}
	return fmt.Sprintf("%s%s-%s%s", uploadPrefix(ownerID), uuid.NewString(), name, ext)
}

// CreateUploadURL reserves a storage path for one reference image and
// returns a presigned PUT URL for it.
func (s *CharacterService) CreateUploadURL(ctx context.Context, ownerID, fileName string) (*UploadTicket, error) {
	if ownerID == "" {
		return nil, common.ErrUnauthenticated
	}
	if strings.TrimSpace(fileName) == "" {
		return nil, fmt.Errorf("%w: fileName is required", common.ErrInvalidArgument)
	}
	ext := strings.ToLower(path.Ext(fileName))
	if !allowedImageExtensions[ext] {
		return nil, fmt.Errorf("%w: unsupported image type %q", common.ErrInvalidArgument, ext)
	}

	key := uploadKey(ownerID, fileName)
	url, err := s.store.PresignPut(ctx, key, common.ImageContentType(key))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	return &UploadTicket{Path: key, URL: url, ExpiresIn: s.store.PresignTTL()}, nil
}

// ResolveDownloadURL returns a presigned GET URL for a stored image. The
// path must be in the caller's upload area or be the preview of one of the
// caller's characters.
func (s *CharacterService) ResolveDownloadURL(ctx context.Context, ownerID, key string) (*DownloadTicket, error) {
	if ownerID == "" {
		return nil, common.ErrUnauthenticated
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: path is required", common.ErrInvalidArgument)
	}

	allowed, err := s.ownsPath(ctx, ownerID, key)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: path %q", common.ErrPermissionDenied, key)
	}

	url, err := s.store.PresignGet(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("presign get: %w", err)
	}
	return &DownloadTicket{URL: url, ExpiresIn: s.store.PresignTTL()}, nil
}

func (s *CharacterService) ownsPath(ctx context.Context, ownerID, key string) (bool, error) {
	if path.Clean(key) == key && strings.HasPrefix(key, uploadPrefix(ownerID)) {
		return true, nil
	}

	list, err := s.repomanager.Characters(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return false, fmt.Errorf("list characters: %w", err)
	}
	for _, c := range list {
		if c.ImagePreviewURL == key {
			return true, nil
		}
	}
	return false, nil
}

package api

import "time"

// Character is the wire form of a character record.
type Character struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	AdapterID       *string   `json:"adapterId"`
	CharacterName   string    `json:"characterName"`
	Description     string    `json:"description"`
	Keywords        []string  `json:"keywords"`
	ImagePreviewURL string    `json:"imagePreviewUrl"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type GetCharacterLibraryRequest struct{}

type GetCharacterLibraryResponse struct {
	Characters []*Character `json:"characters"`
}

type StartCharacterTuningRequest struct {
	Files []string `json:"files"`
}

type StartCharacterTuningResponse struct {
	CharacterID string `json:"characterId"`
}

type GenerateCharacterVisualizationRequest struct {
	CharacterID string `json:"characterId"`
	Prompt      string `json:"prompt"`
}

// GenerateCharacterVisualizationResponse carries the image base64 encoded.
type GenerateCharacterVisualizationResponse struct {
	Base64Image string `json:"base64Image"`
}

type GetCharacterRequest struct {
	CharacterID string `json:"characterId"`
}

type GetCharacterResponse struct {
	Character *Character `json:"character"`
}

type WatchCharacterRequest struct {
	CharacterID string `json:"characterId"`
}

type WatchCharacterResponse struct {
	Character *Character `json:"character"`
}

type CreateUploadURLRequest struct {
	FileName string `json:"fileName"`
}

// CreateUploadURLResponse holds the storage path to pass to
// StartCharacterTuning and the URL to PUT the file to.
type CreateUploadURLResponse struct {
	Path         string `json:"path"`
	URL          string `json:"url"`
	ExpiresInSec int64  `json:"expiresInSec"`
}

type ResolveDownloadURLRequest struct {
	Path string `json:"path"`
}

type ResolveDownloadURLResponse struct {
	URL          string `json:"url"`
	ExpiresInSec int64  `json:"expiresInSec"`
}

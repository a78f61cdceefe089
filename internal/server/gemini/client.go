// Package gemini talks to the Gemini models that analyse reference images
// and render character scenes.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/charstudio/internal/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"
)

const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"

	DefaultAnalysisModel = "gemini-2.5-flash"
	DefaultImageModel    = "gemini-2.5-flash-image"
)

const analysisInstruction = "Analyze the character in this image. Produce a JSON object with " +
	"'characterName' (a creative name for the character), 'description' (a short, engaging description) " +
	"and 'keywords' (an array of 5 relevant keywords)."

var tracer = otel.Tracer("github.com/dmitrijs2005/charstudio/internal/server/gemini")

// blockedReasons are the finish reasons that mean the prompt or the output
// was refused by a content filter.
var blockedReasons = map[genai.FinishReason]bool{
	genai.FinishReasonSafety:            true,
	genai.FinishReasonRecitation:        true,
	genai.FinishReasonBlocklist:         true,
	genai.FinishReasonProhibitedContent: true,
	genai.FinishReasonSPII:              true,
}

// Config selects the backend and the models.
type Config struct {
	Backend       string
	APIKey        string
	Project       string
	Location      string
	AnalysisModel string
	ImageModel    string
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client wraps the genai Models service.
type Client struct {
	models        contentGenerator
	analysisModel string
	imageModel    string
}

var newGenaiClient = genai.NewClient

// New builds a client for either the Gemini API (API key) or Vertex AI
// (project and location, credentials from the environment).
func New(ctx context.Context, cfg Config) (*Client, error) {
	cc := &genai.ClientConfig{}
	switch cfg.Backend {
	case "", BackendGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini: api key is required")
		}
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	case BackendVertex:
		cc.Project = cfg.Project
		cc.Location = cfg.Location
		cc.Backend = genai.BackendVertexAI
	default:
		return nil, fmt.Errorf("gemini: unknown backend %q", cfg.Backend)
	}

	gc, err := newGenaiClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return newClient(gc.Models, cfg.AnalysisModel, cfg.ImageModel), nil
}

func newClient(models contentGenerator, analysisModel, imageModel string) *Client {
	if analysisModel == "" {
		analysisModel = DefaultAnalysisModel
	}
	if imageModel == "" {
		imageModel = DefaultImageModel
	}
	return &Client{models: models, analysisModel: analysisModel, imageModel: imageModel}
}

// AnalyzeCharacter asks the analysis model to describe the character in the
// image and returns the raw JSON text of the first candidate. An empty
// string with a nil error means the model answered with nothing usable.
func (c *Client) AnalyzeCharacter(ctx context.Context, image []byte, mimeType string) (string, error) {
	ctx, span := tracer.Start(ctx, "gemini.AnalyzeCharacter")
	defer span.End()
	span.SetAttributes(attribute.String("gemini.model", c.analysisModel), attribute.Int("image.bytes", len(image)))

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"characterName": {Type: genai.TypeString},
				"description":   {Type: genai.TypeString},
				"keywords": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
			},
			PropertyOrdering: []string{"characterName", "description", "keywords"},
		},
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(analysisInstruction),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}

	res, err := c.models.GenerateContent(ctx, c.analysisModel, contents, config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content")
		return "", fmt.Errorf("analysis model: %w", err)
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, p := range res.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	return sb.String(), nil
}

// GenerateScene renders the character from the reference image into the
// described scene and returns the image bytes.
//
// A refused prompt is reported as common.ErrInvalidArgument with the finish
// reason in the message. A missing candidate or image is common.ErrorInternal.
func (c *Client) GenerateScene(ctx context.Context, reference []byte, mimeType, scene string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "gemini.GenerateScene")
	defer span.End()
	span.SetAttributes(attribute.String("gemini.model", c.imageModel))

	instruction := fmt.Sprintf("Use the provided image as the reference for the character's appearance. "+
		"Place this character in the scene: %q.", scene)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(instruction),
			genai.NewPartFromBytes(reference, mimeType),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	res, err := c.models.GenerateContent(ctx, c.imageModel, contents, config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content")
		return nil, fmt.Errorf("image model: %w", err)
	}

	data, err := extractImage(res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return data, nil
}

func extractImage(res *genai.GenerateContentResponse) ([]byte, error) {
	if res == nil || len(res.Candidates) == 0 {
		if res != nil && res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
			return nil, blocked(string(res.PromptFeedback.BlockReason))
		}
		return nil, fmt.Errorf("%w: no candidates", common.ErrorInternal)
	}

	candidate := res.Candidates[0]
	if blockedReasons[candidate.FinishReason] {
		return nil, blocked(string(candidate.FinishReason))
	}

	if candidate.Content != nil {
		for _, p := range candidate.Content.Parts {
			if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
				return p.InlineData.Data, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no image produced, try rephrasing the prompt", common.ErrorInternal)
}

func blocked(reason string) error {
	return fmt.Errorf("%w: the prompt was blocked for safety reasons (%s), adjust it and try again",
		common.ErrInvalidArgument, reason)
}

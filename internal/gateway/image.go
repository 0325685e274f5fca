package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/yungbote/neurobridge-coursegen/internal/content/textutil"
)

const (
	DefaultImageModel   = "dall-e-3"
	DefaultImageSize    = "1024x1024"
	DefaultImageQuality = "standard"
	DefaultImageStyle   = "vivid"
)

// GenerateImage generates one image and, unless spec.SkipUpload, asks the
// backend to copy it to durable storage. When only the provider URL comes
// back the result falls back to it with UploadedToRemoteStorage=false.
// Quota (402) and forbidden (403) responses return Success=false with a nil
// error.
func (c *Client) GenerateImage(ctx context.Context, spec ImagePromptSpec) (*ImageResult, error) {
	prompt := strings.TrimSpace(spec.Prompt)
	if prompt == "" {
		return nil, NewValidationError("Image prompt is required.", "generate-image: empty prompt", nil)
	}
	req := imageRequest{
		Prompt:     textutil.Truncate(prompt, textutil.MaxImagePromptChars),
		Model:      firstNonEmpty(spec.Model, DefaultImageModel),
		Size:       firstNonEmpty(spec.Size, DefaultImageSize),
		Quality:    firstNonEmpty(spec.Quality, DefaultImageQuality),
		Style:      firstNonEmpty(spec.Style, DefaultImageStyle),
		UploadToS3: !spec.SkipUpload,
		Folder:     strings.TrimSpace(spec.Folder),
	}

	var data imageData
	if err := c.do(ctx, call{op: "generate_image", method: http.MethodPost, path: pathGenerateImage, body: req, out: &data}); err != nil {
		if e, ok := AsError(err); ok && (e.Status == http.StatusPaymentRequired || e.Status == http.StatusForbidden) {
			c.log.Warn("Image generation declined", "status", e.Status, "kind", string(e.Kind))
			return &ImageResult{Success: false, Error: e.Error(), Status: e.Status}, nil
		}
		return nil, err
	}

	res := &ImageResult{
		Success:                 true,
		URL:                     strings.TrimSpace(data.ImageURL),
		OriginalURL:             strings.TrimSpace(data.OriginalURL),
		UploadedToRemoteStorage: data.UploadedToS3,
		Cost:                    data.Cost,
		Metadata:                data.Metadata,
	}
	if data.RevisedPrompt != "" {
		if res.Metadata == nil {
			res.Metadata = map[string]any{}
		}
		res.Metadata["revisedPrompt"] = data.RevisedPrompt
	}
	switch {
	case res.URL != "":
	case res.OriginalURL != "":
		c.log.Warn("Image upload missing; using provider URL", "folder", req.Folder)
		res.URL = res.OriginalURL
		res.UploadedToRemoteStorage = false
	default:
		return nil, NewValidationError("The AI service did not return an image.", "generate-image: no imageUrl or originalUrl", nil)
	}

	c.notifyUsage(ctx, UsageEvent{Operation: "generate_image", Model: req.Model, Cost: data.Cost})
	return res, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

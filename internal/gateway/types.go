package gateway

import (
	"encoding/json"
	"time"

	"github.com/yungbote/neurobridge-coursegen/internal/platform/promptstyle"
)

// envelope is the top-level shape of every backend response.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Code    string          `json:"code,omitempty"`
}

// TextOptions tunes GenerateText. Zero values fall back to backend defaults.
type TextOptions struct {
	Model           string
	MaxTokens       int
	Temperature     *float64
	SystemPrompt    string
	// Mode picks the output guidance added to SystemPrompt; empty means
	// promptstyle.ModeText.
	Mode            promptstyle.Mode
	EnhancePrompt   bool
	SkipStatusCheck bool
}

type StructuredOptions struct {
	Model       string
	MaxTokens   int
	Temperature *float64
}

type textRequest struct {
	Prompt        string   `json:"prompt"`
	Model         string   `json:"model,omitempty"`
	MaxTokens     int      `json:"maxTokens,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	SystemPrompt  string   `json:"systemPrompt,omitempty"`
	EnhancePrompt bool     `json:"enhancePrompt,omitempty"`
}

type textData struct {
	Text       string  `json:"text"`
	TokensUsed int     `json:"tokensUsed"`
	Cost       float64 `json:"cost"`
}

// TextResult is the outcome of a free-text generation.
type TextResult struct {
	Text       string
	TokensUsed int
	Cost       float64
}

type structuredRequest struct {
	SystemPrompt string   `json:"systemPrompt"`
	UserPrompt   string   `json:"userPrompt"`
	Model        string   `json:"model,omitempty"`
	MaxTokens    int      `json:"maxTokens,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
}

type structuredData struct {
	JSONData   json.RawMessage `json:"jsonData"`
	TokensUsed int             `json:"tokensUsed"`
	Cost       float64         `json:"cost"`
}

// StructuredResult carries the backend's JSON payload undecoded.
type StructuredResult struct {
	Data       json.RawMessage
	TokensUsed int
	Cost       float64
}

// ImagePromptSpec describes one image to generate.
type ImagePromptSpec struct {
	Prompt  string `json:"prompt"`
	Model   string `json:"model,omitempty"`
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
	Style   string `json:"style,omitempty"`
	Folder  string `json:"folder,omitempty"`
	// SkipUpload keeps the provider URL only.
	SkipUpload bool `json:"-"`
}

type imageRequest struct {
	Prompt     string `json:"prompt"`
	Model      string `json:"model,omitempty"`
	Size       string `json:"size,omitempty"`
	Quality    string `json:"quality,omitempty"`
	Style      string `json:"style,omitempty"`
	UploadToS3 bool   `json:"uploadToS3"`
	Folder     string `json:"folder,omitempty"`
}

type imageData struct {
	ImageURL      string         `json:"imageUrl"`
	OriginalURL   string         `json:"originalUrl"`
	UploadedToS3  bool           `json:"uploadedToS3"`
	Cost          float64        `json:"cost"`
	RevisedPrompt string         `json:"revisedPrompt,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// ImageResult is returned for every image call that reached a verdict.
// Quota (402) and permission (403) failures come back with Success=false
// and no error so multi-step pipelines can continue.
type ImageResult struct {
	Success                 bool           `json:"success"`
	URL                     string         `json:"url,omitempty"`
	OriginalURL             string         `json:"originalUrl,omitempty"`
	UploadedToRemoteStorage bool           `json:"uploadedToRemoteStorage"`
	Cost                    float64        `json:"cost"`
	Metadata                map[string]any `json:"metadata,omitempty"`
	Error                   string         `json:"error,omitempty"`
	Status                  int            `json:"status,omitempty"`
}

// OutlineRequest drives /generate-course-outline.
type OutlineRequest struct {
	CourseTitle   string   `json:"courseTitle"`
	SubjectDomain string   `json:"subjectDomain,omitempty"`
	Description   string   `json:"description,omitempty"`
	Duration      string   `json:"duration,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
	Objectives    []string `json:"objectives,omitempty"`
	// GenerateType is "skeleton" or "comprehensive".
	GenerateType string `json:"generateType,omitempty"`
}

type outlineData struct {
	Course     json.RawMessage `json:"course"`
	TokensUsed int             `json:"tokensUsed"`
	Cost       float64         `json:"cost"`
}

type OutlineResult struct {
	Course     json.RawMessage
	TokensUsed int
	Cost       float64
}

// BlueprintRequest carries the full course-design brief.
type BlueprintRequest struct {
	CourseTitle        string   `json:"courseTitle"`
	SubjectDomain      string   `json:"subjectDomain,omitempty"`
	Description        string   `json:"description,omitempty"`
	TargetAudience     string   `json:"targetAudience,omitempty"`
	Difficulty         string   `json:"difficulty,omitempty"`
	Duration           string   `json:"duration,omitempty"`
	LearningObjectives []string `json:"learningObjectives,omitempty"`
	Prerequisites      []string `json:"prerequisites,omitempty"`
	DeliveryMode       string   `json:"deliveryMode,omitempty"`
	AssessmentStrategy string   `json:"assessmentStrategy,omitempty"`
	ModuleCount        int      `json:"moduleCount,omitempty"`
	Constraints        string   `json:"constraints,omitempty"`
}

type blueprintData struct {
	Blueprint json.RawMessage `json:"blueprint"`
}

type BlueprintResult struct {
	Blueprint json.RawMessage
}

// GenerationRecord is one usage-accounting entry.
type GenerationRecord struct {
	GenerationType string         `json:"generationType"`
	Model          string         `json:"model,omitempty"`
	Prompt         string         `json:"prompt,omitempty"`
	TokensUsed     int            `json:"tokensUsed"`
	Cost           float64        `json:"cost"`
	Success        bool           `json:"success"`
	Error          string         `json:"error,omitempty"`
	DurationMS     int64          `json:"durationMs,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

type logBatchRequest struct {
	Generations []GenerationRecord `json:"generations"`
}

// UsageEvent is emitted after each successful generation call.
type UsageEvent struct {
	Operation  string    `json:"operation"`
	Model      string    `json:"model,omitempty"`
	TokensUsed int       `json:"tokensUsed"`
	Cost       float64   `json:"cost"`
	At         time.Time `json:"at"`
}

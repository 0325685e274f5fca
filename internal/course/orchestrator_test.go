package course

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/yungbote/neurobridge-coursegen/internal/content/blockgen"
	"github.com/yungbote/neurobridge-coursegen/internal/content/blocks"
	"github.com/yungbote/neurobridge-coursegen/internal/content/showcase"
	"github.com/yungbote/neurobridge-coursegen/internal/gateway"
)

const pythonSkeleton = `{
  "title": "Python Programming Fundamentals",
  "description": "Learn the building blocks of Python.",
  "difficulty_level": "beginner",
  "duration": "45 minutes",
  "target_audience": "New programmers",
  "learning_objectives": ["Write a script", "Use variables", ""],
  "module": {
    "module_title": "Python Basics",
    "module_overview": "Syntax, variables and types.",
    "lesson": {"lesson_title": "Variables and Types", "lesson_summary": "How Python stores data."}
  }
}`

type fakeGateway struct {
	mu sync.Mutex

	structured func() (*gateway.StructuredResult, error)
	image      func(n int) (*gateway.ImageResult, error)
	logBatch   func(recs []gateway.GenerationRecord) error

	imageCalls int
	batches    [][]gateway.GenerationRecord
}

func (f *fakeGateway) GenerateStructured(ctx context.Context, system, user string, opts gateway.StructuredOptions) (*gateway.StructuredResult, error) {
	if f.structured == nil {
		return &gateway.StructuredResult{Data: json.RawMessage(pythonSkeleton), TokensUsed: 300}, nil
	}
	return f.structured()
}

func (f *fakeGateway) GenerateText(ctx context.Context, prompt string, opts gateway.TextOptions) (*gateway.TextResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &gateway.TextResult{Text: cannedText(prompt), TokensUsed: 10}, nil
}

func (f *fakeGateway) GenerateImage(ctx context.Context, spec gateway.ImagePromptSpec) (*gateway.ImageResult, error) {
	f.mu.Lock()
	n := f.imageCalls
	f.imageCalls++
	f.mu.Unlock()
	if f.image != nil {
		return f.image(n)
	}
	return &gateway.ImageResult{Success: true, URL: "https://cdn.example/" + spec.Folder + ".png"}, nil
}

func (f *fakeGateway) LogGenerationBatch(ctx context.Context, recs []gateway.GenerationRecord) error {
	f.mu.Lock()
	f.batches = append(f.batches, recs)
	f.mu.Unlock()
	if f.logBatch != nil {
		return f.logBatch(recs)
	}
	return nil
}

func cannedText(prompt string) string {
	switch {
	case strings.Contains(prompt, "thumbnail image"):
		return `"A laptop showing colorful Python code on a tidy desk."`
	case strings.Contains(prompt, "(quote_carousel)"):
		return `{"quotes":[{"quote":"Simple is better than complex.","author":"Tim Peters"}]}`
	case strings.Contains(prompt, "Block type: quote"):
		return `{"quote":"Simple is better than complex.","author":"Tim Peters"}`
	case strings.Contains(prompt, "Block type: list"):
		return `{"items":["Install Python","Open a REPL","Assign a variable"]}`
	case strings.Contains(prompt, "(three_columns)"):
		return `{"headers":["Type","Example","Mutable"],"rows":[["list","[1, 2]","yes"]]}`
	case strings.Contains(prompt, "Block type: tables"):
		return `{"headers":["Type","Example"],"rows":[["int","42"],["str","'hi'"]]}`
	case strings.Contains(prompt, "Block type: interactive"):
		return `{"items":[{"title":"Numbers","content":"int and float."}]}`
	case strings.Contains(prompt, "Block type: image"):
		return `{"prompt":"Python variables as labelled boxes","alt":"Boxes","caption":"Variables"}`
	default:
		return "Variables name values so you can reuse them."
	}
}

func newTestOrchestrator(gw *fakeGateway, opts Options) *Orchestrator {
	builder := showcase.NewBuilder(blockgen.New(gw, nil), gw, nil, showcase.Options{})
	return NewOrchestrator(Deps{Gateway: gw, Builder: builder}, opts)
}

func TestGeneratePythonBeginnerCourse(t *testing.T) {
	gw := &fakeGateway{}
	doc, err := newTestOrchestrator(gw, Options{LogUsage: true}).Generate(context.Background(), Request{
		Title:      "Python Programming Fundamentals",
		Difficulty: "beginner",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(doc.Modules) != 1 || len(doc.Modules[0].Lessons) != 1 {
		t.Fatalf("expected one module with one lesson, got %+v", doc.Modules)
	}
	mod := doc.Modules[0]
	les := mod.Lessons[0]
	if mod.ModuleOrder != 1 || les.LessonOrder != 1 || les.LessonTitle != "Variables and Types" {
		t.Fatalf("unexpected skeleton: %+v", mod)
	}
	if len(les.ContentBlocks) == 0 {
		t.Fatalf("lesson has no content blocks")
	}
	if err := blocks.CheckSequence(les.ContentBlocks); err != nil {
		t.Fatalf("CheckSequence: %v", err)
	}
	if mod.Thumbnail == "" || les.Thumbnail == "" || !strings.Contains(les.ThumbnailPrompt, "laptop") {
		t.Fatalf("thumbnails not populated: module=%q lesson=%q prompt=%q", mod.Thumbnail, les.Thumbnail, les.ThumbnailPrompt)
	}
	if doc.Fallback {
		t.Fatalf("unexpected fallback flag")
	}
	if len(doc.LearningObjectives) != 2 {
		t.Fatalf("objectives not cleaned: %v", doc.LearningObjectives)
	}
	if len(gw.batches) != 1 || len(gw.batches[0]) == 0 {
		t.Fatalf("expected one usage batch, got %d", len(gw.batches))
	}
}

func TestThumbnailFailureSerializesEmptyString(t *testing.T) {
	gw := &fakeGateway{image: func(n int) (*gateway.ImageResult, error) {
		if n == 0 {
			return &gateway.ImageResult{Success: false, Status: 402, Error: "quota"}, nil
		}
		return nil, gateway.ErrServiceUnavailable
	}}
	doc, err := newTestOrchestrator(gw, Options{}).Generate(context.Background(), Request{Title: "Python Programming Fundamentals", Difficulty: "beginner"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var generic struct {
		Modules []map[string]any `json:"modules"`
	}
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	thumb, ok := generic.Modules[0]["thumbnail"]
	if !ok || thumb != "" {
		t.Fatalf("module thumbnail should be present and empty, got %v (present=%v)", thumb, ok)
	}
	lessons := generic.Modules[0]["lessons"].([]any)
	if lt, ok := lessons[0].(map[string]any)["thumbnail"]; !ok || lt != "" {
		t.Fatalf("lesson thumbnail should be present and empty, got %v", lt)
	}
	if gw.batches != nil {
		t.Fatalf("usage logging should be off by default")
	}
}

func TestSkeletonFailureFallsBack(t *testing.T) {
	for name, structured := range map[string]func() (*gateway.StructuredResult, error){
		"error":      func() (*gateway.StructuredResult, error) { return nil, gateway.ErrServiceUnavailable },
		"array":      func() (*gateway.StructuredResult, error) { return &gateway.StructuredResult{Data: json.RawMessage(`[1,2]`)}, nil },
		"no lessons": func() (*gateway.StructuredResult, error) { return &gateway.StructuredResult{Data: json.RawMessage(`{"module":{"module_title":"M"}}`)}, nil },
	} {
		gw := &fakeGateway{structured: structured}
		doc, err := newTestOrchestrator(gw, Options{SkipThumbnails: true}).Generate(context.Background(), Request{Title: "Python Programming Fundamentals"})
		if err != nil {
			t.Fatalf("%s: Generate: %v", name, err)
		}
		if title := doc.Modules[0].Lessons[0].LessonTitle; strings.TrimSpace(title) == "" {
			t.Fatalf("%s: empty lesson title", name)
		}
		if !doc.Fallback || doc.DifficultyLevel != "beginner" {
			t.Fatalf("%s: unexpected fallback doc: %+v", name, doc)
		}
	}
}

func TestSkeletonArrayShapeAccepted(t *testing.T) {
	gw := &fakeGateway{structured: func() (*gateway.StructuredResult, error) {
		return &gateway.StructuredResult{Data: json.RawMessage(`{"title":"T","modules":[{"module_title":"M1","lessons":[{"lesson_title":"L1"}]}]}`)}, nil
	}}
	doc, err := newTestOrchestrator(gw, Options{SkipThumbnails: true}).Generate(context.Background(), Request{Title: "T", Difficulty: "Advanced"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if doc.Modules[0].ModuleTitle != "M1" || doc.Modules[0].Lessons[0].LessonTitle != "L1" || doc.Fallback {
		t.Fatalf("unexpected doc: %+v", doc)
	}
	if doc.DifficultyLevel != "advanced" || doc.Modules[0].Lessons[0].LessonSummary == "" {
		t.Fatalf("gaps not filled: %+v", doc)
	}
}

type fakeBuilder struct {
	build       func() ([]blocks.Block, error)
	staticCalls int
}

func (f *fakeBuilder) Build(ctx context.Context, in showcase.LessonInput) ([]blocks.Block, error) {
	return f.build()
}

func (f *fakeBuilder) BuildStatic(in showcase.LessonInput) ([]blocks.Block, error) {
	f.staticCalls++
	out := []blocks.Block{blocks.New(blocks.Text{Variant: blocks.VariantHeading}, in.LessonTitle)}
	blocks.Renumber(out)
	return out, nil
}

func TestLessonFailureUsesStaticLesson(t *testing.T) {
	b := &fakeBuilder{build: func() ([]blocks.Block, error) { return nil, gateway.ErrQuotaExceeded }}
	o := NewOrchestrator(Deps{Gateway: &fakeGateway{}, Builder: b}, Options{SkipThumbnails: true})
	doc, err := o.Generate(context.Background(), Request{Title: "Python Programming Fundamentals"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if b.staticCalls != 1 || !doc.Fallback || len(doc.Modules[0].Lessons[0].ContentBlocks) != 1 {
		t.Fatalf("static lesson not used: calls=%d doc=%+v", b.staticCalls, doc)
	}
}

func TestPanicYieldsMinimalDocument(t *testing.T) {
	b := &fakeBuilder{build: func() ([]blocks.Block, error) { panic("boom") }}
	o := NewOrchestrator(Deps{Gateway: &fakeGateway{}, Builder: b}, Options{SkipThumbnails: true})
	doc, err := o.Generate(context.Background(), Request{Title: "Python Programming Fundamentals"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	les := doc.Modules[0].Lessons[0]
	if les.LessonTitle == "" || len(les.ContentBlocks) != 2 || !doc.Fallback {
		t.Fatalf("unexpected minimal doc: %+v", doc)
	}
	if err := blocks.CheckSequence(les.ContentBlocks); err != nil {
		t.Fatalf("CheckSequence: %v", err)
	}
}

func TestCancellationIsReturned(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc, err := newTestOrchestrator(&fakeGateway{}, Options{}).Generate(ctx, Request{Title: "Python Programming Fundamentals"})
	if !errors.Is(err, context.Canceled) || doc != nil {
		t.Fatalf("expected cancellation, got doc=%v err=%v", doc, err)
	}
	if !IsAbort(err) {
		t.Fatalf("IsAbort(%v) = false", err)
	}
}

func TestSkipThumbnails(t *testing.T) {
	gw := &fakeGateway{}
	doc, err := NewOrchestrator(Deps{Gateway: gw, Builder: &fakeBuilder{build: func() ([]blocks.Block, error) {
		return []blocks.Block{{ID: "text_1", Type: blocks.TypeText, Variant: blocks.VariantHeading, Content: "x", Order: 1}}, nil
	}}}, Options{SkipThumbnails: true}).Generate(context.Background(), Request{Title: "Python Programming Fundamentals"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gw.imageCalls != 0 || doc.Modules[0].Thumbnail != "" || doc.Modules[0].ThumbnailPrompt != "" {
		t.Fatalf("thumbnails should be skipped: calls=%d", gw.imageCalls)
	}
}

func TestUsageLoggingFailureIsNotReturned(t *testing.T) {
	gw := &fakeGateway{logBatch: func([]gateway.GenerationRecord) error { return gateway.ErrRequest }}
	if _, err := newTestOrchestrator(gw, Options{LogUsage: true, SkipThumbnails: true}).Generate(context.Background(), Request{Title: "Python Programming Fundamentals"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(gw.batches) != 1 {
		t.Fatalf("expected a usage batch attempt")
	}
}

func TestProgressIsMonotonic(t *testing.T) {
	var stages []string
	last := -1
	opts := Options{LogUsage: true, Progress: func(stage string, pct int, msg string) {
		if pct < last {
			t.Fatalf("progress went backwards at %s: %d < %d", stage, pct, last)
		}
		last = pct
		stages = append(stages, stage)
	}}
	if _, err := newTestOrchestrator(&fakeGateway{}, opts).Generate(context.Background(), Request{Title: "Python Programming Fundamentals"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if strings.Join(stages, ",") != "skeleton,thumbnails,lesson,usage,done" || last != 100 {
		t.Fatalf("stages=%v last=%d", stages, last)
	}
}

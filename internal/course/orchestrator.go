package course

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/neurobridge-coursegen/internal/content/blocks"
	"github.com/yungbote/neurobridge-coursegen/internal/content/showcase"
	"github.com/yungbote/neurobridge-coursegen/internal/content/textutil"
	"github.com/yungbote/neurobridge-coursegen/internal/gateway"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
)

const (
	thumbnailFolder         = "course-thumbnails"
	thumbnailPromptMaxToken = 120
)

// Gateway is the subset of *gateway.Client the orchestrator calls.
type Gateway interface {
	GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, opts gateway.StructuredOptions) (*gateway.StructuredResult, error)
	GenerateText(ctx context.Context, prompt string, opts gateway.TextOptions) (*gateway.TextResult, error)
	GenerateImage(ctx context.Context, spec gateway.ImagePromptSpec) (*gateway.ImageResult, error)
	LogGenerationBatch(ctx context.Context, recs []gateway.GenerationRecord) error
}

type LessonBuilder interface {
	Build(ctx context.Context, in showcase.LessonInput) ([]blocks.Block, error)
	BuildStatic(in showcase.LessonInput) ([]blocks.Block, error)
}

type Deps struct {
	Gateway Gateway
	Builder LessonBuilder
	Logger  *logger.Logger
}

type Options struct {
	SkipThumbnails bool
	// LogUsage sends the run's generation records to the usage endpoint.
	LogUsage bool
	// Progress, when set, is told about stage transitions. Percentages never
	// go backwards.
	Progress func(stage string, pct int, msg string)
}

type Orchestrator struct {
	gw      Gateway
	builder LessonBuilder
	log     *logger.Logger
	opts    Options
	now     func() time.Time
}

func NewOrchestrator(deps Deps, opts Options) *Orchestrator {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		gw:      deps.Gateway,
		builder: deps.Builder,
		log:     log.With("service", "CourseOrchestrator"),
		opts:    opts,
		now:     time.Now,
	}
}

type buildContext struct {
	ctx     context.Context
	req     Request
	doc     *Document
	topic   showcase.Topic
	records []gateway.GenerationRecord

	lastProgress int
}

// Generate builds one course document. Stage failures are absorbed by
// fallbacks; the only error returned is the context's.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (doc *Document, err error) {
	req = normalizeRequest(req)
	bc := &buildContext{ctx: ctx, req: req, topic: showcase.DetectTopic(req.Title)}

	defer func() {
		if r := recover(); r != nil {
			o.log.Error("Course generation panicked; returning minimal document", "title", req.Title, "panic", r)
			doc, err = minimalDocument(req), nil
			if ctx.Err() != nil {
				doc, err = nil, ctx.Err()
			}
		}
	}()

	// 1) Skeleton
	o.progress(bc, "skeleton", 10, "Drafting course outline")
	o.stageSkeleton(bc)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2) Thumbnails
	if !o.opts.SkipThumbnails {
		o.progress(bc, "thumbnails", 30, "Generating thumbnails")
		if err := o.stageThumbnails(bc); err != nil {
			return nil, err
		}
	}

	// 3) Lesson body
	o.progress(bc, "lesson", 50, "Writing lesson content")
	if err := o.stageLesson(bc); err != nil {
		return nil, err
	}

	// 4) Usage
	if o.opts.LogUsage {
		o.stageUsage(bc)
	}

	o.progress(bc, "done", 100, "Course ready")
	o.log.Info("Course generated",
		"title", bc.doc.Title,
		"blocks", len(bc.doc.Modules[0].Lessons[0].ContentBlocks),
		"fallback", bc.doc.Fallback,
		"generations", len(bc.records),
	)
	return bc.doc, nil
}

func (o *Orchestrator) stageSkeleton(bc *buildContext) {
	if o.gw == nil {
		bc.doc = fallbackDocument(bc.req)
		return
	}
	user := skeletonUserPrompt(bc.req)
	start := o.now()
	res, err := o.gw.GenerateStructured(bc.ctx, skeletonSystemPrompt, user, gateway.StructuredOptions{MaxTokens: skeletonMaxTokens})
	rec := gateway.GenerationRecord{GenerationType: "course_skeleton", Prompt: user, DurationMS: o.now().Sub(start).Milliseconds()}
	if err == nil {
		rec.TokensUsed, rec.Cost = res.TokensUsed, res.Cost
		var sk skeleton
		if err = res.Decode(&sk); err == nil {
			bc.doc, err = sk.toDocument(bc.req)
		}
	}
	if err != nil {
		rec.Error = err.Error()
		bc.records = append(bc.records, rec)
		o.log.Warn("Skeleton generation failed; using fallback", "title", bc.req.Title, "error", err)
		bc.doc = fallbackDocument(bc.req)
		return
	}
	rec.Success = true
	bc.records = append(bc.records, rec)
}

// stageThumbnails fills module then lesson thumbnails. Each failure leaves
// an empty url; only cancellation is returned.
func (o *Orchestrator) stageThumbnails(bc *buildContext) error {
	mod := &bc.doc.Modules[0]
	les := &mod.Lessons[0]

	var err error
	mod.ThumbnailPrompt, mod.Thumbnail, err = o.thumbnail(bc, "module", mod.ModuleTitle, mod.ModuleOverview)
	if err != nil {
		return err
	}
	les.ThumbnailPrompt, les.Thumbnail, err = o.thumbnail(bc, "lesson", les.LessonTitle, les.LessonSummary)
	return err
}

func (o *Orchestrator) thumbnail(bc *buildContext, level, title, summary string) (prompt, url string, err error) {
	prompt = o.thumbnailPrompt(bc, level, title, summary)
	if err := bc.ctx.Err(); err != nil {
		return prompt, "", err
	}
	if o.gw == nil {
		return prompt, "", nil
	}

	start := o.now()
	res, err := o.gw.GenerateImage(bc.ctx, gateway.ImagePromptSpec{Prompt: prompt, Folder: thumbnailFolder})
	rec := gateway.GenerationRecord{
		GenerationType: "image",
		Prompt:         prompt,
		DurationMS:     o.now().Sub(start).Milliseconds(),
		Metadata:       map[string]any{"thumbnail": level},
	}
	switch {
	case err != nil:
		rec.Error = err.Error()
		bc.records = append(bc.records, rec)
		if bc.ctx.Err() != nil {
			return prompt, "", bc.ctx.Err()
		}
		o.log.Warn("Thumbnail generation failed", "level", level, "error", err)
		return prompt, "", nil
	case !res.Success:
		rec.Error = res.Error
		bc.records = append(bc.records, rec)
		o.log.Warn("Thumbnail generation declined", "level", level, "status", res.Status, "error", res.Error)
		return prompt, "", nil
	}
	rec.Success, rec.Cost = true, res.Cost
	bc.records = append(bc.records, rec)
	return prompt, res.URL, nil
}

// thumbnailPrompt asks for an image prompt and falls back to a template.
func (o *Orchestrator) thumbnailPrompt(bc *buildContext, level, title, summary string) string {
	fallback := fmt.Sprintf("A clean, modern illustration representing %s, inspired by %s, soft colors, no text", title, bc.topic.Example)
	if o.gw == nil {
		return fallback
	}
	ask := fmt.Sprintf("Write one sentence describing a thumbnail image for the %s %q of the course %q. %s "+
		"Describe a concrete visual scene in a clean, modern illustration style. The image must contain no text.",
		level, title, bc.doc.Title, summary)
	start := o.now()
	res, err := o.gw.GenerateText(bc.ctx, ask, gateway.TextOptions{MaxTokens: thumbnailPromptMaxToken})
	rec := gateway.GenerationRecord{
		GenerationType: "thumbnail_prompt",
		Prompt:         ask,
		DurationMS:     o.now().Sub(start).Milliseconds(),
		Metadata:       map[string]any{"thumbnail": level},
	}
	if err != nil {
		rec.Error = err.Error()
		bc.records = append(bc.records, rec)
		if bc.ctx.Err() == nil {
			o.log.Warn("Thumbnail prompt generation failed; using template", "level", level, "error", err)
		}
		return fallback
	}
	rec.Success, rec.TokensUsed, rec.Cost = true, res.TokensUsed, res.Cost
	bc.records = append(bc.records, rec)

	prompt := textutil.Unquote(textutil.DropLabel(textutil.StripMarkdown(res.Text)))
	if prompt == "" {
		return fallback
	}
	return textutil.Truncate(prompt, textutil.MaxImagePromptChars)
}

func (o *Orchestrator) stageLesson(bc *buildContext) error {
	mod := &bc.doc.Modules[0]
	les := &mod.Lessons[0]
	in := showcase.LessonInput{
		CourseTitle: bc.doc.Title,
		ModuleTitle: mod.ModuleTitle,
		LessonTitle: les.LessonTitle,
		Difficulty:  bc.doc.DifficultyLevel,
		Topic:       &bc.topic,
		Record:      func(r gateway.GenerationRecord) { bc.records = append(bc.records, r) },
	}
	if o.builder == nil {
		les.ContentBlocks = minimalBlocks(les.LessonTitle, les.LessonSummary)
		bc.doc.Fallback = true
		return nil
	}

	out, err := o.builder.Build(bc.ctx, in)
	if err != nil {
		if ctxErr := bc.ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		o.log.Warn("Lesson generation failed; using static lesson", "lesson", les.LessonTitle, "error", err)
		bc.doc.Fallback = true
		if out, err = o.builder.BuildStatic(in); err != nil {
			o.log.Error("Static lesson failed", "lesson", les.LessonTitle, "error", err)
			out = minimalBlocks(les.LessonTitle, les.LessonSummary)
		}
	}
	if len(out) == 0 {
		bc.doc.Fallback = true
		out = minimalBlocks(les.LessonTitle, les.LessonSummary)
	}
	les.ContentBlocks = out
	return nil
}

func (o *Orchestrator) stageUsage(bc *buildContext) {
	if o.gw == nil || len(bc.records) == 0 || bc.ctx.Err() != nil {
		return
	}
	o.progress(bc, "usage", 95, "Recording usage")
	if err := o.gw.LogGenerationBatch(bc.ctx, bc.records); err != nil {
		o.log.Warn("Usage logging failed", "records", len(bc.records), "error", err)
	}
}

func (o *Orchestrator) progress(bc *buildContext, stage string, pct int, msg string) {
	if o.opts.Progress == nil {
		return
	}
	if pct < bc.lastProgress {
		pct = bc.lastProgress
	} else {
		bc.lastProgress = pct
	}
	o.opts.Progress(stage, pct, msg)
}

func normalizeRequest(req Request) Request {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Difficulty = strings.ToLower(strings.TrimSpace(req.Difficulty))
	req.Duration = strings.TrimSpace(req.Duration)
	req.TargetAudience = strings.TrimSpace(req.TargetAudience)
	req.Objectives = cleanList(req.Objectives)
	return req
}

// minimalDocument is the last-resort document: fallback skeleton plus a
// two-block lesson.
func minimalDocument(req Request) *Document {
	doc := fallbackDocument(req)
	les := &doc.Modules[0].Lessons[0]
	les.ContentBlocks = minimalBlocks(les.LessonTitle, les.LessonSummary)
	return doc
}

func minimalBlocks(title, summary string) []blocks.Block {
	out := []blocks.Block{
		blocks.New(blocks.Text{Variant: blocks.VariantHeading}, firstNonEmpty(title, "Lesson")),
		blocks.New(blocks.Text{Variant: blocks.VariantParagraph}, firstNonEmpty(summary, "Content for this lesson is not available yet.")),
	}
	blocks.Renumber(out)
	return out
}

// IsAbort reports whether err is a caller abort rather than a generation
// failure.
func IsAbort(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

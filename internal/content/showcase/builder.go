// Package showcase builds the showcase lesson: one block for every
// type/variant combination, in a fixed order, mixing generated and
// templated content flavoured by the course's subject domain.
package showcase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/neurobridge-coursegen/internal/content/blockgen"
	"github.com/yungbote/neurobridge-coursegen/internal/content/blocks"
	"github.com/yungbote/neurobridge-coursegen/internal/gateway"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
)

const defaultImageFolder = "lesson-images"

type BlockGenerator interface {
	Generate(ctx context.Context, req blockgen.Request) (*blockgen.Result, error)
}

type ImageGenerator interface {
	GenerateImage(ctx context.Context, spec gateway.ImagePromptSpec) (*gateway.ImageResult, error)
}

type Options struct {
	// Plan overrides the loaded plan; used by tests.
	Plan        []Entry
	ImageFolder string
}

type Builder struct {
	gen    BlockGenerator
	images ImageGenerator
	log    *logger.Logger
	plan   []Entry
	folder string
	now    func() time.Time
}

// LessonInput is the slice of the course skeleton the builder needs. A nil
// Topic is detected from CourseTitle. Record, when set, receives one usage
// record per generation call.
type LessonInput struct {
	CourseTitle string
	ModuleTitle string
	LessonTitle string
	Difficulty  string
	Topic       *Topic
	Record      func(gateway.GenerationRecord)
}

// NewBuilder wires a builder. gen may be nil, in which case every entry is
// templated; images may be nil, in which case image urls stay empty.
func NewBuilder(gen BlockGenerator, images ImageGenerator, log *logger.Logger, opts Options) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("service", "ShowcaseBuilder")
	plan := opts.Plan
	if len(plan) == 0 {
		loaded, err := LoadPlan()
		if err != nil {
			log.Warn("showcase: plan load failed; using fallback", "error", err)
			loaded = fallbackPlan()
		}
		plan = loaded
	}
	folder := strings.TrimSpace(opts.ImageFolder)
	if folder == "" {
		folder = defaultImageFolder
	}
	return &Builder{gen: gen, images: images, log: log, plan: plan, folder: folder, now: time.Now}
}

// Plan returns a copy of the emission plan.
func (b *Builder) Plan() []Entry {
	return append([]Entry(nil), b.plan...)
}

// Build emits the lesson blocks one at a time in plan order. A generated
// entry whose answer is unusable is replaced by its template; any other
// generation failure aborts the build.
func (b *Builder) Build(ctx context.Context, in LessonInput) ([]blocks.Block, error) {
	return b.build(ctx, in, false)
}

// BuildStatic renders every entry from templates without any network call.
func (b *Builder) BuildStatic(in LessonInput) ([]blocks.Block, error) {
	return b.build(context.Background(), in, true)
}

func (b *Builder) build(ctx context.Context, in LessonInput, static bool) ([]blocks.Block, error) {
	topic := DetectTopic(in.CourseTitle)
	if in.Topic != nil {
		topic = *in.Topic
	}
	d := templateData{
		CourseTitle: firstNonEmpty(in.CourseTitle, "This Course"),
		ModuleTitle: strings.TrimSpace(in.ModuleTitle),
		LessonTitle: firstNonEmpty(in.LessonTitle, in.CourseTitle, "This Lesson"),
		Difficulty:  strings.TrimSpace(in.Difficulty),
		Topic:       topic.Name,
		Example:     topic.Example,
		Resource:    topic.Resource,
	}

	out := make([]blocks.Block, 0, len(b.plan))
	section := 0
	for _, e := range b.plan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d.Variant = string(e.Kind.BlockVariant())
		if e.Kind.BlockVariant() == blocks.VariantNumberedDivider {
			section++
			d.Section = section
		}

		var content string
		var err error
		if static || e.Mode == ModeTemplate || b.gen == nil {
			content, err = staticContent(e.Kind, topic, d)
		} else {
			content, err = b.generate(ctx, e, topic, d, in)
		}
		if err != nil {
			return nil, fmt.Errorf("showcase: %s/%s: %w", e.Kind.Type(), e.Kind.BlockVariant(), err)
		}
		if !static && e.Kind.Type() == blocks.TypeImage {
			if content, err = b.fillImage(ctx, content, in); err != nil {
				return nil, err
			}
		}
		out = append(out, blocks.New(e.Kind, content))
	}
	blocks.Renumber(out)

	b.log.Debug("Built showcase lesson",
		"lesson", d.LessonTitle,
		"topic", topic.Name,
		"blocks", len(out),
		"static", static,
	)
	return out, nil
}

func (b *Builder) generate(ctx context.Context, e Entry, topic Topic, d templateData, in LessonInput) (string, error) {
	prompt, err := render(e.Prompt, d)
	if err != nil {
		return "", err
	}
	start := b.now()
	res, err := b.gen.Generate(ctx, blockgen.Request{
		Kind:       e.Kind,
		UserPrompt: prompt,
		Course: blockgen.CourseContext{
			CourseTitle: d.CourseTitle,
			ModuleTitle: d.ModuleTitle,
			LessonTitle: d.LessonTitle,
			Difficulty:  d.Difficulty,
			Topic:       topic.Name,
		},
	})
	rec := gateway.GenerationRecord{
		GenerationType: "content_block",
		Prompt:         prompt,
		DurationMS:     b.now().Sub(start).Milliseconds(),
		Metadata:       map[string]any{"blockType": string(e.Kind.Type()), "variant": string(e.Kind.BlockVariant())},
	}
	if err != nil {
		rec.Error = err.Error()
		record(in, rec)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, gateway.ErrValidation) {
			b.log.Warn("Block answer unusable; using template",
				"type", string(e.Kind.Type()),
				"variant", string(e.Kind.BlockVariant()),
				"error", err,
			)
			return staticContent(e.Kind, topic, d)
		}
		return "", err
	}
	rec.TokensUsed = res.TokensUsed
	rec.Cost = res.Cost
	if _, err := blocks.DecodeContent(blocks.New(e.Kind, res.Content)); err != nil {
		rec.Error = err.Error()
		record(in, rec)
		b.log.Warn("Generated block does not decode; using template",
			"type", string(e.Kind.Type()),
			"variant", string(e.Kind.BlockVariant()),
			"error", err,
		)
		return staticContent(e.Kind, topic, d)
	}
	rec.Success = true
	record(in, rec)
	return res.Content, nil
}

// fillImage generates an image for an image block's prompt. Failures leave
// the url empty.
func (b *Builder) fillImage(ctx context.Context, content string, in LessonInput) (string, error) {
	if b.images == nil {
		return content, nil
	}
	decoded, err := blocks.DecodeContent(blocks.Block{Type: blocks.TypeImage, Content: content})
	if err != nil {
		return content, nil
	}
	p := decoded.(*blocks.ImagePayload)

	start := b.now()
	res, err := b.images.GenerateImage(ctx, gateway.ImagePromptSpec{Prompt: p.Prompt, Folder: b.folder})
	rec := gateway.GenerationRecord{
		GenerationType: "image",
		Prompt:         p.Prompt,
		DurationMS:     b.now().Sub(start).Milliseconds(),
		Metadata:       map[string]any{"blockType": string(blocks.TypeImage)},
	}
	switch {
	case err != nil:
		rec.Error = err.Error()
		record(in, rec)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		b.log.Warn("Block image generation failed", "error", err)
		return content, nil
	case !res.Success:
		rec.Error = res.Error
		record(in, rec)
		b.log.Warn("Block image declined", "status", res.Status, "error", res.Error)
		return content, nil
	}
	rec.Success = true
	rec.Cost = res.Cost
	record(in, rec)

	p.URL = res.URL
	out, err := blocks.Encode(p)
	if err != nil {
		return content, nil
	}
	return out, nil
}

func record(in LessonInput, rec gateway.GenerationRecord) {
	if in.Record != nil {
		in.Record(rec)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Package blockgen generates the content of a single lesson block: it builds
// a type-specific prompt, calls the text generator with a per-type budget and
// decodes the answer into the block's content contract.
package blockgen

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yungbote/neurobridge-coursegen/internal/content/blocks"
	"github.com/yungbote/neurobridge-coursegen/internal/content/jsonparse"
	"github.com/yungbote/neurobridge-coursegen/internal/content/textutil"
	"github.com/yungbote/neurobridge-coursegen/internal/gateway"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/promptstyle"
)

const rawPrefixLen = 200

// TextGenerator is the slice of the gateway client the generator needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, opts gateway.TextOptions) (*gateway.TextResult, error)
}

// CourseContext grounds a block in its course, module and lesson.
type CourseContext struct {
	CourseTitle string
	ModuleTitle string
	LessonTitle string
	Difficulty  string
	Topic       string
}

// Request asks for one block. The variant carried by Kind is the template id.
type Request struct {
	Kind         blocks.Kind
	UserPrompt   string
	Instructions string
	Course       CourseContext
}

type Result struct {
	Type       blocks.Type
	TemplateID blocks.Variant
	Content    string
	TokensUsed int
	Cost       float64
}

type Generator struct {
	gen TextGenerator
	log *logger.Logger
}

func New(gen TextGenerator, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{gen: gen, log: log.With("service", "BlockGenerator")}
}

// Supports reports whether blocks of kind k are produced by Generate.
// Media kinds are always templated.
func Supports(k blocks.Kind) bool {
	if k == nil {
		return false
	}
	switch k.Type() {
	case blocks.TypeVideo, blocks.TypeAudio, blocks.TypeYouTube, blocks.TypeLink, blocks.TypePDF:
		return false
	}
	return true
}

func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Kind == nil {
		return nil, gateway.NewValidationError("Block type is required.", "blockgen: nil kind", nil)
	}
	if strings.TrimSpace(req.UserPrompt) == "" {
		if strings.TrimSpace(req.Course.LessonTitle) == "" {
			return nil, gateway.NewValidationError("Describe the block you want to generate.", "blockgen: empty prompt", nil)
		}
		req.UserPrompt = "Content for the lesson " + strings.TrimSpace(req.Course.LessonTitle)
	}
	if g.gen == nil {
		return nil, fmt.Errorf("blockgen: no text generator configured")
	}

	v := &visitor{g: g, ctx: ctx, req: req}
	if err := blocks.Visit(req.Kind, v); err != nil {
		return nil, err
	}
	v.res.Type = req.Kind.Type()
	v.res.TemplateID = req.Kind.BlockVariant()

	g.log.Debug("Generated block",
		"type", string(v.res.Type),
		"variant", string(v.res.TemplateID),
		"tokens", v.res.TokensUsed,
	)
	return &v.res, nil
}

type visitor struct {
	g   *Generator
	ctx context.Context
	req Request
	res Result
}

func (v *visitor) VisitText(k blocks.Text) error {
	return v.plain(k, budgetText, systemPlain, textFormats[k.Variant], func(raw string) (string, error) {
		return cleanText(k.Variant, raw), nil
	})
}

func (v *visitor) VisitStatement(k blocks.Statement) error {
	system := systemPlain
	if k.Variant == blocks.VariantStatementC {
		system = systemHighlight
	}
	return v.plain(k, budgetStatement, system, statementFormats[k.Variant], func(raw string) (string, error) {
		return cleanStatement(k.Variant, raw), nil
	})
}

func (v *visitor) VisitQuote(k blocks.Quote) error {
	if k.Variant == blocks.VariantQuoteCarousel {
		return v.structured(k, budgetQuote, carouselShape, &blocks.QuoteCarouselPayload{}, nil)
	}
	return v.structured(k, budgetQuote, quoteShape, &blocks.QuotePayload{}, nil)
}

func (v *visitor) VisitList(k blocks.List) error {
	return v.structured(k, budgetList, listFormats[k.Variant], &blocks.ListPayload{}, nil)
}

func (v *visitor) VisitTables(k blocks.Tables) error {
	format := tableShape2
	if k.Variant == blocks.VariantThreeColumns {
		format = tableShape3
	}
	p := &blocks.TablePayload{}
	return v.structured(k, budgetTables, format, p, func() error {
		if want := blocks.TableColumns(k.Variant); len(p.Headers) != want {
			return fmt.Errorf("%w: table has %d columns, want %d", blocks.ErrInvalidPayload, len(p.Headers), want)
		}
		return nil
	})
}

func (v *visitor) VisitInteractive(k blocks.Interactive) error {
	return v.structured(k, budgetInteractive, interactiveFormats[k.Variant], &blocks.InteractivePayload{}, nil)
}

func (v *visitor) VisitImage(k blocks.Image) error {
	p := &blocks.ImagePayload{}
	return v.structured(k, budgetImage, imageFormats[k.Variant], p, func() error {
		// The model describes the image; a URL only comes from image generation.
		p.URL = ""
		return nil
	})
}

func (v *visitor) VisitDivider(k blocks.Divider) error {
	if k.Variant == blocks.VariantSpacer {
		v.res.Content = blocks.SpacerContent
		return nil
	}
	return v.plain(k, budgetDivider, systemPlain, dividerFormats[k.Variant], func(raw string) (string, error) {
		return normalizeDivider(k.Variant, raw)
	})
}

func (v *visitor) VisitVideo(k blocks.Video) error     { return notGenerated(k) }
func (v *visitor) VisitAudio(k blocks.Audio) error     { return notGenerated(k) }
func (v *visitor) VisitYouTube(k blocks.YouTube) error { return notGenerated(k) }
func (v *visitor) VisitLink(k blocks.Link) error       { return notGenerated(k) }
func (v *visitor) VisitPDF(k blocks.PDF) error         { return notGenerated(k) }

func notGenerated(k blocks.Kind) error {
	return gateway.NewValidationError(
		fmt.Sprintf("%s blocks are added from a URL, not generated.", k.Type()),
		fmt.Sprintf("blockgen: %s is not a generated block type", k.Type()),
		nil,
	)
}

func (v *visitor) prompt(k blocks.Kind, format string) string {
	c := v.req.Course
	return renderUser(promptInput{
		CourseTitle:  strings.TrimSpace(c.CourseTitle),
		ModuleTitle:  strings.TrimSpace(c.ModuleTitle),
		LessonTitle:  strings.TrimSpace(c.LessonTitle),
		Difficulty:   strings.TrimSpace(c.Difficulty),
		Topic:        strings.TrimSpace(c.Topic),
		UserPrompt:   strings.TrimSpace(v.req.UserPrompt),
		Instructions: strings.TrimSpace(v.req.Instructions),
		Type:         string(k.Type()),
		Variant:      string(k.BlockVariant()),
		Format:       format,
	})
}

func (v *visitor) call(k blocks.Kind, budget int, system, format string, mode promptstyle.Mode) (string, error) {
	res, err := v.g.gen.GenerateText(v.ctx, v.prompt(k, format), gateway.TextOptions{
		MaxTokens:    budget,
		SystemPrompt: system,
		Mode:         mode,
	})
	if err != nil {
		return "", err
	}
	v.res.TokensUsed = res.TokensUsed
	v.res.Cost = res.Cost
	return res.Text, nil
}

func (v *visitor) plain(k blocks.Kind, budget int, system, format string, clean func(string) (string, error)) error {
	raw, err := v.call(k, budget, system, format, promptstyle.ModePlain)
	if err != nil {
		return err
	}
	content, err := clean(raw)
	if err == nil && strings.TrimSpace(content) == "" {
		err = fmt.Errorf("%w: empty %s content", blocks.ErrInvalidPayload, k.Type())
	}
	if err != nil {
		return unusable(k, raw, err)
	}
	v.res.Content = content
	return nil
}

// structured decodes a JSON answer into p, runs check, and re-encodes p so
// the stored content is canonical.
func (v *visitor) structured(k blocks.Kind, budget int, format string, p blocks.Payload, check func() error) error {
	raw, err := v.call(k, budget, systemJSON, format, promptstyle.ModeJSON)
	if err != nil {
		return err
	}
	if err := jsonparse.Parse(raw, p); err != nil {
		return unusable(k, raw, err)
	}
	if check != nil {
		if err := check(); err != nil {
			return unusable(k, raw, err)
		}
	}
	content, err := blocks.Encode(p)
	if err != nil {
		return unusable(k, raw, err)
	}
	v.res.Content = content
	return nil
}

func unusable(k blocks.Kind, raw string, err error) error {
	return gateway.NewValidationError(
		fmt.Sprintf("The AI returned an unusable %s block. Please try again.", k.Type()),
		fmt.Sprintf("blockgen: %s/%s: %v; raw=%q", k.Type(), k.BlockVariant(), err, textutil.Clip(strings.TrimSpace(raw), rawPrefixLen)),
		err,
	)
}

var preambleRE = regexp.MustCompile(`(?i)^(sure|certainly|of course|here(?:'s| is| are))\b[^\n]*:\s*\n`)

func dropPreamble(s string) string {
	return preambleRE.ReplaceAllString(strings.TrimSpace(s), "")
}

// cleanText splits headings off the raw answer before stripping markdown;
// goldmark folds a single newline into a space.
func cleanText(variant blocks.Variant, raw string) string {
	raw = dropPreamble(raw)
	switch variant {
	case blocks.VariantHeading, blocks.VariantMasterHeading, blocks.VariantSubheading:
		head, _ := splitHead(raw)
		return cleanHeading(textutil.StripMarkdown(head))
	case blocks.VariantHeadingParagraph, blocks.VariantSubheadingParagraph:
		head, body := splitHead(raw)
		head = cleanHeading(textutil.StripMarkdown(head))
		body = textutil.DropLabel(textutil.StripMarkdown(body))
		if body == "" {
			return head
		}
		return head + "\n\n" + body
	default:
		return textutil.Unquote(textutil.DropLabel(textutil.StripMarkdown(raw)))
	}
}

// splitHead returns the first non-empty line and everything after it.
func splitHead(s string) (string, string) {
	head, body, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(head), strings.TrimSpace(body)
}

func cleanHeading(s string) string {
	s = textutil.Unquote(textutil.DropLabel(s))
	return strings.TrimRight(s, ".:")
}

func cleanStatement(variant blocks.Variant, raw string) string {
	raw = dropPreamble(raw)
	var s string
	if variant == blocks.VariantStatementC {
		s = textutil.StripMarkdownKeepHighlights(raw)
	} else {
		s = textutil.StripMarkdown(raw)
	}
	return textutil.Unquote(textutil.DropLabel(s))
}

var (
	numberRE     = regexp.MustCompile(`\d+`)
	actionWordRE = regexp.MustCompile(`[\p{L}]+`)
)

const maxActionWordLen = 20

// normalizeDivider reduces model output to the literal a divider variant
// allows.
func normalizeDivider(variant blocks.Variant, raw string) (string, error) {
	s := textutil.StripMarkdown(raw)
	switch variant {
	case blocks.VariantSpacer:
		return blocks.SpacerContent, nil
	case blocks.VariantNumberedDivider:
		n, err := strconv.Atoi(numberRE.FindString(s))
		if err != nil {
			return "", fmt.Errorf("%w: no number in divider answer", blocks.ErrInvalidPayload)
		}
		return strconv.Itoa(n), nil
	default:
		w := actionWordRE.FindString(s)
		if w == "" || len([]rune(w)) > maxActionWordLen {
			return "", fmt.Errorf("%w: no action word in divider answer", blocks.ErrInvalidPayload)
		}
		r := []rune(strings.ToLower(w))
		return strings.ToUpper(string(r[0])) + string(r[1:]), nil
	}
}

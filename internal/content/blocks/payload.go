package blocks

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPayload marks content that does not satisfy its type's contract.
var ErrInvalidPayload = errors.New("blocks: invalid payload")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPayload, fmt.Sprintf(format, args...))
}

// Payload is a decoded JSON block body.
type Payload interface {
	Normalize()
	Validate() error
}

type QuotePayload struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

func (p *QuotePayload) Normalize() {
	p.Quote = strings.Trim(strings.TrimSpace(p.Quote), `"“”`)
	p.Author = strings.TrimLeft(strings.TrimSpace(p.Author), "-—– ")
}

func (p *QuotePayload) Validate() error {
	if strings.TrimSpace(p.Quote) == "" {
		return invalid("quote is empty")
	}
	return nil
}

type QuoteCarouselPayload struct {
	Quotes []QuotePayload `json:"quotes"`
}

func (p *QuoteCarouselPayload) Normalize() {
	out := p.Quotes[:0]
	for _, q := range p.Quotes {
		q.Normalize()
		if q.Quote != "" {
			out = append(out, q)
		}
	}
	p.Quotes = out
}

func (p *QuoteCarouselPayload) Validate() error {
	if len(p.Quotes) == 0 {
		return invalid("quote carousel has no quotes")
	}
	for i := range p.Quotes {
		if err := p.Quotes[i].Validate(); err != nil {
			return fmt.Errorf("quotes[%d]: %w", i, err)
		}
	}
	return nil
}

type ListPayload struct {
	Items []string `json:"items"`
}

func (p *ListPayload) Normalize() {
	out := p.Items[:0]
	for _, it := range p.Items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	p.Items = out
}

func (p *ListPayload) Validate() error {
	if len(p.Items) == 0 {
		return invalid("list has no items")
	}
	return nil
}

type TablePayload struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

func (p *TablePayload) Normalize() {
	for i := range p.Headers {
		p.Headers[i] = strings.TrimSpace(p.Headers[i])
	}
	for _, row := range p.Rows {
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}
	}
}

func (p *TablePayload) Validate() error {
	if len(p.Headers) == 0 {
		return invalid("table has no headers")
	}
	if len(p.Rows) == 0 {
		return invalid("table has no rows")
	}
	for i, row := range p.Rows {
		if len(row) != len(p.Headers) {
			return invalid("row %d has %d cells, want %d", i, len(row), len(p.Headers))
		}
	}
	return nil
}

type InteractiveItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type InteractivePayload struct {
	Items []InteractiveItem `json:"items"`
}

func (p *InteractivePayload) Normalize() {
	for i := range p.Items {
		p.Items[i].Title = strings.TrimSpace(p.Items[i].Title)
		p.Items[i].Content = strings.TrimSpace(p.Items[i].Content)
	}
}

func (p *InteractivePayload) Validate() error {
	if len(p.Items) == 0 {
		return invalid("interactive block has no items")
	}
	for i, it := range p.Items {
		if it.Title == "" || it.Content == "" {
			return invalid("item %d needs a title and content", i)
		}
	}
	return nil
}

// ImagePayload describes an image block. URL stays empty until an image is
// generated for Prompt.
type ImagePayload struct {
	Prompt  string `json:"prompt"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
	URL     string `json:"url"`
}

func (p *ImagePayload) Normalize() {
	p.Prompt = strings.TrimSpace(p.Prompt)
	p.Alt = strings.TrimSpace(p.Alt)
	p.Caption = strings.TrimSpace(p.Caption)
	p.URL = strings.TrimSpace(p.URL)
	if p.Alt == "" {
		p.Alt = p.Caption
	}
}

func (p *ImagePayload) Validate() error {
	if p.Prompt == "" {
		return invalid("image prompt is empty")
	}
	return nil
}

// MediaPayload is the body of link, youtube, video, audio and pdf blocks.
type MediaPayload struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (p *MediaPayload) Normalize() {
	p.URL = strings.TrimSpace(p.URL)
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
}

func (p *MediaPayload) Validate() error {
	if p.URL == "" {
		return invalid("media url is empty")
	}
	if p.Title == "" {
		return invalid("media title is empty")
	}
	return nil
}

// Encode normalizes and validates p, then renders it as block content.
func Encode(p Payload) (string, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return "", err
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// NewPayload returns an empty payload for k, or nil for plain-text kinds.
func NewPayload(k Kind) Payload {
	pv := &payloadFor{}
	_ = Visit(k, pv)
	return pv.out
}

// DecodeContent decodes and validates b.Content against the block's type.
// Plain-text kinds return the content string.
func DecodeContent(b Block) (any, error) {
	k, err := b.Kind()
	if err != nil {
		return nil, err
	}
	p := NewPayload(k)
	if p == nil {
		if strings.TrimSpace(b.Content) == "" {
			return nil, invalid("%s block has empty content", b.Type)
		}
		return b.Content, nil
	}
	if err := json.Unmarshal([]byte(b.Content), p); err != nil {
		return nil, fmt.Errorf("%w: %s content is not JSON: %v", ErrInvalidPayload, b.Type, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

type payloadFor struct{ out Payload }

func (p *payloadFor) VisitText(Text) error           { return nil }
func (p *payloadFor) VisitStatement(Statement) error { return nil }
func (p *payloadFor) VisitDivider(Divider) error     { return nil }

func (p *payloadFor) VisitQuote(k Quote) error {
	if k.Variant == VariantQuoteCarousel {
		p.out = &QuoteCarouselPayload{}
	} else {
		p.out = &QuotePayload{}
	}
	return nil
}

func (p *payloadFor) VisitImage(Image) error             { p.out = &ImagePayload{}; return nil }
func (p *payloadFor) VisitVideo(Video) error             { p.out = &MediaPayload{}; return nil }
func (p *payloadFor) VisitAudio(Audio) error             { p.out = &MediaPayload{}; return nil }
func (p *payloadFor) VisitYouTube(YouTube) error         { p.out = &MediaPayload{}; return nil }
func (p *payloadFor) VisitLink(Link) error               { p.out = &MediaPayload{}; return nil }
func (p *payloadFor) VisitPDF(PDF) error                 { p.out = &MediaPayload{}; return nil }
func (p *payloadFor) VisitList(List) error               { p.out = &ListPayload{}; return nil }
func (p *payloadFor) VisitTables(Tables) error           { p.out = &TablePayload{}; return nil }
func (p *payloadFor) VisitInteractive(Interactive) error { p.out = &InteractivePayload{}; return nil }

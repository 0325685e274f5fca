// Package blocks defines the lesson content block model: block types and
// their variants, the sealed Kind sum type, and the JSON payload contracts
// carried in Block.Content.
package blocks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Type string

const (
	TypeText        Type = "text"
	TypeStatement   Type = "statement"
	TypeQuote       Type = "quote"
	TypeImage       Type = "image"
	TypeVideo       Type = "video"
	TypeAudio       Type = "audio"
	TypeYouTube     Type = "youtube"
	TypeLink        Type = "link"
	TypePDF         Type = "pdf"
	TypeList        Type = "list"
	TypeTables      Type = "tables"
	TypeInteractive Type = "interactive"
	TypeDivider     Type = "divider"
)

type Variant string

const (
	VariantHeading             Variant = "heading"
	VariantMasterHeading       Variant = "master_heading"
	VariantSubheading          Variant = "subheading"
	VariantParagraph           Variant = "paragraph"
	VariantHeadingParagraph    Variant = "heading_paragraph"
	VariantSubheadingParagraph Variant = "subheading_paragraph"

	VariantStatementA Variant = "statement-a"
	VariantStatementB Variant = "statement-b"
	VariantStatementC Variant = "statement-c"
	VariantStatementD Variant = "statement-d"
	VariantNote       Variant = "note"

	VariantQuoteA        Variant = "quote_a"
	VariantQuoteB        Variant = "quote_b"
	VariantQuoteC        Variant = "quote_c"
	VariantQuoteD        Variant = "quote_d"
	VariantQuoteOnImage  Variant = "quote_on_image"
	VariantQuoteCarousel Variant = "quote_carousel"

	VariantNumbered Variant = "numbered"
	VariantCheckbox Variant = "checkbox"
	VariantBulleted Variant = "bulleted"

	VariantCentered  Variant = "centered"
	VariantFullWidth Variant = "full_width"
	VariantImageText Variant = "image_text"

	VariantTwoColumns   Variant = "two_columns"
	VariantThreeColumns Variant = "three_columns"

	VariantTabs      Variant = "tabs"
	VariantAccordion Variant = "accordion"

	VariantContinue        Variant = "continue"
	VariantNumberedDivider Variant = "numbered_divider"
	VariantSpacer          Variant = "spacer"

	VariantVideo   Variant = "video"
	VariantAudio   Variant = "audio"
	VariantYouTube Variant = "youtube"
	VariantLink    Variant = "link"
	VariantPDF     Variant = "pdf"
)

// SpacerContent is the literal body of a spacer divider.
const SpacerContent = "DIVIDER"

var ErrUnknownType = errors.New("blocks: unknown block type")
var ErrUnknownVariant = errors.New("blocks: unknown variant")

// typeOrder is the canonical type order; the first variant listed per type
// is its default.
var typeOrder = []Type{
	TypeText, TypeStatement, TypeQuote, TypeImage, TypeVideo, TypeAudio, TypeYouTube,
	TypeLink, TypePDF, TypeList, TypeTables, TypeInteractive, TypeDivider,
}

var variantsByType = map[Type][]Variant{
	TypeText:        {VariantHeading, VariantMasterHeading, VariantSubheading, VariantParagraph, VariantHeadingParagraph, VariantSubheadingParagraph},
	TypeStatement:   {VariantStatementA, VariantStatementB, VariantStatementC, VariantStatementD, VariantNote},
	TypeQuote:       {VariantQuoteA, VariantQuoteB, VariantQuoteC, VariantQuoteD, VariantQuoteOnImage, VariantQuoteCarousel},
	TypeImage:       {VariantCentered, VariantFullWidth, VariantImageText},
	TypeVideo:       {VariantVideo},
	TypeAudio:       {VariantAudio},
	TypeYouTube:     {VariantYouTube},
	TypeLink:        {VariantLink},
	TypePDF:         {VariantPDF},
	TypeList:        {VariantNumbered, VariantCheckbox, VariantBulleted},
	TypeTables:      {VariantTwoColumns, VariantThreeColumns},
	TypeInteractive: {VariantTabs, VariantAccordion},
	TypeDivider:     {VariantContinue, VariantNumberedDivider, VariantSpacer},
}

// Types returns every block type in canonical order.
func Types() []Type {
	return append([]Type(nil), typeOrder...)
}

// Variants returns the variants of t, or nil for an unknown type.
func Variants(t Type) []Variant {
	return append([]Variant(nil), variantsByType[t]...)
}

func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := variantsByType[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// ResolveVariant validates v for t. An empty variant resolves to the type's
// default.
func ResolveVariant(t Type, v Variant) (Variant, error) {
	vs, ok := variantsByType[t]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	v = Variant(strings.ToLower(strings.TrimSpace(string(v))))
	if v == "" {
		return vs[0], nil
	}
	for _, x := range vs {
		if x == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q for type %s", ErrUnknownVariant, v, t)
}

// TableColumns is the header width implied by a tables variant.
func TableColumns(v Variant) int {
	if v == VariantThreeColumns {
		return 3
	}
	return 2
}

// Block is one unit of lesson content. Content holds plain text for text,
// statement and divider blocks and a JSON-encoded payload for the rest.
type Block struct {
	ID      string  `json:"id"`
	Type    Type    `json:"type"`
	Variant Variant `json:"variant"`
	Content string  `json:"content"`
	HTMLCSS string  `json:"html_css,omitempty"`
	Order   int     `json:"order"`
}

// NewID returns a process-unique block id of the form <type>_<uuid>.
func NewID(t Type) string {
	prefix := strings.TrimSpace(string(t))
	if prefix == "" {
		prefix = "block"
	}
	return prefix + "_" + uuid.New().String()
}

// New builds a block for k with a fresh id. Order is assigned by the caller.
func New(k Kind, content string) Block {
	return Block{
		ID:      NewID(k.Type()),
		Type:    k.Type(),
		Variant: k.BlockVariant(),
		Content: content,
	}
}

// Kind returns the sealed kind for the block's type and variant.
func (b Block) Kind() (Kind, error) {
	return NewKind(b.Type, b.Variant)
}

// Renumber assigns order 1..n in slice order.
func Renumber(bs []Block) {
	for i := range bs {
		bs[i].Order = i + 1
	}
}

// CheckSequence reports the first violation of the lesson invariants:
// orders strictly increasing from 1 without gaps and ids unique.
func CheckSequence(bs []Block) error {
	seen := make(map[string]bool, len(bs))
	for i, b := range bs {
		if b.Order != i+1 {
			return fmt.Errorf("blocks: position %d has order %d", i, b.Order)
		}
		if strings.TrimSpace(b.ID) == "" {
			return fmt.Errorf("blocks: position %d has no id", i)
		}
		if seen[b.ID] {
			return fmt.Errorf("blocks: duplicate id %q", b.ID)
		}
		seen[b.ID] = true
	}
	return nil
}

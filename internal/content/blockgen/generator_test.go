package blockgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/neurobridge-coursegen/internal/content/blocks"
	"github.com/yungbote/neurobridge-coursegen/internal/gateway"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/promptstyle"
)

type fakeText struct {
	respond func(prompt string, opts gateway.TextOptions) (string, error)
	prompts []string
	opts    []gateway.TextOptions
}

func (f *fakeText) GenerateText(ctx context.Context, prompt string, opts gateway.TextOptions) (*gateway.TextResult, error) {
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	text, err := f.respond(prompt, opts)
	if err != nil {
		return nil, err
	}
	return &gateway.TextResult{Text: text, TokensUsed: 7, Cost: 0.001}, nil
}

func constant(text string) *fakeText {
	return &fakeText{respond: func(string, gateway.TextOptions) (string, error) { return text, nil }}
}

func cannedByKind(prompt string, _ gateway.TextOptions) (string, error) {
	switch {
	case strings.Contains(prompt, "(quote_carousel)"):
		return `{"quotes":[{"quote":"Beware of little expenses.","author":"Benjamin Franklin"},{"quote":"Cash is king.","author":"Unknown"}]}`, nil
	case strings.Contains(prompt, "Block type: quote"):
		return "```json\n{\"quote\":\"Beware of little expenses.\",\"author\":\"Benjamin Franklin\"}\n```", nil
	case strings.Contains(prompt, "Block type: list"):
		return `Here you go: {"items":["Track income","Track spending","Review weekly"]} Hope it helps.`, nil
	case strings.Contains(prompt, "(three_columns)"):
		return `{"headers":["Term","Meaning","Example"],"rows":[["APR","Annual rate","19.9%"]]}`, nil
	case strings.Contains(prompt, "Block type: tables"):
		return `{"headers":["Term","Meaning"],"rows":[["APR","Annual rate"],["APY","Annual yield"]]}`, nil
	case strings.Contains(prompt, "Block type: interactive"):
		return `{"items":[{"title":"What is cash flow?","content":"Money in minus money out."}]}`, nil
	case strings.Contains(prompt, "Block type: image"):
		return `{"prompt":"A tidy desk with a ledger","alt":"Ledger","caption":"Keeping records","url":"http://provider/x.png"}`, nil
	case strings.Contains(prompt, "(numbered_divider)"):
		return "Section 02.", nil
	case strings.Contains(prompt, "Block type: divider"):
		return "**Continue!**", nil
	case strings.Contains(prompt, "Block type: statement"):
		return "Saving early builds **compound growth** over time.", nil
	default:
		return "Sure, here is the text:\n## Cash Flow Basics\nCash flow is the lifeblood of a business.", nil
	}
}

func TestGeneratedContentDecodesForEveryKind(t *testing.T) {
	fake := &fakeText{respond: cannedByKind}
	g := New(fake, nil)
	for _, typ := range blocks.Types() {
		for _, v := range blocks.Variants(typ) {
			k := blocks.MustKind(typ, v)
			if !Supports(k) {
				continue
			}
			res, err := g.Generate(context.Background(), Request{
				Kind:       k,
				UserPrompt: "Explain cash flow",
				Course:     CourseContext{CourseTitle: "Personal Finance 101", LessonTitle: "Cash Flow"},
			})
			if err != nil {
				t.Fatalf("%s/%s: %v", typ, v, err)
			}
			if res.Type != typ || res.TemplateID != v {
				t.Fatalf("%s/%s: result tagged %s/%s", typ, v, res.Type, res.TemplateID)
			}
			if _, err := blocks.DecodeContent(blocks.New(k, res.Content)); err != nil {
				t.Fatalf("%s/%s: content %q does not decode: %v", typ, v, res.Content, err)
			}
		}
	}
}

func TestBudgetsPerType(t *testing.T) {
	want := map[blocks.Type]int{
		blocks.TypeText:        500,
		blocks.TypeStatement:   300,
		blocks.TypeQuote:       300,
		blocks.TypeList:        600,
		blocks.TypeTables:      800,
		blocks.TypeInteractive: 1000,
		blocks.TypeDivider:     20,
		blocks.TypeImage:       400,
	}
	for typ, budget := range want {
		fake := &fakeText{respond: cannedByKind}
		k := blocks.MustKind(typ, "")
		if _, err := New(fake, nil).Generate(context.Background(), Request{Kind: k, UserPrompt: "x"}); err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
		if len(fake.opts) != 1 || fake.opts[0].MaxTokens != budget {
			t.Fatalf("%s: opts=%+v, want budget %d", typ, fake.opts, budget)
		}
	}
}

func TestPromptCarriesContext(t *testing.T) {
	fake := constant("Cash flow matters.")
	_, err := New(fake, nil).Generate(context.Background(), Request{
		Kind:         blocks.Text{Variant: blocks.VariantParagraph},
		UserPrompt:   "Explain cash flow",
		Instructions: "Use a bakery example",
		Course:       CourseContext{CourseTitle: "Personal Finance 101", ModuleTitle: "Foundations", LessonTitle: "Cash Flow", Difficulty: "beginner"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	p := fake.prompts[0]
	for _, want := range []string{"Personal Finance 101", "Foundations", "Cash Flow", "beginner", "Explain cash flow", "Use a bakery example", "text (paragraph)"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestTextCleanup(t *testing.T) {
	cases := []struct {
		variant blocks.Variant
		raw     string
		want    string
	}{
		{blocks.VariantHeading, "**Heading:** Understanding Cash Flow.", "Understanding Cash Flow"},
		{blocks.VariantParagraph, "Sure, here is the paragraph:\nCash flow is *the* signal.", "Cash flow is the signal."},
		{blocks.VariantHeadingParagraph, "## Key Idea\nCash flow matters.", "Key Idea\n\nCash flow matters."},
		{blocks.VariantHeadingParagraph, "Why Budgets Matter\nA budget tells your money where to go. It keeps spending in check.", "Why Budgets Matter\n\nA budget tells your money where to go. It keeps spending in check."},
		{blocks.VariantSubheadingParagraph, "\n**Fixed Costs**\nRent is due *every* month.\nPlan for it.", "Fixed Costs\n\nRent is due every month. Plan for it."},
		{blocks.VariantSubheading, "Fixed Costs\nRent is due every month.", "Fixed Costs"},
	}
	for _, tc := range cases {
		res, err := New(constant(tc.raw), nil).Generate(context.Background(), Request{Kind: blocks.Text{Variant: tc.variant}, UserPrompt: "x"})
		if err != nil {
			t.Fatalf("%s: %v", tc.variant, err)
		}
		if res.Content != tc.want {
			t.Fatalf("%s: got %q want %q", tc.variant, res.Content, tc.want)
		}
	}
}

func TestOutputModePerBlockShape(t *testing.T) {
	cases := []struct {
		kind blocks.Kind
		want promptstyle.Mode
	}{
		{blocks.Text{Variant: blocks.VariantParagraph}, promptstyle.ModePlain},
		{blocks.Statement{Variant: blocks.VariantStatementA}, promptstyle.ModePlain},
		{blocks.Divider{Variant: blocks.VariantContinue}, promptstyle.ModePlain},
		{blocks.Quote{Variant: blocks.VariantQuoteA}, promptstyle.ModeJSON},
		{blocks.List{Variant: blocks.VariantBulleted}, promptstyle.ModeJSON},
		{blocks.Tables{Variant: blocks.VariantTwoColumns}, promptstyle.ModeJSON},
		{blocks.Interactive{Variant: blocks.VariantTabs}, promptstyle.ModeJSON},
		{blocks.Image{Variant: blocks.VariantCentered}, promptstyle.ModeJSON},
	}
	for _, tc := range cases {
		fake := &fakeText{respond: cannedByKind}
		if _, err := New(fake, nil).Generate(context.Background(), Request{Kind: tc.kind, UserPrompt: "x"}); err != nil {
			t.Fatalf("%s: %v", tc.kind.Type(), err)
		}
		if got := fake.opts[0].Mode; got != tc.want {
			t.Fatalf("%s: mode=%q want %q", tc.kind.Type(), got, tc.want)
		}
	}
}

func TestStatementHighlightsOnlyForStatementC(t *testing.T) {
	raw := "Saving early builds **compound growth** over time."
	res, err := New(constant(raw), nil).Generate(context.Background(), Request{Kind: blocks.Statement{Variant: blocks.VariantStatementC}, UserPrompt: "x"})
	if err != nil || res.Content != raw {
		t.Fatalf("statement-c = %q, %v", res.Content, err)
	}
	res, err = New(constant(raw), nil).Generate(context.Background(), Request{Kind: blocks.Statement{Variant: blocks.VariantStatementA}, UserPrompt: "x"})
	if err != nil || res.Content != "Saving early builds compound growth over time." {
		t.Fatalf("statement-a = %q, %v", res.Content, err)
	}
}

func TestDividerNormalization(t *testing.T) {
	cases := []struct {
		variant blocks.Variant
		raw     string
		want    string
	}{
		{blocks.VariantContinue, "**continue!**", "Continue"},
		{blocks.VariantNumberedDivider, "Section 02.", "2"},
	}
	for _, tc := range cases {
		res, err := New(constant(tc.raw), nil).Generate(context.Background(), Request{Kind: blocks.Divider{Variant: tc.variant}, UserPrompt: "x"})
		if err != nil || res.Content != tc.want {
			t.Fatalf("%s: got %q, %v", tc.variant, res.Content, err)
		}
	}

	fake := constant("unused")
	res, err := New(fake, nil).Generate(context.Background(), Request{Kind: blocks.Divider{Variant: blocks.VariantSpacer}, UserPrompt: "x"})
	if err != nil || res.Content != blocks.SpacerContent {
		t.Fatalf("spacer = %q, %v", res.Content, err)
	}
	if len(fake.prompts) != 0 {
		t.Fatalf("spacer should not call the generator")
	}

	if _, err := New(constant("no digits here"), nil).Generate(context.Background(), Request{Kind: blocks.Divider{Variant: blocks.VariantNumberedDivider}, UserPrompt: "x"}); !errors.Is(err, gateway.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUnparseableResponseIsValidationError(t *testing.T) {
	raw := "I cannot produce a list for that request." + strings.Repeat(" padding", 60)
	_, err := New(constant(raw), nil).Generate(context.Background(), Request{Kind: blocks.List{Variant: blocks.VariantBulleted}, UserPrompt: "x"})
	e, ok := gateway.AsError(err)
	if !ok || e.Kind != gateway.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(e.Error(), "list") || !strings.Contains(e.Detail, "list/bulleted") || !strings.Contains(e.Detail, "I cannot produce a list") {
		t.Fatalf("error lacks diagnostics: message=%q detail=%q", e.Error(), e.Detail)
	}
	if strings.Contains(e.Detail, strings.Repeat(" padding", 30)) {
		t.Fatalf("raw prefix not clipped: %q", e.Detail)
	}
}

func TestTableWidthMustMatchVariant(t *testing.T) {
	fake := constant(`{"headers":["a","b"],"rows":[["1","2"]]}`)
	_, err := New(fake, nil).Generate(context.Background(), Request{Kind: blocks.Tables{Variant: blocks.VariantThreeColumns}, UserPrompt: "x"})
	if !errors.Is(err, gateway.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestImageURLIsNeverTakenFromText(t *testing.T) {
	fake := &fakeText{respond: cannedByKind}
	res, err := New(fake, nil).Generate(context.Background(), Request{Kind: blocks.Image{Variant: blocks.VariantCentered}, UserPrompt: "x"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if strings.Contains(res.Content, "provider") || !strings.Contains(res.Content, `"url":""`) {
		t.Fatalf("content=%s", res.Content)
	}
}

func TestMediaKindsAreRejected(t *testing.T) {
	for _, k := range []blocks.Kind{blocks.Video{}, blocks.Audio{}, blocks.YouTube{}, blocks.Link{}, blocks.PDF{}} {
		fake := constant("unused")
		_, err := New(fake, nil).Generate(context.Background(), Request{Kind: k, UserPrompt: "x"})
		if !errors.Is(err, gateway.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", k.Type(), err)
		}
		if len(fake.prompts) != 0 {
			t.Fatalf("%s: generator should not be called", k.Type())
		}
	}
}

func TestGatewayErrorsPropagate(t *testing.T) {
	fake := &fakeText{respond: func(string, gateway.TextOptions) (string, error) { return "", gateway.ErrRateLimited }}
	_, err := New(fake, nil).Generate(context.Background(), Request{Kind: blocks.Text{Variant: blocks.VariantParagraph}, UserPrompt: "x"})
	if !errors.Is(err, gateway.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestEmptyRequestIsRejected(t *testing.T) {
	fake := constant("unused")
	if _, err := New(fake, nil).Generate(context.Background(), Request{Kind: blocks.Text{Variant: blocks.VariantParagraph}}); !errors.Is(err, gateway.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	res, err := New(constant("Body."), nil).Generate(context.Background(), Request{
		Kind:   blocks.Text{Variant: blocks.VariantParagraph},
		Course: CourseContext{LessonTitle: "Cash Flow"},
	})
	if err != nil || res.Content != "Body." {
		t.Fatalf("lesson-title prompt fallback failed: %v %v", res, err)
	}
}

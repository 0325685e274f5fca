package blockgen

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/yungbote/neurobridge-coursegen/internal/content/blocks"
)

// Output budgets per block type, in tokens.
const (
	budgetText        = 500
	budgetStatement   = 300
	budgetQuote       = 300
	budgetList        = 600
	budgetTables      = 800
	budgetInteractive = 1000
	budgetDivider     = 20
	budgetImage       = 400
)

const (
	systemPlain = "You write single content blocks for online courses. " +
		"Answer with the block text only: no markdown, no labels, no preamble."
	systemHighlight = "You write single content blocks for online courses. " +
		"Answer with the block text only: no headers, no labels, no preamble. " +
		"Wrap the one or two most important phrases in **double asterisks**."
	systemJSON = "You write single content blocks for online courses. " +
		"Answer with one JSON object only, exactly matching the requested shape. " +
		"No prose before or after it and no code fences."
)

type promptInput struct {
	CourseTitle  string
	ModuleTitle  string
	LessonTitle  string
	Difficulty   string
	Topic        string
	UserPrompt   string
	Instructions string
	Type         string
	Variant      string
	Format       string
}

var userTmpl = template.Must(template.New("block").Option("missingkey=zero").Parse(`
Course: {{.CourseTitle}}
{{- if .ModuleTitle}}
Module: {{.ModuleTitle}}{{end}}
{{- if .LessonTitle}}
Lesson: {{.LessonTitle}}{{end}}
{{- if .Difficulty}}
Audience level: {{.Difficulty}}{{end}}
{{- if .Topic}}
Subject area: {{.Topic}}{{end}}

Block type: {{.Type}} ({{.Variant}})
Request: {{.UserPrompt}}
{{- if .Instructions}}
Additional instructions: {{.Instructions}}{{end}}

{{.Format}}
`))

func renderUser(in promptInput) string {
	var b bytes.Buffer
	_ = userTmpl.Execute(&b, in)
	return strings.TrimSpace(b.String())
}

var textFormats = map[blocks.Variant]string{
	blocks.VariantHeading:             "Write a section heading of at most 8 words.",
	blocks.VariantMasterHeading:       "Write a bold lesson title of at most 6 words.",
	blocks.VariantSubheading:          "Write a subheading of at most 10 words.",
	blocks.VariantParagraph:           "Write one paragraph of 80 to 120 words.",
	blocks.VariantHeadingParagraph:    "Write a heading of at most 8 words on the first line, a blank line, then one paragraph of 60 to 100 words.",
	blocks.VariantSubheadingParagraph: "Write a subheading of at most 10 words on the first line, a blank line, then one paragraph of 60 to 100 words.",
}

var statementFormats = map[blocks.Variant]string{
	blocks.VariantStatementA: "Write one bold statement of 15 to 30 words that captures the key idea.",
	blocks.VariantStatementB: "Write one memorable statement of 15 to 30 words framed as a principle.",
	blocks.VariantStatementC: "Write one statement of 20 to 40 words with the key phrases highlighted.",
	blocks.VariantStatementD: "Write one reflective statement of 15 to 30 words that invites the learner to think.",
	blocks.VariantNote:       "Write a short practical note of 20 to 40 words, as a tip the learner should remember.",
}

const quoteShape = `Return {"quote": "<the quotation>", "author": "<who said it>"}. Prefer a real, attributable quotation relevant to the request.`
const carouselShape = `Return {"quotes": [{"quote": "...", "author": "..."}, ...]} with 3 relevant quotations.`

var listFormats = map[blocks.Variant]string{
	blocks.VariantNumbered: `Return {"items": ["...", ...]} with 4 to 6 ordered steps.`,
	blocks.VariantCheckbox: `Return {"items": ["...", ...]} with 4 to 6 checklist items the learner can tick off.`,
	blocks.VariantBulleted: `Return {"items": ["...", ...]} with 4 to 6 concise bullet points.`,
}

const tableShape2 = `Return {"headers": ["...", "..."], "rows": [["...", "..."], ...]} with exactly 2 columns and 3 to 5 rows.`
const tableShape3 = `Return {"headers": ["...", "...", "..."], "rows": [["...", "...", "..."], ...]} with exactly 3 columns and 3 to 5 rows.`

var interactiveFormats = map[blocks.Variant]string{
	blocks.VariantTabs:      `Return {"items": [{"title": "...", "content": "..."}, ...]} with 3 tabs; each content is 40 to 80 words.`,
	blocks.VariantAccordion: `Return {"items": [{"title": "...", "content": "..."}, ...]} with 3 to 5 sections; titles read as questions, content answers them in 30 to 60 words.`,
}

var dividerFormats = map[blocks.Variant]string{
	blocks.VariantContinue:        "Reply with a single action word for a continue button, such as Continue or Next.",
	blocks.VariantNumberedDivider: "Reply with a single section number and nothing else.",
	blocks.VariantSpacer:          "Reply with the word DIVIDER.",
}

var imageFormats = map[blocks.Variant]string{
	blocks.VariantCentered:  `Return {"prompt": "<image generation prompt>", "alt": "<alt text>", "caption": "<one line caption>"} for a centered illustration.`,
	blocks.VariantFullWidth: `Return {"prompt": "<image generation prompt>", "alt": "<alt text>", "caption": "<one line caption>"} for a wide banner image.`,
	blocks.VariantImageText: `Return {"prompt": "<image generation prompt>", "alt": "<alt text>", "caption": "<two sentence explanation shown beside the image>"}.`,
}

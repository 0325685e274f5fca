package showcase

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"github.com/yungbote/neurobridge-coursegen/internal/content/blocks"
)

// templateData parameterises prompts and static blocks.
type templateData struct {
	CourseTitle string
	ModuleTitle string
	LessonTitle string
	Difficulty  string
	Topic       string
	Example     string
	Resource    string
	Variant     string
	Section     int
}

var templateFuncs = template.FuncMap{
	"query": url.QueryEscape,
}

var templateCache sync.Map

func parseTemplate(s string) (*template.Template, error) {
	if t, ok := templateCache.Load(s); ok {
		return t.(*template.Template), nil
	}
	t, err := template.New("showcase").Option("missingkey=zero").Funcs(templateFuncs).Parse(s)
	if err != nil {
		return nil, err
	}
	templateCache.Store(s, t)
	return t, nil
}

func render(s string, d templateData) (string, error) {
	t, err := parseTemplate(s)
	if err != nil {
		return "", err
	}
	var b bytes.Buffer
	if err := t.Execute(&b, d); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}

var staticText = map[blocks.Variant]string{
	blocks.VariantHeading:             "{{.LessonTitle}}",
	blocks.VariantMasterHeading:       "{{.CourseTitle}}",
	blocks.VariantSubheading:          "Getting Started with {{.LessonTitle}}",
	blocks.VariantParagraph:           "This lesson introduces {{.LessonTitle}}. Each idea is grounded in {{.Example}}, so you can see how the concepts work in practice before applying them yourself.",
	blocks.VariantHeadingParagraph:    "Why {{.LessonTitle}} Matters\n\nUnderstanding {{.LessonTitle}} gives you a practical foundation in {{.Topic}}. Think of {{.Example}}: the same principles apply every time.",
	blocks.VariantSubheadingParagraph: "A Common Pitfall\n\nMany learners rush past the fundamentals of {{.LessonTitle}}. Practise with {{.Example}} until each step feels natural.",
}

var staticStatements = map[blocks.Variant]string{
	blocks.VariantStatementA: "Mastering {{.LessonTitle}} starts with understanding the fundamentals.",
	blocks.VariantStatementB: "Small, consistent practice beats occasional intensive effort.",
	blocks.VariantStatementC: "The key to {{.LessonTitle}} is **consistent practice** and **clear goals**.",
	blocks.VariantStatementD: "How would you apply {{.LessonTitle}} to {{.Example}}?",
	blocks.VariantNote:       "Revisit this lesson after trying {{.Example}} on your own. The ideas will make more sense the second time.",
}

var quoteIndex = map[blocks.Variant]int{
	blocks.VariantQuoteA:       0,
	blocks.VariantQuoteB:       1,
	blocks.VariantQuoteC:       2,
	blocks.VariantQuoteD:       0,
	blocks.VariantQuoteOnImage: 1,
}

var staticLists = map[blocks.Variant][]string{
	blocks.VariantNumbered: {
		"Read through the key ideas of {{.LessonTitle}}",
		"Work through {{.Example}}",
		"Write down the questions that come up",
		"Review and summarize what you learned",
	},
	blocks.VariantCheckbox: {
		"I can explain {{.LessonTitle}} in my own words",
		"I have tried {{.Example}}",
		"I know where to find further resources",
		"I am ready for the next lesson",
	},
	blocks.VariantBulleted: {
		"{{.LessonTitle}} builds on core ideas from {{.Topic}}",
		"Practice turns concepts into skills",
		"Concrete examples make abstract ideas easier to remember",
	},
}

var staticCaptions = map[blocks.Variant]string{
	blocks.VariantCentered:  "{{.Example}}",
	blocks.VariantFullWidth: "{{.LessonTitle}}",
	blocks.VariantImageText: "This image shows {{.Example}}. Keep it in mind as you work through {{.LessonTitle}}.",
}

var staticTables = map[blocks.Variant]blocks.TablePayload{
	blocks.VariantTwoColumns: {
		Headers: []string{"Concept", "What it means"},
		Rows: [][]string{
			{"{{.LessonTitle}}", "The focus of this lesson"},
			{"Practice", "Applying the idea to {{.Example}}"},
			{"Review", "Checking what you learned before moving on"},
		},
	},
	blocks.VariantThreeColumns: {
		Headers: []string{"Approach", "Strength", "Watch out for"},
		Rows: [][]string{
			{"Learn by reading", "Builds a broad overview", "Passive recall fades quickly"},
			{"Learn by doing", "Turns {{.Topic}} ideas into skills", "Skipping the fundamentals"},
			{"Learn by teaching", "Reveals gaps in understanding", "Needs an audience or partner"},
		},
	},
}

var staticInteractive = map[blocks.Variant][]blocks.InteractiveItem{
	blocks.VariantTabs: {
		{Title: "Overview", Content: "{{.LessonTitle}} is a core part of {{.Topic}}. This tab summarizes what the lesson covers."},
		{Title: "In Practice", Content: "Consider {{.Example}}. Each step of the lesson maps onto a decision you would make there."},
		{Title: "Next Steps", Content: "Try the checklist above, then continue to the next lesson to build on these ideas."},
	},
	blocks.VariantAccordion: {
		{Title: "What is {{.LessonTitle}}?", Content: "It is the set of ideas this lesson introduces, explained through {{.Example}}."},
		{Title: "Why does it matter?", Content: "It underpins much of what follows in {{.CourseTitle}}."},
		{Title: "How do I practise it?", Content: "Work through the steps above and revisit the key terms table."},
	},
}

type staticMedia struct {
	url, title, description string
}

var staticMediaByType = map[blocks.Type]staticMedia{
	blocks.TypeLink:    {"{{.Resource}}", "Further reading on {{.Topic}}", "A trusted reference for going deeper into {{.LessonTitle}}."},
	blocks.TypeYouTube: {"https://www.youtube.com/results?search_query={{query .LessonTitle}}", "Videos about {{.LessonTitle}}", "Short explainers that complement this lesson."},
	blocks.TypeVideo:   {"https://archive.org/search?query={{query .LessonTitle}}&mediatype=movies", "Video library: {{.LessonTitle}}", "Openly licensed video material on this subject."},
	blocks.TypeAudio:   {"https://archive.org/search?query={{query .LessonTitle}}&mediatype=audio", "Audio library: {{.LessonTitle}}", "Talks and recordings to listen to on the go."},
	blocks.TypePDF:     {"https://archive.org/search?query={{query .LessonTitle}}&mediatype=texts", "Reading list: {{.LessonTitle}}", "Openly available texts for further study."},
}

// staticContent renders the templated body of k.
func staticContent(k blocks.Kind, topic Topic, d templateData) (string, error) {
	sv := &staticVisitor{topic: topic, d: d}
	if err := blocks.Visit(k, sv); err != nil {
		return "", err
	}
	return sv.out, nil
}

type staticVisitor struct {
	topic Topic
	d     templateData
	out   string
}

func (s *staticVisitor) text(tmpl string) error {
	out, err := render(tmpl, s.d)
	s.out = out
	return err
}

func (s *staticVisitor) renderAll(in []string) ([]string, error) {
	out := make([]string, len(in))
	for i, t := range in {
		r, err := render(t, s.d)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (s *staticVisitor) encode(p blocks.Payload) error {
	out, err := blocks.Encode(p)
	s.out = out
	return err
}

func (s *staticVisitor) VisitText(k blocks.Text) error { return s.text(staticText[k.Variant]) }

func (s *staticVisitor) VisitStatement(k blocks.Statement) error {
	return s.text(staticStatements[k.Variant])
}

func (s *staticVisitor) VisitQuote(k blocks.Quote) error {
	if k.Variant == blocks.VariantQuoteCarousel {
		return s.encode(&blocks.QuoteCarouselPayload{Quotes: append([]blocks.QuotePayload(nil), s.topic.Quotes...)})
	}
	if len(s.topic.Quotes) == 0 {
		return fmt.Errorf("showcase: topic %s has no quotes", s.topic.Name)
	}
	q := s.topic.Quotes[quoteIndex[k.Variant]%len(s.topic.Quotes)]
	return s.encode(&q)
}

func (s *staticVisitor) VisitList(k blocks.List) error {
	items, err := s.renderAll(staticLists[k.Variant])
	if err != nil {
		return err
	}
	return s.encode(&blocks.ListPayload{Items: items})
}

func (s *staticVisitor) VisitImage(k blocks.Image) error {
	vals, err := s.renderAll([]string{
		"A clean, modern educational illustration of {{.Example}}, no text",
		"Illustration for {{.LessonTitle}}",
		staticCaptions[k.Variant],
	})
	if err != nil {
		return err
	}
	return s.encode(&blocks.ImagePayload{Prompt: vals[0], Alt: vals[1], Caption: vals[2]})
}

func (s *staticVisitor) VisitTables(k blocks.Tables) error {
	src := staticTables[k.Variant]
	headers, err := s.renderAll(src.Headers)
	if err != nil {
		return err
	}
	rows := make([][]string, len(src.Rows))
	for i, row := range src.Rows {
		if rows[i], err = s.renderAll(row); err != nil {
			return err
		}
	}
	return s.encode(&blocks.TablePayload{Headers: headers, Rows: rows})
}

func (s *staticVisitor) VisitInteractive(k blocks.Interactive) error {
	src := staticInteractive[k.Variant]
	items := make([]blocks.InteractiveItem, len(src))
	for i, it := range src {
		vals, err := s.renderAll([]string{it.Title, it.Content})
		if err != nil {
			return err
		}
		items[i] = blocks.InteractiveItem{Title: vals[0], Content: vals[1]}
	}
	return s.encode(&blocks.InteractivePayload{Items: items})
}

func (s *staticVisitor) media(t blocks.Type) error {
	m := staticMediaByType[t]
	vals, err := s.renderAll([]string{m.url, m.title, m.description})
	if err != nil {
		return err
	}
	return s.encode(&blocks.MediaPayload{URL: vals[0], Title: vals[1], Description: vals[2]})
}

func (s *staticVisitor) VisitLink(k blocks.Link) error       { return s.media(k.Type()) }
func (s *staticVisitor) VisitYouTube(k blocks.YouTube) error { return s.media(k.Type()) }
func (s *staticVisitor) VisitVideo(k blocks.Video) error     { return s.media(k.Type()) }
func (s *staticVisitor) VisitAudio(k blocks.Audio) error     { return s.media(k.Type()) }
func (s *staticVisitor) VisitPDF(k blocks.PDF) error         { return s.media(k.Type()) }

func (s *staticVisitor) VisitDivider(k blocks.Divider) error {
	switch k.Variant {
	case blocks.VariantNumberedDivider:
		n := s.d.Section
		if n <= 0 {
			n = 1
		}
		s.out = strconv.Itoa(n)
	case blocks.VariantContinue:
		s.out = "Continue"
	default:
		s.out = blocks.SpacerContent
	}
	return nil
}

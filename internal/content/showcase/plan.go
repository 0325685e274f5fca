package showcase

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/neurobridge-coursegen/internal/content/blockgen"
	"github.com/yungbote/neurobridge-coursegen/internal/content/blocks"
)

// PlanEnv names an optional YAML file that replaces the embedded plan.
const PlanEnv = "SHOWCASE_PLAN_YAML"

//go:embed plan.yaml
var planFS embed.FS

type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeTemplate Mode = "template"
)

// Entry is one block of the showcase lesson. Prompt is a text/template
// rendered with the lesson's template data; it only matters for generated
// entries.
type Entry struct {
	Kind   blocks.Kind
	Mode   Mode
	Prompt string
}

type yamlPlanSpec struct {
	Plan    string          `yaml:"plan"`
	Version int             `yaml:"version"`
	Entries []yamlPlanEntry `yaml:"entries"`
}

type yamlPlanEntry struct {
	Type    string `yaml:"type"`
	Variant string `yaml:"variant"`
	Mode    string `yaml:"mode"`
	Prompt  string `yaml:"prompt"`
	Enabled *bool  `yaml:"enabled"`
}

// fallbackFamilies is the emission order used when no YAML plan loads.
var fallbackFamilies = []blocks.Type{
	blocks.TypeText,
	blocks.TypeStatement,
	blocks.TypeQuote,
	blocks.TypeList,
	blocks.TypeImage,
	blocks.TypeTables,
	blocks.TypeInteractive,
	blocks.TypeLink,
	blocks.TypeYouTube,
	blocks.TypeVideo,
	blocks.TypeAudio,
	blocks.TypePDF,
}

// templatedVariants are filled from templates in the fallback plan.
var templatedVariants = map[blocks.Variant]bool{
	blocks.VariantNote:          true,
	blocks.VariantQuoteB:        true,
	blocks.VariantQuoteC:        true,
	blocks.VariantQuoteD:        true,
	blocks.VariantQuoteOnImage:  true,
	blocks.VariantQuoteCarousel: true,
}

const fallbackPrompt = "{{.LessonTitle}}: a {{.Variant}} block for a {{.Topic}} course"

func fallbackPlan() []Entry {
	out := []Entry{{Kind: blocks.Divider{Variant: blocks.VariantSpacer}, Mode: ModeTemplate}}
	for _, t := range fallbackFamilies {
		for _, v := range blocks.Variants(t) {
			k := blocks.MustKind(t, v)
			mode := ModeGenerate
			if templatedVariants[v] || !blockgen.Supports(k) {
				mode = ModeTemplate
			}
			out = append(out, Entry{Kind: k, Mode: mode, Prompt: fallbackPrompt})
		}
	}
	return append(out,
		Entry{Kind: blocks.Divider{Variant: blocks.VariantNumberedDivider}, Mode: ModeTemplate},
		Entry{Kind: blocks.Divider{Variant: blocks.VariantContinue}, Mode: ModeTemplate},
	)
}

// LoadPlan reads the plan named by PlanEnv, or the embedded plan when the
// variable is unset.
func LoadPlan() ([]Entry, error) {
	data, err := readPlan()
	if err != nil {
		return nil, err
	}
	return ParsePlan(data)
}

func readPlan() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(PlanEnv)); path != "" {
		return os.ReadFile(path)
	}
	return planFS.ReadFile("plan.yaml")
}

// ParsePlan decodes and validates a YAML plan. Disabled entries are dropped.
func ParsePlan(data []byte) ([]Entry, error) {
	var spec yamlPlanSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	if strings.TrimSpace(spec.Plan) != "showcase" {
		return nil, fmt.Errorf("unexpected plan: %q", spec.Plan)
	}
	if len(spec.Entries) == 0 {
		return nil, errors.New("no entries defined")
	}
	out := make([]Entry, 0, len(spec.Entries))
	for i, e := range spec.Entries {
		if e.Enabled != nil && !*e.Enabled {
			continue
		}
		t, err := blocks.ParseType(e.Type)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		k, err := blocks.NewKind(t, blocks.Variant(e.Variant))
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		mode := Mode(strings.ToLower(strings.TrimSpace(e.Mode)))
		switch mode {
		case "":
			mode = ModeTemplate
		case ModeGenerate:
			if !blockgen.Supports(k) {
				return nil, fmt.Errorf("entry %d: %s blocks cannot be generated", i, t)
			}
		case ModeTemplate:
		default:
			return nil, fmt.Errorf("entry %d: unknown mode %q", i, e.Mode)
		}
		prompt := strings.TrimSpace(e.Prompt)
		if mode == ModeGenerate && prompt == "" {
			prompt = fallbackPrompt
		}
		if prompt != "" {
			if _, err := parseTemplate(prompt); err != nil {
				return nil, fmt.Errorf("entry %d: prompt: %w", i, err)
			}
		}
		out = append(out, Entry{Kind: k, Mode: mode, Prompt: prompt})
	}
	if len(out) == 0 {
		return nil, errors.New("every entry is disabled")
	}
	return out, nil
}

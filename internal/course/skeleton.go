package course

import (
	"fmt"
	"strings"

	"github.com/yungbote/neurobridge-coursegen/internal/gateway"
)

const skeletonSystemPrompt = "You design concise online courses. Return one JSON object describing a course " +
	"with exactly one module containing exactly one lesson."

const skeletonShape = `{
  "title": "...",
  "description": "2-3 sentences",
  "difficulty_level": "beginner|intermediate|advanced",
  "duration": "e.g. 45 minutes",
  "target_audience": "...",
  "learning_objectives": ["...", "...", "..."],
  "module": {
    "module_title": "...",
    "module_overview": "1-2 sentences",
    "lesson": {"lesson_title": "...", "lesson_summary": "1-2 sentences"}
  }
}`

const skeletonMaxTokens = 1200

type skeletonLesson struct {
	LessonTitle   string `json:"lesson_title"`
	LessonSummary string `json:"lesson_summary"`
}

type skeletonModule struct {
	ModuleTitle    string           `json:"module_title"`
	ModuleOverview string           `json:"module_overview"`
	Lesson         *skeletonLesson  `json:"lesson"`
	Lessons        []skeletonLesson `json:"lessons"`
}

// skeleton accepts both the requested single-module shape and the
// modules/lessons array shape some models prefer.
type skeleton struct {
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	DifficultyLevel    string           `json:"difficulty_level"`
	Duration           string           `json:"duration"`
	TargetAudience     string           `json:"target_audience"`
	LearningObjectives []string         `json:"learning_objectives"`
	Module             *skeletonModule  `json:"module"`
	Modules            []skeletonModule `json:"modules"`
}

func skeletonUserPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Course title: %s\n", req.Title)
	if req.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", req.Description)
	}
	if req.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s\n", req.Difficulty)
	}
	if req.Duration != "" {
		fmt.Fprintf(&b, "Duration: %s\n", req.Duration)
	}
	if req.TargetAudience != "" {
		fmt.Fprintf(&b, "Target audience: %s\n", req.TargetAudience)
	}
	if len(req.Objectives) > 0 {
		fmt.Fprintf(&b, "Learning objectives:\n- %s\n", strings.Join(req.Objectives, "\n- "))
	}
	fmt.Fprintf(&b, "\nReturn JSON in this shape:\n%s", skeletonShape)
	return b.String()
}

// toDocument validates the decoded skeleton and fills gaps from the request.
func (s *skeleton) toDocument(req Request) (*Document, error) {
	var mod *skeletonModule
	switch {
	case s.Module != nil:
		mod = s.Module
	case len(s.Modules) > 0:
		mod = &s.Modules[0]
	default:
		return nil, gateway.NewValidationError("", "skeleton: no module", nil)
	}
	var les *skeletonLesson
	switch {
	case mod.Lesson != nil:
		les = mod.Lesson
	case len(mod.Lessons) > 0:
		les = &mod.Lessons[0]
	default:
		return nil, gateway.NewValidationError("", "skeleton: no lesson", nil)
	}
	if strings.TrimSpace(mod.ModuleTitle) == "" || strings.TrimSpace(les.LessonTitle) == "" {
		return nil, gateway.NewValidationError("", "skeleton: empty module or lesson title", nil)
	}

	fb := fallbackDocument(req)
	doc := &Document{
		Title:              firstNonEmpty(s.Title, fb.Title),
		Description:        firstNonEmpty(s.Description, fb.Description),
		DifficultyLevel:    firstNonEmpty(req.Difficulty, s.DifficultyLevel, fb.DifficultyLevel),
		Duration:           firstNonEmpty(s.Duration, fb.Duration),
		TargetAudience:     firstNonEmpty(s.TargetAudience, fb.TargetAudience),
		LearningObjectives: cleanList(s.LearningObjectives),
		Modules: []Module{{
			ModuleTitle:    strings.TrimSpace(mod.ModuleTitle),
			ModuleOverview: firstNonEmpty(mod.ModuleOverview, fb.Modules[0].ModuleOverview),
			ModuleOrder:    1,
			Lessons: []Lesson{{
				LessonTitle:   strings.TrimSpace(les.LessonTitle),
				LessonSummary: firstNonEmpty(les.LessonSummary, fb.Modules[0].Lessons[0].LessonSummary),
				LessonOrder:   1,
			}},
		}},
	}
	if len(doc.LearningObjectives) == 0 {
		doc.LearningObjectives = fb.LearningObjectives
	}
	return doc, nil
}

// fallbackDocument is the static skeleton used when generation fails.
func fallbackDocument(req Request) *Document {
	title := firstNonEmpty(req.Title, "Untitled Course")
	objectives := cleanList(req.Objectives)
	if len(objectives) == 0 {
		objectives = []string{
			"Understand the core ideas of " + title,
			"Apply " + title + " to a practical example",
			"Identify next steps for learning more about " + title,
		}
	}
	return &Document{
		Title:              title,
		Description:        firstNonEmpty(req.Description, "An introduction to "+title+"."),
		DifficultyLevel:    firstNonEmpty(req.Difficulty, "beginner"),
		Duration:           firstNonEmpty(req.Duration, "1 hour"),
		TargetAudience:     firstNonEmpty(req.TargetAudience, "Learners new to "+title),
		LearningObjectives: objectives,
		Fallback:           true,
		Modules: []Module{{
			ModuleTitle:    "Introduction to " + title,
			ModuleOverview: "Core concepts and first steps in " + title + ".",
			ModuleOrder:    1,
			Lessons: []Lesson{{
				LessonTitle:   "Getting Started with " + title,
				LessonSummary: "A guided tour of the essential ideas behind " + title + ".",
				LessonOrder:   1,
			}},
		}},
	}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

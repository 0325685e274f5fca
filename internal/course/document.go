// Package course assembles a course document: skeleton, thumbnails and the
// showcase lesson body, with a fallback for every stage.
package course

import "github.com/yungbote/neurobridge-coursegen/internal/content/blocks"

// Document is the generated course. Fallback is set when any stage
// substituted a static value for the skeleton or the lesson body.
type Document struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	DifficultyLevel    string   `json:"difficulty_level"`
	Duration           string   `json:"duration"`
	TargetAudience     string   `json:"target_audience"`
	LearningObjectives []string `json:"learning_objectives"`
	Modules            []Module `json:"modules"`
	Fallback           bool     `json:"fallback"`
}

// Module and Lesson always serialize thumbnail fields; an empty string means
// no image was generated.
type Module struct {
	ModuleTitle     string   `json:"module_title"`
	ModuleOverview  string   `json:"module_overview"`
	ModuleOrder     int      `json:"module_order"`
	ThumbnailPrompt string   `json:"thumbnail_prompt"`
	Thumbnail       string   `json:"thumbnail"`
	Lessons         []Lesson `json:"lessons"`
}

type Lesson struct {
	LessonTitle     string         `json:"lesson_title"`
	LessonSummary   string         `json:"lesson_summary"`
	LessonOrder     int            `json:"lesson_order"`
	ThumbnailPrompt string         `json:"thumbnail_prompt"`
	Thumbnail       string         `json:"thumbnail"`
	ContentBlocks   []blocks.Block `json:"content_blocks"`
}

// BlockCount totals content blocks across every lesson.
func (d *Document) BlockCount() int {
	n := 0
	for _, m := range d.Modules {
		for _, l := range m.Lessons {
			n += len(l.ContentBlocks)
		}
	}
	return n
}

// Request is the caller's brief for one course.
type Request struct {
	Title          string
	Description    string
	Difficulty     string
	Duration       string
	TargetAudience string
	Objectives     []string
}

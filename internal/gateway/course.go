package gateway

import (
	"context"
	"net/http"
	"strings"
)

// GenerateCourseOutline calls the backend's outline generator. GenerateType
// defaults to "skeleton".
func (c *Client) GenerateCourseOutline(ctx context.Context, req OutlineRequest) (*OutlineResult, error) {
	req.CourseTitle = strings.TrimSpace(req.CourseTitle)
	if req.CourseTitle == "" {
		return nil, NewValidationError("Course title is required.", "generate-course-outline: empty title", nil)
	}
	if strings.TrimSpace(req.GenerateType) == "" {
		req.GenerateType = "skeleton"
	}

	var data outlineData
	if err := c.do(ctx, call{op: "generate_course_outline", method: http.MethodPost, path: pathCourseOutline, body: req, out: &data}); err != nil {
		return nil, err
	}
	if len(data.Course) == 0 || string(data.Course) == "null" {
		return nil, NewValidationError("", "generate-course-outline: missing course", nil)
	}
	c.notifyUsage(ctx, UsageEvent{Operation: "generate_course_outline", TokensUsed: data.TokensUsed, Cost: data.Cost})
	return &OutlineResult{Course: data.Course, TokensUsed: data.TokensUsed, Cost: data.Cost}, nil
}

func (c *Client) GenerateCourseBlueprint(ctx context.Context, req BlueprintRequest) (*BlueprintResult, error) {
	req.CourseTitle = strings.TrimSpace(req.CourseTitle)
	if req.CourseTitle == "" {
		return nil, NewValidationError("Course title is required.", "generate-course-blueprint: empty title", nil)
	}

	var data blueprintData
	if err := c.do(ctx, call{op: "generate_course_blueprint", method: http.MethodPost, path: pathCourseBlueprint, body: req, out: &data}); err != nil {
		return nil, err
	}
	if len(data.Blueprint) == 0 || string(data.Blueprint) == "null" {
		return nil, NewValidationError("", "generate-course-blueprint: missing blueprint", nil)
	}
	c.notifyUsage(ctx, UsageEvent{Operation: "generate_course_blueprint"})
	return &BlueprintResult{Blueprint: data.Blueprint}, nil
}

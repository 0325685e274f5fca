package handlers

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-coursegen/internal/course"
	"github.com/yungbote/neurobridge-coursegen/internal/gateway"
	"github.com/yungbote/neurobridge-coursegen/internal/http/response"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
)

type CourseService interface {
	Generate(ctx context.Context, req course.Request, ro course.RunOptions) (*course.Document, error)
}

type OutlineGenerator interface {
	GenerateCourseOutline(ctx context.Context, req gateway.OutlineRequest) (*gateway.OutlineResult, error)
	GenerateCourseBlueprint(ctx context.Context, req gateway.BlueprintRequest) (*gateway.BlueprintResult, error)
}

type CourseHandler struct {
	log      *logger.Logger
	courses  CourseService
	outlines OutlineGenerator
}

func NewCourseHandler(log *logger.Logger, courses CourseService, outlines OutlineGenerator) *CourseHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CourseHandler{
		log:      log.With("handler", "CourseHandler"),
		courses:  courses,
		outlines: outlines,
	}
}

type generateCourseRequest struct {
	Title          string   `json:"title" binding:"required,max=200"`
	Description    string   `json:"description" binding:"max=2000"`
	Difficulty     string   `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	Duration       string   `json:"duration" binding:"max=100"`
	TargetAudience string   `json:"target_audience" binding:"max=500"`
	Objectives     []string `json:"objectives" binding:"max=12,dive,max=300"`
	Thumbnails     *bool    `json:"thumbnails"`
	// Channel receives course_progress events over /api/realtime/stream.
	Channel string `json:"channel" binding:"max=100"`
}

// POST /api/courses/generate
func (h *CourseHandler) Generate(c *gin.Context) {
	var req generateCourseRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	doc, err := h.courses.Generate(c.Request.Context(), course.Request{
		Title:          req.Title,
		Description:    req.Description,
		Difficulty:     req.Difficulty,
		Duration:       req.Duration,
		TargetAudience: req.TargetAudience,
		Objectives:     req.Objectives,
	}, course.RunOptions{Channel: req.Channel, Thumbnails: req.Thumbnails})
	if err != nil {
		h.log.Warn("Course generation aborted", "title", req.Title, "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": doc})
}

type outlineRequest struct {
	CourseTitle   string   `json:"course_title" binding:"required,max=200"`
	SubjectDomain string   `json:"subject_domain" binding:"max=200"`
	Description   string   `json:"description" binding:"max=2000"`
	Duration      string   `json:"duration" binding:"max=100"`
	Difficulty    string   `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	Objectives    []string `json:"objectives" binding:"max=12,dive,max=300"`
	GenerateType  string   `json:"generate_type" binding:"omitempty,oneof=skeleton comprehensive"`
}

// POST /api/courses/outline
func (h *CourseHandler) Outline(c *gin.Context) {
	var req outlineRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	res, err := h.outlines.GenerateCourseOutline(c.Request.Context(), gateway.OutlineRequest{
		CourseTitle:   req.CourseTitle,
		SubjectDomain: req.SubjectDomain,
		Description:   req.Description,
		Duration:      req.Duration,
		Difficulty:    req.Difficulty,
		Objectives:    req.Objectives,
		GenerateType:  req.GenerateType,
	})
	if err != nil {
		h.log.Warn("Outline generation failed", "title", req.CourseTitle, "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"course":      json.RawMessage(res.Course),
		"tokens_used": res.TokensUsed,
		"cost":        res.Cost,
	})
}

type blueprintRequest struct {
	CourseTitle        string   `json:"course_title" binding:"required,max=200"`
	SubjectDomain      string   `json:"subject_domain" binding:"max=200"`
	Description        string   `json:"description" binding:"max=2000"`
	TargetAudience     string   `json:"target_audience" binding:"max=500"`
	Difficulty         string   `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	Duration           string   `json:"duration" binding:"max=100"`
	LearningObjectives []string `json:"learning_objectives" binding:"max=12,dive,max=300"`
	Prerequisites      []string `json:"prerequisites" binding:"max=12,dive,max=300"`
	DeliveryMode       string   `json:"delivery_mode" binding:"max=100"`
	AssessmentStrategy string   `json:"assessment_strategy" binding:"max=500"`
	ModuleCount        int      `json:"module_count" binding:"min=0,max=20"`
	Constraints        string   `json:"constraints" binding:"max=1000"`
}

// POST /api/courses/blueprint
func (h *CourseHandler) Blueprint(c *gin.Context) {
	var req blueprintRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	res, err := h.outlines.GenerateCourseBlueprint(c.Request.Context(), gateway.BlueprintRequest(req))
	if err != nil {
		h.log.Warn("Blueprint generation failed", "title", req.CourseTitle, "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"blueprint": json.RawMessage(res.Blueprint)})
}

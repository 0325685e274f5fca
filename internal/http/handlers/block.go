package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-coursegen/internal/content/blockgen"
	"github.com/yungbote/neurobridge-coursegen/internal/content/blocks"
	"github.com/yungbote/neurobridge-coursegen/internal/http/response"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/apierr"
)

type BlockGenerator interface {
	Generate(ctx context.Context, req blockgen.Request) (*blockgen.Result, error)
}

type BlockObserver interface {
	ObserveBlock(blockType string, err error)
}

type BlockHandler struct {
	blocks BlockGenerator
	obs    BlockObserver
}

func NewBlockHandler(gen BlockGenerator, obs BlockObserver) *BlockHandler {
	return &BlockHandler{blocks: gen, obs: obs}
}

type generateBlockRequest struct {
	Type         string `json:"type" binding:"required"`
	Variant      string `json:"variant"`
	Prompt       string `json:"prompt" binding:"max=2000"`
	Instructions string `json:"instructions" binding:"max=2000"`
	CourseTitle  string `json:"course_title" binding:"max=200"`
	ModuleTitle  string `json:"module_title" binding:"max=200"`
	LessonTitle  string `json:"lesson_title" binding:"max=200"`
	Difficulty   string `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
}

// POST /api/blocks/generate
func (h *BlockHandler) Generate(c *gin.Context) {
	var req generateBlockRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	t, err := blocks.ParseType(req.Type)
	if err != nil {
		response.RespondErr(c, apierr.New(http.StatusBadRequest, "unknown_block_type", err))
		return
	}
	kind, err := blocks.NewKind(t, blocks.Variant(req.Variant))
	if err != nil {
		response.RespondErr(c, apierr.New(http.StatusBadRequest, "unknown_block_variant", err))
		return
	}
	if !blockgen.Supports(kind) {
		response.RespondErr(c, apierr.New(http.StatusBadRequest, "block_not_generated",
			fmt.Errorf("%s blocks are added from a URL, not generated", t)))
		return
	}

	res, err := h.blocks.Generate(c.Request.Context(), blockgen.Request{
		Kind:         kind,
		UserPrompt:   req.Prompt,
		Instructions: req.Instructions,
		Course: blockgen.CourseContext{
			CourseTitle: req.CourseTitle,
			ModuleTitle: req.ModuleTitle,
			LessonTitle: req.LessonTitle,
			Difficulty:  req.Difficulty,
		},
	})
	if h.obs != nil {
		h.obs.ObserveBlock(string(t), err)
	}
	if err != nil {
		response.RespondErr(c, err)
		return
	}

	block := blocks.New(kind, res.Content)
	block.Order = 1
	response.RespondOK(c, gin.H{
		"block":       block,
		"type":        res.Type,
		"templateId":  res.TemplateID,
		"content":     res.Content,
		"tokens_used": res.TokensUsed,
		"cost":        res.Cost,
		"created_at":  time.Now().UTC(),
	})
}

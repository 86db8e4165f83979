package controller

import (
	"errors"
	"institute_admin_backend/internal/service"
	"institute_admin_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService *service.ExamService
}

func NewExamController(examService *service.ExamService) *ExamController {
	return &ExamController{ExamService: examService}
}

// Present godoc
// @Summary Load an exam by attempt token
// @Description Returns the questions in a fresh random order with correct answers withheld.
// @Tags exam
// @Produce  json
// @Param   token path string true "attempt token"
// @Success 200 {object} util.Response{data=service.ExamView}
// @Failure 404 {object} util.Response "unknown or inactive token"
// @Failure 409 {object} util.Response "attempt already completed"
// @Failure 403 {object} util.Response "attempts exhausted"
// @Router /api/exam/{token} [get]
func (c *ExamController) Present(ctx *gin.Context) {
	token := ctx.Param("token")

	view, err := c.ExamService.PresentQuestions(token)
	if err != nil {
		c.handleExamError(ctx, token, err)
		return
	}

	util.Success(ctx, view)
}

// Submit godoc
// @Summary Submit answers for an attempt
// @Description Scores and finalizes the attempt exactly once. A duplicate submission gets 409 with the result location.
// @Tags exam
// @Accept  json
// @Produce  json
// @Param   token path string true "attempt token"
// @Param   body body service.SubmissionRequest true "answers keyed by question id"
// @Success 200 {object} util.Response{data=service.SubmissionResult}
// @Failure 404 {object} util.Response "unknown or inactive token"
// @Failure 409 {object} util.Response "already finalized"
// @Router /api/exam/{token}/submit [post]
func (c *ExamController) Submit(ctx *gin.Context) {
	token := ctx.Param("token")

	var req service.SubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ExamService.Submit(token, req)
	if err != nil {
		c.handleExamError(ctx, token, err)
		return
	}

	util.Success(ctx, result)
}

// Result godoc
// @Summary View the scored result for a completed attempt
// @Tags exam
// @Produce  json
// @Param   token path string true "attempt token"
// @Success 200 {object} util.Response{data=service.ResultView}
// @Failure 404 {object} util.Response "unknown token"
// @Failure 409 {object} util.Response "attempt not yet submitted"
// @Router /api/exam/{token}/result [get]
func (c *ExamController) Result(ctx *gin.Context) {
	token := ctx.Param("token")

	view, err := c.ExamService.GetResult(token)
	if err != nil {
		c.handleExamError(ctx, token, err)
		return
	}

	util.Success(ctx, view)
}

// handleExamError maps service sentinels onto the student-facing wire.
// Tokens are capability credentials, so unknown and inactive collapse
// into the same 404 rather than leaking which one it was.
func (c *ExamController) handleExamError(ctx *gin.Context, token string, err error) {
	switch {
	case errors.Is(err, util.ErrInvalidToken):
		util.Error(ctx, http.StatusNotFound, "exam not found")
	case errors.Is(err, util.ErrAttemptAlreadyCompleted), errors.Is(err, util.ErrSubmissionConflict):
		util.Conflict(ctx, "attempt already completed", gin.H{
			"resultUrl": "/api/exam/" + token + "/result",
		})
	case errors.Is(err, util.ErrResultNotReady):
		util.Conflict(ctx, "attempt has not been submitted yet", nil)
	case errors.Is(err, util.ErrAttemptsExhausted):
		util.Error(ctx, http.StatusForbidden, "no attempts remaining")
	default:
		util.LogInternalError(ctx, err)
	}
}

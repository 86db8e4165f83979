package controller

import (
	"errors"
	"fmt"
	"institute_admin_backend/internal/service"
	"institute_admin_backend/internal/util"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AssessmentController struct {
	AssessmentService *service.AssessmentService
	EnrollmentService *service.EnrollmentService
	StorageService    *service.StorageService
}

func NewAssessmentController(assessmentService *service.AssessmentService, enrollmentService *service.EnrollmentService, storageService *service.StorageService) *AssessmentController {
	return &AssessmentController{
		AssessmentService: assessmentService,
		EnrollmentService: enrollmentService,
		StorageService:    storageService,
	}
}

// Create godoc
// @Summary Create an assessment
// @Tags assessments
// @Accept  json
// @Produce  json
// @Param   body body service.AssessmentRequest true "assessment payload"
// @Success 201 {object} util.Response{data=model.Assessment}
// @Failure 400 {object} util.Response
// @Router /api/admin/assessments [post]
// @Security BearerAuth
func (c *AssessmentController) Create(ctx *gin.Context) {
	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assessment, err := c.AssessmentService.CreateAssessment(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, assessment)
}

// Update godoc
// @Summary Update an assessment
// @Tags assessments
// @Accept  json
// @Produce  json
// @Param   id path int true "assessment id"
// @Param   body body service.AssessmentRequest true "assessment payload"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 409 {object} util.Response "assessment is active"
// @Router /api/admin/assessments/{id} [put]
// @Security BearerAuth
func (c *AssessmentController) Update(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assessment, err := c.AssessmentService.UpdateAssessment(id, req)
	if err != nil {
		c.handleAssessmentError(ctx, err)
		return
	}

	util.Success(ctx, assessment)
}

// Get godoc
// @Summary Get an assessment
// @Tags assessments
// @Produce  json
// @Param   id path int true "assessment id"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 404 {object} util.Response
// @Router /api/admin/assessments/{id} [get]
// @Security BearerAuth
func (c *AssessmentController) Get(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	assessment, err := c.AssessmentService.GetAssessment(id)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, assessment)
}

// List godoc
// @Summary List assessments
// @Tags assessments
// @Produce  json
// @Param   page query int false "page number"
// @Param   limit query int false "page size"
// @Success 200 {object} util.PageResponse
// @Router /api/admin/assessments [get]
// @Security BearerAuth
func (c *AssessmentController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	assessments, total, err := c.AssessmentService.ListAssessments(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.SuccessPage(ctx, assessments, total, page, limit)
}

// Delete godoc
// @Summary Delete an assessment and its questions
// @Tags assessments
// @Produce  json
// @Param   id path int true "assessment id"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "assessment is active"
// @Router /api/admin/assessments/{id} [delete]
// @Security BearerAuth
func (c *AssessmentController) Delete(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	if err := c.AssessmentService.DeleteAssessment(id); err != nil {
		c.handleAssessmentError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// Activate godoc
// @Summary Activate an assessment so tokens can be taken
// @Tags assessments
// @Produce  json
// @Param   id path int true "assessment id"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 400 {object} util.Response "configuration invalid"
// @Router /api/admin/assessments/{id}/activate [post]
// @Security BearerAuth
func (c *AssessmentController) Activate(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	assessment, err := c.AssessmentService.Activate(id)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, assessment)
}

// Deactivate godoc
// @Summary Deactivate an assessment
// @Tags assessments
// @Produce  json
// @Param   id path int true "assessment id"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Router /api/admin/assessments/{id}/deactivate [post]
// @Security BearerAuth
func (c *AssessmentController) Deactivate(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	assessment, err := c.AssessmentService.Deactivate(id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, assessment)
}

// CreateQuestion godoc
// @Summary Add a question to an assessment
// @Tags questions
// @Accept  json
// @Produce  json
// @Param   id path int true "assessment id"
// @Param   body body service.QuestionRequest true "question payload"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response "assessment is active"
// @Router /api/admin/assessments/{id}/questions [post]
// @Security BearerAuth
func (c *AssessmentController) CreateQuestion(ctx *gin.Context) {
	assessmentID := util.MustParseUint(ctx.Param("id"))

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.AssessmentService.CreateQuestion(assessmentID, req)
	if err != nil {
		c.handleAssessmentError(ctx, err)
		return
	}

	util.Created(ctx, question)
}

// ListQuestions godoc
// @Summary List an assessment's questions with answers
// @Tags questions
// @Produce  json
// @Param   id path int true "assessment id"
// @Success 200 {object} util.Response{data=[]model.Question}
// @Router /api/admin/assessments/{id}/questions [get]
// @Security BearerAuth
func (c *AssessmentController) ListQuestions(ctx *gin.Context) {
	assessmentID := util.MustParseUint(ctx.Param("id"))

	questions, err := c.AssessmentService.ListQuestions(assessmentID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, questions)
}

// UpdateQuestion godoc
// @Summary Update a question
// @Tags questions
// @Accept  json
// @Produce  json
// @Param   id path int true "question id"
// @Param   body body service.QuestionRequest true "question payload"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 409 {object} util.Response "assessment is active"
// @Router /api/admin/questions/{id} [put]
// @Security BearerAuth
func (c *AssessmentController) UpdateQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.AssessmentService.UpdateQuestion(id, req)
	if err != nil {
		c.handleAssessmentError(ctx, err)
		return
	}

	util.Success(ctx, question)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags questions
// @Produce  json
// @Param   id path int true "question id"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "assessment is active"
// @Router /api/admin/questions/{id} [delete]
// @Security BearerAuth
func (c *AssessmentController) DeleteQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	if err := c.AssessmentService.DeleteQuestion(id); err != nil {
		c.handleAssessmentError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// UploadQuestionImage godoc
// @Summary Attach an illustration image to a question
// @Tags questions
// @Accept  multipart/form-data
// @Produce  json
// @Param   id path int true "question id"
// @Param   image formData file true "image file"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Router /api/admin/questions/{id}/image [post]
// @Security BearerAuth
func (c *AssessmentController) UploadQuestionImage(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	file, err := ctx.FormFile("image")
	if err != nil {
		util.BadRequest(ctx, "image file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	filename := fmt.Sprintf("questions/%d/%s%s", id, uuid.New().String(), filepath.Ext(file.Filename))
	contentType := file.Header.Get("Content-Type")

	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, src, file.Size, contentType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	question, err := c.AssessmentService.SetQuestionImage(id, url)
	if err != nil {
		c.handleAssessmentError(ctx, err)
		return
	}

	util.Success(ctx, question)
}

type AssignRequest struct {
	StudentID uint   `json:"studentId"`
	BatchName string `json:"batchName"`
}

// Assign godoc
// @Summary Issue attempt tokens for a student or a whole batch
// @Tags assignments
// @Accept  json
// @Produce  json
// @Param   id path int true "assessment id"
// @Param   body body AssignRequest true "student id or batch name"
// @Success 201 {object} util.Response{data=object}
// @Failure 409 {object} util.Response "already assigned"
// @Router /api/admin/assessments/{id}/assign [post]
// @Security BearerAuth
func (c *AssessmentController) Assign(ctx *gin.Context) {
	assessmentID := util.MustParseUint(ctx.Param("id"))

	var req AssignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if req.StudentID != 0 {
		attempt, err := c.EnrollmentService.AssignStudent(assessmentID, req.StudentID)
		if err != nil {
			if errors.Is(err, util.ErrAlreadyAssigned) {
				util.Conflict(ctx, "student already has a token for this assessment", nil)
			} else {
				util.BadRequest(ctx, err.Error())
			}
			return
		}
		util.Created(ctx, gin.H{"token": attempt.Token})
		return
	}

	if req.BatchName == "" {
		util.BadRequest(ctx, "studentId or batchName is required")
		return
	}

	issued, err := c.EnrollmentService.AssignBatch(assessmentID, req.BatchName)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Created(ctx, gin.H{"issued": issued})
}

// ListAttempts godoc
// @Summary List attempts for an assessment
// @Tags assignments
// @Produce  json
// @Param   id path int true "assessment id"
// @Param   page query int false "page number"
// @Param   limit query int false "page size"
// @Param   status query string false "filter by attempt status"
// @Success 200 {object} util.PageResponse
// @Router /api/admin/assessments/{id}/attempts [get]
// @Security BearerAuth
func (c *AssessmentController) ListAttempts(ctx *gin.Context) {
	assessmentID := util.MustParseUint(ctx.Param("id"))
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	status := ctx.Query("status")

	rows, total, err := c.AssessmentService.ListAttempts(assessmentID, page, limit, status)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.SuccessPage(ctx, rows, total, page, limit)
}

func (c *AssessmentController) handleAssessmentError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrAssessmentActive):
		util.Conflict(ctx, "assessment is active and cannot be modified", nil)
	case errors.Is(err, util.ErrInvalidAssessmentConfig):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

package controller

import (
	"errors"
	"institute_admin_backend/internal/service"
	"institute_admin_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewStudentController(enrollmentService *service.EnrollmentService) *StudentController {
	return &StudentController{EnrollmentService: enrollmentService}
}

// Create godoc
// @Summary Register a student
// @Tags students
// @Accept  json
// @Produce  json
// @Param   body body service.StudentRequest true "student payload"
// @Success 201 {object} util.Response{data=model.Student}
// @Failure 409 {object} util.Response "email already registered"
// @Router /api/admin/students [post]
// @Security BearerAuth
func (c *StudentController) Create(ctx *gin.Context) {
	var req service.StudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	student, err := c.EnrollmentService.CreateStudent(req)
	if err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.Conflict(ctx, "email already registered", nil)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, student)
}

// List godoc
// @Summary List students, optionally by batch
// @Tags students
// @Produce  json
// @Param   batch query string false "batch name"
// @Success 200 {object} util.Response{data=[]model.Student}
// @Router /api/admin/students [get]
// @Security BearerAuth
func (c *StudentController) List(ctx *gin.Context) {
	students, err := c.EnrollmentService.ListStudents(ctx.Query("batch"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, students)
}

package controller

import (
	"encoding/json"
	"fmt"
	"institute_admin_backend/internal/model"
	"institute_admin_backend/internal/repository"
	"institute_admin_backend/internal/service"
	"institute_admin_backend/pkg/logger"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func newExamRouter(t *testing.T) (*gin.Engine, string, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.Student{},
		&model.Assessment{},
		&model.Question{},
		&model.StudentAssessment{},
		&model.ResultDetail{},
	))

	student := &model.Student{Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, db.Create(student).Error)
	assessment := &model.Assessment{Title: "HTTP exam", TotalMarks: 5, PassingMarks: 60, TimeLimit: 10, MaxAttempts: 1, Status: model.AssessmentActive}
	require.NoError(t, db.Create(assessment).Error)
	question := &model.Question{AssessmentID: assessment.ID, QuestionType: model.QuestionTrueFalse, Prompt: "Water boils at 100C at sea level.", Answer: "true", Marks: 5}
	require.NoError(t, db.Create(question).Error)

	attempts := repository.NewAttemptRepository(db)
	sa, err := attempts.Assign(student.ID, assessment.ID)
	require.NoError(t, err)

	exam := service.NewExamService(attempts, repository.NewAssessmentRepository(db, nil))
	ctrl := NewExamController(exam)

	router := gin.New()
	router.GET("/api/exam/:token", ctrl.Present)
	router.POST("/api/exam/:token/submit", ctrl.Submit)
	router.GET("/api/exam/:token/result", ctrl.Result)

	return router, sa.Token, db
}

func submitBody(t *testing.T, db *gorm.DB, answer string) string {
	t.Helper()
	var question model.Question
	require.NoError(t, db.First(&question).Error)
	return fmt.Sprintf(`{"answers":{"%d":%q},"timeSpent":42}`, question.ID, answer)
}

func TestExamFlowOverHTTP(t *testing.T) {
	router, token, db := newExamRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/exam/"+token, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Water boils")
	assert.NotContains(t, w.Body.String(), `"answer"`)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/exam/"+token+"/submit", strings.NewReader(submitBody(t, db, "true")))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data service.SubmissionResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Data.Score)
	assert.Equal(t, model.ResultPassed, resp.Data.Result)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/exam/"+token+"/result", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"result":"passed"`)
}

func TestExamDoubleSubmitGets409WithResultLocation(t *testing.T) {
	router, token, db := newExamRouter(t)
	body := submitBody(t, db, "true")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/exam/"+token+"/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/exam/"+token+"/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "/api/exam/"+token+"/result")
}

func TestExamUnknownTokenIs404(t *testing.T) {
	router, _, _ := newExamRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/exam/bogus-token", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/exam/bogus-token/result", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExamResultBeforeSubmitIs409(t *testing.T) {
	router, token, _ := newExamRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/exam/"+token+"/result", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}

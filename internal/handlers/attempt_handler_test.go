package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quizdesk/quiz-service/internal/services"
	"github.com/quizdesk/quiz-service/internal/utils"
)

type MockAttemptService struct {
	mock.Mock
}

func (m *MockAttemptService) Start(ctx context.Context, quizID, userID string) (*services.StartAttemptResult, error) {
	args := m.Called(ctx, quizID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.StartAttemptResult), args.Error(1)
}

func (m *MockAttemptService) GetActiveView(ctx context.Context, quizID, userID string) (*services.ActiveAttemptView, error) {
	args := m.Called(ctx, quizID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ActiveAttemptView), args.Error(1)
}

func (m *MockAttemptService) RecordAnswer(ctx context.Context, attemptID, userID string, req *services.RecordAnswerRequest) error {
	args := m.Called(ctx, attemptID, userID, req)
	return args.Error(0)
}

func (m *MockAttemptService) CheckAnswer(ctx context.Context, attemptID, userID, questionID string) (*services.CheckAnswerResult, error) {
	args := m.Called(ctx, attemptID, userID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CheckAnswerResult), args.Error(1)
}

func (m *MockAttemptService) Submit(ctx context.Context, attemptID, userID string, req *services.SubmitAttemptRequest) (*services.SubmitResult, error) {
	args := m.Called(ctx, attemptID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SubmitResult), args.Error(1)
}

func setupAttemptRouter(svc services.AttemptService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(IdentityMiddleware())
	handler := NewAttemptHandler(svc, utils.NewDevelopmentLogger())
	router.POST("/quizzes/:quiz_id/attempts", handler.StartAttempt)
	router.GET("/quizzes/:quiz_id/attempts/active", handler.GetActiveAttempt)
	router.PUT("/attempts/:attempt_id/answers", handler.RecordAnswer)
	router.GET("/attempts/:attempt_id/questions/:question_id/check", handler.CheckAnswer)
	router.POST("/attempts/:attempt_id/submit", handler.SubmitAttempt)
	return router
}

func TestStartAttempt_NewAttemptReturns201(t *testing.T) {
	svc := new(MockAttemptService)
	router := setupAttemptRouter(svc)

	svc.On("Start", mock.Anything, "quiz-1", "user-1").Return(&services.StartAttemptResult{
		AttemptID:   "attempt-1",
		QuizID:      "quiz-1",
		StartedAt:   time.Now(),
		TotalPoints: 3.0,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/quizzes/quiz-1/attempts", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestStartAttempt_ResumeReturns200(t *testing.T) {
	svc := new(MockAttemptService)
	router := setupAttemptRouter(svc)

	svc.On("Start", mock.Anything, "quiz-1", "user-1").Return(&services.StartAttemptResult{
		AttemptID: "attempt-1",
		QuizID:    "quiz-1",
		Resumed:   true,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/quizzes/quiz-1/attempts", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result services.StartAttemptResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Resumed)
}

func TestStartAttempt_MissingIdentityIs401(t *testing.T) {
	svc := new(MockAttemptService)
	router := setupAttemptRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/quizzes/quiz-1/attempts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Start", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartAttempt_PolicyViolationIs422(t *testing.T) {
	svc := new(MockAttemptService)
	router := setupAttemptRouter(svc)

	svc.On("Start", mock.Anything, "quiz-1", "user-1").Return(nil, services.ErrStartWindowExpired)

	req := httptest.NewRequest(http.MethodPost, "/quizzes/quiz-1/attempts", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestStartAttempt_AttemptLimitCarriesCode(t *testing.T) {
	svc := new(MockAttemptService)
	router := setupAttemptRouter(svc)

	svc.On("Start", mock.Anything, "quiz-1", "user-1").Return(nil, &services.AttemptLimitError{Used: 2, Limit: 2})

	req := httptest.NewRequest(http.MethodPost, "/quizzes/quiz-1/attempts", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ATTEMPT_LIMIT_REACHED", resp.Code)
}

func TestStartAttempt_NotEnrolledIs403(t *testing.T) {
	svc := new(MockAttemptService)
	router := setupAttemptRouter(svc)

	svc.On("Start", mock.Anything, "quiz-1", "user-1").Return(nil, services.ErrNotEnrolled)

	req := httptest.NewRequest(http.MethodPost, "/quizzes/quiz-1/attempts", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetActiveAttempt_NoneIs404(t *testing.T) {
	svc := new(MockAttemptService)
	router := setupAttemptRouter(svc)

	svc.On("GetActiveView", mock.Anything, "quiz-1", "user-1").Return(nil, services.ErrNoActiveAttempt)

	req := httptest.NewRequest(http.MethodGet, "/quizzes/quiz-1/attempts/active", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordAnswer_Returns204(t *testing.T) {
	svc := new(MockAttemptService)
	router := setupAttemptRouter(svc)

	svc.On("RecordAnswer", mock.Anything, "attempt-1", "user-1", &services.RecordAnswerRequest{
		QuestionID: "q1",
		UserAnswer: "2",
	}).Return(nil)

	body, _ := json.Marshal(services.RecordAnswerRequest{QuestionID: "q1", UserAnswer: "2"})
	req := httptest.NewRequest(http.MethodPut, "/attempts/attempt-1/answers", bytes.NewReader(body))
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRecordAnswer_ClosedAttemptIs409(t *testing.T) {
	svc := new(MockAttemptService)
	router := setupAttemptRouter(svc)

	svc.On("RecordAnswer", mock.Anything, "attempt-1", "user-1", mock.Anything).Return(services.ErrAttemptNotActive)

	body, _ := json.Marshal(services.RecordAnswerRequest{QuestionID: "q1", UserAnswer: "2"})
	req := httptest.NewRequest(http.MethodPut, "/attempts/attempt-1/answers", bytes.NewReader(body))
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCheckAnswer_ReturnsFeedback(t *testing.T) {
	svc := new(MockAttemptService)
	router := setupAttemptRouter(svc)

	svc.On("CheckAnswer", mock.Anything, "attempt-1", "user-1", "q1").Return(&services.CheckAnswerResult{
		QuestionID:    "q1",
		UserAnswer:    "0",
		Correct:       true,
		CorrectAnswer: "0",
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/attempts/attempt-1/questions/q1/check", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result services.CheckAnswerResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Correct)
}

func TestCheckAnswer_DisabledIs422(t *testing.T) {
	svc := new(MockAttemptService)
	router := setupAttemptRouter(svc)

	svc.On("CheckAnswer", mock.Anything, "attempt-1", "user-1", "q1").Return(nil, services.ErrCheckAnswerDisabled)

	req := httptest.NewRequest(http.MethodGet, "/attempts/attempt-1/questions/q1/check", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSubmitAttempt_ReturnsResult(t *testing.T) {
	svc := new(MockAttemptService)
	router := setupAttemptRouter(svc)

	svc.On("Submit", mock.Anything, "attempt-1", "user-1", mock.Anything).Return(&services.SubmitResult{
		AttemptID:   "attempt-1",
		QuizID:      "quiz-1",
		Score:       2.5,
		TotalPoints: 3.0,
		Percentage:  83.33,
		TimeTaken:   540,
		SubmittedAt: time.Now(),
	}, nil)

	body, _ := json.Marshal(services.SubmitAttemptRequest{Answers: map[string]string{"q1": "0"}})
	req := httptest.NewRequest(http.MethodPost, "/attempts/attempt-1/submit", bytes.NewReader(body))
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result services.SubmitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2.5, result.Score)
}

func TestSubmitAttempt_DoubleSubmitIs409(t *testing.T) {
	svc := new(MockAttemptService)
	router := setupAttemptRouter(svc)

	svc.On("Submit", mock.Anything, "attempt-1", "user-1", mock.Anything).Return(nil, services.ErrAttemptAlreadySubmitted)

	req := httptest.NewRequest(http.MethodPost, "/attempts/attempt-1/submit", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

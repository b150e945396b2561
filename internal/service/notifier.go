package service

import (
	"quizhub_backend/internal/model"
	"quizhub_backend/pkg/logger"

	"go.uber.org/zap"
)

// Notifier receives fire-and-forget hooks on attempt submission and overdue
// transitions. The core never depends on a notification succeeding.
type Notifier interface {
	AttemptSubmitted(quiz *model.Quiz, attempt *model.QuizAttempt)
	AttemptOverdue(quiz *model.Quiz, attempt *model.QuizAttempt)
	GradePushed(quiz *model.Quiz, userID uint, grade float64)
}

// LogNotifier is the default Notifier; it only logs. A mail or message-queue
// backed implementation can replace it at wiring time.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (LogNotifier) AttemptSubmitted(quiz *model.Quiz, attempt *model.QuizAttempt) {
	logger.Log.Info("attempt submitted",
		zap.Uint("quizId", quiz.ID),
		zap.Uint("attemptId", attempt.ID),
		zap.Uint("userId", attempt.UserID),
		zap.String("state", string(attempt.State)))
}

func (LogNotifier) AttemptOverdue(quiz *model.Quiz, attempt *model.QuizAttempt) {
	logger.Log.Info("attempt overdue",
		zap.Uint("quizId", quiz.ID),
		zap.Uint("attemptId", attempt.ID),
		zap.Uint("userId", attempt.UserID))
}

func (LogNotifier) GradePushed(quiz *model.Quiz, userID uint, grade float64) {
	logger.Log.Info("grade pushed to gradebook",
		zap.Uint("quizId", quiz.ID),
		zap.Uint("userId", userID),
		zap.Float64("grade", grade))
}

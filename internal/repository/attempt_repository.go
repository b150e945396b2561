package repository

import (
	"quizhub_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) Update(attempt *model.QuizAttempt) error {
	return r.DB.Save(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindInProgress returns the user's unfinished attempt at the quiz, nil when
// there is none.
func (r *AttemptRepository) FindInProgress(quizID, userID uint) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	err := r.DB.Where("quiz_id = ? AND user_id = ? AND state IN ?",
		quizID, userID, []model.AttemptState{model.AttemptInProgress, model.AttemptOverdue}).
		Order("attempt desc").First(&a).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByQuizUser returns all of the user's attempts ordered by sequence
// number. Previews are included; callers filter.
func (r *AttemptRepository) ListByQuizUser(quizID, userID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Order("attempt").Find(&attempts).Error
	return attempts, err
}

// ListTerminalByQuiz returns every finished/abandoned non-preview attempt of
// the quiz, ordered by (user, attempt). Feeds the bulk grade pass.
func (r *AttemptRepository) ListTerminalByQuiz(quizID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("quiz_id = ? AND is_preview = ? AND state IN ?",
		quizID, false, []model.AttemptState{model.AttemptFinished, model.AttemptAbandoned}).
		Order("user_id, attempt").Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) CountByQuizUser(quizID, userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("quiz_id = ? AND user_id = ? AND is_preview = ?", quizID, userID, false).
		Count(&count).Error
	return count, err
}

func (r *AttemptRepository) MaxAttemptNumber(quizID, userID uint) (int, error) {
	var maxSeq *int
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Select("MAX(attempt)").Scan(&maxSeq).Error
	if err != nil || maxSeq == nil {
		return 0, err
	}
	return *maxSeq, nil
}

// ListDue returns attempts whose next-check time has passed, ordered by
// (course, quiz) so the scheduler's per-quiz cache stays warm across
// consecutive rows.
func (r *AttemptRepository) ListDue(cutoff int64, limit int) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	query := r.DB.
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
		Where("quiz_attempts.time_check_state IS NOT NULL AND quiz_attempts.time_check_state <= ?", cutoff).
		Where("quiz_attempts.state IN ?", []model.AttemptState{model.AttemptInProgress, model.AttemptOverdue}).
		Where("quiz_attempts.deleted_at IS NULL").
		Order("quizzes.course_id, quiz_attempts.quiz_id, quiz_attempts.id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&attempts).Error
	return attempts, err
}

// ListActiveForUsers returns the quiz's unfinished attempts belonging to the
// given users. Used to re-resolve deadlines after membership/override events.
func (r *AttemptRepository) ListActiveForUsers(quizID uint, userIDs []uint) ([]model.QuizAttempt, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var attempts []model.QuizAttempt
	err := r.DB.Where("quiz_id = ? AND user_id IN ? AND state IN ?",
		quizID, userIDs, []model.AttemptState{model.AttemptInProgress, model.AttemptOverdue}).
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) Delete(tx *gorm.DB, attemptID uint) error {
	if err := tx.Where("attempt_id = ?", attemptID).Delete(&model.AttemptStep{}).Error; err != nil {
		return err
	}
	if err := tx.Where("attempt_id = ?", attemptID).Delete(&model.RegradeMark{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.QuizAttempt{}, attemptID).Error
}

func (r *AttemptRepository) CreateSteps(steps []model.AttemptStep) error {
	if len(steps) == 0 {
		return nil
	}
	return r.DB.Create(&steps).Error
}

func (r *AttemptRepository) GetSteps(attemptID uint) ([]model.AttemptStep, error) {
	var steps []model.AttemptStep
	err := r.DB.Where("attempt_id = ?", attemptID).Order("slot").Find(&steps).Error
	return steps, err
}

func (r *AttemptRepository) GetStep(attemptID uint, slot int) (*model.AttemptStep, error) {
	var step model.AttemptStep
	err := r.DB.Where("attempt_id = ? AND slot = ?", attemptID, slot).First(&step).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *AttemptRepository) SaveStep(tx *gorm.DB, step *model.AttemptStep) error {
	return tx.Save(step).Error
}

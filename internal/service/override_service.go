package service

import (
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"

	"gorm.io/gorm"
)

type OverrideService struct {
	OverrideRepo *repository.OverrideRepository
	QuizRepo     *repository.QuizRepository
	GroupRepo    *repository.GroupRepository
	UserRepo     *repository.UserRepository
	Events       *EventDispatcher
}

func NewOverrideService(overrideRepo *repository.OverrideRepository, quizRepo *repository.QuizRepository,
	groupRepo *repository.GroupRepository, userRepo *repository.UserRepository,
	events *EventDispatcher) *OverrideService {
	return &OverrideService{
		OverrideRepo: overrideRepo,
		QuizRepo:     quizRepo,
		GroupRepo:    groupRepo,
		UserRepo:     userRepo,
		Events:       events,
	}
}

type OverrideRequest struct {
	QuizID    uint    `json:"quizId" binding:"required"`
	UserID    *uint   `json:"userId"`
	GroupID   *uint   `json:"groupId"`
	TimeOpen  *int64  `json:"timeOpen"`
	TimeClose *int64  `json:"timeClose"`
	TimeLimit *int    `json:"timeLimit"`
	Attempts  *int    `json:"attempts"`
	Password  *string `json:"password"`
}

// Save creates or updates the override for the request's scope. At most one
// override may exist per (quiz, user) or (quiz, group); a write against an
// existing scope merges field-wise, last write winning.
func (s *OverrideService) Save(req OverrideRequest) (*model.QuizOverride, error) {
	if (req.UserID == nil) == (req.GroupID == nil) {
		return nil, util.ErrOverrideScope
	}
	if _, err := s.QuizRepo.FindByID(req.QuizID); err != nil {
		return nil, err
	}
	// A nonexistent target is a caller bug, not a blocked student.
	if req.UserID != nil {
		if _, err := s.UserRepo.FindByID(*req.UserID); err != nil {
			return nil, err
		}
	}
	if req.GroupID != nil {
		if _, err := s.GroupRepo.FindByID(*req.GroupID); err != nil {
			return nil, err
		}
	}

	incoming := &model.QuizOverride{
		QuizID:    req.QuizID,
		UserID:    req.UserID,
		GroupID:   req.GroupID,
		TimeOpen:  req.TimeOpen,
		TimeClose: req.TimeClose,
		TimeLimit: req.TimeLimit,
		Attempts:  req.Attempts,
		Password:  req.Password,
	}

	var existing *model.QuizOverride
	var err error
	if req.UserID != nil {
		existing, err = s.OverrideRepo.FindForUser(req.QuizID, *req.UserID)
	} else {
		existing, err = s.OverrideRepo.FindForGroup(req.QuizID, *req.GroupID)
	}
	if err != nil {
		return nil, err
	}

	saved := incoming
	if existing != nil {
		existing.MergeFrom(incoming)
		saved = existing
		err = s.OverrideRepo.Update(existing)
	} else {
		err = s.OverrideRepo.Create(incoming)
	}
	if err != nil {
		return nil, err
	}

	s.Events.OverrideChanged(OverrideChanged{
		QuizID:  saved.QuizID,
		UserID:  saved.UserID,
		GroupID: saved.GroupID,
	})
	return saved, nil
}

func (s *OverrideService) Get(id uint) (*model.QuizOverride, error) {
	return s.OverrideRepo.FindByID(id)
}

func (s *OverrideService) ListForQuiz(quizID uint) ([]model.QuizOverride, error) {
	return s.OverrideRepo.ListForQuiz(quizID)
}

// Delete removes an override; affected attempts fall back to group/default
// access through the OverrideChanged event.
func (s *OverrideService) Delete(id uint) error {
	override, err := s.OverrideRepo.FindByID(id)
	if err == gorm.ErrRecordNotFound {
		return util.ErrOverrideNotFound
	}
	if err != nil {
		return err
	}
	if err := s.OverrideRepo.Delete(id); err != nil {
		return err
	}
	s.Events.OverrideChanged(OverrideChanged{
		QuizID:  override.QuizID,
		UserID:  override.UserID,
		GroupID: override.GroupID,
	})
	return nil
}

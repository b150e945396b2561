package service

import (
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"

	"gorm.io/gorm"
)

type GroupService struct {
	GroupRepo    *repository.GroupRepository
	OverrideRepo *repository.OverrideRepository
	Events       *EventDispatcher
	DB           *gorm.DB
}

func NewGroupService(groupRepo *repository.GroupRepository, overrideRepo *repository.OverrideRepository,
	events *EventDispatcher, db *gorm.DB) *GroupService {
	return &GroupService{
		GroupRepo:    groupRepo,
		OverrideRepo: overrideRepo,
		Events:       events,
		DB:           db,
	}
}

func (s *GroupService) Create(courseID uint, name, description string) (*model.Group, error) {
	group := &model.Group{
		CourseID:    courseID,
		Name:        name,
		Description: description,
	}
	if err := s.GroupRepo.Create(group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *GroupService) List(courseID uint) ([]model.Group, error) {
	return s.GroupRepo.ListByCourse(courseID)
}

func (s *GroupService) findGroup(groupID uint) (*model.Group, error) {
	group, err := s.GroupRepo.FindByID(groupID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrGroupNotFound
	}
	return group, err
}

func (s *GroupService) AddMember(groupID, userID uint) error {
	group, err := s.findGroup(groupID)
	if err != nil {
		return err
	}
	if err := s.GroupRepo.AddMember(groupID, userID); err != nil {
		return err
	}
	s.Events.MembershipAdded(MembershipAdded{
		CourseID: group.CourseID,
		GroupID:  groupID,
		UserID:   userID,
	})
	return nil
}

// RemoveMember drops the membership. Overrides stay as they are; attempts of
// the leaving user are re-resolved through the event, which is what actually
// takes the group's deadlines away from them.
func (s *GroupService) RemoveMember(groupID, userID uint) error {
	group, err := s.findGroup(groupID)
	if err != nil {
		return err
	}
	if err := s.GroupRepo.RemoveMember(groupID, userID); err != nil {
		return err
	}
	s.Events.MembershipRemoved(MembershipRemoved{
		CourseID: group.CourseID,
		GroupID:  groupID,
		UserID:   userID,
	})
	return nil
}

// Delete removes the group, its memberships and its now-orphaned overrides
// in one unit, then has subscribers re-resolve the ex-members' attempts.
func (s *GroupService) Delete(groupID uint) error {
	group, err := s.findGroup(groupID)
	if err != nil {
		return err
	}
	members, err := s.GroupRepo.UserIDsOfGroup(groupID)
	if err != nil {
		return err
	}
	overrides, err := s.OverrideRepo.ListByGroup(groupID)
	if err != nil {
		return err
	}
	quizIDs := make([]uint, 0, len(overrides))
	for _, o := range overrides {
		quizIDs = append(quizIDs, o.QuizID)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.OverrideRepo.DeleteByGroup(tx, groupID); err != nil {
			return err
		}
		return s.GroupRepo.Delete(tx, groupID)
	})
	if err != nil {
		return err
	}

	s.Events.GroupDeleted(GroupDeleted{
		CourseID:  group.CourseID,
		GroupID:   groupID,
		MemberIDs: members,
		QuizIDs:   quizIDs,
	})
	return nil
}

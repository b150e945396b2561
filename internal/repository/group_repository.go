package repository

import (
	"quizhub_backend/internal/model"

	"gorm.io/gorm"
)

type GroupRepository struct {
	DB *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{DB: db}
}

func (r *GroupRepository) Create(group *model.Group) error {
	return r.DB.Create(group).Error
}

func (r *GroupRepository) FindByID(id uint) (*model.Group, error) {
	var g model.Group
	if err := r.DB.First(&g, id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepository) ListByCourse(courseID uint) ([]model.Group, error) {
	var groups []model.Group
	err := r.DB.Where("course_id = ?", courseID).Order("name").Find(&groups).Error
	return groups, err
}

func (r *GroupRepository) Delete(tx *gorm.DB, id uint) error {
	if err := tx.Where("group_id = ?", id).Delete(&model.GroupMember{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Group{}, id).Error
}

func (r *GroupRepository) AddMember(groupID, userID uint) error {
	return r.DB.Create(&model.GroupMember{GroupID: groupID, UserID: userID}).Error
}

func (r *GroupRepository) RemoveMember(groupID, userID uint) error {
	return r.DB.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&model.GroupMember{}).Error
}

// GroupIDsOfUser returns the ids of the course's groups the user belongs to.
func (r *GroupRepository) GroupIDsOfUser(courseID, userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.GroupMember{}).
		Joins("JOIN groups ON groups.id = group_members.group_id").
		Where("group_members.user_id = ? AND groups.course_id = ? AND groups.deleted_at IS NULL", userID, courseID).
		Pluck("group_members.group_id", &ids).Error
	return ids, err
}

func (r *GroupRepository) UserIDsOfGroup(groupID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.GroupMember{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &ids).Error
	return ids, err
}

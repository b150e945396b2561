package model

// swagger:model Group
type Group struct {
	BaseModel
	CourseID    uint   `gorm:"index;type:bigint unsigned" json:"courseId"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

func (Group) TableName() string {
	return "groups"
}

// swagger:model GroupMember
type GroupMember struct {
	BaseModel
	GroupID uint `gorm:"index:idx_group_user,unique;type:bigint unsigned" json:"groupId"`
	UserID  uint `gorm:"index:idx_group_user,unique;type:bigint unsigned" json:"userId"`
}

func (GroupMember) TableName() string {
	return "group_members"
}

package model

// swagger:model Notification
type Notification struct {
	BaseModel
	SenderRole UserRole `gorm:"size:20;not null" json:"senderRole"`
	SenderID   uint     `gorm:"index" json:"senderId"`

	RecipientRole      UserRole `gorm:"size:20;index:idx_recipient_read;not null" json:"recipientRole"`
	TeacherRecipientID *uint    `gorm:"index;type:bigint unsigned" json:"teacherRecipientId,omitempty"`
	StudentRecipientID *uint    `gorm:"index;type:bigint unsigned" json:"studentRecipientId,omitempty"`

	Title   string `gorm:"size:255;not null" json:"title"`
	Message string `gorm:"type:text" json:"message"`
	IsRead  bool   `gorm:"default:false;index:idx_recipient_read" json:"isRead"`
}

func (Notification) TableName() string {
	return "notifications"
}

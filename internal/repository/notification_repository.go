package repository

import (
	"thinkjava_backend/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(notification *model.Notification) error {
	return r.DB.Create(notification).Error
}

func (r *NotificationRepository) CreateBatch(notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.DB.CreateInBatches(notifications, 500).Error
}

func (r *NotificationRepository) ListForStudent(studentID uint, limit int) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.DB.
		Where("recipient_role = ? AND student_recipient_id = ?", model.RoleStudent, studentID).
		Order("created_at desc").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) ListForTeacher(teacherID uint, limit int) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.DB.
		Where("recipient_role = ? AND teacher_recipient_id = ?", model.RoleTeacher, teacherID).
		Order("created_at desc").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) UnreadCountForStudent(studentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Notification{}).
		Where("recipient_role = ? AND student_recipient_id = ? AND is_read = ?", model.RoleStudent, studentID, false).
		Count(&count).Error
	return count, err
}

// MarkRead 只允许标记属于自己的通知
func (r *NotificationRepository) MarkRead(notificationID, studentID uint) (bool, error) {
	result := r.DB.Model(&model.Notification{}).
		Where("id = ? AND student_recipient_id = ?", notificationID, studentID).
		Update("is_read", true)
	return result.RowsAffected > 0, result.Error
}

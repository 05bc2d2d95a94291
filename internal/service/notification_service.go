package service

import (
	"fmt"
	"time"

	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/repository"
	"thinkjava_backend/internal/util"
	"thinkjava_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationService 站内通知。发送失败只记日志，不影响主操作
type NotificationService struct {
	NotificationRepo *repository.NotificationRepository
}

func NewNotificationService(notificationRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{NotificationRepo: notificationRepo}
}

// NotifyLevelUnlocked 给每个学生发一条解锁通知；dueDate 非空时附带截止时间
func (s *NotificationService) NotifyLevelUnlocked(teacherID uint, studentIDs []uint, levelName string, dueDate *time.Time) {
	if len(studentIDs) == 0 {
		return
	}

	message := fmt.Sprintf("%s is now unlocked. Good luck!", levelName)
	if dueDate != nil {
		message = fmt.Sprintf("%s is now unlocked. It is due on %s.", levelName, dueDate.Format(util.DisplayFormat))
	}

	rows := make([]model.Notification, 0, len(studentIDs))
	for _, id := range studentIDs {
		sid := id
		rows = append(rows, model.Notification{
			SenderRole:         model.RoleTeacher,
			SenderID:           teacherID,
			RecipientRole:      model.RoleStudent,
			StudentRecipientID: &sid,
			Title:              "Level Unlocked",
			Message:            message,
		})
	}
	if err := s.NotificationRepo.CreateBatch(rows); err != nil {
		logger.Log.Error("failed to create unlock notifications",
			zap.Uint("teacher_id", teacherID),
			zap.Int("students", len(studentIDs)),
			zap.Error(err))
	}
}

// Send 单条通知，错误返回给调用方
func (s *NotificationService) Send(n *model.Notification) error {
	return s.NotificationRepo.Create(n)
}

func (s *NotificationService) ListForStudent(studentID uint, limit int) ([]model.Notification, error) {
	return s.NotificationRepo.ListForStudent(studentID, limit)
}

func (s *NotificationService) ListForTeacher(teacherID uint, limit int) ([]model.Notification, error) {
	return s.NotificationRepo.ListForTeacher(teacherID, limit)
}

func (s *NotificationService) UnreadCount(studentID uint) (int64, error) {
	return s.NotificationRepo.UnreadCountForStudent(studentID)
}

func (s *NotificationService) MarkRead(notificationID, studentID uint) error {
	found, err := s.NotificationRepo.MarkRead(notificationID, studentID)
	if err != nil {
		return err
	}
	if !found {
		return gorm.ErrRecordNotFound
	}
	return nil
}

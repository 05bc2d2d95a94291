package service

import (
	"errors"

	"thinkjava_backend/internal/config"
	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/repository"
	"thinkjava_backend/internal/util"
	"thinkjava_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService 统一登录：同一个入口按 学号 → 工号 → 管理员用户名
// 依次匹配，命中即发 JWT。任何一步的失败都归并成同一个错误，
// 不向外暴露"账号存在但密码错"这类信息
type AuthService struct {
	StudentRepo *repository.StudentRepository
	TeacherRepo *repository.TeacherRepository
	AdminRepo   *repository.AdminRepository
	Config      *config.Config
}

func NewAuthService(studentRepo *repository.StudentRepository, teacherRepo *repository.TeacherRepository, adminRepo *repository.AdminRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		StudentRepo: studentRepo,
		TeacherRepo: teacherRepo,
		AdminRepo:   adminRepo,
		Config:      cfg,
	}
}

// LoginResult 登录成功后的响应体
type LoginResult struct {
	Token string         `json:"token"`
	Role  model.UserRole `json:"role"`
	ID    uint           `json:"id"`
	Name  string         `json:"name"`
}

func checkPassword(hashed, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(raw)) == nil
}

// Login 统一登录入口
func (s *AuthService) Login(identifier, password string) (*LoginResult, error) {
	if student, err := s.StudentRepo.FindByStudentNo(identifier); err == nil {
		if checkPassword(student.Password, password) {
			return s.issue(student.ID, model.RoleStudent, student.FullName())
		}
		return nil, util.ErrInvalidCredentials
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if teacher, err := s.TeacherRepo.FindByTeacherID(identifier); err == nil {
		if checkPassword(teacher.Password, password) {
			return s.issue(teacher.ID, model.RoleTeacher, teacher.FullName())
		}
		return nil, util.ErrInvalidCredentials
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if admin, err := s.AdminRepo.FindByUsername(identifier); err == nil {
		if checkPassword(admin.Password, password) {
			return s.issue(admin.ID, model.RoleAdmin, admin.Username)
		}
		return nil, util.ErrInvalidCredentials
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return nil, util.ErrInvalidCredentials
}

func (s *AuthService) issue(userID uint, role model.UserRole, name string) (*LoginResult, error) {
	token, err := util.GenerateJWT(userID, role, name, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		logger.Log.Error("failed to sign token",
			zap.Uint("user_id", userID), zap.String("role", string(role)), zap.Error(err))
		return nil, err
	}
	return &LoginResult{Token: token, Role: role, ID: userID, Name: name}, nil
}

func HashPassword(raw string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

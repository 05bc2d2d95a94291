package service

import (
	"errors"
	"strings"

	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/repository"
	"thinkjava_backend/internal/util"
	"thinkjava_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// joinCodeLength 段位加入码长度（uuid hex 截断）
const joinCodeLength = 6

// RosterService 段位/加入码/学生注册
type RosterService struct {
	StudentRepo    *repository.StudentRepository
	SectionRepo    *repository.SectionRepository
	DepartmentRepo *repository.DepartmentRepository
	TeacherRepo    *repository.TeacherRepository
	Sync           *SyncService
}

func NewRosterService(studentRepo *repository.StudentRepository, sectionRepo *repository.SectionRepository, departmentRepo *repository.DepartmentRepository, teacherRepo *repository.TeacherRepository, sync *SyncService) *RosterService {
	return &RosterService{
		StudentRepo:    studentRepo,
		SectionRepo:    sectionRepo,
		DepartmentRepo: departmentRepo,
		TeacherRepo:    teacherRepo,
		Sync:           sync,
	}
}

func newJoinCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:joinCodeLength])
}

// GenerateJoinCode 教师为所带段位生成（或轮换）加入码。
// 每个段位只有一条码记录，重复生成是轮换而不是新增
func (s *RosterService) GenerateJoinCode(teacherID, sectionID uint) (*model.SectionJoinCode, error) {
	ok, err := s.TeacherRepo.HandlesSection(teacherID, sectionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrSectionNotHandled
	}

	code, err := s.SectionRepo.FindJoinCode(sectionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		code = &model.SectionJoinCode{SectionID: sectionID}
	} else if err != nil {
		return nil, err
	}

	code.Code = newJoinCode()
	if err := s.SectionRepo.SaveJoinCode(code); err != nil {
		return nil, err
	}
	logger.Log.Info("section join code generated",
		zap.Uint("teacher_id", teacherID), zap.Uint("section_id", sectionID))
	return code, nil
}

// RegisterStudentInput 注册表单
type RegisterStudentInput struct {
	StudentNo string `json:"studentNo" binding:"required"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName"`
	Password  string `json:"password" binding:"required,min=6"`
	JoinCode  string `json:"joinCode" binding:"required"`
}

// RegisterStudent 学生通过加入码自助注册。
// 成功后异步补进度行，新生立刻能拿到完整存档
func (s *RosterService) RegisterStudent(input RegisterStudentInput) (*model.Student, error) {
	joinCode, err := s.SectionRepo.FindByJoinCode(strings.ToUpper(strings.TrimSpace(input.JoinCode)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrInvalidJoinCode
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.StudentRepo.FindByStudentNo(input.StudentNo); err == nil {
		return nil, util.ErrStudentNoTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	section, err := s.SectionRepo.FindByID(joinCode.SectionID)
	if err != nil {
		return nil, err
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	student := &model.Student{
		StudentNo:    strings.TrimSpace(input.StudentNo),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Password:     hashed,
		DepartmentID: section.DepartmentID,
		YearLevelID:  section.YearLevelID,
		SectionID:    section.ID,
	}
	if err := s.StudentRepo.Create(student); err != nil {
		return nil, err
	}

	s.Sync.SyncStudentsAsync([]uint{student.ID})
	return student, nil
}

// ListSections 段位下拉（管理端）
func (s *RosterService) ListSections() ([]model.Section, error) {
	return s.SectionRepo.List()
}

// ListDepartments 系别下拉（排行榜过滤等）
func (s *RosterService) ListDepartments() ([]model.Department, error) {
	return s.DepartmentRepo.List()
}

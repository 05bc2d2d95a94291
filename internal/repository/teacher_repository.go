package repository

import (
	"thinkjava_backend/internal/model"

	"gorm.io/gorm"
)

type TeacherRepository struct {
	DB *gorm.DB
}

func NewTeacherRepository(db *gorm.DB) *TeacherRepository {
	return &TeacherRepository{DB: db}
}

func (r *TeacherRepository) FindByID(id uint) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.DB.First(&teacher, id).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *TeacherRepository) FindByTeacherID(teacherID string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.DB.Where("teacher_id = ?", teacherID).First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

// HandledSections 教师所带段位，含完整层级
func (r *TeacherRepository) HandledSections(teacherID uint) ([]model.HandledSection, error) {
	var handled []model.HandledSection
	err := r.DB.
		Preload("Section").
		Preload("Section.Department").
		Preload("Section.YearLevel").
		Where("teacher_id = ?", teacherID).
		Find(&handled).Error
	return handled, err
}

// HandledSectionIDs 教师所带段位ID集合（越权校验用）
func (r *TeacherRepository) HandledSectionIDs(teacherID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.HandledSection{}).
		Where("teacher_id = ?", teacherID).
		Pluck("section_id", &ids).Error
	return ids, err
}

func (r *TeacherRepository) HandlesSection(teacherID, sectionID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.HandledSection{}).
		Where("teacher_id = ? AND section_id = ?", teacherID, sectionID).
		Count(&count).Error
	return count > 0, err
}

type AdminRepository struct {
	DB *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{DB: db}
}

func (r *AdminRepository) FindByUsername(username string) (*model.SimpleAdmin, error) {
	var admin model.SimpleAdmin
	err := r.DB.Where("username = ?", username).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

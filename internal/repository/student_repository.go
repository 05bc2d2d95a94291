package repository

import (
	"thinkjava_backend/internal/model"

	"gorm.io/gorm"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) FindByID(id uint) (*model.Student, error) {
	var student model.Student
	err := r.DB.
		Preload("Department").
		Preload("YearLevel").
		Preload("Section").
		Preload("Section.Department").
		Preload("Section.YearLevel").
		First(&student, id).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByStudentNo 按校方学号查（登录路径）
func (r *StudentRepository) FindByStudentNo(studentNo string) (*model.Student, error) {
	var student model.Student
	err := r.DB.Where("student_no = ?", studentNo).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) Create(student *model.Student) error {
	return r.DB.Create(student).Error
}

// ListIDs 返回全部学生ID
func (r *StudentRepository) ListIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Student{}).Pluck("id", &ids).Error
	return ids, err
}

// ListIDsBySections 返回指定段位下的学生ID
func (r *StudentRepository) ListIDsBySections(sectionIDs []uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Student{}).
		Where("section_id IN ?", sectionIDs).
		Pluck("id", &ids).Error
	return ids, err
}

// ListWithSections 带完整段位层级，排行榜聚合用
func (r *StudentRepository) ListWithSections() ([]model.Student, error) {
	var students []model.Student
	err := r.DB.
		Preload("Section").
		Preload("Section.Department").
		Preload("Section.YearLevel").
		Find(&students).Error
	return students, err
}

// DistinctSectionIDs 学生名册触达的全部段位（调度器每轮扫描的范围）
func (r *StudentRepository) DistinctSectionIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Student{}).
		Where("section_id > 0").
		Distinct("section_id").
		Pluck("section_id", &ids).Error
	return ids, err
}

package repository

import (
	"thinkjava_backend/internal/model"

	"gorm.io/gorm"
)

type SectionRepository struct {
	DB *gorm.DB
}

func NewSectionRepository(db *gorm.DB) *SectionRepository {
	return &SectionRepository{DB: db}
}

func (r *SectionRepository) FindByID(id uint) (*model.Section, error) {
	var section model.Section
	err := r.DB.
		Preload("Department").
		Preload("YearLevel").
		First(&section, id).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *SectionRepository) List() ([]model.Section, error) {
	var sections []model.Section
	err := r.DB.
		Preload("Department").
		Preload("YearLevel").
		Joins("JOIN year_levels ON year_levels.id = sections.year_level_id").
		Order("year_levels.year, sections.letter").
		Find(&sections).Error
	return sections, err
}

func (r *SectionRepository) FindJoinCode(sectionID uint) (*model.SectionJoinCode, error) {
	var code model.SectionJoinCode
	err := r.DB.Where("section_id = ?", sectionID).First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *SectionRepository) FindByJoinCode(code string) (*model.SectionJoinCode, error) {
	var jc model.SectionJoinCode
	err := r.DB.Where("code = ?", code).First(&jc).Error
	if err != nil {
		return nil, err
	}
	return &jc, nil
}

func (r *SectionRepository) SaveJoinCode(code *model.SectionJoinCode) error {
	return r.DB.Save(code).Error
}

type DepartmentRepository struct {
	DB *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{DB: db}
}

func (r *DepartmentRepository) List() ([]model.Department, error) {
	var departments []model.Department
	err := r.DB.Order("name").Find(&departments).Error
	return departments, err
}

func (r *DepartmentRepository) FindByName(name string) (*model.Department, error) {
	var dept model.Department
	err := r.DB.Where("name = ?", name).First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

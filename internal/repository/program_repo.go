package repository

import (
	"context"

	"gorm.io/gorm"

	"student-records/internal/model"
)

// ProgramRepository 专业数据访问接口
type ProgramRepository interface {
	Create(ctx context.Context, program *model.Program) error
	GetByID(ctx context.Context, id uint) (*model.Program, error)
	// ListByName 按名称查找；deptID 非空时只在该院系内查找
	ListByName(ctx context.Context, name string, deptID *uint) ([]model.Program, error)
	List(ctx context.Context) ([]model.Program, error)
	Delete(ctx context.Context, id uint) error
}

type programRepo struct {
	db *gorm.DB
}

// NewProgramRepo 创建 ProgramRepository 实例
func NewProgramRepo(db *gorm.DB) ProgramRepository {
	return &programRepo{db: db}
}

func (r *programRepo) Create(ctx context.Context, program *model.Program) error {
	return r.db.WithContext(ctx).Create(program).Error
}

func (r *programRepo) GetByID(ctx context.Context, id uint) (*model.Program, error) {
	var program model.Program
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&program).Error
	if err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *programRepo) ListByName(ctx context.Context, name string, deptID *uint) ([]model.Program, error) {
	var programs []model.Program
	db := r.db.WithContext(ctx).Where("name = ?", name)
	if deptID != nil {
		db = db.Where("dept_id = ?", *deptID)
	}
	err := db.Order("id ASC").Find(&programs).Error
	return programs, err
}

func (r *programRepo) List(ctx context.Context) ([]model.Program, error) {
	var programs []model.Program
	err := r.db.WithContext(ctx).
		Preload("Department").
		Order("name ASC").
		Find(&programs).Error
	return programs, err
}

func (r *programRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Program{}).Error
}

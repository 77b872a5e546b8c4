package repository

import (
	"context"

	"gorm.io/gorm"

	"student-records/internal/model"
)

// StudentFilter 学生列表过滤条件，各字段为空表示不过滤，多个条件取交集
type StudentFilter struct {
	DeptCode  string
	ProgramID *uint
	CourseID  *uint
}

// StudentRepository 学生档案数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id uint) (*model.Student, error)
	GetByStudentID(ctx context.Context, studentID string) (*model.Student, error)
	// List 按姓名升序返回学生（含院系/专业/课程关联）
	List(ctx context.Context, filter *StudentFilter) ([]model.Student, error)
	// ListSheetRows 返回与关联表连接后的扁平投影，按姓名升序（同名按学号）
	ListSheetRows(ctx context.Context, filter *StudentFilter) ([]model.StudentRow, error)
	Update(ctx context.Context, student *model.Student) error
	// Delete 按内部 ID 删除；记录已不存在时不报错
	Delete(ctx context.Context, id uint) error
}

// studentRepo StudentRepository 的 GORM 实现
type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id uint) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Program").
		Preload("Course").
		Where("id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByStudentID(ctx context.Context, studentID string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) List(ctx context.Context, filter *StudentFilter) ([]model.Student, error) {
	var students []model.Student

	db := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Preload("Department").
		Preload("Program").
		Preload("Course")

	if filter != nil {
		if filter.DeptCode != "" {
			db = db.Joins("JOIN departments ON departments.id = students.dept_id").
				Where("departments.code = ?", filter.DeptCode)
		}
		if filter.ProgramID != nil {
			db = db.Where("students.program_id = ?", *filter.ProgramID)
		}
		if filter.CourseID != nil {
			db = db.Where("students.course_id = ?", *filter.CourseID)
		}
	}

	err := db.Order("students.name ASC").Order("students.student_id ASC").Find(&students).Error
	return students, err
}

func (r *studentRepo) ListSheetRows(ctx context.Context, filter *StudentFilter) ([]model.StudentRow, error) {
	var rows []model.StudentRow

	db := r.db.WithContext(ctx).
		Table("students AS s").
		Select(`s.id, s.student_id, s.name,
			d.code AS dept_code, d.name AS dept_name,
			COALESCE(p.name, '') AS program_name,
			COALESCE(c.name, '') AS course_name,
			COALESCE(s.semester, '') AS semester,
			COALESCE(s.grade, '') AS grade`).
		Joins("JOIN departments d ON s.dept_id = d.id").
		Joins("LEFT JOIN programs p ON s.program_id = p.id").
		Joins("LEFT JOIN courses c ON s.course_id = c.id")

	if filter != nil {
		if filter.DeptCode != "" {
			db = db.Where("d.code = ?", filter.DeptCode)
		}
		if filter.ProgramID != nil {
			db = db.Where("s.program_id = ?", *filter.ProgramID)
		}
		if filter.CourseID != nil {
			db = db.Where("s.course_id = ?", *filter.CourseID)
		}
	}

	err := db.Order("s.name ASC").Order("s.student_id ASC").Scan(&rows).Error
	return rows, err
}

// Update 覆盖全部可变字段（含清空为 NULL 的专业/课程）
func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).
		Model(student).
		Select("student_id", "name", "dept_id", "program_id", "course_id", "semester", "grade", "updated_at").
		Updates(student).Error
}

func (r *studentRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Student{}).Error
}

package repository

import (
	"gorm.io/gorm"

	"student-records/internal/model"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Student    StudentRepository
	Department DepartmentRepository
	Program    ProgramRepository
	Course     CourseRepository
	User       UserRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Student:    NewStudentRepo(db),
		Department: NewDepartmentRepo(db),
		Program:    NewProgramRepo(db),
		Course:     NewCourseRepo(db),
		User:       NewUserRepo(db),
	}
}

// AutoMigrate 按模型建表（sqlite 开发环境与测试使用；postgres/mysql 走 golang-migrate）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Department{},
		&model.Program{},
		&model.Course{},
		&model.Student{},
		&model.User{},
	)
}

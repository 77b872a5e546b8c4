package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-records/config"
	"student-records/internal/dto"
	"student-records/internal/model"
	"student-records/internal/repository"
	pkgerrors "student-records/pkg/errors"
)

var ErrCourseCodeExists = errors.New("课程代码已存在")

// LookupService 院系 / 专业 / 课程字典
type LookupService interface {
	ListDepartments(ctx context.Context) ([]dto.DepartmentResponse, error)
	ListPrograms(ctx context.Context) ([]dto.ProgramResponse, error)
	ListCourses(ctx context.Context) ([]dto.CourseResponse, error)
	CreateProgram(ctx context.Context, req *dto.CreateProgramRequest) (*dto.ProgramResponse, error)
	DeleteProgram(ctx context.Context, id uint) error
	CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	DeleteCourse(ctx context.Context, id uint) error
	// EnsureDepartments 按 code 补齐缺失的院系，返回新增数量；已存在的院系保持不变
	EnsureDepartments(ctx context.Context, seeds []config.DepartmentSeed) (int, error)
}

type lookupService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLookupService 创建 LookupService 实例
func NewLookupService(repo *repository.Repository, logger *zap.Logger) LookupService {
	return &lookupService{repo: repo, logger: logger}
}

func (s *lookupService) ListDepartments(ctx context.Context) ([]dto.DepartmentResponse, error) {
	depts, err := s.repo.Department.List(ctx)
	if err != nil {
		return nil, pkgerrors.WrapStore("department.list", err)
	}
	result := make([]dto.DepartmentResponse, 0, len(depts))
	for i := range depts {
		result = append(result, *toDepartmentResponse(&depts[i]))
	}
	return result, nil
}

func (s *lookupService) ListPrograms(ctx context.Context) ([]dto.ProgramResponse, error) {
	programs, err := s.repo.Program.List(ctx)
	if err != nil {
		return nil, pkgerrors.WrapStore("program.list", err)
	}
	result := make([]dto.ProgramResponse, 0, len(programs))
	for i := range programs {
		result = append(result, *toProgramResponse(&programs[i]))
	}
	return result, nil
}

func (s *lookupService) ListCourses(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		return nil, pkgerrors.WrapStore("course.list", err)
	}
	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, *toCourseResponse(&courses[i]))
	}
	return result, nil
}

func (s *lookupService) CreateProgram(ctx context.Context, req *dto.CreateProgramRequest) (*dto.ProgramResponse, error) {
	dept, err := s.repo.Department.GetByID(ctx, req.DeptID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.NewValidationError("dept_id", "院系不存在")
	}
	if err != nil {
		return nil, pkgerrors.WrapStore("department.get_by_id", err)
	}

	program := &model.Program{DeptID: dept.ID, Name: req.Name}
	if err := s.repo.Program.Create(ctx, program); err != nil {
		s.logger.Error("新增专业失败", zap.Error(err))
		return nil, pkgerrors.WrapStore("program.create", err)
	}
	program.Department = dept

	s.logger.Info("新增专业", zap.Uint("id", program.ID), zap.String("name", program.Name))
	return toProgramResponse(program), nil
}

func (s *lookupService) DeleteProgram(ctx context.Context, id uint) error {
	if err := s.repo.Program.Delete(ctx, id); err != nil {
		return pkgerrors.WrapStore("program.delete", err)
	}
	s.logger.Info("删除专业", zap.Uint("id", id))
	return nil
}

func (s *lookupService) CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	if _, err := s.repo.Course.GetByCode(ctx, req.Code); err == nil {
		return nil, ErrCourseCodeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.WrapStore("course.get_by_code", err)
	}

	course := &model.Course{Code: req.Code, Name: req.Name}
	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("新增课程失败", zap.Error(err))
		return nil, pkgerrors.WrapStore("course.create", err)
	}

	s.logger.Info("新增课程", zap.Uint("id", course.ID), zap.String("code", course.Code))
	return toCourseResponse(course), nil
}

func (s *lookupService) DeleteCourse(ctx context.Context, id uint) error {
	if err := s.repo.Course.Delete(ctx, id); err != nil {
		return pkgerrors.WrapStore("course.delete", err)
	}
	s.logger.Info("删除课程", zap.Uint("id", id))
	return nil
}

func (s *lookupService) EnsureDepartments(ctx context.Context, seeds []config.DepartmentSeed) (int, error) {
	created := 0
	for _, seed := range seeds {
		if seed.Code == "" {
			continue
		}
		_, err := s.repo.Department.GetByCode(ctx, seed.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, pkgerrors.WrapStore("department.get_by_code", err)
		}

		name := seed.Name
		if name == "" {
			name = seed.Code
		}
		if err := s.repo.Department.Create(ctx, &model.Department{Code: seed.Code, Name: name}); err != nil {
			return created, pkgerrors.WrapStore("department.create", err)
		}
		created++
	}
	if created > 0 {
		s.logger.Info("已补齐院系字典", zap.Int("created", created))
	}
	return created, nil
}

// ── 转换 ──

func toDepartmentResponse(d *model.Department) *dto.DepartmentResponse {
	return &dto.DepartmentResponse{ID: d.ID, Code: d.Code, Name: d.Name}
}

func toProgramResponse(p *model.Program) *dto.ProgramResponse {
	resp := &dto.ProgramResponse{ID: p.ID, DeptID: p.DeptID, Name: p.Name}
	if p.Department != nil {
		resp.DeptCode = p.Department.Code
	}
	return resp
}

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	return &dto.CourseResponse{ID: c.ID, Code: c.Code, Name: c.Name}
}

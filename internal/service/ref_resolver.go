package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"student-records/internal/model"
	"student-records/internal/repository"
	pkgerrors "student-records/pkg/errors"
)

// 拉取时表格中院系 / 专业 / 课程列的解释方式
const (
	PullRefModeLabel = "label"  // 院系代码 / 专业名称 / 课程名称，与推送写出的内容一致
	PullRefModeRawID = "raw_id" // 三列直接是内部 ID
)

// studentRefs 解析后的外键
type studentRefs struct {
	DeptID    uint
	ProgramID *uint
	CourseID  *uint
}

// refResolver 将表格行中的三列引用解析为外键。
// 每次拉取新建一个实例，实例内缓存查询结果。
type refResolver interface {
	resolve(ctx context.Context, row SheetRow) (*studentRefs, error)
}

func newRefResolver(mode string, repo *repository.Repository) refResolver {
	if mode == PullRefModeRawID {
		return &rawIDResolver{repo: repo}
	}
	return &labelResolver{
		repo:     repo,
		depts:    make(map[string]*model.Department),
		programs: make(map[string]*uint),
		courses:  make(map[string]*uint),
	}
}

// ── label ──

type labelResolver struct {
	repo     *repository.Repository
	depts    map[string]*model.Department
	programs map[string]*uint // key: deptID/name
	courses  map[string]*uint
}

func (r *labelResolver) resolve(ctx context.Context, row SheetRow) (*studentRefs, error) {
	if row.Department == "" {
		return nil, pkgerrors.NewValidationError("department", "院系不能为空")
	}
	dept, err := r.department(ctx, row.Department)
	if err != nil {
		return nil, err
	}
	refs := &studentRefs{DeptID: dept.ID}

	if row.Program != "" {
		if refs.ProgramID, err = r.program(ctx, dept.ID, row.Program); err != nil {
			return nil, err
		}
	}
	if row.Course != "" {
		if refs.CourseID, err = r.course(ctx, row.Course); err != nil {
			return nil, err
		}
	}
	return refs, nil
}

func (r *labelResolver) department(ctx context.Context, code string) (*model.Department, error) {
	if d, ok := r.depts[code]; ok {
		return d, nil
	}
	dept, err := r.repo.Department.GetByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.NewValidationError("department", fmt.Sprintf("未知院系代码 %q", code))
	}
	if err != nil {
		return nil, pkgerrors.WrapStore("department.get_by_code", err)
	}
	r.depts[code] = dept
	return dept, nil
}

func (r *labelResolver) program(ctx context.Context, deptID uint, name string) (*uint, error) {
	key := strconv.FormatUint(uint64(deptID), 10) + "/" + name
	if id, ok := r.programs[key]; ok {
		return id, nil
	}
	programs, err := r.repo.Program.ListByName(ctx, name, &deptID)
	if err != nil {
		return nil, pkgerrors.WrapStore("program.list_by_name", err)
	}
	switch len(programs) {
	case 0:
		return nil, pkgerrors.NewValidationError("program", fmt.Sprintf("院系下不存在专业 %q", name))
	case 1:
	default:
		return nil, pkgerrors.NewValidationError("program", fmt.Sprintf("专业名称 %q 不唯一", name))
	}
	id := programs[0].ID
	r.programs[key] = &id
	return &id, nil
}

// course 先按名称匹配，找不到再按课程代码匹配
func (r *labelResolver) course(ctx context.Context, label string) (*uint, error) {
	if id, ok := r.courses[label]; ok {
		return id, nil
	}
	courses, err := r.repo.Course.ListByName(ctx, label)
	if err != nil {
		return nil, pkgerrors.WrapStore("course.list_by_name", err)
	}
	var id uint
	switch len(courses) {
	case 0:
		c, err := r.repo.Course.GetByCode(ctx, label)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewValidationError("course", fmt.Sprintf("未知课程 %q", label))
		}
		if err != nil {
			return nil, pkgerrors.WrapStore("course.get_by_code", err)
		}
		id = c.ID
	case 1:
		id = courses[0].ID
	default:
		return nil, pkgerrors.NewValidationError("course", fmt.Sprintf("课程名称 %q 不唯一", label))
	}
	r.courses[label] = &id
	return &id, nil
}

// ── raw_id ──

type rawIDResolver struct {
	repo *repository.Repository
}

func (r *rawIDResolver) resolve(ctx context.Context, row SheetRow) (*studentRefs, error) {
	deptID, err := parseRefID("department", row.Department)
	if err != nil {
		return nil, err
	}
	if deptID == nil {
		return nil, pkgerrors.NewValidationError("department", "院系不能为空")
	}
	if err := exists(ctx, "department", *deptID, func(ctx context.Context, id uint) error {
		_, err := r.repo.Department.GetByID(ctx, id)
		return err
	}); err != nil {
		return nil, err
	}
	refs := &studentRefs{DeptID: *deptID}

	if refs.ProgramID, err = parseRefID("program", row.Program); err != nil {
		return nil, err
	}
	if refs.ProgramID != nil {
		var program *model.Program
		if err := exists(ctx, "program", *refs.ProgramID, func(ctx context.Context, id uint) error {
			var err error
			program, err = r.repo.Program.GetByID(ctx, id)
			return err
		}); err != nil {
			return nil, err
		}
		if program.DeptID != refs.DeptID {
			return nil, pkgerrors.NewValidationError("program", "专业不属于所选院系")
		}
	}

	if refs.CourseID, err = parseRefID("course", row.Course); err != nil {
		return nil, err
	}
	if refs.CourseID != nil {
		if err := exists(ctx, "course", *refs.CourseID, func(ctx context.Context, id uint) error {
			_, err := r.repo.Course.GetByID(ctx, id)
			return err
		}); err != nil {
			return nil, err
		}
	}
	return refs, nil
}

// parseRefID 空串视为未设置
func parseRefID(field, raw string) (*uint, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return nil, pkgerrors.NewValidationError(field, fmt.Sprintf("无效的 ID %q", raw))
	}
	id := uint(n)
	return &id, nil
}

func exists(ctx context.Context, field string, id uint, get func(context.Context, uint) error) error {
	err := get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.NewValidationError(field, fmt.Sprintf("ID %d 不存在", id))
	}
	if err != nil {
		return pkgerrors.WrapStore(field+".get_by_id", err)
	}
	return nil
}

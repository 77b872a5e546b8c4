package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-records/internal/dto"
	"student-records/internal/model"
	"student-records/internal/repository"
	pkgerrors "student-records/pkg/errors"
)

// WarnSheetSyncFailed 本地写入成功但表格镜像推送失败时返回给调用方的提示
const WarnSheetSyncFailed = "本地已保存，但表格镜像同步失败，可稍后手动重新推送"

var studentIDPattern = regexp.MustCompile(`^\d{2}-\d{5}$`)

// ErrStudentIDExists 学号已被其他学生占用
var ErrStudentIDExists = errors.New("学号已存在")

// Caller 发起操作的已认证账号
type Caller struct {
	UserID   uint
	Username string
	Role     string
}

// StudentService 学生档案业务接口
//
// 增删改在本地提交后立即推送一次表格镜像；推送失败不会回滚本地写入，
// 只在返回结果中以 SheetSynced=false + Warning 体现。
type StudentService interface {
	List(ctx context.Context, caller Caller, req *dto.StudentListRequest) ([]dto.StudentResponse, error)
	Get(ctx context.Context, caller Caller, id uint) (*dto.StudentResponse, error)
	Create(ctx context.Context, caller Caller, req *dto.StudentRequest) (*dto.StudentMutationResponse, error)
	Update(ctx context.Context, caller Caller, id uint, req *dto.StudentRequest) (*dto.StudentMutationResponse, error)
	// Delete 记录不存在时同样成功
	Delete(ctx context.Context, caller Caller, id uint) (*dto.StudentMutationResponse, error)
}

type studentService struct {
	repo   *repository.Repository
	sync   SyncService
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, sync SyncService, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, sync: sync, logger: logger}
}

// ────────────────────── 查询 ──────────────────────

func (s *studentService) List(ctx context.Context, _ Caller, req *dto.StudentListRequest) ([]dto.StudentResponse, error) {
	filter := &repository.StudentFilter{}
	if req != nil {
		filter.DeptCode = strings.TrimSpace(req.Dept)
		filter.ProgramID = req.Program
		filter.CourseID = req.Course
	}

	students, err := s.repo.Student.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, pkgerrors.WrapStore("student.list", err)
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, *toStudentResponse(&students[i]))
	}
	return result, nil
}

func (s *studentService) Get(ctx context.Context, _ Caller, id uint) (*dto.StudentResponse, error) {
	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	return toStudentResponse(student), nil
}

// ────────────────────── 增删改 ──────────────────────

func (s *studentService) Create(ctx context.Context, caller Caller, req *dto.StudentRequest) (*dto.StudentMutationResponse, error) {
	// 1. 校验（任何存储操作之前）
	input := normalizeStudentRequest(req)
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	// 2. 学号唯一
	if _, err := s.repo.Student.GetByStudentID(ctx, input.StudentID); err == nil {
		return nil, ErrStudentIDExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.WrapStore("student.get_by_student_id", err)
	}

	// 3. 写入
	student := &model.Student{
		StudentID: input.StudentID,
		Name:      input.Name,
		DeptID:    input.DeptID,
		ProgramID: input.ProgramID,
		CourseID:  input.CourseID,
		Semester:  input.Semester,
		Grade:     input.Grade,
	}
	if err := s.repo.Student.Create(ctx, student); err != nil {
		s.logger.Error("新增学生失败", zap.String("student_id", student.StudentID), zap.Error(err))
		return nil, pkgerrors.WrapStore("student.create", err)
	}

	s.logger.Info("新增学生",
		zap.String("student_id", student.StudentID),
		zap.String("operator", caller.Username),
	)

	// 4. 推送表格镜像
	return s.afterMutation(ctx, student.ID), nil
}

func (s *studentService) Update(ctx context.Context, caller Caller, id uint, req *dto.StudentRequest) (*dto.StudentMutationResponse, error) {
	input := normalizeStudentRequest(req)
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	// 修改学号时不能与其他学生冲突
	if input.StudentID != student.StudentID {
		other, err := s.repo.Student.GetByStudentID(ctx, input.StudentID)
		if err == nil && other.ID != student.ID {
			return nil, ErrStudentIDExists
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.WrapStore("student.get_by_student_id", err)
		}
	}

	student.StudentID = input.StudentID
	student.Name = input.Name
	student.DeptID = input.DeptID
	student.ProgramID = input.ProgramID
	student.CourseID = input.CourseID
	student.Semester = input.Semester
	student.Grade = input.Grade
	// 关联以外键为准，避免 Updates 携带旧的关联对象
	student.Department, student.Program, student.Course = nil, nil, nil

	if err := s.repo.Student.Update(ctx, student); err != nil {
		s.logger.Error("更新学生失败", zap.Uint("id", id), zap.Error(err))
		return nil, pkgerrors.WrapStore("student.update", err)
	}

	s.logger.Info("更新学生",
		zap.String("student_id", student.StudentID),
		zap.String("operator", caller.Username),
	)

	return s.afterMutation(ctx, student.ID), nil
}

func (s *studentService) Delete(ctx context.Context, caller Caller, id uint) (*dto.StudentMutationResponse, error) {
	if err := s.repo.Student.Delete(ctx, id); err != nil {
		s.logger.Error("删除学生失败", zap.Uint("id", id), zap.Error(err))
		return nil, pkgerrors.WrapStore("student.delete", err)
	}

	s.logger.Info("删除学生", zap.Uint("id", id), zap.String("operator", caller.Username))

	push := s.sync.Push(ctx)
	return mutationResponse(nil, push), nil
}

// afterMutation 推送表格镜像并回读最新记录
func (s *studentService) afterMutation(ctx context.Context, id uint) *dto.StudentMutationResponse {
	push := s.sync.Push(ctx)

	var resp *dto.StudentResponse
	if student, err := s.repo.Student.GetByID(ctx, id); err == nil {
		resp = toStudentResponse(student)
	} else {
		s.logger.Warn("回读学生失败", zap.Uint("id", id), zap.Error(err))
	}
	return mutationResponse(resp, push)
}

func mutationResponse(student *dto.StudentResponse, push *dto.PushResult) *dto.StudentMutationResponse {
	resp := &dto.StudentMutationResponse{Student: student, SheetSynced: push.Synced}
	if !push.Synced {
		resp.Warning = WarnSheetSyncFailed
	}
	return resp
}

func (s *studentService) getStudent(ctx context.Context, id uint) (*model.Student, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &pkgerrors.NotFoundError{Entity: "student", Key: strconv.FormatUint(uint64(id), 10)}
	}
	if err != nil {
		return nil, pkgerrors.WrapStore("student.get_by_id", err)
	}
	return student, nil
}

// ────────────────────── 校验 ──────────────────────

func normalizeStudentRequest(req *dto.StudentRequest) *dto.StudentRequest {
	if req == nil {
		return &dto.StudentRequest{}
	}
	out := *req
	out.StudentID = strings.TrimSpace(out.StudentID)
	out.Name = strings.TrimSpace(out.Name)
	out.Semester = strings.TrimSpace(out.Semester)
	out.Grade = strings.TrimSpace(out.Grade)
	return &out
}

func (s *studentService) validate(ctx context.Context, req *dto.StudentRequest) error {
	if err := validateStudentID(req.StudentID); err != nil {
		return err
	}
	if err := validateName(req.Name); err != nil {
		return err
	}
	if utf8.RuneCountInString(req.Semester) > 20 {
		return pkgerrors.NewValidationError("semester", "学期不能超过 20 个字符")
	}
	if utf8.RuneCountInString(req.Grade) > 20 {
		return pkgerrors.NewValidationError("grade", "成绩不能超过 20 个字符")
	}

	if req.DeptID == 0 {
		return pkgerrors.NewValidationError("dept_id", "院系不能为空")
	}
	if _, err := s.repo.Department.GetByID(ctx, req.DeptID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NewValidationError("dept_id", "院系不存在")
		}
		return pkgerrors.WrapStore("department.get_by_id", err)
	}

	if req.ProgramID != nil {
		program, err := s.repo.Program.GetByID(ctx, *req.ProgramID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NewValidationError("program_id", "专业不存在")
		}
		if err != nil {
			return pkgerrors.WrapStore("program.get_by_id", err)
		}
		if program.DeptID != req.DeptID {
			return pkgerrors.NewValidationError("program_id", "专业不属于所选院系")
		}
	}

	if req.CourseID != nil {
		if _, err := s.repo.Course.GetByID(ctx, *req.CourseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.NewValidationError("course_id", "课程不存在")
			}
			return pkgerrors.WrapStore("course.get_by_id", err)
		}
	}
	return nil
}

func validateStudentID(id string) error {
	if !studentIDPattern.MatchString(id) {
		return pkgerrors.NewValidationError("student_id", fmt.Sprintf("学号 %q 格式应为 NN-NNNNN", id))
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return pkgerrors.NewValidationError("name", "姓名不能为空")
	}
	if utf8.RuneCountInString(name) > 150 {
		return pkgerrors.NewValidationError("name", "姓名不能超过 150 个字符")
	}
	return nil
}

// ────────────────────── 转换 ──────────────────────

func toStudentResponse(st *model.Student) *dto.StudentResponse {
	resp := &dto.StudentResponse{
		ID:        st.ID,
		StudentID: st.StudentID,
		Name:      st.Name,
		Semester:  st.Semester,
		Grade:     st.Grade,
		CreatedAt: st.CreatedAt.Format(time.RFC3339),
		UpdatedAt: st.UpdatedAt.Format(time.RFC3339),
	}
	if st.Department != nil {
		resp.Department = toDepartmentResponse(st.Department)
	}
	if st.Program != nil {
		resp.Program = toProgramResponse(st.Program)
	}
	if st.Course != nil {
		resp.Course = toCourseResponse(st.Course)
	}
	return resp
}

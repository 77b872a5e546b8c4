package service

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"student-records/internal/model"
	"student-records/internal/repository"
)

// ── 内存数据集（所有 mock 仓储共享）──

type mockDB struct {
	depts    map[uint]*model.Department
	programs map[uint]*model.Program
	courses  map[uint]*model.Course
	students map[uint]*model.Student
	users    map[uint]*model.User
	nextID   uint

	// 学生表写入计数
	studentCreates int
	studentUpdates int

	failStudentCreate error
	failSheetRows     error
}

func newMockDB() *mockDB {
	return &mockDB{
		depts:    make(map[uint]*model.Department),
		programs: make(map[uint]*model.Program),
		courses:  make(map[uint]*model.Course),
		students: make(map[uint]*model.Student),
		users:    make(map[uint]*model.User),
	}
}

func (db *mockDB) id() uint {
	db.nextID++
	return db.nextID
}

// newMockRepository 以 mockDB 组装 Repository 聚合
func newMockRepository() (*repository.Repository, *mockDB) {
	db := newMockDB()
	return &repository.Repository{
		Student:    &mockStudentRepo{db: db},
		Department: &mockDeptRepo{db: db},
		Program:    &mockProgramRepo{db: db},
		Course:     &mockCourseRepo{db: db},
		User:       &mockUserRepo{db: db},
	}, db
}

// fixtureRefs 常用的院系 / 专业 / 课程
type fixtureRefs struct {
	cs, math       *model.Department
	bscs, bsmath   *model.Program
	algo, calculus *model.Course
}

func seedLookups(db *mockDB) *fixtureRefs {
	f := &fixtureRefs{
		cs:   &model.Department{ID: db.id(), Code: "CS", Name: "Computer Science"},
		math: &model.Department{ID: db.id(), Code: "MATH", Name: "Mathematics"},
	}
	db.depts[f.cs.ID] = f.cs
	db.depts[f.math.ID] = f.math

	f.bscs = &model.Program{ID: db.id(), DeptID: f.cs.ID, Name: "BSCS"}
	f.bsmath = &model.Program{ID: db.id(), DeptID: f.math.ID, Name: "BSMath"}
	db.programs[f.bscs.ID] = f.bscs
	db.programs[f.bsmath.ID] = f.bsmath

	f.algo = &model.Course{ID: db.id(), Code: "CS101", Name: "Algorithms"}
	f.calculus = &model.Course{ID: db.id(), Code: "MA101", Name: "Calculus"}
	db.courses[f.algo.ID] = f.algo
	db.courses[f.calculus.ID] = f.calculus
	return f
}

// addStudent 直接写入数据集，不计入写入计数
func (db *mockDB) addStudent(s *model.Student) *model.Student {
	s.ID = db.id()
	db.students[s.ID] = cloneStudent(s)
	return s
}

func (db *mockDB) findStudent(studentID string) *model.Student {
	for _, s := range db.students {
		if s.StudentID == studentID {
			return s
		}
	}
	return nil
}

func cloneStudent(s *model.Student) *model.Student {
	c := *s
	c.Department, c.Program, c.Course = nil, nil, nil
	if s.ProgramID != nil {
		v := *s.ProgramID
		c.ProgramID = &v
	}
	if s.CourseID != nil {
		v := *s.CourseID
		c.CourseID = &v
	}
	return &c
}

func uintPtr(v uint) *uint { return &v }

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	db *mockDB
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if m.db.failStudentCreate != nil {
		return m.db.failStudentCreate
	}
	if m.db.findStudent(student.StudentID) != nil {
		return gorm.ErrDuplicatedKey
	}
	student.ID = m.db.id()
	student.CreatedAt = time.Now()
	student.UpdatedAt = student.CreatedAt
	m.db.students[student.ID] = cloneStudent(student)
	m.db.studentCreates++
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id uint) (*model.Student, error) {
	s, ok := m.db.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.preload(cloneStudent(s)), nil
}

func (m *mockStudentRepo) GetByStudentID(_ context.Context, studentID string) (*model.Student, error) {
	if s := m.db.findStudent(studentID); s != nil {
		return cloneStudent(s), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) preload(s *model.Student) *model.Student {
	s.Department = m.db.depts[s.DeptID]
	if s.ProgramID != nil {
		s.Program = m.db.programs[*s.ProgramID]
	}
	if s.CourseID != nil {
		s.Course = m.db.courses[*s.CourseID]
	}
	return s
}

func (m *mockStudentRepo) List(_ context.Context, filter *repository.StudentFilter) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.db.students {
		if filter != nil {
			if filter.DeptCode != "" {
				d := m.db.depts[s.DeptID]
				if d == nil || d.Code != filter.DeptCode {
					continue
				}
			}
			if filter.ProgramID != nil && !equalRef(s.ProgramID, filter.ProgramID) {
				continue
			}
			if filter.CourseID != nil && !equalRef(s.CourseID, filter.CourseID) {
				continue
			}
		}
		result = append(result, *m.preload(cloneStudent(s)))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].StudentID < result[j].StudentID
	})
	return result, nil
}

func (m *mockStudentRepo) ListSheetRows(ctx context.Context, filter *repository.StudentFilter) ([]model.StudentRow, error) {
	if m.db.failSheetRows != nil {
		return nil, m.db.failSheetRows
	}
	students, _ := m.List(ctx, filter)
	rows := make([]model.StudentRow, 0, len(students))
	for _, s := range students {
		row := model.StudentRow{
			ID:        s.ID,
			StudentID: s.StudentID,
			Name:      s.Name,
			Semester:  s.Semester,
			Grade:     s.Grade,
		}
		if s.Department != nil {
			row.DeptCode = s.Department.Code
			row.DeptName = s.Department.Name
		}
		if s.Program != nil {
			row.ProgramName = s.Program.Name
		}
		if s.Course != nil {
			row.CourseName = s.Course.Name
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	student.UpdatedAt = time.Now()
	m.db.students[student.ID] = cloneStudent(student)
	m.db.studentUpdates++
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id uint) error {
	delete(m.db.students, id)
	return nil
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	db *mockDB
}

func (m *mockDeptRepo) Create(_ context.Context, d *model.Department) error {
	d.ID = m.db.id()
	m.db.depts[d.ID] = d
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id uint) (*model.Department, error) {
	if d, ok := m.db.depts[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) GetByCode(_ context.Context, code string) (*model.Department, error) {
	for _, d := range m.db.depts {
		if d.Code == code {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.db.depts {
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

// ── Mock ProgramRepository ──

type mockProgramRepo struct {
	db *mockDB
}

func (m *mockProgramRepo) Create(_ context.Context, program *model.Program) error {
	program.ID = m.db.id()
	m.db.programs[program.ID] = program
	return nil
}

func (m *mockProgramRepo) GetByID(_ context.Context, id uint) (*model.Program, error) {
	if p, ok := m.db.programs[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgramRepo) ListByName(_ context.Context, name string, deptID *uint) ([]model.Program, error) {
	var result []model.Program
	for _, p := range m.db.programs {
		if p.Name == name && (deptID == nil || p.DeptID == *deptID) {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProgramRepo) List(_ context.Context) ([]model.Program, error) {
	var result []model.Program
	for _, p := range m.db.programs {
		c := *p
		c.Department = m.db.depts[p.DeptID]
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockProgramRepo) Delete(_ context.Context, id uint) error {
	delete(m.db.programs, id)
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	db *mockDB
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	course.ID = m.db.id()
	m.db.courses[course.ID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id uint) (*model.Course, error) {
	if c, ok := m.db.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByCode(_ context.Context, code string) (*model.Course, error) {
	for _, c := range m.db.courses {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) ListByName(_ context.Context, name string) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.db.courses {
		if c.Name == name {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.db.courses {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id uint) error {
	delete(m.db.courses, id)
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	db *mockDB
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.db.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = m.db.id()
	m.db.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uint) (*model.User, error) {
	if u, ok := m.db.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	var result []model.User
	for _, u := range m.db.users {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id uint, hash string) error {
	if u, ok := m.db.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uint) error {
	delete(m.db.users, id)
	return nil
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.db.users)), nil
}

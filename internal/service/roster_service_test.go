package service

import (
	"testing"

	"thinkjava_backend/internal/repository"
	"thinkjava_backend/internal/util"

	"github.com/stretchr/testify/require"
)

func newRosterService(f *fixture) *RosterService {
	return NewRosterService(
		repository.NewStudentRepository(f.DB),
		repository.NewSectionRepository(f.DB),
		repository.NewDepartmentRepository(f.DB),
		repository.NewTeacherRepository(f.DB),
		f.syncService(),
	)
}

func TestGenerateJoinCodeRotates(t *testing.T) {
	f := newFixture(t)
	svc := newRosterService(f)

	first, err := svc.GenerateJoinCode(f.Teacher.ID, f.CS3A.ID)
	require.NoError(t, err)
	require.Len(t, first.Code, joinCodeLength)

	// 重复生成轮换同一条记录，不新增
	second, err := svc.GenerateJoinCode(f.Teacher.ID, f.CS3A.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.NotEqual(t, first.Code, second.Code)
}

func TestGenerateJoinCodeRejectsForeignSection(t *testing.T) {
	f := newFixture(t)
	svc := newRosterService(f)

	_, err := svc.GenerateJoinCode(f.Teacher.ID, f.IT1B.ID)
	require.ErrorIs(t, err, util.ErrSectionNotHandled)
}

func TestRegisterStudentViaJoinCode(t *testing.T) {
	f := newFixture(t)
	svc := newRosterService(f)

	code, err := svc.GenerateJoinCode(f.Teacher.ID, f.CS3A.ID)
	require.NoError(t, err)

	student, err := svc.RegisterStudent(RegisterStudentInput{
		StudentNo: "21-0005",
		FirstName: "Eve",
		LastName:  "Enriquez",
		Password:  "secret123",
		JoinCode:  code.Code,
	})
	require.NoError(t, err)
	require.Equal(t, f.CS3A.ID, student.SectionID)
	require.Equal(t, f.CS.ID, student.DepartmentID)
	require.NotEqual(t, "secret123", student.Password, "password must be stored hashed")
}

func TestRegisterStudentRejectsBadCode(t *testing.T) {
	f := newFixture(t)
	svc := newRosterService(f)

	_, err := svc.RegisterStudent(RegisterStudentInput{
		StudentNo: "21-0005",
		FirstName: "Eve",
		Password:  "secret123",
		JoinCode:  "ZZZZZZ",
	})
	require.ErrorIs(t, err, util.ErrInvalidJoinCode)
}

func TestRegisterStudentRejectsTakenStudentNo(t *testing.T) {
	f := newFixture(t)
	svc := newRosterService(f)

	code, err := svc.GenerateJoinCode(f.Teacher.ID, f.CS3A.ID)
	require.NoError(t, err)

	// 21-0001 已属于 Alice
	_, err = svc.RegisterStudent(RegisterStudentInput{
		StudentNo: "21-0001",
		FirstName: "Eve",
		Password:  "secret123",
		JoinCode:  code.Code,
	})
	require.ErrorIs(t, err, util.ErrStudentNoTaken)
}

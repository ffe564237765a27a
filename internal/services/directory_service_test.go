package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kpiflow/internal/models"
	"kpiflow/internal/repository"
)

type DirectoryServiceTestSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *DirectoryService
}

func (s *DirectoryServiceTestSuite) SetupTest() {
	db, err := openTestDB()
	s.Require().NoError(err)
	s.db = db
	s.svc = NewDirectoryService(repository.NewEmployeeDirectory(db), repository.NewDepartmentStore(db))
}

func (s *DirectoryServiceTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *DirectoryServiceTestSuite) TestUpsertEmployee_DefaultPasswordIsEmail() {
	emp, err := s.svc.UpsertEmployee(context.Background(), EmployeeInput{
		Email: "alice@example.com",
		Name:  "Alice",
	})
	s.Require().NoError(err)
	s.Equal("user", emp.Role)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte("alice@example.com")))
}

func (s *DirectoryServiceTestSuite) TestUpsertEmployee_EmailRequired() {
	_, err := s.svc.UpsertEmployee(context.Background(), EmployeeInput{Name: "Nameless"})
	s.ErrorIs(err, ErrEmailRequired)
}

func (s *DirectoryServiceTestSuite) TestUpsertEmployee_Overwrites() {
	_, err := s.svc.UpsertEmployee(context.Background(), EmployeeInput{
		Email: "alice@example.com",
		Name:  "Alice",
	})
	s.Require().NoError(err)

	_, err = s.svc.UpsertEmployee(context.Background(), EmployeeInput{
		Email:        "alice@example.com",
		Name:         "Alice Liddell",
		ManagerEmail: "boss@example.com",
	})
	s.Require().NoError(err)

	emps, err := s.svc.ListEmployees(context.Background())
	s.Require().NoError(err)
	s.Require().Len(emps, 1)
	s.Equal("Alice Liddell", emps[0].Name)
	s.Equal("boss@example.com", emps[0].ManagerEmail)
}

func (s *DirectoryServiceTestSuite) TestImportEmployees_SkipsBlankEmails() {
	count, err := s.svc.ImportEmployees(context.Background(), []EmployeeInput{
		{Email: "alice@example.com", Name: "Alice"},
		{Email: "  ", Name: "Blank"},
		{Email: "bob@example.com", Name: "Bob", ManagerEmail: "alice@example.com"},
	})
	s.Require().NoError(err)
	s.Equal(2, count)

	emps, err := s.svc.ListEmployees(context.Background())
	s.Require().NoError(err)
	s.Len(emps, 2)
}

func (s *DirectoryServiceTestSuite) TestImportDepartments_ReplacesAll() {
	_, err := s.svc.ImportDepartments(context.Background(), []models.Department{
		{DeptID: "D100", DeptName: "Engineering", Level: "1"},
	})
	s.Require().NoError(err)

	count, err := s.svc.ImportDepartments(context.Background(), []models.Department{
		{DeptID: "D200", DeptName: "Sales", Level: "1"},
		{DeptID: "D210", DeptName: "Support", Level: "2", ParentDeptID: "D200"},
	})
	s.Require().NoError(err)
	s.Equal(2, count)

	depts, err := s.svc.ListDepartments(context.Background())
	s.Require().NoError(err)
	s.Require().Len(depts, 2)
}

func TestDirectoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DirectoryServiceTestSuite))
}

package controllers

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adamanr/ems_service/internal/config"
	"github.com/adamanr/ems_service/internal/entity"
	"github.com/adamanr/ems_service/internal/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type txKey struct{}

// fakeStore is an in-memory Store enforcing the same unique and foreign key
// constraints as the PostgreSQL schema. Transactions are serialized and
// rolled back on error. As in PostgreSQL, a failed statement aborts the
// transaction even when the caller ignores the error.
type fakeStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	accounts    map[int64]entity.Account
	departments map[int64]entity.Department
	leaves      map[int64]entity.LeaveRequest
	nextID      int64

	failOn  map[string]error
	faulted atomic.Bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:    map[int64]entity.Account{},
		departments: map[int64]entity.Department{},
		leaves:      map[int64]entity.LeaveRequest{},
		failOn:      map[string]error{},
	}
}

func (s *fakeStore) fault(method string) error {
	err := s.failOn[method]
	if err != nil {
		s.faulted.Store(true)
	}

	return err
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func cloneAccount(a entity.Account) entity.Account {
	if a.Employment != nil {
		emp := *a.Employment
		a.Employment = &emp
	}

	return a
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.faulted.Store(false)

	s.mu.Lock()
	accounts := make(map[int64]entity.Account, len(s.accounts))
	for k, v := range s.accounts {
		accounts[k] = cloneAccount(v)
	}
	departments := make(map[int64]entity.Department, len(s.departments))
	for k, v := range s.departments {
		departments[k] = v
	}
	leaves := make(map[int64]entity.LeaveRequest, len(s.leaves))
	for k, v := range s.leaves {
		leaves[k] = v
	}
	s.mu.Unlock()

	err := fn(context.WithValue(ctx, txKey{}, true))
	if err == nil && s.faulted.Load() {
		err = pgx.ErrTxCommitRollback
	}
	if err != nil {
		s.mu.Lock()
		s.accounts, s.departments, s.leaves = accounts, departments, leaves
		s.mu.Unlock()
		return err
	}

	return nil
}

// readAccount fills the joined department name the way the SQL store does.
func (s *fakeStore) readAccount(a entity.Account) *entity.Account {
	out := cloneAccount(a)
	if out.Employment != nil && out.Employment.DepartmentID != nil {
		out.Employment.DepartmentName = s.departments[*out.Employment.DepartmentID].Name
	}

	return &out
}

func (s *fakeStore) FindAccountByID(_ context.Context, id int64) (*entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault("FindAccountByID"); err != nil {
		return nil, err
	}

	a, ok := s.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}

	return s.readAccount(a), nil
}

func (s *fakeStore) FindAccountByEmail(_ context.Context, email string) (*entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault("FindAccountByEmail"); err != nil {
		return nil, err
	}

	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return s.readAccount(a), nil
		}
	}

	return nil, pgx.ErrNoRows
}

func (s *fakeStore) sortedAccounts(keep func(entity.Account) bool) []entity.Account {
	out := []entity.Account{}
	for _, a := range s.accounts {
		if keep(a) {
			out = append(out, *s.readAccount(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

func (s *fakeStore) ListAccountsByKind(_ context.Context, kind entity.Kind) ([]entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault("ListAccountsByKind"); err != nil {
		return nil, err
	}

	return s.sortedAccounts(func(a entity.Account) bool { return a.Kind == kind }), nil
}

func (s *fakeStore) FindEmployeeByIDAndManager(_ context.Context, id, adminID int64) (*entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok || !a.ManagedBy(adminID) {
		return nil, pgx.ErrNoRows
	}

	return s.readAccount(a), nil
}

func (s *fakeStore) ListEmployeesByManager(_ context.Context, adminID int64) ([]entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault("ListEmployeesByManager"); err != nil {
		return nil, err
	}

	return s.sortedAccounts(func(a entity.Account) bool { return a.ManagedBy(adminID) }), nil
}

// SaveAccount mirrors the SQL upsert: kind only changes while unverified and
// the managing administrator is set at most once.
func (s *fakeStore) SaveAccount(_ context.Context, acc *entity.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault("SaveAccount"); err != nil {
		return err
	}

	for _, other := range s.accounts {
		if other.ID != acc.ID && strings.EqualFold(other.Email, acc.Email) {
			return &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: ConstraintAccountEmail}
		}
	}

	if acc.Employment != nil && acc.Employment.DepartmentID != nil {
		if _, ok := s.departments[*acc.Employment.DepartmentID]; !ok {
			return &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: ConstraintAccountDepartment}
		}
	}

	row := cloneAccount(*acc)
	if acc.ID == 0 {
		acc.ID = s.id()
		row.ID = acc.ID
		s.accounts[row.ID] = row
		return nil
	}

	stored, ok := s.accounts[acc.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Verified || stored.Kind == entity.KindAdministrator {
		row.Kind = stored.Kind
	}
	if stored.Employment != nil && stored.Employment.ManagingAdminID != nil && row.Employment != nil {
		row.Employment.ManagingAdminID = stored.Employment.ManagingAdminID
	}
	s.accounts[acc.ID] = row

	return nil
}

func (s *fakeStore) DeleteAccount(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return pgx.ErrNoRows
	}

	delete(s.accounts, id)
	for lid, l := range s.leaves {
		if l.EmployeeID == id {
			delete(s.leaves, lid)
		}
	}

	return nil
}

func (s *fakeStore) FindDepartmentByIDAndOwner(_ context.Context, id, ownerID int64) (*entity.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault("FindDepartmentByIDAndOwner"); err != nil {
		return nil, err
	}

	d, ok := s.departments[id]
	if !ok || d.OwnerAdminID != ownerID {
		return nil, pgx.ErrNoRows
	}

	return &d, nil
}

func (s *fakeStore) FindDepartmentByOwnerAndName(_ context.Context, ownerID int64, name string) (*entity.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.departments {
		if d.OwnerAdminID == ownerID && strings.EqualFold(d.Name, name) {
			return &d, nil
		}
	}

	return nil, pgx.ErrNoRows
}

func (s *fakeStore) ListDepartmentsByOwner(_ context.Context, ownerID int64) ([]entity.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault("ListDepartmentsByOwner"); err != nil {
		return nil, err
	}

	out := []entity.Department{}
	for _, d := range s.departments {
		if d.OwnerAdminID == ownerID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })

	return out, nil
}

func (s *fakeStore) CountDepartmentMembers(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault("CountDepartmentMembers"); err != nil {
		return 0, err
	}

	var n int64
	for _, a := range s.accounts {
		if a.Employment != nil && a.Employment.DepartmentID != nil && *a.Employment.DepartmentID == id {
			n++
		}
	}

	return n, nil
}

func (s *fakeStore) SaveDepartment(_ context.Context, dept *entity.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault("SaveDepartment"); err != nil {
		return err
	}

	for _, other := range s.departments {
		if other.ID != dept.ID && other.OwnerAdminID == dept.OwnerAdminID && strings.EqualFold(other.Name, dept.Name) {
			return &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: ConstraintDepartmentName}
		}
	}

	if dept.ID == 0 {
		dept.ID = s.id()
	} else if _, ok := s.departments[dept.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.departments[dept.ID] = *dept

	return nil
}

func (s *fakeStore) DeleteDepartment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault("DeleteDepartment"); err != nil {
		return err
	}

	for _, a := range s.accounts {
		if a.Employment != nil && a.Employment.DepartmentID != nil && *a.Employment.DepartmentID == id {
			return &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: ConstraintAccountDepartment}
		}
	}
	delete(s.departments, id)

	return nil
}

func (s *fakeStore) readLeave(l entity.LeaveRequest) *entity.LeaveRequest {
	if emp, ok := s.accounts[l.EmployeeID]; ok {
		l.EmployeeName = emp.FullName()
		l.EmployeeEmail = emp.Email
	}
	if l.ActionedByID != nil {
		if admin, ok := s.accounts[*l.ActionedByID]; ok {
			l.ActionedByName = admin.FullName()
		}
	}

	return &l
}

func (s *fakeStore) FindLeaveRequestByID(_ context.Context, id int64, _ bool) (*entity.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leaves[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}

	return s.readLeave(l), nil
}

func (s *fakeStore) FindLeaveRequestByIDAndManager(_ context.Context, id, adminID int64, _ bool) (*entity.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leaves[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if emp, found := s.accounts[l.EmployeeID]; !found || !emp.ManagedBy(adminID) {
		return nil, pgx.ErrNoRows
	}

	return s.readLeave(l), nil
}

func (s *fakeStore) sortedLeaves(keep func(entity.LeaveRequest) bool) []entity.LeaveRequest {
	out := []entity.LeaveRequest{}
	for _, l := range s.leaves {
		if keep(l) {
			out = append(out, *s.readLeave(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out
}

func (s *fakeStore) ListLeaveRequestsByEmployee(_ context.Context, employeeID int64) ([]entity.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedLeaves(func(l entity.LeaveRequest) bool { return l.EmployeeID == employeeID }), nil
}

func (s *fakeStore) ListLeaveRequestsByManager(_ context.Context, adminID int64, status *entity.LeaveStatus) ([]entity.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedLeaves(func(l entity.LeaveRequest) bool {
		emp, ok := s.accounts[l.EmployeeID]
		return ok && emp.ManagedBy(adminID) && (status == nil || l.Status == *status)
	}), nil
}

func (s *fakeStore) SaveLeaveRequest(_ context.Context, req *entity.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault("SaveLeaveRequest"); err != nil {
		return err
	}

	if req.ID == 0 {
		req.ID = s.id()
	}
	row := *req
	row.EmployeeName, row.EmployeeEmail, row.ActionedByName = "", "", ""
	s.leaves[req.ID] = row

	return nil
}

func (s *fakeStore) managed(adminID int64) []entity.Account {
	return s.sortedAccounts(func(a entity.Account) bool { return a.ManagedBy(adminID) })
}

func (s *fakeStore) CountEmployeesByManager(_ context.Context, adminID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault("CountEmployeesByManager"); err != nil {
		return 0, err
	}

	return int64(len(s.managed(adminID))), nil
}

func (s *fakeStore) CountDepartmentsWithEmployees(_ context.Context, adminID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[int64]struct{}{}
	for _, a := range s.managed(adminID) {
		if a.Employment.DepartmentID != nil {
			seen[*a.Employment.DepartmentID] = struct{}{}
		}
	}

	return int64(len(seen)), nil
}

func (s *fakeStore) CountEmployeesByRole(_ context.Context, adminID int64) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]int64{}
	for _, a := range s.managed(adminID) {
		out[string(a.Kind)]++
	}

	return out, nil
}

func (s *fakeStore) CountEmployeesByDepartment(_ context.Context, adminID int64) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]int64{}
	for _, a := range s.managed(adminID) {
		if a.Employment.DepartmentID != nil {
			out[a.Employment.DepartmentName]++
		}
	}

	return out, nil
}

func (s *fakeStore) CountEmployeesByGender(_ context.Context, adminID int64) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]int64{}
	for _, a := range s.managed(adminID) {
		key := entity.GenderUnspecified
		if a.Employment.Gender != nil {
			key = string(*a.Employment.Gender)
		}
		out[key]++
	}

	return out, nil
}

func (s *fakeStore) AverageSalaryByDepartment(_ context.Context, adminID int64) ([]entity.DepartmentSalary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sums := map[string]decimal.Decimal{}
	counts := map[string]int64{}
	for _, a := range s.managed(adminID) {
		if a.Employment.DepartmentID == nil || a.Employment.Salary == nil {
			continue
		}
		name := a.Employment.DepartmentName
		sums[name] = sums[name].Add(*a.Employment.Salary)
		counts[name]++
	}

	out := make([]entity.DepartmentSalary, 0, len(sums))
	for name, sum := range sums {
		out = append(out, entity.DepartmentSalary{
			DepartmentName: name,
			AverageSalary:  sum.Div(decimal.NewFromInt(counts[name])).Round(2),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartmentName < out[j].DepartmentName })

	return out, nil
}

func (s *fakeStore) ListEmployeeBirthDates(_ context.Context, adminID int64) ([]entity.Date, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []entity.Date{}
	for _, a := range s.managed(adminID) {
		if a.Employment.BirthDate != nil {
			out = append(out, *a.Employment.BirthDate)
		}
	}

	return out, nil
}

// MockNotifier records deliveries requested by the controllers.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendVerificationCode(email, code string) {
	m.Called(email, code)
}

func (m *MockNotifier) SendWelcome(employee entity.Account) {
	m.Called(employee)
}

func (m *MockNotifier) SendLeaveApplied(req entity.LeaveRequest, employee entity.Account, recipients []entity.Account) {
	m.Called(req, employee, recipients)
}

func (m *MockNotifier) SendLeaveStatusChanged(req entity.LeaveRequest, employee entity.Account) {
	m.Called(req, employee)
}

// lastCode returns the most recent verification code sent to email.
func (m *MockNotifier) lastCode(t *testing.T, email string) string {
	t.Helper()

	for i := len(m.Calls) - 1; i >= 0; i-- {
		call := m.Calls[i]
		if call.Method == "SendVerificationCode" && call.Arguments.String(0) == email {
			return call.Arguments.String(1)
		}
	}
	require.FailNow(t, "no verification code sent", email)

	return ""
}

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type stubExporter struct {
	got  []entity.Account
	data []byte
	err  error
}

func (e *stubExporter) Employees(employees []entity.Account) ([]byte, error) {
	e.got = employees
	return e.data, e.err
}

var testNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	store    *fakeStore
	notifier *MockNotifier
	exporter *stubExporter
	deps     *Dependens
	ctrl     *Controllers
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.Verification.CodeTTL = 10 * time.Minute
	cfg.Security.BcryptCost = bcrypt.MinCost

	notifier := &MockNotifier{}
	notifier.On("SendVerificationCode", mock.Anything, mock.Anything).Maybe()
	notifier.On("SendWelcome", mock.Anything).Maybe()
	notifier.On("SendLeaveApplied", mock.Anything, mock.Anything, mock.Anything).Maybe()
	notifier.On("SendLeaveStatusChanged", mock.Anything, mock.Anything).Maybe()

	env := &testEnv{
		store:    newFakeStore(),
		notifier: notifier,
		exporter: &stubExporter{data: []byte("xlsx")},
		now:      testNow,
	}

	env.deps = &Dependens{
		Store:    env.store,
		Notifier: notifier,
		Exporter: env.exporter,
		Metrics:  metrics.New(prometheus.NewRegistry()),
		Validate: validator.New(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:   cfg,
		Clock:    func() time.Time { return env.now },
	}
	env.ctrl = NewControllers(env.deps)

	return env
}

func (e *testEnv) today() entity.Date {
	return entity.NewDate(e.now)
}

func (e *testEnv) seedAdmin(t *testing.T, first, last, email string) *entity.Account {
	t.Helper()

	acc := &entity.Account{
		Email:     email,
		Kind:      entity.KindAdministrator,
		Verified:  true,
		FirstName: first,
		LastName:  last,
		CreatedAt: e.now,
		UpdatedAt: e.now,
	}
	require.NoError(t, e.store.SaveAccount(context.Background(), acc))

	return acc
}

func (e *testEnv) seedDepartment(t *testing.T, owner *entity.Account, name string) *entity.Department {
	t.Helper()

	dept := &entity.Department{Name: name, OwnerAdminID: owner.ID, CreatedAt: e.now, UpdatedAt: e.now}
	require.NoError(t, e.store.SaveDepartment(context.Background(), dept))

	return dept
}

// seedEmployee stores a verified employee. A nil manager leaves it unmanaged.
func (e *testEnv) seedEmployee(t *testing.T, manager *entity.Account, email string, emp entity.Employment) *entity.Account {
	t.Helper()

	if manager != nil {
		emp.ManagingAdminID = Int64Ptr(manager.ID)
	}

	acc := &entity.Account{
		Email:      email,
		Credential: mustHash(t, "secret1"),
		Kind:       entity.KindEmployee,
		Verified:   true,
		FirstName:  "Emp",
		LastName:   strings.Split(email, "@")[0],
		Employment: &emp,
		CreatedAt:  e.now,
		UpdatedAt:  e.now,
	}
	require.NoError(t, e.store.SaveAccount(context.Background(), acc))

	return acc
}

func mustHash(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return string(hash)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func Int64Ptr(v int64) *int64 {
	return &v
}

func DatePtr(d entity.Date) *entity.Date {
	return &d
}

func GenderPtr(g entity.Gender) *entity.Gender {
	return &g
}

func DecimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

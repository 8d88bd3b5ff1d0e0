package controllers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/adamanr/ems_service/internal/apperr"
	"github.com/adamanr/ems_service/internal/entity"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepartmentController_CreateDepartment(t *testing.T) {
	tests := []struct {
		name      string
		existing  []string
		input     string
		expectErr error
		expectNm  string
	}{
		{name: "created with trimmed name", input: "  Engineering ", expectNm: "Engineering"},
		{name: "blank name", input: "   ", expectErr: apperr.ErrInvalidInput},
		{name: "duplicate", existing: []string{"Engineering"}, input: "Engineering", expectErr: apperr.ErrDuplicateDepartment},
		{name: "duplicate ignores case", existing: []string{"Engineering"}, input: "ENGINEERING", expectErr: apperr.ErrDuplicateDepartment},
		{name: "different name", existing: []string{"Engineering"}, input: "Sales", expectNm: "Sales"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			admin := env.seedAdmin(t, "Ann", "Admin", "ann@example.com")
			for _, name := range tt.existing {
				env.seedDepartment(t, admin, name)
			}

			dept, err := env.ctrl.DepartmentController.CreateDepartment(context.Background(), entity.DepartmentRequest{Name: tt.input}, admin)

			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Nil(t, dept)
				return
			}

			require.NoError(t, err)
			assert.NotZero(t, dept.ID)
			assert.Equal(t, tt.expectNm, dept.Name)
			assert.Equal(t, admin.ID, dept.OwnerAdminID)
			assert.Equal(t, env.now, dept.CreatedAt)
		})
	}
}

func TestDepartmentController_SameNameAcrossAdministrators(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedAdmin(t, "Ann", "Admin", "ann@example.com")
	b := env.seedAdmin(t, "Bob", "Boss", "bob@example.com")

	_, err := env.ctrl.DepartmentController.CreateDepartment(context.Background(), entity.DepartmentRequest{Name: "Sales"}, a)
	require.NoError(t, err)
	_, err = env.ctrl.DepartmentController.CreateDepartment(context.Background(), entity.DepartmentRequest{Name: "Sales"}, b)
	assert.NoError(t, err)
}

func TestDepartmentController_ConcurrentCreate(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin(t, "Ann", "Admin", "ann@example.com")

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.ctrl.DepartmentController.CreateDepartment(context.Background(), entity.DepartmentRequest{Name: "Ops"}, admin)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrDuplicateDepartment):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, dup)
}

func TestDepartmentController_UpdateDepartment(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		input     string
		foreign   bool
		expectErr error
	}{
		{name: "rename", target: "Sales", input: "Marketing"},
		{name: "change case of own name", target: "Sales", input: "SALES"},
		{name: "rename onto sibling", target: "Sales", input: "engineering", expectErr: apperr.ErrDuplicateDepartment},
		{name: "blank name", target: "Sales", input: "", expectErr: apperr.ErrInvalidInput},
		{name: "department of another administrator", target: "Legal", input: "Law", foreign: true, expectErr: apperr.ErrDepartmentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			a := env.seedAdmin(t, "Ann", "Admin", "ann@example.com")
			b := env.seedAdmin(t, "Bob", "Boss", "bob@example.com")
			env.seedDepartment(t, a, "Engineering")
			owner := a
			if tt.foreign {
				owner = b
			}
			target := env.seedDepartment(t, owner, tt.target)

			env.now = env.now.Add(1)
			dept, err := env.ctrl.DepartmentController.UpdateDepartment(context.Background(), target.ID, entity.DepartmentRequest{Name: tt.input}, a)

			stored, findErr := env.store.FindDepartmentByIDAndOwner(context.Background(), target.ID, owner.ID)
			require.NoError(t, findErr)

			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Equal(t, tt.target, stored.Name)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.input, dept.Name)
			assert.Equal(t, tt.input, stored.Name)
			assert.Equal(t, env.now, stored.UpdatedAt)
		})
	}
}

func TestDepartmentController_GetDepartments(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedAdmin(t, "Ann", "Admin", "ann@example.com")
	b := env.seedAdmin(t, "Bob", "Boss", "bob@example.com")
	own := env.seedDepartment(t, a, "Engineering")
	foreign := env.seedDepartment(t, b, "Legal")

	depts, err := env.ctrl.DepartmentController.GetDepartments(context.Background(), a)
	require.NoError(t, err)
	require.Len(t, depts, 1)
	assert.Equal(t, own.ID, depts[0].ID)

	got, err := env.ctrl.DepartmentController.GetDepartmentByID(context.Background(), own.ID, a)
	require.NoError(t, err)
	assert.Equal(t, "Engineering", got.Name)

	_, err = env.ctrl.DepartmentController.GetDepartmentByID(context.Background(), foreign.ID, a)
	assert.ErrorIs(t, err, apperr.ErrDepartmentNotFound)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	env.store.failOn["ListDepartmentsByOwner"] = errors.New("boom")
	_, err = env.ctrl.DepartmentController.GetDepartments(context.Background(), a)
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
}

func TestDepartmentController_DeleteDepartment(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*testing.T, *testEnv, *entity.Account, *entity.Department) int64
		expectErr error
	}{
		{
			name: "empty department",
			setup: func(_ *testing.T, _ *testEnv, _ *entity.Account, dept *entity.Department) int64 {
				return dept.ID
			},
		},
		{
			name: "department with employees",
			setup: func(t *testing.T, env *testEnv, admin *entity.Account, dept *entity.Department) int64 {
				env.seedEmployee(t, admin, "jane@example.com", entity.Employment{DepartmentID: Int64Ptr(dept.ID)})
				return dept.ID
			},
			expectErr: apperr.ErrHasEmployees,
		},
		{
			name: "employee assigned concurrently",
			setup: func(_ *testing.T, env *testEnv, _ *entity.Account, dept *entity.Department) int64 {
				env.store.failOn["DeleteDepartment"] = &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: ConstraintAccountDepartment}
				return dept.ID
			},
			expectErr: apperr.ErrHasEmployees,
		},
		{
			name: "department of another administrator",
			setup: func(t *testing.T, env *testEnv, _ *entity.Account, _ *entity.Department) int64 {
				other := env.seedAdmin(t, "Bob", "Boss", "bob@example.com")
				return env.seedDepartment(t, other, "Legal").ID
			},
			expectErr: apperr.ErrDepartmentNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			admin := env.seedAdmin(t, "Ann", "Admin", "ann@example.com")
			dept := env.seedDepartment(t, admin, "Engineering")
			id := tt.setup(t, env, admin, dept)

			err := env.ctrl.DepartmentController.DeleteDepartment(context.Background(), id, admin)

			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}

			require.NoError(t, err)
			_, err = env.ctrl.DepartmentController.GetDepartmentByID(context.Background(), id, admin)
			assert.ErrorIs(t, err, apperr.ErrDepartmentNotFound)
		})
	}
}

package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindAdministrator Kind = "ADMINISTRATOR"
	KindEmployee      Kind = "EMPLOYEE"
)

func (k Kind) Valid() bool {
	return k == KindAdministrator || k == KindEmployee
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// GenderUnspecified is the dashboard bucket for employees without a gender.
const GenderUnspecified = "UNSPECIFIED"

// Account is either an administrator or an employee. Employment is set only
// for employees and carries every field that has no meaning for administrators.
type Account struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Credential string `json:"-"`
	Kind       Kind   `json:"kind"`
	Verified   bool   `json:"verified"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	PendingCode         *string    `json:"-"`
	PendingCodeIssuedAt *time.Time `json:"-"`

	Employment *Employment `json:"employment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Employment struct {
	DepartmentID    *int64           `json:"department_id"`
	DepartmentName  string           `json:"department_name,omitempty"`
	ManagingAdminID *int64           `json:"-"`
	Gender          *Gender          `json:"gender"`
	BirthDate       *Date            `json:"birth_date"`
	HireDate        *Date            `json:"hire_date"`
	Salary          *decimal.Decimal `json:"salary"`
}

func (a *Account) IsAdministrator() bool {
	return a.Kind == KindAdministrator
}

func (a *Account) IsEmployee() bool {
	return a.Kind == KindEmployee
}

func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// ManagedBy reports whether the account is an employee managed by adminID.
func (a *Account) ManagedBy(adminID int64) bool {
	return a.IsEmployee() && a.Employment != nil &&
		a.Employment.ManagingAdminID != nil && *a.Employment.ManagingAdminID == adminID
}

// ClearPendingCode drops any outstanding verification challenge.
func (a *Account) ClearPendingCode() {
	a.PendingCode = nil
	a.PendingCodeIssuedAt = nil
}

// Profile is the public view of an account.
func (a *Account) Profile() Profile {
	p := Profile{
		ID:        a.ID,
		Email:     a.Email,
		Kind:      a.Kind,
		FirstName: a.FirstName,
		LastName:  a.LastName,
	}
	if a.Employment != nil {
		emp := *a.Employment
		p.Employment = &emp
	}

	return p
}

type Profile struct {
	ID         int64       `json:"id"`
	Email      string      `json:"email"`
	Kind       Kind        `json:"kind"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Employment *Employment `json:"employment,omitempty"`
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegistrationRequest is a self-service sign-up.
type RegistrationRequest struct {
	FirstName  string           `json:"first_name" validate:"required,max=100"`
	LastName   string           `json:"last_name" validate:"required,max=100"`
	Email      string           `json:"email" validate:"required,email,max=254"`
	Password   string           `json:"password" validate:"required,min=6,max=72"`
	Kind       Kind             `json:"kind" validate:"required,oneof=ADMINISTRATOR EMPLOYEE"`
	Gender     *Gender          `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	BirthDate  *Date            `json:"birth_date"`
	HireDate   *Date            `json:"hire_date"`
	Salary     *decimal.Decimal `json:"salary"`
	Department *int64           `json:"department_id"`
	// ManagingAdminID is the administrator chosen on the sign-up form.
	ManagingAdminID *int64 `json:"managed_by_admin_id"`
}

type RegistrationResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResendCodeRequest struct {
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EmployeeRequest is the administrator-side create/update payload.
// Password is required on create and optional on update.
type EmployeeRequest struct {
	FirstName    string           `json:"first_name" validate:"required,max=100"`
	LastName     string           `json:"last_name" validate:"required,max=100"`
	Email        string           `json:"email" validate:"required,email,max=254"`
	Password     string           `json:"password" validate:"omitempty,min=6,max=72"`
	Gender       *Gender          `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	BirthDate    *Date            `json:"birth_date"`
	HireDate     *Date            `json:"hire_date"`
	Salary       *decimal.Decimal `json:"salary"`
	DepartmentID *int64           `json:"department_id"`
}

// AdminSummary is the directory entry shown on the sign-up form.
type AdminSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

package controllers

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"
	"time"

	"github.com/adamanr/ems_service/internal/apperr"
	"github.com/adamanr/ems_service/internal/entity"
	"golang.org/x/crypto/bcrypt"
)

// AuthController drives the UNREGISTERED -> PENDING_VERIFICATION -> VERIFIED flow and login.
type AuthController struct {
	deps *Dependens
}

func NewAuthController(deps *Dependens) *AuthController {
	return &AuthController{
		deps: deps,
	}
}

// Register creates or overwrites an unverified account and sends it a verification code.
func (c *AuthController) Register(ctx context.Context, req entity.RegistrationRequest) (*entity.RegistrationResponse, error) {
	req.Email = entity.NormalizeEmail(req.Email)
	if err := c.deps.validateStruct(req); err != nil {
		c.deps.Logger.Warn("Invalid registration request", slog.String("error", err.Error()))
		return nil, err
	}

	email := req.Email

	credential, err := hashPassword(req.Password, c.deps.bcryptCost())
	if err != nil {
		return nil, internal(c.deps.Logger, "Error hashing password", err)
	}

	var code string
	txErr := c.deps.Store.WithinTx(ctx, func(ctx context.Context) error {
		existing, findErr := c.deps.Store.FindAccountByEmail(ctx, email)
		if findErr != nil && !isNoRows(findErr) {
			return internal(c.deps.Logger, "Error querying account", findErr)
		}

		if existing != nil && existing.Verified {
			c.deps.Logger.Warn("Registration for verified email", slog.String("email", email))
			return apperr.ErrAlreadyRegistered
		}

		acc := existing
		if acc == nil {
			acc = &entity.Account{CreatedAt: c.deps.now()}
		}

		employment, empErr := c.registrationEmployment(ctx, req, existing)
		if empErr != nil {
			return empErr
		}

		if quotaErr := c.checkCodeQuota(ctx, email); quotaErr != nil {
			return quotaErr
		}

		var genErr error
		if code, genErr = generateCode(); genErr != nil {
			return internal(c.deps.Logger, "Error generating verification code", genErr)
		}

		now := c.deps.now()
		acc.Email = email
		acc.Credential = credential
		acc.Kind = req.Kind
		acc.Verified = false
		acc.FirstName = strings.TrimSpace(req.FirstName)
		acc.LastName = strings.TrimSpace(req.LastName)
		acc.Employment = employment
		acc.PendingCode = &code
		acc.PendingCodeIssuedAt = &now
		acc.UpdatedAt = now

		if saveErr := c.deps.Store.SaveAccount(ctx, acc); saveErr != nil {
			if isUniqueViolation(saveErr, ConstraintAccountEmail) {
				return apperr.ErrEmailInUse
			}
			return internal(c.deps.Logger, "Error saving account", saveErr)
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	c.deps.Notifier.SendVerificationCode(email, code)
	c.deps.Logger.Info("Account registered, verification pending",
		slog.String("email", email), slog.String("kind", string(req.Kind)))

	return &entity.RegistrationResponse{
		Message: "Verification code sent to your email. Please verify to complete registration.",
		Email:   email,
	}, nil
}

// registrationEmployment builds the employee payload of a registration. The
// managing administrator of an overwritten account is kept and cannot change,
// and an administrator account never turns into an employee.
func (c *AuthController) registrationEmployment(ctx context.Context, req entity.RegistrationRequest, existing *entity.Account) (*entity.Employment, error) {
	if existing != nil && existing.IsAdministrator() && req.Kind != entity.KindAdministrator {
		c.deps.Logger.Warn("Administrator re-registering as employee", slog.String("email", req.Email))
		return nil, apperr.Wrap(apperr.ErrInvalidInput, "account is registered as an administrator")
	}

	var managerID *int64
	if existing != nil && existing.Employment != nil && existing.Employment.ManagingAdminID != nil {
		id := *existing.Employment.ManagingAdminID
		managerID = &id
	}

	if req.Kind == entity.KindAdministrator {
		if managerID != nil {
			return nil, apperr.Wrap(apperr.ErrInvalidManagingAdmin, "account is already managed by an administrator")
		}
		return nil, nil
	}

	if req.ManagingAdminID != nil {
		admin, err := c.deps.Store.FindAccountByID(ctx, *req.ManagingAdminID)
		if err != nil && !isNoRows(err) {
			return nil, internal(c.deps.Logger, "Error querying managing administrator", err)
		}
		if admin == nil || !admin.IsAdministrator() {
			c.deps.Logger.Warn("Invalid managing administrator", slog.Int64("admin_id", *req.ManagingAdminID))
			return nil, apperr.ErrInvalidManagingAdmin
		}
		if managerID != nil && *managerID != admin.ID {
			return nil, apperr.Wrap(apperr.ErrInvalidManagingAdmin, "managing administrator cannot be changed")
		}
		managerID = &admin.ID
	} else if managerID == nil {
		c.deps.Logger.Warn("Employee registering without a managing administrator", slog.String("email", req.Email))
	}

	if req.Department != nil {
		if managerID == nil {
			return nil, apperr.Wrap(apperr.ErrInvalidInput, "a department requires a managing administrator")
		}
		if _, err := c.deps.Store.FindDepartmentByIDAndOwner(ctx, *req.Department, *managerID); err != nil {
			if isNoRows(err) {
				return nil, apperr.Wrap(apperr.ErrInvalidInput, "department not found for the selected administrator")
			}
			return nil, internal(c.deps.Logger, "Error querying department", err)
		}
	}

	return &entity.Employment{
		DepartmentID:    req.Department,
		ManagingAdminID: managerID,
		Gender:          req.Gender,
		BirthDate:       req.BirthDate,
		HireDate:        req.HireDate,
		Salary:          req.Salary,
	}, nil
}

// VerifyCode completes verification and returns the public profile.
func (c *AuthController) VerifyCode(ctx context.Context, email, code string) (*entity.Profile, error) {
	email = entity.NormalizeEmail(email)

	var profile entity.Profile
	err := c.deps.Store.WithinTx(ctx, func(ctx context.Context) error {
		acc, err := c.findByEmail(ctx, email)
		if err != nil {
			return err
		}

		if acc.Verified {
			return apperr.ErrAlreadyVerified
		}

		if acc.PendingCode == nil || acc.PendingCodeIssuedAt == nil ||
			subtle.ConstantTimeCompare([]byte(*acc.PendingCode), []byte(strings.TrimSpace(code))) != 1 {
			c.observeVerification("invalid")
			c.deps.Logger.Warn("Invalid verification code", slog.String("email", email))
			return apperr.ErrInvalidCode
		}

		now := c.deps.now()
		if now.Sub(*acc.PendingCodeIssuedAt) > c.codeTTL() {
			c.observeVerification("expired")
			c.deps.Logger.Warn("Expired verification code", slog.String("email", email))
			return apperr.ErrCodeExpired
		}

		acc.Verified = true
		acc.ClearPendingCode()
		acc.UpdatedAt = now

		if err = c.deps.Store.SaveAccount(ctx, acc); err != nil {
			return internal(c.deps.Logger, "Error saving verified account", err)
		}

		profile = acc.Profile()
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.observeVerification("verified")
	c.deps.Logger.Info("Account verified", slog.String("email", email))

	return &profile, nil
}

// ResendCode replaces the outstanding code with a new one and redelivers it.
func (c *AuthController) ResendCode(ctx context.Context, email string) error {
	email = entity.NormalizeEmail(email)

	var code string
	err := c.deps.Store.WithinTx(ctx, func(ctx context.Context) error {
		acc, err := c.findByEmail(ctx, email)
		if err != nil {
			return err
		}

		if acc.Verified {
			return apperr.ErrAlreadyVerified
		}

		if err = c.checkCodeQuota(ctx, email); err != nil {
			return err
		}

		if code, err = generateCode(); err != nil {
			return internal(c.deps.Logger, "Error generating verification code", err)
		}

		now := c.deps.now()
		acc.PendingCode = &code
		acc.PendingCodeIssuedAt = &now
		acc.UpdatedAt = now

		if err = c.deps.Store.SaveAccount(ctx, acc); err != nil {
			return internal(c.deps.Logger, "Error saving account", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	c.deps.Notifier.SendVerificationCode(email, code)
	c.deps.Logger.Info("Verification code reissued", slog.String("email", email))

	return nil
}

// Login checks the credential of a verified account.
func (c *AuthController) Login(ctx context.Context, req entity.LoginRequest) (*entity.Profile, error) {
	email := entity.NormalizeEmail(req.Email)

	acc, err := c.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(acc.Credential), []byte(req.Password)); err != nil {
		c.deps.Logger.Warn("Invalid credentials", slog.String("email", email))
		return nil, apperr.ErrInvalidCredentials
	}

	if !acc.Verified {
		return nil, apperr.ErrNotVerified
	}

	profile := acc.Profile()
	return &profile, nil
}

func (c *AuthController) findByEmail(ctx context.Context, email string) (*entity.Account, error) {
	acc, err := c.deps.Store.FindAccountByEmail(ctx, email)
	if err != nil {
		if isNoRows(err) {
			c.deps.Logger.Warn("Account with this email not found", slog.String("email", email))
			return nil, apperr.ErrAccountNotFound
		}
		return nil, internal(c.deps.Logger, "Error querying account", err)
	}

	return acc, nil
}

// checkCodeQuota fails open when the limiter is missing or unavailable.
func (c *AuthController) checkCodeQuota(ctx context.Context, email string) error {
	if c.deps.Limiter == nil {
		return nil
	}

	allowed, err := c.deps.Limiter.Allow(ctx, "verification_code:"+email)
	if err != nil {
		c.deps.Logger.Error("Error checking code quota", slog.String("error", err.Error()))
		return nil
	}

	if !allowed {
		c.deps.Logger.Warn("Verification code quota exceeded", slog.String("email", email))
		return apperr.ErrTooManyCodeRequests
	}

	return nil
}

func (c *AuthController) codeTTL() time.Duration {
	if c.deps.Config != nil && c.deps.Config.Verification.CodeTTL > 0 {
		return c.deps.Config.Verification.CodeTTL
	}

	return DefaultCodeTTL
}

func (c *AuthController) observeVerification(result string) {
	if c.deps.Metrics != nil {
		c.deps.Metrics.VerificationAttempts.WithLabelValues(result).Inc()
	}
}

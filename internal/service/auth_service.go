package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"peoplework/internal/domain"
	"peoplework/internal/email"
	"peoplework/internal/repository"
)

var (
	ErrDuplicateEmail       = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailNotVerified     = errors.New("email not verified")
	ErrCodeExpiredOrMissing = errors.New("otp expired or not found")
	ErrCodeMismatch         = errors.New("invalid otp")
	ErrRateLimited          = errors.New("rate limited")
	ErrInvalidEmail         = errors.New("invalid email")
	ErrInvalidRole          = errors.New("invalid role")
)

const otpTTL = 10 * time.Minute

// AuthService orquesta el ciclo de vida de identidad: registro, verificación
// por OTP, login y reseteo de contraseña.
type AuthService struct {
	logger  *zap.Logger
	users   repository.UserRepository
	sender  email.Sender
	codes   OTPStore
	limiter RateLimiter
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, sender email.Sender, codes OTPStore, limiter RateLimiter) *AuthService {
	if codes == nil {
		codes = NewMemoryOTPStore()
	}
	if limiter == nil {
		limiter = NewMemoryRateLimiter(otpTTL, 3)
	}
	return &AuthService{
		logger:  logger,
		users:   users,
		sender:  sender,
		codes:   codes,
		limiter: limiter,
	}
}

type RegisterInput struct {
	Name     string
	Phone    string
	Email    string
	Address  string
	Password string
	Role     domain.Role
}

// Register crea una cuenta sin verificar, con la contraseña hasheada, y
// despacha un código de verificación al correo. El fallo del transporte de
// correo no revierte la creación: el usuario puede pedir un reenvío.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	emailAddr := normalizeEmail(input.Email)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}

	role := input.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	// El rol admin nunca se auto-asigna en el registro.
	if !role.IsValid() || role == domain.RoleAdmin {
		return domain.User{}, ErrInvalidRole
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return domain.User{}, ErrDuplicateEmail
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Name:         strings.ToUpper(strings.TrimSpace(input.Name)),
		Phone:        strings.TrimSpace(input.Phone),
		Email:        emailAddr,
		Address:      strings.TrimSpace(input.Address),
		PasswordHash: string(hashBytes),
		Role:         role,
		Status:       domain.StatusActive,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, err
	}

	s.issueCode(ctx, emailAddr, false)
	return user, nil
}

// RequestVerificationCode genera un código nuevo (pisando el anterior) y lo
// envía por correo. El resultado del transporte no se expone al llamador.
func (s *AuthService) RequestVerificationCode(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if s.limiter != nil && !s.limiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	return s.issueCode(ctx, emailAddr, false)
}

// VerifyCode consume el código y marca la cuenta como verificada.
// El código se borra en el primer uso exitoso; un replay falla.
func (s *AuthService) VerifyCode(ctx context.Context, emailAddr, code string) (domain.User, error) {
	user, err := s.checkCode(ctx, emailAddr, code)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return domain.User{}, err
	}
	if err := s.codes.Delete(user.Email); err != nil && s.logger != nil {
		s.logger.Warn("otp delete failed", zap.Error(err), zap.String("email", user.Email))
	}

	user.IsVerified = true
	return user, nil
}

// Login autentica por email y contraseña. Usuario inexistente y contraseña
// incorrecta devuelven el mismo error para no permitir enumeración.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return domain.User{}, ErrEmailNotVerified
	}
	return user, nil
}

// RequestPasswordReset despacha un código de reseteo reutilizando el mismo
// store de códigos: la última solicitud gana.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if s.limiter != nil && !s.limiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	return s.issueCode(ctx, emailAddr, true)
}

// ResetPassword valida el código igual que VerifyCode y reemplaza el hash.
func (s *AuthService) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) error {
	user, err := s.checkCode(ctx, emailAddr, code)
	if err != nil {
		return err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(newPassword)), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, string(hashBytes)); err != nil {
		return err
	}
	if err := s.codes.Delete(user.Email); err != nil && s.logger != nil {
		s.logger.Warn("otp delete failed", zap.Error(err), zap.String("email", user.Email))
	}
	return nil
}

// issueCode guarda el código antes de enviarlo: un fallo de SMTP deja el
// código utilizable y solo se registra en el log.
func (s *AuthService) issueCode(ctx context.Context, emailAddr string, reset bool) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.codes.Put(emailAddr, code, otpTTL); err != nil {
		return err
	}

	if s.sender == nil {
		if s.logger != nil {
			s.logger.Warn("otp send skipped: sender not configured", zap.String("email", emailAddr))
		}
		return nil
	}

	expiresAt := time.Now().UTC().Add(otpTTL)
	if reset {
		err = s.sender.SendPasswordResetOTP(ctx, emailAddr, code, expiresAt)
	} else {
		err = s.sender.SendVerificationOTP(ctx, emailAddr, code, expiresAt)
	}
	if err != nil && s.logger != nil {
		s.logger.Warn("otp send failed", zap.Error(err), zap.String("email", emailAddr))
	}
	return nil
}

func (s *AuthService) checkCode(ctx context.Context, emailAddr, code string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	stored, ok, err := s.codes.Get(emailAddr)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, ErrCodeExpiredOrMissing
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(stored)) != 1 {
		return domain.User{}, ErrCodeMismatch
	}
	return user, nil
}

// generateOTP produce un código de 6 dígitos uniforme, con ceros a la izquierda.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

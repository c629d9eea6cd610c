package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"rateMyStore/domain"
	"rateMyStore/internal/repository/redis"
	"rateMyStore/pkg/logger"
	"rateMyStore/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pobyzaarif/goshortcute"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	RecordLoginSuccess(ctx context.Context, id uint) error
	RecordLoginFailure(ctx context.Context, id uint) error
	SetEmailVerified(ctx context.Context, id uint) error
}

// NotificationRepository contract interface
type NotificationRepository interface {
	SendEmail(toName, toEmail, subject, message string) (err error)
}

// SessionStore contract interface
type SessionStore interface {
	Store(ctx context.Context, data redis.SessionData, ttl time.Duration) error
	Revoke(ctx context.Context, userID string) error
}

const (
	sessionTTL             = 24 * time.Hour
	verificationCodeTTL    = 15 // minutes
	subjectVerifyEmail     = "Verify your email address"
	emailBodyVerifyAccount = `Hi %v, confirm your email address by opening the link below.</br></br>%v</br>Note: the link is valid for %v minutes.`
	minPasswordLength      = 8
)

type userService struct {
	userRepo                UserRepository
	validate                *validator.Validate
	notifRepo               NotificationRepository
	sessions                SessionStore
	appEmailVerificationKey string
	appDeploymentUrl        string
}

func NewUserService(
	userRepo UserRepository,
	validate *validator.Validate,
	notifRepo NotificationRepository,
	sessions SessionStore,
	appEmailVerificationKey string,
	appDeploymentUrl string,
) *userService {
	return &userService{
		userRepo:                userRepo,
		validate:                validate,
		notifRepo:               notifRepo,
		sessions:                sessions,
		appEmailVerificationKey: appEmailVerificationKey,
		appDeploymentUrl:        appDeploymentUrl,
	}
}

// Register signs up a normal user, logs them straight in, and sends the
// email-verification link.
func (s *userService) Register(ctx context.Context, user *domain.User, ipAddress, userAgent string) (string, domain.User, error) {
	if err := s.validate.Var(user.Email, "required,email"); err != nil {
		return "", domain.User{}, fmt.Errorf("invalid email format: %w", domain.ErrInvalidArgument)
	}

	if err := s.validate.Var(user.Name, "required,min=3,max=60"); err != nil {
		return "", domain.User{}, fmt.Errorf("name must be 3 to 60 characters: %w", domain.ErrInvalidArgument)
	}

	if len(user.Password) < minPasswordLength {
		return "", domain.User{}, fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, domain.ErrInvalidArgument)
	}

	passwordHash, err := utils.HashPassword(user.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return "", domain.User{}, domain.ErrInternal
	}

	newUser := domain.User{
		Name:     user.Name,
		Email:    user.Email,
		Password: string(passwordHash),
		Address:  user.Address,
		Role:     domain.RoleNormalUser,
		IsActive: true,
	}

	// The unique email index arbitrates concurrent signups; the repository
	// maps the duplicate to ErrConflict.
	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("Failed to create new user", err)
		return "", domain.User{}, err
	}

	s.sendVerificationEmail(newUser)

	token, err := s.openSession(ctx, newUser, ipAddress, userAgent)
	if err != nil {
		return "", domain.User{}, err
	}

	newUser.Password = ""
	return token, newUser, nil
}

// Login verifies credentials and the client-declared role, tracks login
// attempts and last login, and opens a Redis-backed session.
func (s *userService) Login(ctx context.Context, email, password, role, ipAddress, userAgent string) (string, domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.User{}, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthenticated)
		}
		return "", domain.User{}, err
	}

	if !user.IsActive {
		return "", domain.User{}, fmt.Errorf("account is inactive: %w", domain.ErrForbidden)
	}

	if !utils.CheckPassword(password, user.Password) {
		if err := s.userRepo.RecordLoginFailure(ctx, user.ID); err != nil {
			logger.Warn("Failed to record login failure", err)
		}
		return "", domain.User{}, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthenticated)
	}

	if user.Role != role {
		return "", domain.User{}, fmt.Errorf("invalid role for this user: %w", domain.ErrForbidden)
	}

	if err := s.userRepo.RecordLoginSuccess(ctx, user.ID); err != nil {
		logger.Warn("Failed to record login success", err)
	}

	token, err := s.openSession(ctx, user, ipAddress, userAgent)
	if err != nil {
		return "", domain.User{}, err
	}

	user.Password = ""
	return token, user, nil
}

func (s *userService) Logout(ctx context.Context, userID uint) error {
	return s.sessions.Revoke(ctx, strconv.FormatUint(uint64(userID), 10))
}

func (s *userService) GetProfile(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	user.Password = ""
	return user, nil
}

// UpdatePassword changes the principal's password after re-checking the
// current one.
func (s *userService) UpdatePassword(ctx context.Context, id uint, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("new password must be at least %d characters: %w", minPasswordLength, domain.ErrInvalidArgument)
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(currentPassword, user.Password) {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthenticated)
	}

	passwordHash, err := utils.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.ErrInternal
	}

	return s.userRepo.UpdatePassword(ctx, id, string(passwordHash))
}

// VerifyEmail decrypts the link token, checks its expiry, and flips the flag.
func (s *userService) VerifyEmail(ctx context.Context, verificationCodeEncrypt string) error {
	strDecode := goshortcute.StringtoBase64Decode(verificationCodeEncrypt)
	verificationCodeDecrypt, err := goshortcute.AESCBCDecrypt([]byte(strDecode), []byte(s.appEmailVerificationKey))
	if err != nil {
		return fmt.Errorf("invalid or expired url: %w", domain.ErrInvalidArgument)
	}

	verificationCode := strings.Split(verificationCodeDecrypt, "|")
	if len(verificationCode) != 2 {
		return fmt.Errorf("invalid or expired url: %w", domain.ErrInvalidArgument)
	}

	email := verificationCode[0]
	expAtStr := verificationCode[1]

	ts, err := strconv.ParseInt(expAtStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid or expired url: %w", domain.ErrInvalidArgument)
	}
	if time.Now().After(time.Unix(ts, 0)) {
		return fmt.Errorf("invalid or expired url: %w", domain.ErrInvalidArgument)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.EmailVerified {
		return fmt.Errorf("invalid or expired url: %w", domain.ErrInvalidArgument)
	}

	return s.userRepo.SetEmailVerified(ctx, user.ID)
}

func (s *userService) openSession(ctx context.Context, user domain.User, ipAddress, userAgent string) (string, error) {
	userIdStr := strconv.FormatUint(uint64(user.ID), 10)
	sessionID := uuid.NewString()

	token, err := utils.GenerateJWT(userIdStr, user.Role, sessionID)
	if err != nil {
		logger.Error("Failed to generate token", err)
		return "", domain.ErrInternal
	}

	now := time.Now()
	err = s.sessions.Store(ctx, redis.SessionData{
		SessionID: sessionID,
		UserID:    userIdStr,
		Role:      user.Role,
		Token:     token,
		IssuedAt:  now,
		ExpiresAt: now.Add(sessionTTL),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}, sessionTTL)
	if err != nil {
		logger.Error("Failed to store session", err)
		return "", domain.ErrInternal
	}

	return token, nil
}

func (s *userService) sendVerificationEmail(user domain.User) {
	timeNow := time.Now()
	expAt := timeNow.Add(time.Minute * verificationCodeTTL).Unix()

	verificationCode := fmt.Sprintf("%v|%v", user.Email, expAt)
	verificationCodeEncrypt, err := goshortcute.AESCBCEncrypt([]byte(verificationCode), []byte(s.appEmailVerificationKey))
	if err != nil {
		logger.Error("Failed to encrypt verification code", err)
		return
	}
	strEncode := goshortcute.StringtoBase64Encode(verificationCodeEncrypt)
	activationLink := s.appDeploymentUrl + "/api/v1/auth/email-verification/" + strEncode

	err = s.notifRepo.SendEmail(user.Name, user.Email, subjectVerifyEmail,
		fmt.Sprintf(emailBodyVerifyAccount, user.Name, activationLink, verificationCodeTTL))
	if err != nil {
		logger.Warn("Failed to send verification email", err)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/heartscript/storefront/app/models"
	"github.com/heartscript/storefront/app/repositories"
	"github.com/heartscript/storefront/app/services/mirror"
	"github.com/heartscript/storefront/app/utils/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Phone    string
	Address  string
	Pincode  string
	Answers  [models.RecoverySlots]string
}

type ProfileUpdate struct {
	Phone   string
	Address string
	Pincode string
	Avatar  *Upload
}

type AccountService struct {
	users  repositories.UserRepositoryImpl
	orders repositories.OrderRepository
	disk   storage.Disk
	mirror *mirror.Syncer
}

func NewAccountService(
	users repositories.UserRepositoryImpl,
	orders repositories.OrderRepository,
	disk storage.Disk,
	syncer *mirror.Syncer,
) *AccountService {
	return &AccountService{
		users:  users,
		orders: orders,
		disk:   disk,
		mirror: syncer,
	}
}

// Register creates a customer account. The email must be unused and at least
// MinRecoveryAnswers answers must be non-empty after normalization.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, invalid("email and password are required")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("email %s: %w", email, ErrConflict)
	}

	answers := NormalizeAnswers(in.Answers)
	if CountFilled(answers) < MinRecoveryAnswers {
		return nil, ErrInsufficientAnswers
	}

	user := &models.User{
		Username: strings.TrimSpace(in.Username),
		Email:    email,
		Phone:    in.Phone,
		Address:  in.Address,
		Pincode:  in.Pincode,
		Role:     models.RoleCustomer,
	}
	user.SetRecoveryAnswers(answers)

	if err := s.users.Create(ctx, user, in.Password); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("email %s: %w", email, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Ctx(ctx).Info().Uint("user_id", user.ID).Msg("AccountService.Register: account created")
	s.mirror.UserSaved(ctx, user)
	return user, nil
}

// Authenticate returns ErrUnauthorized for both an unknown email and a wrong
// password.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// VerifyRecovery checks submitted answers against the stored ones. Fewer than
// MinRecoveryMatches matches yields a *VerificationFailedError carrying the
// count.
func (s *AccountService) VerifyRecovery(ctx context.Context, email string, answers [models.RecoverySlots]string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if user == nil {
		return nil, notFound("account", email)
	}

	matches := CountMatches(answers, user.RecoveryAnswers())
	if matches < MinRecoveryMatches {
		log.Ctx(ctx).Warn().Uint("user_id", user.ID).Int("matches", matches).Msg("AccountService.VerifyRecovery: verification failed")
		return nil, &VerificationFailedError{Matches: matches}
	}
	return user, nil
}

func (s *AccountService) ResetPassword(ctx context.Context, email string, answers [models.RecoverySlots]string, newPassword string) error {
	user, err := s.VerifyRecovery(ctx, email, answers)
	if err != nil {
		return err
	}
	if newPassword == "" {
		return invalid("new password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	log.Ctx(ctx).Info().Uint("user_id", user.ID).Msg("AccountService.ResetPassword: password updated")
	return nil
}

func (s *AccountService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	if user == nil {
		return nil, notFound("user", userID)
	}
	return user, nil
}

// Profile returns the user and their orders, newest first.
func (s *AccountService) Profile(ctx context.Context, userID uint) (*models.User, []models.Order, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	orders, err := s.orders.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load orders of user %d: %w", userID, err)
	}
	return user, orders, nil
}

// UpdateProfile replaces the contact fields and, when an avatar is given,
// stores it as profile_<id>_<name>. A rejected or failed upload leaves the
// record untouched.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !in.Avatar.empty() {
		name, err := checkImage(in.Avatar)
		if err != nil {
			return nil, err
		}
		ref, err := storeUpload(ctx, s.disk, fmt.Sprintf("profile_%d_%s", user.ID, name), in.Avatar)
		if err != nil {
			return nil, err
		}
		user.ProfilePic = ref
	}

	user.Phone = in.Phone
	user.Address = in.Address
	user.Pincode = in.Pincode

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
	}
	s.mirror.UserSaved(ctx, user)
	return user, nil
}

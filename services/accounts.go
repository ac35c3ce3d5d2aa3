package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront-backend/models"
	"storefront-backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type AccountService struct {
	db       *gorm.DB
	validate *validator.Validate
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db, validate: utils.NewValidator()}
}

// Register creates a customer account.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return models.User{}, ValidationError(utils.SanitizeValidationError(err))
	}
	return s.create(ctx, in, models.RoleCustomer)
}

func (s *AccountService) create(ctx context.Context, in RegisterInput, role string) (models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
		Role:     role,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkAvailable(tx, in); err != nil {
			return err
		}
		return tx.Create(&user).Error
	})
	if isDuplicateKey(s.db, err) {
		// a concurrent registration took the name between the check and the insert
		return models.User{}, newError(KindAuthDuplicate, "Username or email already exists")
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func checkAvailable(tx *gorm.DB, in RegisterInput) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return newError(KindAuthDuplicate, "Username already exists")
	}
	if err := tx.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return newError(KindAuthDuplicate, "Email already exists")
	}
	return nil
}

// isDuplicateKey reports a unique index violation, translating raw driver
// errors when the connection was opened without TranslateError.
func isDuplicateKey(db *gorm.DB, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if t, ok := db.Dialector.(gorm.ErrorTranslator); ok {
		return errors.Is(t.Translate(err), gorm.ErrDuplicatedKey)
	}
	return false
}

// Authenticate checks a username and password pair.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.User{}, ValidationError("Username and password are required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, newError(KindAuthInvalid, "Invalid credentials")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.User{}, newError(KindAuthInvalid, "Invalid credentials")
	}
	return user, nil
}

func (s *AccountService) GetUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, NotFoundError("User not found")
	}
	if err != nil {
		return user, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates the administrator account unless the username exists.
func (s *AccountService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	_, err := s.create(ctx, RegisterInput{Username: username, Email: strings.ToLower(email), Password: password}, models.RoleAdmin)
	if err != nil {
		return false, err
	}
	return true, nil
}

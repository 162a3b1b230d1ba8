package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"FileVault/internal/auth"
	"FileVault/internal/model"
	"FileVault/internal/repo"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PasswordCost — work factor bcrypt.
const PasswordCost = 10

// UserService регистрация, вход и выпуск токенов.
type UserService struct {
	repo   repo.UserRepository
	issuer auth.TokenIssuer

	dummyOnce sync.Once
	dummyHash []byte
}

func NewUserService(r repo.UserRepository, issuer auth.TokenIssuer) *UserService {
	return &UserService{repo: r, issuer: issuer}
}

// LoginResult выданный токен и профиль пользователя.
type LoginResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// Register валидирует вход, проверяет уникальность имени и сохраняет bcrypt-хеш пароля.
func (s *UserService) Register(ctx context.Context, name, password, confirm string) (*model.User, error) {
	if err := validateSignUp(name, password, confirm); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetUserByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, ErrNameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repo.CreateUser(ctx, &model.User{Name: name, PasswordHash: string(hash)})
	if err != nil {
		// гонка двух регистраций с одним именем упирается в уникальный индекс
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login проверяет пароль и выпускает токен. Неизвестное имя и неверный пароль
// дают одну и ту же ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, name, password string) (*LoginResult, error) {
	u, err := s.repo.GetUserByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		// сравнение с фиктивным хешем выравнивает время ответа
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.issuer.Issue(auth.Identity{UserID: u.ID, Name: u.Name})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{User: u, Token: token, ExpiresAt: exp}, nil
}

// GetUser профиль пользователя по id.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// UserExists используется middleware для повторной проверки владельца токена.
func (s *UserService) UserExists(ctx context.Context, id string) (bool, error) {
	_, err := s.GetUser(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *UserService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("filevault-dummy-password"), PasswordCost)
	})
	return s.dummyHash
}

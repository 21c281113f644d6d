package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/buildtrack/buildtrack/internal/config"
	"github.com/buildtrack/buildtrack/internal/middleware"
	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"github.com/buildtrack/buildtrack/internal/pm/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 认证服务：注册、登录、签发 JWT
type AuthService struct {
	userRepo *repository.UserRepository
	jwtCfg   config.JWTConfig
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo *repository.UserRepository, jwtCfg config.JWTConfig) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Name       string `json:"name" binding:"required"`
	Role       string `json:"role" binding:"required"`
	EmployeeID string `json:"employee_id"`
}

// LoginRequest 登录请求，角色必须与注册时一致
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// AuthResult 登录/注册结果
type AuthResult struct {
	Token string       `json:"access_token"`
	User  *entity.User `json:"user"`
}

// Register 注册新用户，邮箱唯一
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	switch req.Role {
	case entity.RoleAdmin, entity.RoleEngineer, entity.RoleClient:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.Role)
	}

	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		ID:           uuid.New().String()[:32],
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         req.Role,
		EmployeeID:   req.EmployeeID,
		CreatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login 登录，角色必须与注册时一致
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmailAndRole(ctx, req.Email, req.Role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// CurrentUser 获取当前登录用户
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *AuthService) generateToken(user *entity.User) (string, error) {
	now := time.Now()
	claims := middleware.JWTClaims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtCfg.Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.TokenExpire)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

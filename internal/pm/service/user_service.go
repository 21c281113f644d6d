package service

import (
	"context"

	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"github.com/buildtrack/buildtrack/internal/pm/repository"
)

// UserService 用户查询服务
type UserService struct {
	userRepo *repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// List 获取用户列表，role 为空时返回全部
func (s *UserService) List(ctx context.Context, role string) ([]entity.User, error) {
	return s.userRepo.List(ctx, role)
}

// ListEngineers 获取全部工程师（项目分配下拉用）
func (s *UserService) ListEngineers(ctx context.Context) ([]entity.User, error) {
	return s.userRepo.List(ctx, entity.RoleEngineer)
}

// ListClients 获取全部客户
func (s *UserService) ListClients(ctx context.Context) ([]entity.User, error) {
	return s.userRepo.List(ctx, entity.RoleClient)
}

// Get 获取单个用户
func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"student-records/internal/dto"
	"student-records/internal/model"
	"student-records/internal/repository"
)

// ── 账号管理业务错误 ──

var (
	ErrUsernameExists = errors.New("用户名已存在")
	ErrUserSelfDelete = errors.New("不能删除自己")
	ErrWrongPassword  = errors.New("原密码错误")
)

const tempPasswordLength = 10

// UserService 后台账号管理（管理员）与本人改密
type UserService interface {
	List(ctx context.Context) ([]dto.UserResponse, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.CreateUserResponse, error)
	Delete(ctx context.Context, caller Caller, id uint) error
	ResetPassword(ctx context.Context, id uint) (*dto.ResetPasswordResponse, error)
	ChangePassword(ctx context.Context, caller Caller, req *dto.ChangePasswordRequest) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.User.List(ctx)
	if err != nil {
		s.logger.Error("查询账号列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, nil
}

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.CreateUserResponse, error) {
	if _, err := s.repo.User.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	password, temp := req.Password, ""
	if password == "" {
		generated, err := generateTempPassword(tempPasswordLength)
		if err != nil {
			s.logger.Error("生成临时密码失败", zap.Error(err))
			return nil, err
		}
		password, temp = generated, generated
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{Username: req.Username, PasswordHash: string(hash), Role: req.Role}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建账号失败", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	s.logger.Info("新增账号", zap.String("username", user.Username), zap.String("role", user.Role))
	return &dto.CreateUserResponse{User: toUserResponse(user), TempPassword: temp}, nil
}

func (s *userService) Delete(ctx context.Context, caller Caller, id uint) error {
	if id == caller.UserID {
		return ErrUserSelfDelete
	}
	if _, err := s.getUser(ctx, id); err != nil {
		return err
	}
	if err := s.repo.User.Delete(ctx, id); err != nil {
		s.logger.Error("删除账号失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("删除账号", zap.Uint("id", id), zap.String("by", caller.Username))
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, id uint) (*dto.ResetPasswordResponse, error) {
	if _, err := s.getUser(ctx, id); err != nil {
		return nil, err
	}

	tempPassword, err := generateTempPassword(tempPasswordLength)
	if err != nil {
		s.logger.Error("生成临时密码失败", zap.Error(err))
		return nil, err
	}
	if err := s.setPassword(ctx, id, tempPassword); err != nil {
		return nil, err
	}
	return &dto.ResetPasswordResponse{TempPassword: tempPassword}, nil
}

func (s *userService) ChangePassword(ctx context.Context, caller Caller, req *dto.ChangePasswordRequest) error {
	user, err := s.getUser(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}
	return s.setPassword(ctx, user.ID, req.NewPassword)
}

func (s *userService) getUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		s.logger.Error("查询账号失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *userService) setPassword(ctx context.Context, id uint, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return err
	}
	if err := s.repo.User.UpdatePassword(ctx, id, string(hash)); err != nil {
		s.logger.Error("更新密码失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

// generateTempPassword 生成临时密码，至少含一个字母和一个数字，去掉易混淆字符
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	pick := func(set string) (byte, error) {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
		if err != nil {
			return 0, err
		}
		return set[n.Int64()], nil
	}

	result := make([]byte, length)
	var err error
	if result[0], err = pick(letters); err != nil {
		return "", err
	}
	if result[1], err = pick(digits); err != nil {
		return "", err
	}
	for i := 2; i < length; i++ {
		if result[i], err = pick(all); err != nil {
			return "", err
		}
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}
	return string(result), nil
}

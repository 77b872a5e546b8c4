package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"student-records/config"
	"student-records/internal/dto"
	"student-records/internal/model"
	"student-records/pkg/jwt"
)

// fakeBlacklist Token 黑名单替身
type fakeBlacklist struct {
	entries map[string]time.Duration
}

func (f *fakeBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	f.entries[jti] = ttl
	return nil
}

func setupTestAuthService(blacklist TokenBlacklist) (AuthService, *mockDB, *jwt.Manager) {
	repo, db := newMockRepository()
	cfg := &config.AuthConfig{
		JWTSecret:                   "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:              15 * time.Minute,
		BootstrapAdminPassword:      "admin123",
		BootstrapInstructorPassword: "instructor123",
	}
	jwtMgr := jwt.NewManager(cfg)
	return NewAuthService(cfg, repo, jwtMgr, blacklist, zap.NewNop()), db, jwtMgr
}

func TestEnsureDefaultUsers_CreatesWhenEmpty(t *testing.T) {
	svc, db, _ := setupTestAuthService(nil)
	ctx := context.Background()

	if err := svc.EnsureDefaultUsers(ctx); err != nil {
		t.Fatalf("EnsureDefaultUsers 失败: %v", err)
	}
	if len(db.users) != 2 {
		t.Fatalf("期望创建 2 个默认账号，实际 %d", len(db.users))
	}

	roles := make(map[string]string)
	for _, u := range db.users {
		roles[u.Username] = u.Role
		if u.PasswordHash == "admin123" || u.PasswordHash == "instructor123" {
			t.Error("密码不应明文存储")
		}
	}
	if roles["admin"] != model.RoleAdmin || roles["instructor"] != model.RoleInstructor {
		t.Errorf("默认账号角色不符: %v", roles)
	}

	// 再次调用不重复创建
	if err := svc.EnsureDefaultUsers(ctx); err != nil {
		t.Fatalf("EnsureDefaultUsers 失败: %v", err)
	}
	if len(db.users) != 2 {
		t.Errorf("非空表不应再写入，实际 %d", len(db.users))
	}
}

func TestEnsureDefaultUsers_SkipsWhenUsersExist(t *testing.T) {
	svc, db, _ := setupTestAuthService(nil)
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	db.users[1] = &model.User{ID: 1, Username: "registrar", PasswordHash: string(hash), Role: model.RoleAdmin}

	if err := svc.EnsureDefaultUsers(context.Background()); err != nil {
		t.Fatalf("EnsureDefaultUsers 失败: %v", err)
	}
	if len(db.users) != 1 {
		t.Errorf("已有账号时不应创建默认账号，实际 %d", len(db.users))
	}
}

func TestLogin_Success(t *testing.T) {
	svc, _, jwtMgr := setupTestAuthService(nil)
	ctx := context.Background()
	_ = svc.EnsureDefaultUsers(ctx)

	resp, err := svc.Login(ctx, &dto.LoginRequest{Username: "instructor", Password: "instructor123"})
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("AccessToken 不应为空")
	}
	if resp.ExpiresIn != 900 {
		t.Errorf("期望 ExpiresIn=900，实际 %d", resp.ExpiresIn)
	}
	if resp.User.Username != "instructor" || resp.User.Role != model.RoleInstructor {
		t.Errorf("用户信息不符: %+v", resp.User)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}
	if claims.UserID != resp.User.ID || claims.Role != model.RoleInstructor {
		t.Errorf("Token 声明不符: %+v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)
	ctx := context.Background()
	_ = svc.EnsureDefaultUsers(ctx)

	_, err := svc.Login(ctx, &dto.LoginRequest{Username: "admin", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_RoleMustMatch(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)
	ctx := context.Background()
	_ = svc.EnsureDefaultUsers(ctx)

	_, err := svc.Login(ctx, &dto.LoginRequest{Username: "instructor", Password: "instructor123", Role: model.RoleAdmin})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("角色不符时期望 ErrInvalidCredentials，实际: %v", err)
	}

	resp, err := svc.Login(ctx, &dto.LoginRequest{Username: "admin", Password: "admin123", Role: model.RoleAdmin})
	if err != nil {
		t.Fatalf("角色一致时应登录成功: %v", err)
	}
	if resp.User.Role != model.RoleAdmin {
		t.Errorf("期望角色 admin，实际 %s", resp.User.Role)
	}
}

func TestLogin_UserNotFound(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "nobody", Password: "x"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogout_Blacklists(t *testing.T) {
	bl := &fakeBlacklist{entries: make(map[string]time.Duration)}
	svc, _, _ := setupTestAuthService(bl)

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("Logout 失败: %v", err)
	}
	ttl, ok := bl.entries["jti-1"]
	if !ok {
		t.Fatal("期望 jti 被加入黑名单")
	}
	if ttl <= 9*time.Minute || ttl > 10*time.Minute {
		t.Errorf("黑名单 TTL 应为 Token 剩余有效期，实际 %v", ttl)
	}
}

func TestLogout_NoRedis(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Minute)); err != nil {
		t.Errorf("未配置 Redis 时登出应为空操作，实际: %v", err)
	}
}

func TestMe(t *testing.T) {
	svc, db, _ := setupTestAuthService(nil)
	ctx := context.Background()
	_ = svc.EnsureDefaultUsers(ctx)

	var adminID uint
	for id, u := range db.users {
		if u.Username == "admin" {
			adminID = id
		}
	}

	me, err := svc.Me(ctx, adminID)
	if err != nil {
		t.Fatalf("Me 失败: %v", err)
	}
	if me.Username != "admin" {
		t.Errorf("期望 admin，实际 %s", me.Username)
	}

	if _, err := svc.Me(ctx, 999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

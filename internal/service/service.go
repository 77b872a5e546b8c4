package service

import (
	"go.uber.org/zap"

	"student-records/config"
	"student-records/internal/repository"
	"student-records/pkg/jwt"
	"student-records/pkg/redis"
	"student-records/pkg/sheets"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth    AuthService
	Student StudentService
	Sync    SyncService
	Export  ExportService
	Lookup  LookupService
	User    UserService
}

// NewService 创建 Service 聚合；rdb 为 nil 时登出拉黑与同步状态记录均降级为空操作
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	sheetFactory sheets.Factory,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	var (
		statusStore SyncStatusStore
		blacklist   TokenBlacklist
	)
	if rdb != nil {
		statusStore = rdb
		blacklist = rdb
	}

	syncSvc := NewSyncService(&cfg.Sheet, repo, sheetFactory, statusStore, logger.Named("sync"))

	return &Service{
		Auth:    NewAuthService(&cfg.Auth, repo, jwtMgr, blacklist, logger),
		Student: NewStudentService(repo, syncSvc, logger),
		Sync:    syncSvc,
		Export:  NewExportService(&cfg.Export, repo, logger),
		Lookup:  NewLookupService(repo, logger),
		User:    NewUserService(repo, logger),
	}
}

package handler

import "student-records/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth    *AuthHandler
	Student *StudentHandler
	Sync    *SyncHandler
	Export  *ExportHandler
	Lookup  *LookupHandler
	User    *UserHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(svc.Auth),
		Student: NewStudentHandler(svc.Student),
		Sync:    NewSyncHandler(svc.Sync),
		Export:  NewExportHandler(svc.Export),
		Lookup:  NewLookupHandler(svc.Lookup),
		User:    NewUserHandler(svc.User),
	}
}

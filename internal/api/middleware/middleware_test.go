package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"student-records/config"
	"student-records/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: 15 * time.Minute,
	})
}

func TestJWTAuth(t *testing.T) {
	mgr := newTestJWT()
	token, _ := mgr.GenerateAccessToken(3, "instructor", "instructor")

	r := gin.New()
	r.GET("/me", JWTAuth(mgr, nil), func(c *gin.Context) {
		uid, _ := c.Get(CtxUserID)
		if uid.(uint) != 3 || c.GetString(CtxUsername) != "instructor" || c.GetString(CtxTokenJTI) == "" {
			c.Status(http.StatusTeapot)
			return
		}
		c.Status(http.StatusOK)
	})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"有效 Token", "Bearer " + token, http.StatusOK},
		{"缺少认证头", "", http.StatusUnauthorized},
		{"格式错误", "Token " + token, http.StatusUnauthorized},
		{"无效 Token", "Bearer not-a-token", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Errorf("期望 %d，实际 %d", tc.want, w.Code)
			}
		})
	}
}

func TestRoleAuth(t *testing.T) {
	run := func(role string) int {
		r := gin.New()
		r.POST("/programs", func(c *gin.Context) {
			if role != "" {
				c.Set(CtxRole, role)
			}
		}, RoleAuth("admin"), func(c *gin.Context) { c.Status(http.StatusCreated) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/programs", nil))
		return w.Code
	}

	if code := run("admin"); code != http.StatusCreated {
		t.Errorf("admin 期望 201，实际 %d", code)
	}
	if code := run("instructor"); code != http.StatusForbidden {
		t.Errorf("instructor 期望 403，实际 %d", code)
	}
	if code := run(""); code != http.StatusUnauthorized {
		t.Errorf("未认证期望 401，实际 %d", code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("应沿用请求头中的 Request-ID，实际 %q", w.Header().Get("X-Request-ID"))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(w.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("缺省时应生成 UUID，实际 %q", w.Header().Get("X-Request-ID"))
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("预检请求期望 204，实际 %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Error("白名单来源应回写 Allow-Origin")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("非白名单来源不应回写 Allow-Origin")
	}
}

func TestCORS_Wildcard(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"*"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://any.example")
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "http://any.example" {
		t.Error("通配时应回写请求来源")
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Error("通配时不应允许携带凭据")
	}
	if w.Header().Get("Vary") != "Origin" {
		t.Errorf("期望 Vary: Origin，实际 %q", w.Header().Get("Vary"))
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("Cache-Control") != "no-store" || w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("缺少基础安全头: %v", w.Header())
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("明文 HTTP 不应下发 HSTS")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	r.ServeHTTP(w, req)
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Error("经 HTTPS 代理时应下发 HSTS")
	}
}

func TestLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core), 20*time.Millisecond))
	r.GET("/students/:id", func(c *gin.Context) {
		c.Set(CtxUsername, "instructor")
		c.Set(CtxRole, "instructor")
		c.String(http.StatusOK, "ok")
	})
	r.POST("/sync/push", func(c *gin.Context) {
		time.Sleep(30 * time.Millisecond)
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/students/12", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/sync/push", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("期望 3 条访问日志，实际 %d", len(entries))
	}

	first := entries[0].ContextMap()
	if first["route"] != "/students/:id" || first["user"] != "instructor" || first["role"] != "instructor" {
		t.Errorf("访问日志字段不符: %v", first)
	}
	if first["request_id"] == "" || first["bytes"] != int64(2) {
		t.Errorf("缺少 request_id 或响应大小不符: %v", first)
	}
	if entries[0].Level != zapcore.InfoLevel {
		t.Errorf("正常请求期望 Info，实际 %s", entries[0].Level)
	}

	if entries[1].Level != zapcore.WarnLevel || entries[1].Message != "慢请求" {
		t.Errorf("超过阈值的请求应记为慢请求，实际 %s %q", entries[1].Level, entries[1].Message)
	}

	if entries[2].ContextMap()["route"] != "unmatched" || entries[2].Level != zapcore.WarnLevel {
		t.Errorf("未匹配路由期望 route=unmatched 且 Warn，实际 %v", entries[2].ContextMap())
	}
}

func TestRateLimit_NilRedisPassesThrough(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(nil, "login", 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("未配置 Redis 时应放行，第 %d 次得到 %d", i+1, w.Code)
		}
	}
}

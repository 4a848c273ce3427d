package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-portal/backend/config"
	"campus-portal/backend/internal/access"
	"campus-portal/backend/internal/api"
	"campus-portal/backend/internal/api/handler"
	"campus-portal/backend/internal/api/middleware"
	"campus-portal/backend/pkg/jwt"
	"campus-portal/backend/pkg/redis"
	"campus-portal/backend/pkg/response"
)

// 认证入口限流：每个 IP 每分钟 20 次
const (
	authRateLimit  = 20
	authRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：此时不做 Token 黑名单与限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, sessions middleware.SessionResolver, rdb *redis.Client, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	if err := api.RegisterValidators(); err != nil {
		return nil, err
	}

	// 避免把 nil *redis.Client 包进非 nil 接口
	var (
		blacklist middleware.TokenChecker
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, response.CodeNotFound, "接口不存在")
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			limited := middleware.RateLimit(limiter, authRateLimit, authRateWindow)
			auth.POST("/login", limited, h.Auth.Login)
			auth.POST("/register", limited, h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
			auth.GET("/classes", h.Auth.ListClasses)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, sessions, blacklist, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/session", h.Auth.GetSession)
			authorized.POST("/auth/select-class", h.Auth.SelectClass)
		}

		// 已完成班级选择的路由
		ready := authorized.Group("")
		ready.Use(middleware.RequireReady())
		registerFeatureRoutes(ready, h)
	}

	return r, nil
}

func registerFeatureRoutes(rg *gin.RouterGroup, h *handler.Handler) {
	can := middleware.Capability

	rg.GET("/dashboard", h.Dashboard.Overview)

	// 笔记模块
	notes := rg.Group("/notes")
	{
		notes.GET("", can(access.Notes, access.View), h.Note.ListNotes)
		notes.GET("/:id", can(access.Notes, access.View), h.Note.GetNote)
		notes.POST("", can(access.Notes, access.Create), h.Note.CreateNote)
	}

	// 作业模块
	assignments := rg.Group("/assignments")
	{
		assignments.GET("", can(access.Assignments, access.View), h.Assignment.ListAssignments)
		assignments.GET("/stats", can(access.Assignments, access.Grade), h.Assignment.Stats)
		assignments.GET("/:id", can(access.Assignments, access.View), h.Assignment.GetAssignment)
		assignments.POST("", can(access.Assignments, access.Create), h.Assignment.CreateAssignment)
		assignments.POST("/:id/submissions", can(access.Assignments, access.Submit), h.Assignment.Submit)
		assignments.PUT("/submissions/:id/grade", can(access.Assignments, access.Grade), h.Assignment.Grade)
	}

	// 答疑模块
	doubts := rg.Group("/doubts")
	{
		doubts.GET("", can(access.Doubts, access.View), h.Doubt.ListDoubts)
		doubts.GET("/:id", can(access.Doubts, access.View), h.Doubt.GetDoubt)
		doubts.POST("", can(access.Doubts, access.Create), h.Doubt.CreateDoubt)
		doubts.POST("/:id/replies", can(access.Doubts, access.Reply), h.Doubt.Reply)
		doubts.PUT("/:id/resolve", can(access.Doubts, access.Resolve), h.Doubt.Resolve)
	}

	// 报修模块
	maintenance := rg.Group("/maintenance")
	{
		maintenance.GET("", can(access.Maintenance, access.View), h.Maintenance.ListRequests)
		maintenance.GET("/stats", can(access.Maintenance, access.View), h.Maintenance.Stats)
		maintenance.GET("/:id", can(access.Maintenance, access.View), h.Maintenance.GetRequest)
		maintenance.POST("", can(access.Maintenance, access.Create), h.Maintenance.CreateRequest)
		maintenance.PUT("/:id/status", can(access.Maintenance, access.UpdateStatus), h.Maintenance.UpdateStatus)
	}

	// 考勤模块
	attendance := rg.Group("/attendance")
	{
		attendance.GET("/me", can(access.Attendance, access.View), h.Attendance.MySummary)
		attendance.GET("/students", can(access.Attendance, access.ViewAll), h.Attendance.Roster)
		attendance.GET("/students/:id", can(access.Attendance, access.ViewAll), h.Attendance.StudentSummary)
		attendance.POST("/record", can(access.Attendance, access.Record), h.Attendance.Record)
		attendance.GET("/export", can(access.Attendance, access.ViewAll), h.Export.ExportAttendance)
	}

	// 费用模块（指定 student_id 的权限在 Service 层判断）
	fees := rg.Group("/fees")
	{
		fees.GET("", can(access.Fees, access.View), h.Fee.Summary)
		fees.POST("", can(access.Fees, access.Create), h.Fee.CreateFee)
	}

	// 证书模块
	certificates := rg.Group("/certificates")
	{
		certificates.GET("", can(access.Certificates, access.View), h.Certificate.Catalog)
		certificates.GET("/requests", can(access.Certificates, access.View), h.Certificate.ListRequests)
		certificates.POST("/requests", can(access.Certificates, access.Request), h.Certificate.RequestCertificate)
		certificates.PUT("/requests/:id/status", can(access.Certificates, access.Process), h.Certificate.Process)
	}

	// 课表模块
	timetable := rg.Group("/timetable")
	{
		timetable.GET("", can(access.Timetable, access.View), h.Timetable.GetMyTimetable)
		timetable.GET("/:class", can(access.Timetable, access.View), h.Timetable.GetTimetable)
		timetable.GET("/:class/grid", can(access.Timetable, access.View), h.Timetable.GetGrid)
		timetable.GET("/:class/export", can(access.Timetable, access.View), h.Export.ExportTimetable)
		timetable.PUT("/:class/slots", can(access.Timetable, access.Edit), h.Timetable.SetSlot)
		timetable.DELETE("/:class/slots", can(access.Timetable, access.Edit), h.Timetable.ClearSlot)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tagtrack/internal/api"
	"tagtrack/internal/attendance"
	"tagtrack/internal/audit"
	"tagtrack/internal/auth"
	"tagtrack/internal/config"
	"tagtrack/internal/httpmiddleware"
	"tagtrack/internal/identity"
	"tagtrack/internal/metrics"
	"tagtrack/internal/model"
	"tagtrack/internal/session"
	"tagtrack/internal/stats"
	"tagtrack/internal/store"
	"tagtrack/internal/store/postgres"
	"tagtrack/internal/store/sqlite"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

// openStore picks the backend by DSN scheme: postgres for postgres:// DSNs,
// sqlite for everything else (a file path or :memory:).
func openStore(dsn string) (store.Store, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.New(dsn)
	}
	return sqlite.New(dsn)
}

func runHTTP(cfg config.App) error {
	st, err := openStore(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer st.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q audit.Queue
	if cfg.QueueBackend == "memory" {
		q = audit.NewInMemory(64)
	} else {
		q = audit.NewRedisQueue(redisClient.Client, "tagtrack:audit")
	}
	auditor := audit.NewRecorder(q)

	resolver := identity.NewResolver(st)
	sessionSvc := session.NewService(st)
	attendanceSvc := attendance.NewService(st, resolver)
	statsSvc := stats.NewService(st)

	authHandler := api.NewAuthHandler(st, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.TokenTTL)
	studentHandler := api.NewStudentHandler(st)
	courseHandler := api.NewCourseHandler(st)
	sessionHandler := api.NewSessionHandler(sessionSvc)
	attendanceHandler := api.NewAttendanceHandler(attendanceSvc)
	scanHandler := api.NewScanHandler(attendanceSvc)
	adminHandler := api.NewAdminHandler(st, statsSvc, auditor)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:          24 * time.Hour,
	}))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())
	r.Use(metrics.GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		status := http.StatusOK
		if !redisHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": true})
	})

	requireAuth := auth.RequireAuth(cfg.JWTSigningKey, cfg.JWTIssuer)
	adminOnly := auth.RequireRole(model.RoleAdmin)
	staff := auth.RequireRole(model.RoleAdmin, model.RoleLecturer)

	v1 := r.Group("/api")

	// The kiosk device authenticates as nobody at all.
	v1.POST("/scan", scanHandler.Scan)

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/profile", requireAuth, authHandler.Profile)

	students := v1.Group("/students", requireAuth, adminOnly)
	students.POST("", studentHandler.Create)
	students.GET("", studentHandler.List)
	students.GET("/:id", studentHandler.Get)
	students.PUT("/:id", studentHandler.Update)
	students.DELETE("/:id", studentHandler.Delete)

	courses := v1.Group("/courses", requireAuth)
	courses.GET("", courseHandler.List)
	courses.GET("/:id", courseHandler.Get)
	courses.POST("", adminOnly, courseHandler.Create)
	courses.PUT("/:id", adminOnly, courseHandler.Update)
	courses.DELETE("/:id", adminOnly, courseHandler.Delete)

	sessions := v1.Group("/sessions", requireAuth, staff)
	sessions.POST("", sessionHandler.Start)
	sessions.PUT("/:id/end", sessionHandler.End)
	sessions.GET("/active", sessionHandler.Active)
	sessions.GET("/recent", sessionHandler.Recent)

	att := v1.Group("/attendance", requireAuth)
	att.POST("", staff, attendanceHandler.Mark)
	att.GET("/course/:courseId", attendanceHandler.ByCourse)
	att.GET("/student/:studentId", attendanceHandler.ByStudent)
	att.GET("/date/:date", attendanceHandler.ByDate)
	att.PUT("/:id", adminOnly, attendanceHandler.Update)
	att.DELETE("/:id", adminOnly, attendanceHandler.Delete)

	admin := v1.Group("/admin", requireAuth, adminOnly)
	admin.GET("/dashboard", adminHandler.Overview)
	admin.GET("/reports/csv", adminHandler.ExportCSV)
	admin.GET("/reports/xlsx", adminHandler.ExportXLSX)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users", adminHandler.CreateUser)
	admin.PUT("/users/:id", adminHandler.UpdateUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.GET("/audit-logs", adminHandler.AuditLogs)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/dashboard_backend/config"
	"github.com/mmdatafocus/dashboard_backend/dashboard"
	"github.com/mmdatafocus/dashboard_backend/middlewares"
	"github.com/mmdatafocus/dashboard_backend/models"
	"github.com/mmdatafocus/dashboard_backend/revenue"
	"github.com/mmdatafocus/dashboard_backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func getRedisClient(redisAddress string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

// correlationIdMiddleware reuses x-correlation-id when the caller sent one.
func correlationIdMiddleware(c *gin.Context) {
	cid := c.GetHeader("x-correlation-id")
	if cid == "" {
		cid = uuid.NewString()
	}
	c.Header("x-correlation-id", cid)
	c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
	c.Next()
}

func corsConfigFromEnv() cors.Config {
	corsConfig := cors.DefaultConfig()
	// In production an explicit allowlist is required; otherwise every origin is allowed.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOriginFunc = func(string) bool { return false }
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization", "x-correlation-id")
	corsConfig.AddExposeHeaders("Content-Length", "x-correlation-id")
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	return corsConfig
}

// newRevenueFetcher builds db -> (redis cache) -> timeout. REVENUE_CACHE_ENABLED=false drops the cache.
func newRevenueFetcher(logger *logrus.Logger) dashboard.RevenueFetcher {
	var fetcher dashboard.RevenueFetcher = revenue.NewDBFetcher(config.GetDB)
	if config.RevenueCacheEnabled() {
		if rdb := config.GetRedisDB(); rdb != nil {
			var locker revenue.Locker
			if lock := config.GetRedisLock(); lock != nil {
				locker = revenue.NewRedisLocker(lock)
			}
			fetcher = revenue.NewCachedFetcher(fetcher, revenue.NewRedisStore(rdb), locker, config.RevenueCacheTTL(), logger)
		} else {
			logger.WithFields(logrus.Fields{"field": "revenueCache"}).Warn("redis not ready; revenue cache disabled")
		}
	}
	return revenue.NewTimeoutFetcher(fetcher, config.RevenueFetchTimeout())
}

func newRouter(logger *logrus.Logger, handler *dashboardHandler, limiter *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(correlationIdMiddleware)
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.Use(cors.New(corsConfigFromEnv()))
	if limiter != nil {
		r.Use(limiter.RateLimitMiddleware)
	}
	r.Use(middlewares.AuthMiddleware())
	r.Use(middlewares.SessionMiddleware(middlewares.RedisSessionLookup))
	r.Use(middlewares.LoaderMiddleware(config.GetDB))
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	registerDashboardRoutes(r, handler, config.RequireExplicitTenant())
	r.NoRoute(customNotFoundHandler)
	return r
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	directory, err := config.LoadTenantDirectory()
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "tenantDirectory"}).Fatal(err.Error())
	}

	handler := newDashboardHandler(logger)
	r := newRouter(logger, handler, rateLimiterFromEnv(getRedisClient(os.Getenv("REDIS_ADDRESS"))))

	// Listen before dependencies connect; /dashboard answers 503 until the gateway is set.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	handler.setGateway(dashboard.NewGateway(directory, newRevenueFetcher(logger)))

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("dashboard api listening on :", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

// customErrorLogger logs only requests that recorded gin errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

package app

import (
	"os"

	"leavedesk/internal/balance"
	"leavedesk/internal/leave"
	"leavedesk/internal/leavetype"
	"leavedesk/internal/mailer"
	"leavedesk/internal/notification"
	"leavedesk/internal/shared/connection"
	"leavedesk/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the shared infrastructure every module hangs off of
type App struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Mail   mailer.Sender
	Router *gin.Engine
}

// BuildApp connects infrastructure, migrates the schema and registers
// every module's routes under /api/v1.
func BuildApp(router *gin.Engine) (*App, error) {
	db, err := connection.ConnectGORMWithRetry(
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "leavedesk"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_SSLMODE", "disable"),
		5,
	)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&user.User{},
		&leavetype.LeaveType{},
		&balance.LeaveBalance{},
		&leave.LeaveRequest{},
		&notification.Notification{},
	); err != nil {
		return nil, err
	}

	rdb, err := connection.ConnectRedisWithRetry(getEnv("REDIS_ADDR", "localhost:6379"), 5)
	if err != nil {
		return nil, err
	}

	mail := mailer.New(mailer.ConfigFromEnv())

	a := &App{
		DB:     db,
		Redis:  rdb,
		Mail:   mail,
		Router: router,
	}

	registerModules(a)

	zap.L().Info("application wired", zap.Int("modules", 6))
	return a, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"edutrack_backend/internal/model"
	"edutrack_backend/pkg/database"
	"edutrack_backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB 返回建好表并播种徽章目录的内存数据库
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Log = zap.NewNop()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser 插入一个测试用户
func CreateUser(t *testing.T, db *gorm.DB, name string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", strings.ToLower(name)),
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateUserAt 插入一个指定注册时间的测试用户
func CreateUserAt(t *testing.T, db *gorm.DB, name string, role model.UserRole, createdAt time.Time) *model.User {
	t.Helper()
	user := CreateUser(t, db, name, role)
	require.NoError(t, db.Model(user).Update("created_at", createdAt).Error)
	user.CreatedAt = createdAt
	return user
}

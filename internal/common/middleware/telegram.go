package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"giveaway-engine/internal/common/errors"
	"giveaway-engine/internal/common/logger"
)

const (
	InitDataHeader = "init_data"

	userKey   = "user"
	userIDKey = "user_id"
)

// TelegramInitData проверяет подпись init data Mini App и кладет
// пользователя в контекст. expiry == 0 отключает проверку срока.
func TelegramInitData(botToken string, expiry time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		initDataQuery := c.GetHeader(InitDataHeader)
		if initDataQuery == "" {
			sendErrorResponse(c, errors.NewUnauthorizedError("Telegram init data required"))
			return
		}

		if err := initdata.Validate(initDataQuery, botToken, expiry); err != nil {
			logger.Debug().Err(err).Msg("Init data validation failed")
			sendErrorResponse(c, errors.NewUnauthorizedError("invalid init data"))
			return
		}

		parsed, err := initdata.Parse(initDataQuery)
		if err != nil {
			sendErrorResponse(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Failed to parse init data"))
			return
		}
		if parsed.User.ID == 0 {
			sendErrorResponse(c, errors.NewUnauthorizedError("init data has no user"))
			return
		}

		c.Set(userKey, parsed.User)
		c.Set(userIDKey, parsed.User.ID)
		c.Next()
	}
}

// GetUserID возвращает ID пользователя из init data, 0 если его нет
func GetUserID(c *gin.Context) int64 {
	if userID, exists := c.Get(userIDKey); exists {
		if id, ok := userID.(int64); ok {
			return id
		}
	}
	return 0
}

// RequireAdmin пропускает только пользователей из adminIDs. Должен стоять
// после TelegramInitData.
func RequireAdmin(adminIDs []int64) gin.HandlerFunc {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}

	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == 0 {
			sendErrorResponse(c, errors.NewUnauthorizedError("Telegram init data required"))
			return
		}
		if _, ok := admins[userID]; !ok {
			logger.Warn().Int64("user_id", userID).Str("path", c.FullPath()).Msg("Non-admin tried a management route")
			sendErrorResponse(c, errors.NewForbiddenError("admin access required"))
			return
		}
		c.Next()
	}
}

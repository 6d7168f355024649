package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"giveaway-engine/internal/common/errors"
	"giveaway-engine/internal/common/middleware"
	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/models/dto"
	giveawayservice "giveaway-engine/internal/features/giveaway/service"
)

type GiveawayHandler struct {
	service giveawayservice.GiveawayService
}

func NewGiveawayHandler(service giveawayservice.GiveawayService) *GiveawayHandler {
	return &GiveawayHandler{service: service}
}

// RegisterRoutes mounts the giveaway routes. joinAuth guards the join
// endpoint, adminAuth the guild management routes. Missing guards leave
// the routes open.
func (h *GiveawayHandler) RegisterRoutes(router *gin.RouterGroup, joinAuth gin.HandlerFunc, adminAuth ...gin.HandlerFunc) {
	guild := router.Group("/guilds/:guild_id/giveaways", adminAuth...)
	{
		guild.POST("", h.create)
		guild.GET("", h.list)
		guild.GET("/:id", h.get)
		guild.PATCH("/:id", h.edit)
		guild.DELETE("/:id", h.delete)
		guild.POST("/:id/reroll", h.reroll)
		guild.GET("/:id/participants", h.participants)
	}

	join := []gin.HandlerFunc{h.join}
	if joinAuth != nil {
		join = append([]gin.HandlerFunc{joinAuth}, join...)
	}
	router.POST("/giveaways/:id/join", join...)
}

// @Summary Создать розыгрыш
// @Description Создает розыгрыш в гильдии. winners_count урезается до max_entries.
// @Tags giveaways
// @Accept json
// @Produce json
// @Param guild_id path int true "Guild ID"
// @Param input body dto.GiveawayCreateRequest true "Параметры розыгрыша"
// @Success 201 {object} models.Giveaway
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /guilds/{guild_id}/giveaways [post]
func (h *GiveawayHandler) create(c *gin.Context) {
	guildID, ok := guildParam(c)
	if !ok {
		return
	}

	var input dto.GiveawayCreateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	g, err := h.service.Create(c.Request.Context(), input.Draft(guildID))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

// @Summary Список розыгрышей гильдии
// @Tags giveaways
// @Produce json
// @Param guild_id path int true "Guild ID"
// @Param active query bool false "Only giveaways that are not ended"
// @Success 200 {array} models.Giveaway
// @Failure 400 {object} middleware.ErrorResponse
// @Router /guilds/{guild_id}/giveaways [get]
func (h *GiveawayHandler) list(c *gin.Context) {
	guildID, ok := guildParam(c)
	if !ok {
		return
	}

	activeOnly := false
	if raw := c.Query("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			_ = c.Error(errors.NewValidationError("active", "must be a boolean"))
			return
		}
		activeOnly = v
	}

	giveaways, err := h.service.List(c.Request.Context(), models.ListFilter{
		ActiveOnly: activeOnly,
		GuildID:    &guildID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	if giveaways == nil {
		giveaways = []*models.Giveaway{}
	}
	c.JSON(http.StatusOK, giveaways)
}

// @Summary Получить розыгрыш
// @Tags giveaways
// @Produce json
// @Param guild_id path int true "Guild ID"
// @Param id path string true "Giveaway ID"
// @Success 200 {object} models.Giveaway
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /guilds/{guild_id}/giveaways/{id} [get]
func (h *GiveawayHandler) get(c *gin.Context) {
	guildID, ok := guildParam(c)
	if !ok {
		return
	}

	g, err := h.service.Get(c.Request.Context(), guildID, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// @Summary Изменить розыгрыш
// @Description Частичное изменение. Хотя бы одно поле обязательно, закрытый розыгрыш менять нельзя.
// @Tags giveaways
// @Accept json
// @Produce json
// @Param guild_id path int true "Guild ID"
// @Param id path string true "Giveaway ID"
// @Param input body dto.GiveawayUpdateRequest true "Изменяемые поля"
// @Success 200 {object} models.Giveaway
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /guilds/{guild_id}/giveaways/{id} [patch]
func (h *GiveawayHandler) edit(c *gin.Context) {
	guildID, ok := guildParam(c)
	if !ok {
		return
	}

	var input dto.GiveawayUpdateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	g, err := h.service.Edit(c.Request.Context(), guildID, c.Param("id"), input.Update())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// @Summary Удалить розыгрыш
// @Tags giveaways
// @Param guild_id path int true "Guild ID"
// @Param id path string true "Giveaway ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /guilds/{guild_id}/giveaways/{id} [delete]
func (h *GiveawayHandler) delete(c *gin.Context) {
	guildID, ok := guildParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), guildID, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Перевыбрать победителей
// @Description Только для завершенного розыгрыша. Победители выбираются заново из всех участников.
// @Tags giveaways
// @Produce json
// @Param guild_id path int true "Guild ID"
// @Param id path string true "Giveaway ID"
// @Success 200 {object} dto.RerollResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /guilds/{guild_id}/giveaways/{id}/reroll [post]
func (h *GiveawayHandler) reroll(c *gin.Context) {
	guildID, ok := guildParam(c)
	if !ok {
		return
	}

	id := c.Param("id")
	winners, err := h.service.Reroll(c.Request.Context(), guildID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if winners == nil {
		winners = []int64{}
	}
	c.JSON(http.StatusOK, dto.RerollResponse{GiveawayID: id, Winners: winners})
}

// @Summary Участники розыгрыша
// @Tags giveaways
// @Produce json
// @Param guild_id path int true "Guild ID"
// @Param id path string true "Giveaway ID"
// @Success 200 {object} dto.ParticipantsResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /guilds/{guild_id}/giveaways/{id}/participants [get]
func (h *GiveawayHandler) participants(c *gin.Context) {
	guildID, ok := guildParam(c)
	if !ok {
		return
	}

	id := c.Param("id")
	ps, err := h.service.Participants(c.Request.Context(), guildID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if ps == nil {
		ps = []models.Participant{}
	}
	c.JSON(http.StatusOK, dto.ParticipantsResponse{GiveawayID: id, Total: len(ps), Participants: ps})
}

// @Summary Участвовать в розыгрыше
// @Description Пользователь берется из init data. Без авторизации передается user_id в теле.
// @Tags giveaways
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway ID"
// @Param input body dto.JoinRequest false "Только при выключенной авторизации"
// @Success 200 {object} dto.JoinResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/join [post]
func (h *GiveawayHandler) join(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		var input dto.JoinRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
			return
		}
		if input.UserID == 0 {
			_ = c.Error(errors.NewValidationError("user_id", "is required"))
			return
		}
		userID = input.UserID
	}

	id := c.Param("id")
	count, err := h.service.Register(c.Request.Context(), id, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.JoinResponse{GiveawayID: id, UserID: userID, Participants: count})
}

// guildParam парсит guild_id из пути. Ноль недопустим: он отключает проверку гильдии.
func guildParam(c *gin.Context) (int64, bool) {
	guildID, err := strconv.ParseInt(c.Param("guild_id"), 10, 64)
	if err != nil || guildID == 0 {
		_ = c.Error(errors.NewValidationError("guild_id", "must be a non-zero integer"))
		return 0, false
	}
	return guildID, true
}

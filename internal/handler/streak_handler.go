package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/codearena-labs/arena-go-api/internal/service"
	"github.com/codearena-labs/arena-go-api/internal/utils"
)

// StreakHandler manages streak endpoints.
type StreakHandler struct {
	service service.StreakService
	logger  zerolog.Logger
}

// NewStreakHandler builds a streak handler instance.
func NewStreakHandler(service service.StreakService, logger zerolog.Logger) *StreakHandler {
	return &StreakHandler{
		service: service,
		logger:  logger.With().Str("component", "streak_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *StreakHandler) Register(router fiber.Router) {
	router.Get("", h.get)
	router.Post("/freeze", h.useFreeze)
}

func (h *StreakHandler) get(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	response, err := h.service.Get(c.Context(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "streak retrieved", response)
}

func (h *StreakHandler) useFreeze(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	response, err := h.service.UseFreeze(c.Context(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "streak freeze applied", response)
}

func (h *StreakHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNoFreezeAvailable):
		return utils.SendError(c, fiber.StatusConflict, "no streak freeze available")
	case errors.Is(err, service.ErrFreezeAlreadyUsedToday):
		return utils.SendError(c, fiber.StatusConflict, "streak freeze already used today")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

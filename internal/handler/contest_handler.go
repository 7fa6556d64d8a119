package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/codearena-labs/arena-go-api/internal/dto"
	"github.com/codearena-labs/arena-go-api/internal/judge/language"
	"github.com/codearena-labs/arena-go-api/internal/service"
	"github.com/codearena-labs/arena-go-api/internal/utils"
)

// ContestHandler manages contest endpoints.
type ContestHandler struct {
	service service.ContestService
	logger  zerolog.Logger
}

// NewContestHandler builds a contest handler instance.
func NewContestHandler(service service.ContestService, logger zerolog.Logger) *ContestHandler {
	return &ContestHandler{
		service: service,
		logger:  logger.With().Str("component", "contest_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ContestHandler) Register(router fiber.Router) {
	router.Get("/:id", h.get)
	router.Post("/:id/register", h.register)
	router.Post("/:id/problems/:problemID/submissions", h.submit)
	router.Get("/:id/leaderboard", h.leaderboard)
}

func (h *ContestHandler) get(c *fiber.Ctx) error {
	contestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Get(c.Context(), contestID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "contest retrieved", response)
}

func (h *ContestHandler) register(c *fiber.Ctx) error {
	contestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	response, err := h.service.Register(c.Context(), contestID, userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "registered for contest", response)
}

func (h *ContestHandler) submit(c *fiber.Ctx) error {
	contestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	problemID, err := parseUintParam(c, "problemID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.SubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Submit(c.Context(), contestID, problemID, userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission graded", response)
}

func (h *ContestHandler) leaderboard(c *fiber.Ctx) error {
	contestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Leaderboard(c.Context(), contestID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "leaderboard retrieved", response)
}

func (h *ContestHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrContestNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "contest not found")
	case errors.Is(err, service.ErrProblemNotInContest):
		return utils.SendError(c, fiber.StatusNotFound, "problem not in contest")
	case errors.Is(err, service.ErrAlreadyRegistered):
		return utils.SendError(c, fiber.StatusConflict, "already registered")
	case errors.Is(err, service.ErrNotRegistered):
		return utils.SendError(c, fiber.StatusForbidden, "not registered for contest")
	case errors.Is(err, service.ErrContestNotActive):
		return utils.SendError(c, fiber.StatusConflict, "contest not active")
	case errors.Is(err, language.ErrUnsupportedLanguage):
		return utils.SendError(c, fiber.StatusBadRequest, "unsupported language")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

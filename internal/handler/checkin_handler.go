package handler

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/checkin-go-api/internal/dto"
	"github.com/noah-isme/checkin-go-api/internal/middleware"
	"github.com/noah-isme/checkin-go-api/internal/models"
	"github.com/noah-isme/checkin-go-api/internal/service"
	"github.com/noah-isme/checkin-go-api/internal/utils"
)

// CheckInHandler manages attendance recording and retrieval endpoints.
type CheckInHandler struct {
	service   service.CheckInService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCheckInHandler builds a check-in handler instance.
func NewCheckInHandler(service service.CheckInService, validator *validator.Validate, logger zerolog.Logger) *CheckInHandler {
	return &CheckInHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "checkin_handler").Logger(),
	}
}

// Register attaches the check-in routes to the participants group.
func (h *CheckInHandler) Register(router fiber.Router) {
	router.Post("/checkin", middleware.RateLimit("checkin", 60, time.Minute), h.checkIn)
	router.Get("/event/:eventId/date/:date", h.listByDate)
}

// RegisterEventRoutes attaches the event-scoped ledger dump.
func (h *CheckInHandler) RegisterEventRoutes(router fiber.Router) {
	router.Get("/:eventId/checkins", h.listAll)
}

func (h *CheckInHandler) checkIn(c *fiber.Ctx) error {
	var payload dto.CheckInRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	response, err := h.service.CheckIn(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "check-in recorded", response)
}

func (h *CheckInHandler) listByDate(c *fiber.Ctx) error {
	eventID, err := parseUintParam(c, "eventId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	date, err := models.ParseCalendarDate(c.Params("date"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	response, err := h.service.ListByEventAndDate(c.Context(), actorFromContext(c), eventID, date)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "check-ins retrieved", response)
}

func (h *CheckInHandler) listAll(c *fiber.Ctx) error {
	eventID, err := parseUintParam(c, "eventId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.ListByEvent(c.Context(), actorFromContext(c), eventID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "check-ins retrieved", response)
}

func (h *CheckInHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "event not found")
	case errors.Is(err, service.ErrParticipantNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "participant not found")
	case errors.Is(err, service.ErrDuplicateCheckIn):
		return utils.SendError(c, fiber.StatusBadRequest, "participant already checked in today")
	case errors.Is(err, service.ErrAccessDenied):
		return utils.SendError(c, fiber.StatusForbidden, "access denied")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/checkin-go-api/internal/dto"
	"github.com/noah-isme/checkin-go-api/internal/service"
	"github.com/noah-isme/checkin-go-api/internal/utils"
)

// ParticipantHandler manages participant directory endpoints.
type ParticipantHandler struct {
	service   service.ParticipantService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewParticipantHandler builds a participant handler instance.
func NewParticipantHandler(service service.ParticipantService, validator *validator.Validate, logger zerolog.Logger) *ParticipantHandler {
	return &ParticipantHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "participant_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ParticipantHandler) Register(router fiber.Router) {
	router.Post("", h.register)
	router.Post("/search", h.search)
	router.Get("/event/:eventId", h.listByEvent)
	router.Post("/event/:eventId/import", h.importFile)
}

func (h *ParticipantHandler) search(c *fiber.Ctx) error {
	var payload dto.ParticipantSearchRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	participant, err := h.service.Search(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "participant found", participant)
}

func (h *ParticipantHandler) register(c *fiber.Ctx) error {
	var payload dto.ParticipantCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	participant, err := h.service.Register(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "participant registered", participant)
}

func (h *ParticipantHandler) listByEvent(c *fiber.Ctx) error {
	eventID, err := parseUintParam(c, "eventId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	participants, err := h.service.ListByEvent(c.Context(), actorFromContext(c), eventID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "participants retrieved", participants)
}

func (h *ParticipantHandler) importFile(c *fiber.Ctx) error {
	eventID, err := parseUintParam(c, "eventId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	summary, err := h.service.Import(c.Context(), actorFromContext(c), eventID, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "participants imported", summary)
}

func (h *ParticipantHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "event not found")
	case errors.Is(err, service.ErrParticipantNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "participant not found")
	case errors.Is(err, service.ErrRegistryMiss):
		return utils.SendError(c, fiber.StatusNotFound, "id number not found in voter registry")
	case errors.Is(err, service.ErrInvalidImportFile):
		return utils.SendError(c, fiber.StatusBadRequest, "import file must be a CSV document")
	case errors.Is(err, service.ErrAccessDenied):
		return utils.SendError(c, fiber.StatusForbidden, "access denied")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/checkin-go-api/internal/dto"
	"github.com/noah-isme/checkin-go-api/internal/middleware"
	"github.com/noah-isme/checkin-go-api/internal/models"
	"github.com/noah-isme/checkin-go-api/internal/service"
	"github.com/noah-isme/checkin-go-api/internal/utils"
)

// EventHandler manages event lifecycle endpoints.
type EventHandler struct {
	service   service.EventService
	reports   service.ReportService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEventHandler builds an event handler instance.
func NewEventHandler(service service.EventService, reports service.ReportService, validator *validator.Validate, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		service:   service,
		reports:   reports,
		validator: validator,
		logger:    logger.With().Str("component", "event_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *EventHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin), h.create)
	router.Get("/:eventId", h.get)
	router.Delete("/:eventId", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin), h.delete)
	router.Post("/:eventId/assign", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin), h.assign)
	router.Get("/:eventId/report", h.report)
}

func (h *EventHandler) list(c *fiber.Ctx) error {
	events, err := h.service.List(c.Context(), actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "events retrieved", events)
}

func (h *EventHandler) create(c *fiber.Ctx) error {
	var payload dto.EventCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	event, err := h.service.Create(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "event created", event)
}

func (h *EventHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "eventId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	event, err := h.service.Get(c.Context(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "event retrieved", event)
}

func (h *EventHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "eventId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "event deleted", nil)
}

func (h *EventHandler) assign(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "eventId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.EventAssignRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	if err := h.service.AssignUsers(c.Context(), actorFromContext(c), id, payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "users assigned", nil)
}

func (h *EventHandler) report(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "eventId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	page, err := h.reports.RenderEventReport(c.Context(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(page)
}

func (h *EventHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "event not found")
	case errors.Is(err, service.ErrNoAssignableUsers):
		return utils.SendError(c, fiber.StatusBadRequest, "no assignable users found")
	case errors.Is(err, service.ErrAccessDenied):
		return utils.SendError(c, fiber.StatusForbidden, "access denied")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/checkin-go-api/internal/middleware"
	"github.com/noah-isme/checkin-go-api/internal/models"
	"github.com/noah-isme/checkin-go-api/internal/service"
	"github.com/noah-isme/checkin-go-api/internal/utils"
)

// AnalyticsHandler manages aggregation and reporting endpoints.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler builds an analytics handler instance.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register attaches the routes to the analytics group.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/hierarchy/:eventId", h.hierarchy)
	router.Get("/staff", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin), h.staffPerformance)
	router.Get("/overview", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin), h.overview)
}

// RegisterEventRoutes attaches the event-scoped statistics aggregate.
func (h *AnalyticsHandler) RegisterEventRoutes(router fiber.Router) {
	router.Get("/:eventId/statistics", h.eventStatistics)
}

func (h *AnalyticsHandler) eventStatistics(c *fiber.Ctx) error {
	eventID, err := parseUintParam(c, "eventId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := h.service.EventStatistics(c.Context(), actorFromContext(c), eventID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "event statistics retrieved", stats)
}

func (h *AnalyticsHandler) hierarchy(c *fiber.Ctx) error {
	eventID, err := parseUintParam(c, "eventId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	level := c.Query("level", "county")
	parentName := c.Query("parentName")

	breakdown, err := h.service.Hierarchy(c.Context(), actorFromContext(c), eventID, level, parentName)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "hierarchy breakdown retrieved", breakdown)
}

func (h *AnalyticsHandler) staffPerformance(c *fiber.Ctx) error {
	eventID, err := parseQueryUint(c, "eventId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	performance, err := h.service.StaffPerformance(c.Context(), eventID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "staff performance retrieved", performance)
}

func (h *AnalyticsHandler) overview(c *fiber.Ctx) error {
	overview, err := h.service.Overview(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "overview retrieved", overview)
}

func (h *AnalyticsHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "event not found")
	case errors.Is(err, service.ErrInvalidHierarchyLevel):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid hierarchy level")
	case errors.Is(err, service.ErrAccessDenied):
		return utils.SendError(c, fiber.StatusForbidden, "access denied")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/checkin-go-api/internal/models"
)

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Params(key))
	if value == "" {
		return 0, errors.New("missing " + key)
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return uint(parsed), nil
}

func parseQueryUint(c *fiber.Ctx, key string) (*uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	result := uint(parsed)
	return &result, nil
}

// actorFromContext rebuilds the caller identity bound by the JWT middleware.
// The claims carry everything the scoping policy needs; no user row is read.
func actorFromContext(c *fiber.Ctx) models.User {
	actor := models.User{}
	if id, ok := c.Locals("user_id").(uint); ok {
		actor.ID = id
	}
	if role, ok := c.Locals("user_role").(models.Role); ok {
		actor.Role = role
	}
	if adminID, ok := c.Locals("admin_id").(uint); ok {
		actor.AdminID = &adminID
	}
	if name, ok := c.Locals("user_name").(string); ok {
		actor.Name = name
	}
	return actor
}

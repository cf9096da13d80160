// Package templates implements the REST API handlers for asset dashboard templates.
package templates

import (
	"encoding/json"
	"strings"

	events "github.com/clonos/dashboard-backend/events/modules/dashboards"
	"github.com/clonos/dashboard-backend/restapi/modules/dashboards"
	"github.com/clonos/dashboard-backend/util"
	"github.com/gofiber/fiber/v2"
)

// InstantiateRequest optionally overrides the new dashboard's name and owner.
type InstantiateRequest struct {
	Name   string `json:"name"`
	UserID string `json:"userId"`
}

// List returns the template catalogue.
func List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": util.Templates})
}

// Instantiate builds a dashboard from the template named by :id and stores it.
func Instantiate(svc *dashboards.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tmpl, ok := util.FindTemplate(c.Params("id"))
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Template not found",
			})
		}

		var req InstantiateRequest
		if body := c.Body(); len(strings.TrimSpace(string(body))) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"error":   "Invalid request body",
				})
			}
		}

		name := strings.TrimSpace(svc.Validator.Sanitize(req.Name))
		d := util.BuildFromTemplate(tmpl, name, svc.ResolveUser(c, req.UserID))
		return svc.Save(c, d, events.EventCreated, "Failed to create dashboard from template", "Dashboard created from template")
	}
}

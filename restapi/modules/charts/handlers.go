// Package charts implements the REST API handlers for chart helpers: the type
// catalogue, color themes, default and sample chart data and CSV parsing.
package charts

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/clonos/dashboard-backend/model"
	"github.com/clonos/dashboard-backend/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// MaxColors caps the count query parameter of the palette endpoints.
const MaxColors = 256

// csvRequest is the JSON form of a CSV upload.
type csvRequest struct {
	CSV string `json:"csv"`
}

// ListTypes returns the chart type catalogue.
func ListTypes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": util.ChartCatalogue})
}

// ListThemes returns every color theme.
func ListThemes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": util.ColorThemes})
}

// ThemeColors returns count colors from the theme, cycling its palette.
func ThemeColors(c *fiber.Ctx) error {
	theme, count, err := themeQuery(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"theme":  theme.Name,
			"colors": util.ThemeColors(theme.Name, count),
		},
	})
}

// ThemeGradient returns count colors blended across the theme.
func ThemeGradient(c *fiber.Ctx) error {
	theme, count, err := themeQuery(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"theme":  theme.Name,
			"colors": util.ThemeGradient(theme.Name, count),
		},
	})
}

// themeQuery resolves the :name parameter and the count query. Unknown names
// fall back to the default theme; a missing count means the palette length.
func themeQuery(c *fiber.Ctx) (util.ColorTheme, int, error) {
	theme, _ := util.FindTheme(c.Params("name"))
	count := c.QueryInt("count", len(theme.Colors))
	if count < 0 || count > MaxColors {
		return theme, 0, fiber.NewError(fiber.StatusBadRequest, "count must be between 0 and 256")
	}
	return theme, count, nil
}

// DefaultChart returns the chart a new widget of the given type starts with.
func DefaultChart(c *fiber.Ctx) error {
	chartType := model.ChartType(c.Params("type"))
	if !chartType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Unsupported chart type",
		})
	}
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		id = "widget-" + uuid.NewString()
	}
	return c.JSON(fiber.Map{"success": true, "data": util.DefaultChartData(chartType, id)})
}

// SampleData returns example labels and datasets for a chart type.
func SampleData(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    util.SampleData(model.ChartType(c.Params("type"))),
	})
}

// ParseCSV turns an uploaded label,value CSV into chart labels and data. The
// body is either raw text or JSON of the form {"csv": "..."}.
func ParseCSV(c *fiber.Ctx) error {
	text := string(c.Body())
	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		var req csvRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid request body",
			})
		}
		text = req.CSV
	}

	series, err := util.ParseCSVData(text)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, util.ErrNoCSVData) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"success": true, "data": series})
}

package dashboards

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clonos/dashboard-backend/database"
	events "github.com/clonos/dashboard-backend/events/modules/dashboards"
	"github.com/clonos/dashboard-backend/model"
	"github.com/clonos/dashboard-backend/util"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// List returns one page of the user's dashboards without widgets.
func (s *Service) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := util.ClampInt(c.QueryInt("limit", DefaultLimit), 1, MaxLimit)
		offset := c.QueryInt("offset", 0)
		if offset < 0 {
			offset = 0
		}
		userID := s.ResolveUser(c, c.Query("userId"))

		dashboards, total, err := s.Store.ListDashboards(c.UserContext(), database.ListOptions{
			UserID: userID,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return s.storeError(c, err, "Failed to fetch dashboards")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"data":    dashboards,
			"pagination": model.Pagination{
				Total:  total,
				Limit:  limit,
				Offset: offset,
			},
		})
	}
}

// Get returns a single dashboard with its widgets.
func (s *Service) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, done, err := s.lookup(c, "Failed to fetch dashboard")
		if done {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": d})
	}
}

// Create stores a new dashboard.
func (s *Service) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.DashboardInput
		if err := decodeBody(c, &input); err != nil {
			return invalidBody(c)
		}

		var errs []model.FieldError
		name := ""
		if input.Name != nil {
			name = strings.TrimSpace(s.Validator.Sanitize(*input.Name))
		}
		if name == "" {
			errs = append(errs, model.FieldError{Field: "name", Message: "Dashboard name is required"})
		}
		body, contentErrs := s.decodeContent(input.Layout, input.Widgets, false)
		if errs = append(errs, contentErrs...); len(errs) > 0 {
			return validationFailed(c, errs)
		}

		description := ""
		if input.Description != nil {
			description = *input.Description
		}
		d := model.NewDashboard(name, description, s.ResolveUser(c, input.UserID))
		d.Layout = body.Layout
		d.Widgets = body.Widgets
		s.Validator.SanitizeDashboard(d)

		return s.Save(c, d, events.EventCreated, "Failed to create dashboard", "Dashboard created successfully")
	}
}

// Update applies the provided fields to an existing dashboard.
func (s *Service) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var errs []model.FieldError
		if !s.Store.ValidID(c.Params("id")) {
			errs = append(errs, model.FieldError{Field: "id", Message: "Invalid dashboard ID"})
		}

		var input model.DashboardInput
		if err := decodeBody(c, &input); err != nil {
			return invalidBody(c)
		}

		name := ""
		if input.Name != nil {
			name = strings.TrimSpace(s.Validator.Sanitize(*input.Name))
			if name == "" {
				errs = append(errs, model.FieldError{Field: "name", Message: "Dashboard name cannot be empty"})
			}
		}
		body, contentErrs := s.decodeContent(input.Layout, input.Widgets, false)
		if errs = append(errs, contentErrs...); len(errs) > 0 {
			return validationFailed(c, errs)
		}

		d, done, err := s.lookup(c, "Failed to update dashboard")
		if done {
			return err
		}

		if input.Name != nil {
			d.Name = name
		}
		if input.Description != nil {
			d.Description = *input.Description
		}
		if body.HasLayout {
			d.Layout = body.Layout
		}
		if body.HasWidgets {
			d.Widgets = body.Widgets
		}
		s.Validator.SanitizeDashboard(d)

		if err := s.Store.UpdateDashboard(c.UserContext(), d); err != nil {
			return s.storeError(c, err, "Failed to update dashboard")
		}
		s.publish(events.EventUpdated, events.RefFor(d))

		return c.JSON(fiber.Map{
			"success": true,
			"data":    d,
			"message": "Dashboard updated successfully",
		})
	}
}

// Delete removes a dashboard.
func (s *Service) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !s.Store.ValidID(id) {
			return validationFailed(c, []model.FieldError{{Field: "id", Message: "Invalid dashboard ID"}})
		}
		if err := s.Store.DeleteDashboard(c.UserContext(), id); err != nil {
			return s.storeError(c, err, "Failed to delete dashboard")
		}
		s.Logger.Info("Dashboard deleted", zap.String("id", id))
		s.publish(events.EventDeleted, events.DashboardRef{ID: id})

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Dashboard deleted successfully",
		})
	}
}

// Duplicate stores a copy of a dashboard named "<name> (Copy)".
func (s *Service) Duplicate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		src, done, err := s.lookup(c, "Failed to duplicate dashboard")
		if done {
			return err
		}

		dup := src.Clone()
		dup.Name = src.Name + " (Copy)"
		if err := s.Store.CreateDashboard(c.UserContext(), dup); err != nil {
			return s.storeError(c, err, "Failed to duplicate dashboard")
		}

		ref := events.RefFor(dup)
		ref.SourceID = src.ID
		s.publish(events.EventDuplicated, ref)

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"data":    dup,
			"message": "Dashboard duplicated successfully",
		})
	}
}

// Export returns the dashboard as a downloadable JSON document.
func (s *Service) Export() fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, done, err := s.lookup(c, "Failed to export dashboard")
		if done {
			return err
		}

		filename := util.SanitizeFilename(d.Name) + ".json"
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.JSON(model.NewExportDocument(d))
	}
}

// importData is the exported document inside an import request.
type importData struct {
	Name          *string         `json:"name"`
	Description   string          `json:"description"`
	Layout        json.RawMessage `json:"layout"`
	Widgets       json.RawMessage `json:"widgets"`
	SchemaVersion string          `json:"schemaVersion"`
}

// Import stores a dashboard from a previously exported document.
func (s *Service) Import() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.ImportRequest
		if err := decodeBody(c, &req); err != nil {
			return invalidBody(c)
		}
		if !present(req.Data) || firstByte(req.Data) != '{' {
			return validationFailed(c, []model.FieldError{{Field: "data", Message: "Import data must be an object"}})
		}

		var data importData
		if err := json.Unmarshal(req.Data, &data); err != nil {
			return validationFailed(c, []model.FieldError{{Field: "data", Message: fmt.Sprintf("Invalid import data: %v", err)}})
		}

		var errs []model.FieldError
		name := ""
		if data.Name != nil {
			name = strings.TrimSpace(s.Validator.Sanitize(*data.Name))
		}
		if name == "" {
			errs = append(errs, model.FieldError{Field: "data.name", Message: "Dashboard name is required"})
		}
		body, contentErrs := s.decodeContent(data.Layout, data.Widgets, true)
		for _, fe := range contentErrs {
			fe.Field = "data." + fe.Field
			errs = append(errs, fe)
		}
		if err := util.CheckSchemaVersion(data.SchemaVersion); err != nil {
			errs = append(errs, model.FieldError{Field: "data.schemaVersion", Message: err.Error()})
		}
		if len(errs) > 0 {
			return validationFailed(c, errs)
		}

		d := model.NewDashboard(name, data.Description, s.ResolveUser(c, req.UserID))
		d.Layout = body.Layout
		d.Widgets = body.Widgets
		s.Validator.SanitizeDashboard(d)

		return s.Save(c, d, events.EventImported, "Failed to import dashboard", "Dashboard imported successfully")
	}
}

// decodeBody unmarshals a JSON body; an empty body decodes as {}.
func decodeBody(c *fiber.Ctx, v interface{}) error {
	raw := c.Body()
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

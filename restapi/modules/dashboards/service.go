// Package dashboards implements the REST API handlers for dashboard operations.
package dashboards

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clonos/dashboard-backend/database"
	events "github.com/clonos/dashboard-backend/events/modules/dashboards"
	"github.com/clonos/dashboard-backend/model"
	"github.com/clonos/dashboard-backend/restapi/modules/auth"
	"github.com/clonos/dashboard-backend/util"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// List paging bounds
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

const publishTimeout = 5 * time.Second

// Service bundles what the dashboard handlers need.
type Service struct {
	Store         database.DashboardStore
	Events        events.Publisher
	Validator     *util.Validator
	Logger        *zap.Logger
	DefaultUserID string
}

// NewService fills in defaults for nil collaborators.
func NewService(store database.DashboardStore, publisher events.Publisher, logger *zap.Logger, defaultUserID string) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultUserID == "" {
		defaultUserID = model.DefaultUserID
	}
	return &Service{
		Store:         store,
		Events:        publisher,
		Validator:     util.NewValidator(),
		Logger:        logger,
		DefaultUserID: defaultUserID,
	}
}

// ResolveUser picks the owner for a request: the authenticated user, else the
// explicit userId, else the default user.
func (s *Service) ResolveUser(c *fiber.Ctx, explicit string) string {
	if id := auth.UserID(c); id != "" {
		return id
	}
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	return s.DefaultUserID
}

// publish emits an event without failing the request.
func (s *Service) publish(eventType string, ref events.DashboardRef) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.Events.Publish(ctx, eventType, ref); err != nil {
		s.Logger.Warn("Failed to publish dashboard event",
			zap.String("event", eventType),
			zap.String("id", ref.ID),
			zap.Error(err))
	}
}

// content is the decoded form of the optional layout and widgets fields.
type content struct {
	Layout     []model.LayoutItem
	Widgets    map[string]model.ChartData
	HasLayout  bool
	HasWidgets bool
}

// present reports whether the field appeared in the body. An absent field
// decodes to an empty RawMessage; an explicit null is kept as "null" and fails
// the shape checks.
func present(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) > 0
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// decodeContent checks the JSON shape of layout and widgets, decodes them and
// runs field validation. required makes both fields mandatory.
func (s *Service) decodeContent(layoutRaw, widgetsRaw json.RawMessage, required bool) (content, []model.FieldError) {
	var out content
	var errs []model.FieldError

	switch {
	case present(layoutRaw):
		if firstByte(layoutRaw) != '[' {
			errs = append(errs, model.FieldError{Field: "layout", Message: "Layout must be an array"})
			break
		}
		if err := json.Unmarshal(layoutRaw, &out.Layout); err != nil {
			errs = append(errs, model.FieldError{Field: "layout", Message: fmt.Sprintf("Invalid layout: %v", err)})
			break
		}
		out.HasLayout = true
		for i := range out.Layout {
			errs = append(errs, s.Validator.Check(fmt.Sprintf("layout[%d]", i), &out.Layout[i])...)
		}
	case required:
		errs = append(errs, model.FieldError{Field: "layout", Message: "Layout must be an array"})
	}

	switch {
	case present(widgetsRaw):
		if firstByte(widgetsRaw) != '{' {
			errs = append(errs, model.FieldError{Field: "widgets", Message: "Widgets must be an object"})
			break
		}
		if err := json.Unmarshal(widgetsRaw, &out.Widgets); err != nil {
			errs = append(errs, model.FieldError{Field: "widgets", Message: fmt.Sprintf("Invalid widgets: %v", err)})
			break
		}
		out.HasWidgets = true
		for id := range out.Widgets {
			w := out.Widgets[id]
			errs = append(errs, s.Validator.Check("widgets."+id, &w)...)
		}
	case required:
		errs = append(errs, model.FieldError{Field: "widgets", Message: "Widgets must be an object"})
	}

	if out.Layout == nil {
		out.Layout = []model.LayoutItem{}
	}
	if out.Widgets == nil {
		out.Widgets = map[string]model.ChartData{}
	}
	return out, errs
}

func validationFailed(c *fiber.Ctx, errs []model.FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"errors":  errs,
	})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   "Invalid request body",
	})
}

// storeError translates a storage error into the matching response.
func (s *Service) storeError(c *fiber.Ctx, err error, summary string) error {
	switch {
	case errors.Is(err, database.ErrInvalidID):
		return validationFailed(c, []model.FieldError{{Field: "id", Message: "Invalid dashboard ID"}})
	case errors.Is(err, database.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Dashboard not found",
		})
	default:
		s.Logger.Error(summary, zap.String("id", c.Params("id")), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   summary,
			"message": err.Error(),
		})
	}
}

// lookup loads the dashboard named by the :id route parameter. When done is
// true the response has already been written and err is the handler result.
func (s *Service) lookup(c *fiber.Ctx, summary string) (d *model.Dashboard, done bool, err error) {
	id := c.Params("id")
	if !s.Store.ValidID(id) {
		return nil, true, validationFailed(c, []model.FieldError{{Field: "id", Message: "Invalid dashboard ID"}})
	}
	d, err = s.Store.GetDashboard(c.UserContext(), id)
	if err != nil {
		return nil, true, s.storeError(c, err, summary)
	}
	return d, false, nil
}

// Save stores d as a new dashboard, publishes eventType and writes the 201
// response. summary is the error reported when the store fails.
func (s *Service) Save(c *fiber.Ctx, d *model.Dashboard, eventType, summary, message string) error {
	if err := s.Store.CreateDashboard(c.UserContext(), d); err != nil {
		return s.storeError(c, err, summary)
	}
	s.Logger.Info("Dashboard stored",
		zap.String("event", eventType),
		zap.String("id", d.ID),
		zap.String("user", d.UserID))
	s.publish(eventType, events.RefFor(d))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    d,
		"message": message,
	})
}

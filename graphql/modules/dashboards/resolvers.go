package dashboards

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/clonos/dashboard-backend/database"
	"github.com/clonos/dashboard-backend/model"
	"github.com/clonos/dashboard-backend/restapi/modules/auth"
	"github.com/clonos/dashboard-backend/util"
)

// List paging bounds, shared with the REST list endpoint
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Resolver answers dashboard queries from a store.
type Resolver struct {
	Store         database.DashboardStore
	DefaultUserID string
}

// owner picks the authenticated user, else the explicit argument, else the default.
func (r *Resolver) owner(ctx context.Context, explicit string) string {
	if id := auth.UserIDFromContext(ctx); id != "" {
		return id
	}
	if explicit != "" {
		return explicit
	}
	if r.DefaultUserID != "" {
		return r.DefaultUserID
	}
	return model.DefaultUserID
}

// ResolveDashboards returns one page of the user's dashboards.
func (r *Resolver) ResolveDashboards(ctx context.Context, userID string, limit, offset int) (interface{}, error) {
	limit = util.ClampInt(limit, 1, MaxLimit)
	if offset < 0 {
		offset = 0
	}
	items, total, err := r.Store.ListDashboards(ctx, database.ListOptions{
		UserID: r.owner(ctx, userID),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}

	out := make([]map[string]interface{}, 0, len(items))
	for _, s := range items {
		out = append(out, summaryToMap(s))
	}
	return map[string]interface{}{
		"items":  out,
		"total":  int(total),
		"limit":  limit,
		"offset": offset,
	}, nil
}

// ResolveDashboard returns a single dashboard, or nil when it does not exist.
func (r *Resolver) ResolveDashboard(ctx context.Context, id string) (interface{}, error) {
	if !r.Store.ValidID(id) {
		return nil, database.ErrInvalidID
	}
	d, err := r.Store.GetDashboard(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return dashboardToMap(d), nil
}

// ResolveColorThemes lists every palette.
func ResolveColorThemes() (interface{}, error) {
	out := make([]map[string]interface{}, 0, len(util.ColorThemes))
	for _, t := range util.ColorThemes {
		out = append(out, map[string]interface{}{
			"name":   t.Name,
			"colors": t.Colors,
		})
	}
	return out, nil
}

// ResolveThemeColors returns count colors of a theme, cycled or blended.
func ResolveThemeColors(name string, count int, gradient bool) (interface{}, error) {
	count = util.ClampInt(count, 0, 256)
	if gradient {
		return util.ThemeGradient(name, count), nil
	}
	return util.ThemeColors(name, count), nil
}

// ResolveChartTypes lists the chart type catalogue.
func ResolveChartTypes() (interface{}, error) {
	out := make([]map[string]interface{}, 0, len(util.ChartCatalogue))
	for _, info := range util.ChartCatalogue {
		out = append(out, map[string]interface{}{
			"type": string(info.Type),
			"name": info.Name,
			"use":  info.Use,
		})
	}
	return out, nil
}

// ResolveTemplates lists the asset dashboard templates.
func ResolveTemplates() (interface{}, error) {
	out := make([]map[string]interface{}, 0, len(util.Templates))
	for _, t := range util.Templates {
		charts := make([]map[string]interface{}, 0, len(t.Charts))
		for _, c := range t.Charts {
			charts = append(charts, map[string]interface{}{
				"type":  string(c.Type),
				"title": c.Title,
				"data":  c.Source,
			})
		}
		out = append(out, map[string]interface{}{
			"id":          t.ID,
			"name":        t.Name,
			"description": t.Description,
			"colorTheme":  t.Theme,
			"charts":      charts,
		})
	}
	return out, nil
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func layoutToMaps(layout []model.LayoutItem) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(layout))
	for _, item := range layout {
		out = append(out, map[string]interface{}{
			"i": item.I,
			"x": item.X,
			"y": item.Y,
			"w": item.W,
			"h": item.H,
		})
	}
	return out
}

func summaryToMap(s model.DashboardSummary) map[string]interface{} {
	return map[string]interface{}{
		"id":          s.ID,
		"name":        s.Name,
		"description": s.Description,
		"userId":      s.UserID,
		"layout":      layoutToMaps(s.Layout),
		"widgets":     []map[string]interface{}{},
		"createdAt":   timestamp(s.CreatedAt),
		"updatedAt":   timestamp(s.UpdatedAt),
	}
}

// dashboardToMap flattens widgets into a list ordered by layout position,
// then by id for widgets missing from the layout.
func dashboardToMap(d *model.Dashboard) map[string]interface{} {
	m := summaryToMap(d.Summary())

	seen := make(map[string]bool, len(d.Widgets))
	widgets := make([]map[string]interface{}, 0, len(d.Widgets))
	for _, item := range d.Layout {
		if w, ok := d.Widgets[item.I]; ok && !seen[item.I] {
			seen[item.I] = true
			widgets = append(widgets, widgetToMap(item.I, w))
		}
	}
	rest := make([]string, 0)
	for id := range d.Widgets {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		widgets = append(widgets, widgetToMap(id, d.Widgets[id]))
	}

	m["widgets"] = widgets
	m["widgetCount"] = len(widgets)
	return m
}

func widgetToMap(key string, w model.ChartData) map[string]interface{} {
	id := w.ID
	if id == "" {
		id = key
	}
	datasets := make([]map[string]interface{}, 0, len(w.Datasets))
	for _, ds := range w.Datasets {
		datasets = append(datasets, datasetToMap(ds))
	}
	return map[string]interface{}{
		"id":         id,
		"type":       string(w.Type),
		"title":      w.Title,
		"labels":     w.Labels,
		"datasets":   datasets,
		"colorTheme": w.ColorTheme,
	}
}

func datasetToMap(ds model.Dataset) map[string]interface{} {
	values := make([]interface{}, 0, len(ds.Data))
	points := make([]map[string]interface{}, 0)
	for _, p := range ds.Data {
		switch {
		case p.IsPoint():
			points = append(points, map[string]interface{}{"x": floatOrNil(p.X), "y": floatOrNil(p.Y)})
		default:
			values = append(values, floatOrNil(p.Value))
		}
	}

	m := map[string]interface{}{
		"label":  ds.Label,
		"data":   values,
		"points": points,
	}
	if ds.BackgroundColor != nil {
		m["backgroundColor"] = ds.BackgroundColor.Colors
	}
	if ds.BorderColor != nil {
		m["borderColor"] = ds.BorderColor.Colors
	}
	if ds.BorderWidth != nil {
		m["borderWidth"] = *ds.BorderWidth
	}
	return m
}

func floatOrNil(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

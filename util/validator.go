//revive:disable-next-line:var-naming
package util

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"strings"

	"github.com/clonos/dashboard-backend/model"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// Validator validates dashboard payloads and strips markup from user text.
type Validator struct {
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
}

// NewValidator builds a Validator that reports fields by their JSON names.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("charttype", func(fl validator.FieldLevel) bool {
		return model.ChartType(fl.Field().String()).Valid()
	})

	return &Validator{
		validate:  v,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Check validates s and returns one FieldError per failed rule. Field paths
// are prefixed with prefix, e.g. "layout[2]".
func (v *Validator) Check(prefix string, s interface{}) []model.FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []model.FieldError{{Field: prefix, Message: err.Error()}}
	}

	out := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.Index(path, "."); i >= 0 {
			path = path[i+1:]
		}
		if prefix != "" {
			path = prefix + "." + path
		}
		out = append(out, model.FieldError{Field: path, Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "charttype":
		names := make([]string, len(model.ChartTypes))
		for i, t := range model.ChartTypes {
			names[i] = string(t)
		}
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.Join(names, ", "))
	default:
		return fmt.Sprintf("%s failed the %s rule", fe.Field(), fe.Tag())
	}
}

// maxSanitizePasses bounds how many layers of entity encoding are peeled off.
const maxSanitizePasses = 8

// Sanitize removes all HTML from s. Entities are decoded afterwards so plain
// text such as "R&D" is stored as typed; the frontend escapes on render.
// Decoding can expose markup written as entities, so passes repeat until the
// text stops changing. Input still changing after the last pass is returned
// in its escaped form.
func (v *Validator) Sanitize(s string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		out := html.UnescapeString(v.sanitizer.Sanitize(s))
		if out == s {
			return out
		}
		s = out
	}
	return v.sanitizer.Sanitize(s)
}

// SanitizeDashboard strips markup from every user-visible string of d.
func (v *Validator) SanitizeDashboard(d *model.Dashboard) {
	d.Name = strings.TrimSpace(v.Sanitize(d.Name))
	d.Description = v.Sanitize(d.Description)
	for id, w := range d.Widgets {
		v.SanitizeChart(&w)
		d.Widgets[id] = w
	}
}

// SanitizeChart strips markup from the chart's title and labels and
// canonicalises hex colors to #RRGGBB.
func (v *Validator) SanitizeChart(c *model.ChartData) {
	c.Title = v.Sanitize(c.Title)
	for i, l := range c.Labels {
		c.Labels[i] = v.Sanitize(l)
	}
	for i := range c.Datasets {
		ds := &c.Datasets[i]
		ds.Label = v.Sanitize(ds.Label)
		v.sanitizeColors(ds.BackgroundColor)
		v.sanitizeColors(ds.BorderColor)
	}
}

func (v *Validator) sanitizeColors(spec *model.ColorSpec) {
	if spec == nil {
		return
	}
	for i, c := range spec.Colors {
		if hex, ok := NormalizeHexColor(c); ok {
			spec.Colors[i] = hex
			continue
		}
		spec.Colors[i] = v.Sanitize(c)
	}
}

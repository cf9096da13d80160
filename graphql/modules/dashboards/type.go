// Package dashboards defines the GraphQL types and queries for stored
// dashboards and the chart helpers.
package dashboards

import (
	"github.com/graphql-go/graphql"
)

// PointType is one {x, y} entry of a scatter dataset
var PointType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Point",
	Fields: graphql.Fields{
		"x": &graphql.Field{Type: graphql.Float},
		"y": &graphql.Field{Type: graphql.Float},
	},
})

// DatasetType is one series of a chart. Plain values are listed in data,
// scatter pairs in points.
var DatasetType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Dataset",
	Fields: graphql.Fields{
		"label":           &graphql.Field{Type: graphql.String},
		"data":            &graphql.Field{Type: graphql.NewList(graphql.Float)},
		"points":          &graphql.Field{Type: graphql.NewList(PointType)},
		"backgroundColor": &graphql.Field{Type: graphql.NewList(graphql.String)},
		"borderColor":     &graphql.Field{Type: graphql.NewList(graphql.String)},
		"borderWidth":     &graphql.Field{Type: graphql.Float},
	},
})

// WidgetType is a chart placed on a dashboard
var WidgetType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Widget",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.String},
		"type":       &graphql.Field{Type: graphql.String},
		"title":      &graphql.Field{Type: graphql.String},
		"labels":     &graphql.Field{Type: graphql.NewList(graphql.String)},
		"datasets":   &graphql.Field{Type: graphql.NewList(DatasetType)},
		"colorTheme": &graphql.Field{Type: graphql.String},
	},
})

// LayoutItemType is a widget's grid position
var LayoutItemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "LayoutItem",
	Fields: graphql.Fields{
		"i": &graphql.Field{Type: graphql.String},
		"x": &graphql.Field{Type: graphql.Int},
		"y": &graphql.Field{Type: graphql.Int},
		"w": &graphql.Field{Type: graphql.Int},
		"h": &graphql.Field{Type: graphql.Int},
	},
})

// DashboardType is a stored dashboard. widgets is empty in list results.
var DashboardType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Dashboard",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.String},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"userId":      &graphql.Field{Type: graphql.String},
		"layout":      &graphql.Field{Type: graphql.NewList(LayoutItemType)},
		"widgets":     &graphql.Field{Type: graphql.NewList(WidgetType)},
		"widgetCount": &graphql.Field{Type: graphql.Int},
		"createdAt":   &graphql.Field{Type: graphql.String},
		"updatedAt":   &graphql.Field{Type: graphql.String},
	},
})

// DashboardPageType is one page of the dashboard list
var DashboardPageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DashboardPage",
	Fields: graphql.Fields{
		"items":  &graphql.Field{Type: graphql.NewList(DashboardType)},
		"total":  &graphql.Field{Type: graphql.Int},
		"limit":  &graphql.Field{Type: graphql.Int},
		"offset": &graphql.Field{Type: graphql.Int},
	},
})

// ColorThemeType is a named palette
var ColorThemeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ColorTheme",
	Fields: graphql.Fields{
		"name":   &graphql.Field{Type: graphql.String},
		"colors": &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})

// ChartTypeInfoType describes a chart type
var ChartTypeInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ChartTypeInfo",
	Fields: graphql.Fields{
		"type": &graphql.Field{Type: graphql.String},
		"name": &graphql.Field{Type: graphql.String},
		"use":  &graphql.Field{Type: graphql.String},
	},
})

// TemplateChartType is one chart slot of a template
var TemplateChartType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TemplateChart",
	Fields: graphql.Fields{
		"type":  &graphql.Field{Type: graphql.String},
		"title": &graphql.Field{Type: graphql.String},
		"data":  &graphql.Field{Type: graphql.String},
	},
})

// TemplateType is an asset dashboard template
var TemplateType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DashboardTemplate",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.String},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"colorTheme":  &graphql.Field{Type: graphql.String},
		"charts":      &graphql.Field{Type: graphql.NewList(TemplateChartType)},
	},
})

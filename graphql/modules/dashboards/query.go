package dashboards

import (
	"github.com/graphql-go/graphql"
)

// GetQueryFields returns the dashboard queries to be mounted in the root schema
func GetQueryFields(r *Resolver) graphql.Fields {
	return graphql.Fields{
		"dashboards": &graphql.Field{
			Type: DashboardPageType,
			Args: graphql.FieldConfigArgument{
				"userId": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: DefaultLimit},
				"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				userID, _ := p.Args["userId"].(string)
				limit, _ := p.Args["limit"].(int)
				offset, _ := p.Args["offset"].(int)
				return r.ResolveDashboards(p.Context, userID, limit, offset)
			},
		},
		"dashboard": &graphql.Field{
			Type: DashboardType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				id, _ := p.Args["id"].(string)
				return r.ResolveDashboard(p.Context, id)
			},
		},
		"colorThemes": &graphql.Field{
			Type: graphql.NewList(ColorThemeType),
			Resolve: func(_ graphql.ResolveParams) (interface{}, error) {
				return ResolveColorThemes()
			},
		},
		"themeColors": &graphql.Field{
			Type: graphql.NewList(graphql.String),
			Args: graphql.FieldConfigArgument{
				"name":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"count":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 6},
				"gradient": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				name, _ := p.Args["name"].(string)
				count, _ := p.Args["count"].(int)
				gradient, _ := p.Args["gradient"].(bool)
				return ResolveThemeColors(name, count, gradient)
			},
		},
		"chartTypes": &graphql.Field{
			Type: graphql.NewList(ChartTypeInfoType),
			Resolve: func(_ graphql.ResolveParams) (interface{}, error) {
				return ResolveChartTypes()
			},
		},
		"templates": &graphql.Field{
			Type: graphql.NewList(TemplateType),
			Resolve: func(_ graphql.ResolveParams) (interface{}, error) {
				return ResolveTemplates()
			},
		},
	}
}

// Package graphql assembles the read-only GraphQL schema.
package graphql

import (
	"github.com/clonos/dashboard-backend/database"
	"github.com/clonos/dashboard-backend/graphql/modules/dashboards"
	"github.com/graphql-go/graphql"
)

// CreateSchema builds the root query over the given store.
func CreateSchema(store database.DashboardStore, defaultUserID string) (graphql.Schema, error) {
	resolver := &dashboards.Resolver{Store: store, DefaultUserID: defaultUserID}

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: dashboards.GetQueryFields(resolver),
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: rootQuery,
	})
}

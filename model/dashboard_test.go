package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestDataPointJSON(t *testing.T) {
	var ds Dataset
	require.NoError(t, json.Unmarshal([]byte(`{"label":"s","data":[1,2.5,null,{"x":3,"y":4}]}`), &ds))
	require.Len(t, ds.Data, 4)
	assert.Equal(t, 2.5, *ds.Data[1].Value)
	assert.Nil(t, ds.Data[2].Value)
	assert.True(t, ds.Data[3].IsPoint())

	out, err := json.Marshal(ds.Data)
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2.5,null,{"x":3,"y":4}]`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"data":["seven"]}`), &ds))
}

func TestColorSpecKeepsForm(t *testing.T) {
	var ds Dataset
	require.NoError(t, json.Unmarshal([]byte(`{"backgroundColor":["#111"],"borderColor":"#222"}`), &ds))
	assert.True(t, ds.BackgroundColor.List)
	assert.False(t, ds.BorderColor.List)

	out, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"","data":null,"backgroundColor":["#111"],"borderColor":"#222"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"borderColor":42}`), &ds))
}

func TestDatasetBSONMatchesJSONShape(t *testing.T) {
	ds := Dataset{
		Label:           "s",
		Data:            []DataPoint{Value(12), {}, Point(1, 2)},
		BackgroundColor: ColorList("#111", "#222"),
		BorderColor:     SingleColor("#333"),
	}
	raw, err := bson.Marshal(ds)
	require.NoError(t, err)

	doc := bson.Raw(raw)
	assert.Equal(t, 12.0, doc.Lookup("data", "0").Double())
	assert.Equal(t, bson.TypeNull, doc.Lookup("data", "1").Type)
	assert.Equal(t, 1.0, doc.Lookup("data", "2", "x").Double())
	assert.Equal(t, 2.0, doc.Lookup("data", "2", "y").Double())
	assert.Equal(t, bson.TypeArray, doc.Lookup("backgroundColor").Type)
	assert.Equal(t, "#222", doc.Lookup("backgroundColor", "1").StringValue())
	assert.Equal(t, "#333", doc.Lookup("borderColor").StringValue())

	var back Dataset
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.Equal(t, ds, back)
}

func TestDatasetBSONReadsStoredDocuments(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "label", Value: "Sales"},
		{Key: "data", Value: bson.A{int32(12), int64(19), 3.5, bson.D{{Key: "x", Value: 1.0}, {Key: "y", Value: 2.0}}}},
		{Key: "backgroundColor", Value: bson.A{"#3B82F6"}},
		{Key: "borderColor", Value: "#111"},
	})
	require.NoError(t, err)

	var ds Dataset
	require.NoError(t, bson.Unmarshal(raw, &ds))
	require.Len(t, ds.Data, 4)
	assert.Equal(t, 12.0, *ds.Data[0].Value)
	assert.Equal(t, 19.0, *ds.Data[1].Value)
	assert.Equal(t, 3.5, *ds.Data[2].Value)
	assert.Equal(t, Point(1, 2), ds.Data[3])
	assert.Equal(t, ColorList("#3B82F6"), ds.BackgroundColor)
	assert.Equal(t, SingleColor("#111"), ds.BorderColor)

	bad, err := bson.Marshal(bson.D{{Key: "data", Value: bson.A{"seven"}}})
	require.NoError(t, err)
	assert.Error(t, bson.Unmarshal(bad, &ds))
}

func TestChartTypes(t *testing.T) {
	for _, ct := range ChartTypes {
		assert.True(t, ct.Valid(), ct)
	}
	assert.False(t, ChartType("histogram").Valid())
	assert.True(t, ChartPie.IsCircular())
	assert.True(t, ChartDoughnut.IsCircular())
	assert.False(t, ChartBar.IsCircular())
}

func TestCloneIsDeep(t *testing.T) {
	d := NewDashboard("Ops", "desc", "ops")
	d.ID = "abc"
	d.Layout = append(d.Layout, LayoutItem{I: "w1", W: 2, H: 2})
	d.Widgets["w1"] = ChartData{
		ID:       "w1",
		Type:     ChartBar,
		Labels:   []string{"a"},
		Datasets: []Dataset{{Label: "s", Data: []DataPoint{Value(1)}, BackgroundColor: ColorList("#000")}},
	}

	c := d.Clone()
	assert.Empty(t, c.ID)
	assert.Equal(t, d.Name, c.Name)
	assert.Equal(t, d.UserID, c.UserID)

	c.Layout[0].X = 9
	c.Widgets["w1"].Labels[0] = "changed"
	c.Widgets["w1"].Datasets[0].BackgroundColor.Colors[0] = "#fff"
	assert.Equal(t, 0, d.Layout[0].X)
	assert.Equal(t, "a", d.Widgets["w1"].Labels[0])
	assert.Equal(t, "#000", d.Widgets["w1"].Datasets[0].BackgroundColor.Colors[0])
}

func TestNewDashboardDefaults(t *testing.T) {
	d := NewDashboard("n", "", "")
	assert.Equal(t, DefaultUserID, d.UserID)
	assert.NotNil(t, d.Layout)
	assert.NotNil(t, d.Widgets)
	assert.Equal(t, d.CreatedAt, d.UpdatedAt)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"layout":[]`)
	assert.Contains(t, string(raw), `"widgets":{}`)
}

func TestNewDemoUser(t *testing.T) {
	assert.Equal(t, User{Name: "Jane Doe", Email: "jane.doe@example.com"}, NewDemoUser("jane.doe@example.com"))
	assert.Equal(t, User{Name: "Ops Team", Email: "ops_team@x.io"}, NewDemoUser(" ops_team@x.io "))
	assert.Equal(t, User{Name: "User", Email: "..."}, NewDemoUser("..."))
}

package contract

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// ordersDoc is the smallest document that satisfies every required field of
// a contract with one object and one property.
func ordersDoc() map[string]any {
	return map[string]any{
		"id":          "urn:contract:orders",
		"name":        "orders",
		"version":     "1.0.0",
		"tenant":      "acme",
		"domain":      "sales",
		"dataProduct": "orders-dp",
		"schema": []any{
			map[string]any{
				"name":        "orders",
				"description": "desc",
				"properties": []any{
					map[string]any{
						"name":               "order_id",
						"primaryKey":         true,
						"primaryKeyPosition": 1,
					},
				},
			},
		},
	}
}

func firstObject(doc map[string]any) map[string]any {
	return doc["schema"].([]any)[0].(map[string]any)
}

func firstProperty(doc map[string]any) map[string]any {
	return firstObject(doc)["properties"].([]any)[0].(map[string]any)
}

func requireFieldError(t *testing.T, err error, kind Kind, path string) {
	t.Helper()
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Truef(t, ve.Has(kind, path), "want %s at %q, got %v", kind, path, err)
}

func TestDecode_OrdersExample(t *testing.T) {
	dc, err := Decode(ordersDoc())
	require.NoError(t, err)

	require.Len(t, dc.Schema, 1)
	require.Len(t, dc.Schema[0].Properties, 1)
	p := dc.Schema[0].Properties[0]
	assert.Equal(t, "order_id", p.Name)
	assert.True(t, p.PrimaryKey)
	require.NotNil(t, p.PrimaryKeyPosition)
	assert.Equal(t, 1, *p.PrimaryKeyPosition)
}

func TestDecode_OptionalPrimaryKeyPosition(t *testing.T) {
	doc := ordersDoc()
	delete(firstProperty(doc), "primaryKeyPosition")

	dc, err := Decode(doc)
	require.NoError(t, err)
	p := dc.Schema[0].Properties[0]
	assert.True(t, p.PrimaryKey)
	assert.Nil(t, p.PrimaryKeyPosition)
}

func TestDecode_AppliesDefaults(t *testing.T) {
	doc := ordersDoc()
	firstObject(doc)["properties"] = []any{map[string]any{"name": "amount"}}

	dc, err := Decode(doc)
	require.NoError(t, err)

	assert.Equal(t, APIVersion, dc.APIVersion)
	assert.Equal(t, KindDataContract, dc.Kind)
	assert.Equal(t, StatusDraft, dc.Status)

	p := dc.Schema[0].Properties[0]
	assert.False(t, p.PrimaryKey)
	assert.False(t, p.Required)
	assert.False(t, p.Unique)
	assert.False(t, p.Partitioned)
	assert.False(t, p.CriticalDataElement)
	assert.Nil(t, p.PartitionKeyPosition)
}

func TestDecode_PropertiesDefaultToEmpty(t *testing.T) {
	doc := ordersDoc()
	delete(firstObject(doc), "properties")

	dc, err := Decode(doc)
	require.NoError(t, err)
	assert.NotNil(t, dc.Schema[0].Properties)
	assert.Empty(t, dc.Schema[0].Properties)
}

func TestDecode_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc map[string]any)
		path   string
	}{
		{"tenant", func(doc map[string]any) { delete(doc, "tenant") }, "tenant"},
		{"id", func(doc map[string]any) { delete(doc, "id") }, "id"},
		{"version", func(doc map[string]any) { delete(doc, "version") }, "version"},
		{"schema", func(doc map[string]any) { delete(doc, "schema") }, "schema"},
		{"domain", func(doc map[string]any) { delete(doc, "domain") }, "domain"},
		{"dataProduct", func(doc map[string]any) { delete(doc, "dataProduct") }, "dataProduct"},
		{"object name", func(doc map[string]any) { delete(firstObject(doc), "name") }, "schema[0].name"},
		{"object description", func(doc map[string]any) { delete(firstObject(doc), "description") }, "schema[0].description"},
		{"property name", func(doc map[string]any) { delete(firstProperty(doc), "name") }, "schema[0].properties[0].name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ordersDoc()
			tt.mutate(doc)

			dc, err := Decode(doc)
			assert.Nil(t, dc)
			requireFieldError(t, err, MissingRequiredField, tt.path)
			assert.ErrorIs(t, err, ErrMissingRequiredField)
		})
	}
}

func TestDecode_APIVersion(t *testing.T) {
	tests := []struct {
		name  string
		value any
		kind  Kind
	}{
		{"other literal", "2.0.0", FixedValueViolation},
		{"prerelease of pinned", "3.1.0-rc.1", FixedValueViolation},
		{"not semver", "v3", PatternViolation},
		{"leading zero", "03.1.0", PatternViolation},
		{"number coerced then checked", 3.1, PatternViolation},
		{"boolean", true, TypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ordersDoc()
			doc["apiVersion"] = tt.value

			_, err := Decode(doc)
			requireFieldError(t, err, tt.kind, "apiVersion")
		})
	}

	t.Run("matching literal", func(t *testing.T) {
		doc := ordersDoc()
		doc["apiVersion"] = "3.1.0"
		dc, err := Decode(doc)
		require.NoError(t, err)
		assert.Equal(t, "3.1.0", dc.APIVersion)
	})
}

func TestDecode_KindIsPinned(t *testing.T) {
	doc := ordersDoc()
	doc["kind"] = "DataProduct"

	_, err := Decode(doc)
	requireFieldError(t, err, FixedValueViolation, "kind")
	assert.ErrorIs(t, err, ErrFixedValueViolation)
}

func TestDecode_Status(t *testing.T) {
	for _, s := range Statuses {
		doc := ordersDoc()
		doc["status"] = string(s)
		dc, err := Decode(doc)
		require.NoError(t, err)
		assert.Equal(t, s, dc.Status)
	}

	doc := ordersDoc()
	doc["status"] = "active"
	_, err := Decode(doc)
	requireFieldError(t, err, EnumViolation, "status")
}

func TestDecode_QualityTypeEnum(t *testing.T) {
	doc := ordersDoc()
	firstProperty(doc)["quality"] = []any{
		map[string]any{"name": "not null", "description": "no nulls", "type": "library", "metric": "nullValues"},
		map[string]any{"name": "bad", "description": "unknown type", "type": "regex", "metric": "x"},
	}

	_, err := Decode(doc)
	requireFieldError(t, err, EnumViolation, "schema[0].properties[0].quality[1].type")
	assert.ErrorIs(t, err, ErrEnumViolation)
}

func TestDecode_SLADriverEnum(t *testing.T) {
	doc := ordersDoc()
	doc["slaProperties"] = []any{
		map[string]any{"id": 1, "property": "latency", "value": 4, "unit": "d", "description": "fresh", "driver": "analytics"},
		map[string]any{"id": 2, "property": "retention", "value": "3", "description": "kept", "driver": "legal"},
	}

	_, err := Decode(doc)
	requireFieldError(t, err, EnumViolation, "slaProperties[1].driver")

	doc["slaProperties"] = doc["slaProperties"].([]any)[:1]
	dc, err := Decode(doc)
	require.NoError(t, err)
	require.Len(t, dc.SLAProperties, 1)
	sla := dc.SLAProperties[0]
	assert.Equal(t, DriverAnalytics, sla.Driver)
	assert.Equal(t, "1", sla.ID)
	assert.Equal(t, "4", sla.Value)
}

func TestDecode_NumericToStringCoercion(t *testing.T) {
	doc := ordersDoc()
	doc["id"] = 123
	firstObject(doc)["id"] = 7
	doc["slaProperties"] = []any{
		map[string]any{"id": "sla-1", "property": "availability", "value": 99.9, "description": "uptime"},
	}

	dc, err := Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, "123", dc.ID)
	assert.Equal(t, "7", dc.Schema[0].ID)
	assert.Equal(t, "99.9", dc.SLAProperties[0].Value)
}

func TestDecode_JSONNumbers(t *testing.T) {
	raw := `{"id": 123, "name": "n", "version": "1", "tenant": "t", "domain": "d", "dataProduct": "p",
		"schema": [{"name": "o", "description": "d", "properties": [{"name": "c", "primaryKeyPosition": 2}]}]}`
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	dc, err := Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, "123", dc.ID)
	assert.Equal(t, 2, *dc.Schema[0].Properties[0].PrimaryKeyPosition)
}

func TestDecode_TypeMismatches(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc map[string]any)
		path   string
	}{
		{"version as number", func(doc map[string]any) { doc["version"] = 1.0 }, "version"},
		{"schema as mapping", func(doc map[string]any) { doc["schema"] = map[string]any{"name": "x"} }, "schema"},
		{"object as scalar", func(doc map[string]any) { doc["schema"] = []any{"orders"} }, "schema[0]"},
		{"primaryKey as string", func(doc map[string]any) { firstProperty(doc)["primaryKey"] = "yes" }, "schema[0].properties[0].primaryKey"},
		{"position as fraction", func(doc map[string]any) { firstProperty(doc)["primaryKeyPosition"] = 1.5 }, "schema[0].properties[0].primaryKeyPosition"},
		{"tags with number", func(doc map[string]any) { doc["tags"] = []any{"ok", 3} }, "tags[1]"},
		{"customProperties scalar element", func(doc map[string]any) {
			firstObject(doc)["customProperties"] = []any{"x"}
		}, "schema[0].customProperties[0]"},
		{"required field null", func(doc map[string]any) { doc["tenant"] = nil }, "tenant"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ordersDoc()
			tt.mutate(doc)

			_, err := Decode(doc)
			requireFieldError(t, err, TypeMismatch, tt.path)
			assert.ErrorIs(t, err, ErrTypeMismatch)
		})
	}
}

func TestDecode_DeepPath(t *testing.T) {
	doc := ordersDoc()
	obj := firstObject(doc)
	doc["schema"] = []any{
		obj,
		map[string]any{"name": "customers", "description": "d"},
		map[string]any{
			"name":        "items",
			"description": "d",
			"properties": []any{
				map[string]any{"name": "sku", "logicalType": 42},
			},
		},
	}

	_, err := Decode(doc)
	requireFieldError(t, err, TypeMismatch, "schema[2].properties[0].logicalType")

	fe := FieldErrors(err)
	require.Len(t, fe, 1)
	assert.Contains(t, fe[0].Error(), "schema[2].properties[0].logicalType")
}

func TestDecode_CollectsEveryError(t *testing.T) {
	doc := ordersDoc()
	delete(doc, "tenant")
	doc["status"] = "LIVE"
	doc["apiVersion"] = "2.0.0"

	_, err := Decode(doc)
	fe := FieldErrors(err)
	require.Len(t, fe, 3)
	assert.Equal(t, "apiVersion", fe[0].Path)
	assert.Equal(t, "status", fe[1].Path)
	assert.Equal(t, "tenant", fe[2].Path)
}

func TestDecode_RootMustBeMapping(t *testing.T) {
	for _, doc := range []any{nil, "contract", []any{map[string]any{}}} {
		dc, err := Decode(doc)
		assert.Nil(t, dc)
		requireFieldError(t, err, TypeMismatch, "")
	}
}

func TestDecode_IgnoresUnknownFields(t *testing.T) {
	doc := ordersDoc()
	doc["servers"] = []any{map[string]any{"type": "postgres"}}
	firstProperty(doc)["x-owner"] = "team"

	_, err := Decode(doc)
	require.NoError(t, err)
}

func TestDecode_NullOptionalFieldsAreAbsent(t *testing.T) {
	doc := ordersDoc()
	doc["status"] = nil
	doc["tags"] = nil
	firstObject(doc)["properties"] = nil

	dc, err := Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, dc.Status)
	assert.Nil(t, dc.Tags)
	assert.Empty(t, dc.Schema[0].Properties)
}

func TestDecode_PreservesOrder(t *testing.T) {
	doc := ordersDoc()
	names := []string{"z_last", "a_first", "m_middle", "b_second"}
	props := make([]any, 0, len(names))
	for _, n := range names {
		props = append(props, map[string]any{"name": n})
	}
	firstObject(doc)["properties"] = props

	dc, err := Decode(doc)
	require.NoError(t, err)
	got := make([]string, 0, len(names))
	for _, p := range dc.Schema[0].Properties {
		got = append(got, p.Name)
	}
	assert.Equal(t, names, got)
}

func TestDecode_CustomPropertiesAreCopied(t *testing.T) {
	doc := ordersDoc()
	inner := map[string]any{"property": "owner", "value": "data-team"}
	firstObject(doc)["customProperties"] = []any{inner}

	dc, err := Decode(doc)
	require.NoError(t, err)
	require.Len(t, dc.Schema[0].CustomProperties, 1)
	assert.Equal(t, "data-team", dc.Schema[0].CustomProperties[0]["value"])

	dc.Schema[0].CustomProperties[0]["value"] = "changed"
	assert.Equal(t, "data-team", inner["value"])
}

func TestDecode_DoesNotMutateInput(t *testing.T) {
	doc := ordersDoc()
	before, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = Decode(doc)
	require.NoError(t, err)

	after, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestDecode_DescriptionForms(t *testing.T) {
	doc := ordersDoc()
	doc["description"] = map[string]any{
		"purpose":     "Order facts",
		"limitations": "No PII",
		"customProperties": []any{
			map[string]any{"property": "reviewed", "value": true},
		},
	}

	dc, err := Decode(doc)
	require.NoError(t, err)
	require.NotNil(t, dc.Description.Structured)
	assert.Equal(t, "Order facts", dc.Description.String())
	assert.Equal(t, "No PII", dc.Description.Structured.Limitations)
	assert.Equal(t, "desc", dc.Schema[0].Description.Plain)

	delete(doc["description"].(map[string]any), "purpose")
	_, err = Decode(doc)
	requireFieldError(t, err, MissingRequiredField, "description.purpose")

	doc["description"] = 12
	_, err = Decode(doc)
	requireFieldError(t, err, TypeMismatch, "description")

	doc = ordersDoc()
	firstProperty(doc)["description"] = "Order key"
	dc, err = Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, PlainText("Order key"), dc.Schema[0].Properties[0].Description)

	firstProperty(doc)["description"] = map[string]any{"purpose": "Order key"}
	_, err = Decode(doc)
	requireFieldError(t, err, TypeMismatch, "schema[0].properties[0].description")
}

func TestDecode_MapAnyKeys(t *testing.T) {
	doc := ordersDoc()
	firstObject(doc)["logicalTypeOptions"] = nil
	firstProperty(doc)["logicalTypeOptions"] = map[any]any{"maxLength": 10}

	dc, err := Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"maxLength": 10}, dc.Schema[0].Properties[0].LogicalTypeOptions)

	firstProperty(doc)["logicalTypeOptions"] = map[any]any{1: "x"}
	_, err = Decode(doc)
	requireFieldError(t, err, TypeMismatch, "schema[0].properties[0].logicalTypeOptions")
}

func TestDecodeReferences(t *testing.T) {
	ref, err := DecodeReferences(map[string]any{"type": "foreignKey", "to": "customers.id", "from_": "orders.customer_id"})
	require.NoError(t, err)
	assert.Equal(t, "customers.id", ref.To)
	assert.Equal(t, "orders.customer_id", ref.From)

	ref, err = DecodeReferences(map[string]any{"type": "foreignKey", "from": "a.b", "from_": "c.d"})
	require.NoError(t, err)
	assert.Equal(t, "a.b", ref.From)

	_, err = DecodeReferences(map[string]any{"to": "customers.id"})
	requireFieldError(t, err, MissingRequiredField, "type")
}

func TestDecodeProperty_AuthoritativeDefinitions(t *testing.T) {
	p, err := DecodeProperty(map[string]any{"name": "c", "authoritativeDefinitions": "https://example.com/c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/c"}, p.AuthoritativeDefinitions)

	_, err = DecodeObject(map[string]any{"name": "o", "description": "d", "authoritativeDefinitions": "https://example.com/o"})
	requireFieldError(t, err, TypeMismatch, "authoritativeDefinitions")
}

func TestDecodeQuality(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{"name": "rows", "description": "row count", "type": "library", "metric": "rowCount"}
	}

	q, err := DecodeQuality(base())
	require.NoError(t, err)
	assert.Equal(t, QualityLibrary, q.Type)

	doc := base()
	doc["arguments"] = map[string]any{"mustBeGreaterThan": 0}
	q, err = DecodeQuality(doc)
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"mustBeGreaterThan": 0}}, q.Arguments)

	doc = base()
	delete(doc, "metric")
	doc["type"] = "sql"
	_, err = DecodeQuality(doc)
	requireFieldError(t, err, MissingRequiredField, "metric")
}

func TestDecodeQuality_ConditionalRules(t *testing.T) {
	tests := []struct {
		name    string
		doc     map[string]any
		missing []string
	}{
		{
			name: "sql needs query",
			doc:  map[string]any{"name": "q", "description": "d", "type": "sql"},
			missing: []string{"query"},
		},
		{
			name:    "sql with query",
			doc:     map[string]any{"name": "q", "description": "d", "type": "sql", "query": "SELECT 1"},
			missing: nil,
		},
		{
			name:    "library needs metric",
			doc:     map[string]any{"name": "q", "description": "d", "type": "library"},
			missing: []string{"metric"},
		},
		{
			name:    "custom needs engine and implementation",
			doc:     map[string]any{"name": "q", "description": "d", "type": "custom"},
			missing: []string{"engine", "implementation"},
		},
		{
			name:    "text needs nothing",
			doc:     map[string]any{"name": "q", "description": "d", "type": "text"},
			missing: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := DecodeQuality(tt.doc, WithConditionalRules())
			if len(tt.missing) == 0 {
				require.NoError(t, err)
				require.NotNil(t, q)
				return
			}
			fe := FieldErrors(err)
			require.Len(t, fe, len(tt.missing))
			for i, path := range tt.missing {
				assert.Equal(t, MissingRequiredField, fe[i].Kind)
				assert.Equal(t, path, fe[i].Path)
				assert.Contains(t, fe[i].Message, "when type is")
			}
		})
	}
}

func TestDecode_ConditionalRulesOffByDefault(t *testing.T) {
	doc := ordersDoc()
	firstObject(doc)["quality"] = []any{
		map[string]any{"name": "q", "description": "d", "type": "sql", "metric": "custom"},
	}

	_, err := Decode(doc)
	require.NoError(t, err)

	_, err = Decode(doc, WithConditionalRules())
	requireFieldError(t, err, MissingRequiredField, "schema[0].quality[0].query")
}

func TestDecodeServiceLevelAgreement_Required(t *testing.T) {
	_, err := DecodeServiceLevelAgreement(map[string]any{"property": "latency"})
	fe := FieldErrors(err)
	require.Len(t, fe, 3)
	assert.Equal(t, "id", fe[0].Path)
	assert.Equal(t, "value", fe[1].Path)
	assert.Equal(t, "description", fe[2].Path)
}

func TestFieldError_Format(t *testing.T) {
	fe := &FieldError{Kind: EnumViolation, Path: "status", Message: `"LIVE" is not one of [ACTIVE]`}
	assert.Equal(t, `status: enum_violation: "LIVE" is not one of [ACTIVE]`, fe.Error())
	assert.True(t, errors.Is(fe, ErrEnumViolation))
	assert.False(t, errors.Is(fe, ErrTypeMismatch))

	root := &FieldError{Kind: TypeMismatch, Message: "expected a mapping, got null"}
	assert.Equal(t, "<root>: type_mismatch: expected a mapping, got null", root.Error())
}

func TestDecode_RejectsNonFiniteNumbers(t *testing.T) {
	t.Parallel()

	doc := ordersDoc()
	firstProperty(doc)["logicalTypeOptions"] = map[string]any{
		"maximum": math.Inf(1),
		"nested":  map[string]any{"steps": []any{1.5, math.NaN()}},
	}
	firstObject(doc)["customProperties"] = []any{map[string]any{"property": "p", "value": math.Inf(-1)}}

	_, err := Decode(doc)
	requireFieldError(t, err, TypeMismatch, "schema[0].properties[0].logicalTypeOptions.maximum")
	requireFieldError(t, err, TypeMismatch, "schema[0].properties[0].logicalTypeOptions.nested.steps[1]")
	requireFieldError(t, err, TypeMismatch, "schema[0].customProperties[0].value")
	assert.Contains(t, err.Error(), "expected a finite number, got +Inf")

	var parsed any
	require.NoError(t, yaml.Unmarshal([]byte("mustBeGreaterThan: .nan\n"), &parsed))
	_, err = DecodeQuality(map[string]any{
		"name": "q", "description": "d", "type": "library", "metric": "m", "arguments": parsed,
	})
	requireFieldError(t, err, TypeMismatch, "arguments.mustBeGreaterThan")
}

func TestDecode_AuthoritativeDefinitionsOptional(t *testing.T) {
	t.Parallel()

	doc := ordersDoc()
	dc, err := Decode(doc)
	require.NoError(t, err)
	assert.Nil(t, dc.AuthoritativeDefinitions)

	doc["authoritativeDefinitions"] = nil
	dc, err = Decode(doc)
	require.NoError(t, err)
	assert.Nil(t, dc.AuthoritativeDefinitions)

	doc["authoritativeDefinitions"] = []any{"https://example.com/orders"}
	dc, err = Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/orders"}, dc.AuthoritativeDefinitions)
}

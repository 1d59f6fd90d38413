package contract

import (
	"fmt"
	"maps"
	"math"
	"regexp"
	"slices"
	"strings"
)

// semverPattern is the semantic-versioning grammar
// MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD].
var semverPattern = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
	`(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?` +
	`(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

// Option adjusts validation behaviour.
type Option func(*decoder)

// WithConditionalRules turns the per-type requirements of quality rules into
// enforced checks: metric for library, query for sql, engine and
// implementation for custom. Without it metric is required for every rule
// and the other fields are optional.
func WithConditionalRules() Option {
	return func(d *decoder) { d.conditional = true }
}

type decoder struct {
	conditional bool
	errs        []*FieldError
}

func newDecoder(opts []Option) *decoder {
	d := &decoder{}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *decoder) fail(kind Kind, path, format string, args ...any) {
	d.errs = append(d.errs, &FieldError{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)})
}

func (d *decoder) err() error {
	if len(d.errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: d.errs}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

// Decode validates doc, the generic tree of a whole data contract, and
// returns its typed form. Any field error rejects the document; the
// returned error is then a *ValidationError listing every failure.
func Decode(doc any, opts ...Option) (*DataContract, error) {
	return decodeRoot(doc, opts, (*decoder).dataContract)
}

// DecodeFundamentals validates the contract metadata without the schema.
func DecodeFundamentals(doc any, opts ...Option) (*Fundamentals, error) {
	return decodeRoot(doc, opts, func(d *decoder, r record) Fundamentals { return d.fundamentals(r) })
}

// DecodeObject validates a single schema object.
func DecodeObject(doc any, opts ...Option) (*Object, error) {
	return decodeRoot(doc, opts, (*decoder).object)
}

// DecodeProperty validates a single object property.
func DecodeProperty(doc any, opts ...Option) (*ObjectProperties, error) {
	return decodeRoot(doc, opts, (*decoder).property)
}

// DecodeQuality validates a single quality rule.
func DecodeQuality(doc any, opts ...Option) (*Quality, error) {
	return decodeRoot(doc, opts, (*decoder).quality)
}

// DecodeReferences validates a single relationship.
func DecodeReferences(doc any, opts ...Option) (*References, error) {
	return decodeRoot(doc, opts, (*decoder).references)
}

// DecodeServiceLevelAgreement validates a single SLA clause.
func DecodeServiceLevelAgreement(doc any, opts ...Option) (*ServiceLevelAgreement, error) {
	return decodeRoot(doc, opts, (*decoder).sla)
}

// DecodeDescription validates a structured description block.
func DecodeDescription(doc any, opts ...Option) (*Description, error) {
	return decodeRoot(doc, opts, (*decoder).description)
}

func decodeRoot[T any](doc any, opts []Option, fn func(*decoder, record) T) (*T, error) {
	d := newDecoder(opts)
	r, ok := d.record("", doc)
	if !ok {
		return nil, d.err()
	}
	out := fn(d, r)
	if err := d.err(); err != nil {
		return nil, err
	}
	return &out, nil
}

// record is a mapping being decoded at a known path.
type record struct {
	d    *decoder
	path string
	m    map[string]any
}

func (d *decoder) record(path string, v any) (record, bool) {
	m, ok := asMapping(v)
	if !ok {
		d.fail(TypeMismatch, path, "expected a mapping, got %s", describe(v))
		return record{}, false
	}
	return record{d: d, path: path, m: m}, true
}

// value returns the raw value for key. Null counts as absent.
func (r record) value(key string) (any, bool) {
	v, ok := r.m[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r record) at(key string) string { return join(r.path, key) }

// present reports whether key exists, and records a MissingRequiredField
// or a null-typed TypeMismatch when required and unusable.
func (r record) present(key string, required bool) (any, bool) {
	v, ok := r.value(key)
	if ok {
		return v, true
	}
	if required {
		if raw, exists := r.m[key]; exists && raw == nil {
			r.d.fail(TypeMismatch, r.at(key), "expected a value, got null")
		} else {
			r.d.fail(MissingRequiredField, r.at(key), "field required")
		}
	}
	return nil, false
}

func (r record) str(key string, required bool) string {
	v, ok := r.present(key, required)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.d.fail(TypeMismatch, r.at(key), "expected a string, got %s", describe(v))
		return ""
	}
	return s
}

// coercedStr is str that also accepts numbers and stores their textual form.
func (r record) coercedStr(key string, required bool) string {
	v, ok := r.present(key, required)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := numberString(v); ok {
		return s
	}
	r.d.fail(TypeMismatch, r.at(key), "expected a string or number, got %s", describe(v))
	return ""
}

func (r record) boolean(key string) bool {
	v, ok := r.value(key)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		r.d.fail(TypeMismatch, r.at(key), "expected a boolean, got %s", describe(v))
		return false
	}
	return b
}

func (r record) intPtr(key string) *int {
	v, ok := r.value(key)
	if !ok {
		return nil
	}
	n, ok := asInt(v)
	if !ok {
		r.d.fail(TypeMismatch, r.at(key), "expected an integer, got %s", describe(v))
		return nil
	}
	return &n
}

func (r record) strList(key string) []string {
	return r.stringList(key, false)
}

// stringList decodes a sequence of strings. With scalarOK a bare string is
// accepted as a one-element list.
func (r record) stringList(key string, scalarOK bool) []string {
	v, ok := r.value(key)
	if !ok {
		return nil
	}
	if s, isStr := v.(string); isStr && scalarOK {
		return []string{s}
	}
	seq, ok := asSequence(v)
	if !ok {
		r.d.fail(TypeMismatch, r.at(key), "expected a sequence of strings, got %s", describe(v))
		return nil
	}
	out := make([]string, 0, len(seq))
	for i, item := range seq {
		s, ok := item.(string)
		if !ok {
			r.d.fail(TypeMismatch, index(r.at(key), i), "expected a string, got %s", describe(item))
			continue
		}
		out = append(out, s)
	}
	return out
}

func (r record) mapping(key string) map[string]any {
	v, ok := r.value(key)
	if !ok {
		return nil
	}
	m, ok := asMapping(v)
	if !ok {
		r.d.fail(TypeMismatch, r.at(key), "expected a mapping, got %s", describe(v))
		return nil
	}
	out := deepCopy(m).(map[string]any)
	if !r.d.finite(r.at(key), out) {
		return nil
	}
	return out
}

// mappingList decodes a sequence of free-form mappings. With scalarOK a
// single mapping is accepted as a one-element list.
func (r record) mappingList(key string, scalarOK bool) []map[string]any {
	v, ok := r.value(key)
	if !ok {
		return nil
	}
	if m, isMap := asMapping(v); isMap && scalarOK {
		out := deepCopy(m).(map[string]any)
		if !r.d.finite(r.at(key), out) {
			return nil
		}
		return []map[string]any{out}
	}
	seq, ok := asSequence(v)
	if !ok {
		r.d.fail(TypeMismatch, r.at(key), "expected a sequence of mappings, got %s", describe(v))
		return nil
	}
	out := make([]map[string]any, 0, len(seq))
	for i, item := range seq {
		m, ok := asMapping(item)
		if !ok {
			r.d.fail(TypeMismatch, index(r.at(key), i), "expected a mapping, got %s", describe(item))
			continue
		}
		item := deepCopy(m).(map[string]any)
		if r.d.finite(index(r.at(key), i), item) {
			out = append(out, item)
		}
	}
	return out
}

// finite records a TypeMismatch for every NaN or infinity inside a
// free-form value; those have no JSON form.
func (d *decoder) finite(path string, v any) bool {
	switch x := v.(type) {
	case float32:
		return d.finite(path, float64(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			d.fail(TypeMismatch, path, "expected a finite number, got %v", x)
			return false
		}
	case map[string]any:
		ok := true
		for _, k := range slices.Sorted(maps.Keys(x)) {
			ok = d.finite(join(path, k), x[k]) && ok
		}
		return ok
	case []any:
		ok := true
		for i, e := range x {
			ok = d.finite(index(path, i), e) && ok
		}
		return ok
	}
	return true
}

// each calls fn for every element of the sequence at key, in order.
func (r record) each(key string, required bool, fn func(path string, item any)) bool {
	v, ok := r.present(key, required)
	if !ok {
		return false
	}
	seq, ok := asSequence(v)
	if !ok {
		r.d.fail(TypeMismatch, r.at(key), "expected a sequence, got %s", describe(v))
		return false
	}
	for i, item := range seq {
		fn(index(r.at(key), i), item)
	}
	return true
}

// text decodes a description given either as free text or as a structured
// Description mapping.
func (r record) text(key string, required bool) Text {
	v, ok := r.present(key, required)
	if !ok {
		return Text{}
	}
	if s, ok := v.(string); ok {
		return PlainText(s)
	}
	if _, ok := asMapping(v); ok {
		sub, _ := r.d.record(r.at(key), v)
		desc := r.d.description(sub)
		return Text{Structured: &desc}
	}
	r.d.fail(TypeMismatch, r.at(key), "expected a string or a description mapping, got %s", describe(v))
	return Text{}
}

// enumValue checks a closed-set string field. def is returned when the field
// is absent and not required.
func enumValue[T ~string](r record, key string, allowed []T, required bool, def T) T {
	v, ok := r.present(key, required)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		r.d.fail(TypeMismatch, r.at(key), "expected a string, got %s", describe(v))
		return def
	}
	for _, a := range allowed {
		if string(a) == s {
			return a
		}
	}
	r.d.fail(EnumViolation, r.at(key), "%q is not one of [%s]", s, strings.Join(literals(allowed), ", "))
	return def
}

func (d *decoder) description(r record) Description {
	return Description{
		Purpose:                  r.str("purpose", true),
		Limitations:              r.str("limitations", false),
		Usage:                    r.str("usage", false),
		AuthoritativeDefinitions: r.strList("authoritativeDefinitions"),
		CustomProperties:         r.mappingList("customProperties", false),
	}
}

func (d *decoder) quality(r record) Quality {
	q := Quality{
		ID:                       r.coercedStr("id", false),
		Name:                     r.str("name", true),
		Description:              r.text("description", true),
		Type:                     enumValue(r, "type", QualityTypes, true, ""),
		Metric:                   r.str("metric", !d.conditional),
		Arguments:                r.mappingList("arguments", true),
		Unit:                     r.str("unit", false),
		Query:                    r.str("query", false),
		Engine:                   r.str("engine", false),
		Implementation:           r.str("implementation", false),
		Dimension:                r.str("dimension", false),
		Method:                   r.str("method", false),
		Severity:                 r.str("severity", false),
		CustomProperties:         r.mappingList("customProperties", false),
		Tags:                     r.strList("tags"),
		AuthoritativeDefinitions: r.strList("authoritativeDefinitions"),
		Scheduler:                r.str("scheduler", false),
		Schedule:                 r.str("schedule", false),
	}
	if d.conditional {
		d.qualityRules(r, q)
	}
	return q
}

// qualityRules enforces the fields each quality type depends on.
func (d *decoder) qualityRules(r record, q Quality) {
	need := func(key, val string) {
		if val == "" {
			if _, set := r.value(key); set {
				return
			}
			d.fail(MissingRequiredField, r.at(key), "field required when type is %s", q.Type)
		}
	}
	switch q.Type {
	case QualityLibrary:
		need("metric", q.Metric)
	case QualitySQL:
		need("query", q.Query)
	case QualityCustom:
		need("engine", q.Engine)
		need("implementation", q.Implementation)
	}
}

func (d *decoder) references(r record) References {
	from := r.str("from", false)
	if _, ok := r.value("from"); !ok {
		from = r.str("from_", false)
	}
	return References{
		Type:             r.str("type", true),
		To:               r.str("to", false),
		From:             from,
		CustomProperties: r.mappingList("customProperties", false),
	}
}

func (d *decoder) sla(r record) ServiceLevelAgreement {
	return ServiceLevelAgreement{
		ID:          r.coercedStr("id", true),
		Property:    r.str("property", true),
		Value:       r.coercedStr("value", true),
		ValueExt:    r.str("valueExt", false),
		Unit:        r.str("unit", false),
		Element:     r.str("element", false),
		Driver:      enumValue(r, "driver", Drivers, false, ""),
		Description: r.str("description", true),
		Scheduler:   r.str("scheduler", false),
		Schedule:    r.str("schedule", false),
	}
}

// commonSchema decodes the fields shared by objects and properties.
// Objects require a description, free text or structured; a property's
// description is optional free text.
func (d *decoder) commonSchema(r record, property bool) CommonSchema {
	cs := CommonSchema{
		ID:               r.coercedStr("id", false),
		Name:             r.str("name", true),
		PhysicalName:     r.str("physicalName", false),
		PhysicalType:     r.str("physicalType", false),
		BusinessName:     r.str("businessName", false),
		Tags:             r.strList("tags"),
		CustomProperties: r.mappingList("customProperties", false),
	}
	if property {
		if s := r.str("description", false); s != "" {
			cs.Description = PlainText(s)
		}
	} else {
		cs.Description = r.text("description", true)
	}
	// Properties have historically carried a single link here.
	cs.AuthoritativeDefinitions = r.stringList("authoritativeDefinitions", property)
	r.each("quality", false, func(path string, item any) {
		if sub, ok := d.record(path, item); ok {
			cs.Quality = append(cs.Quality, d.quality(sub))
		}
	})
	r.each("relationships", false, func(path string, item any) {
		if sub, ok := d.record(path, item); ok {
			cs.Relationships = append(cs.Relationships, d.references(sub))
		}
	})
	return cs
}

func (d *decoder) property(r record) ObjectProperties {
	return ObjectProperties{
		CommonSchema:           d.commonSchema(r, true),
		PrimaryKey:             r.boolean("primaryKey"),
		PrimaryKeyPosition:     r.intPtr("primaryKeyPosition"),
		LogicalType:            r.str("logicalType", false),
		LogicalTypeOptions:     r.mapping("logicalTypeOptions"),
		Required:               r.boolean("required"),
		Unique:                 r.boolean("unique"),
		Partitioned:            r.boolean("partitioned"),
		PartitionKeyPosition:   r.intPtr("partitionKeyPosition"),
		Classification:         r.str("classification", false),
		EncryptedName:          r.str("encryptedName", false),
		TransformSourceObjects: r.strList("transformSourceObjects"),
		TransformLogic:         r.str("transformLogic", false),
		TransformDescription:   r.str("transformDescription", false),
		Examples:               r.strList("examples"),
		CriticalDataElement:    r.boolean("criticalDataElement"),
		Items:                  r.strList("items"),
	}
}

func (d *decoder) object(r record) Object {
	obj := Object{
		CommonSchema:               d.commonSchema(r, false),
		DataGranularityDescription: r.str("dataGranularityDescription", false),
		Properties:                 []ObjectProperties{},
	}
	r.each("properties", false, func(path string, item any) {
		if sub, ok := d.record(path, item); ok {
			obj.Properties = append(obj.Properties, d.property(sub))
		}
	})
	return obj
}

func (d *decoder) apiVersion(r record) string {
	v, ok := r.value("apiVersion")
	if !ok {
		return APIVersion
	}
	s, isStr := v.(string)
	if !isStr {
		if s, ok = numberString(v); !ok {
			d.fail(TypeMismatch, r.at("apiVersion"), "expected a string, got %s", describe(v))
			return APIVersion
		}
	}
	if !semverPattern.MatchString(s) {
		d.fail(PatternViolation, r.at("apiVersion"), "%q is not a semantic version", s)
		return APIVersion
	}
	if s != APIVersion {
		d.fail(FixedValueViolation, r.at("apiVersion"), "must be %q, got %q", APIVersion, s)
		return APIVersion
	}
	return s
}

func (d *decoder) kind(r record) string {
	v, ok := r.value("kind")
	if !ok {
		return KindDataContract
	}
	s, isStr := v.(string)
	if !isStr {
		d.fail(TypeMismatch, r.at("kind"), "expected a string, got %s", describe(v))
		return KindDataContract
	}
	if s != KindDataContract {
		d.fail(FixedValueViolation, r.at("kind"), "must be %q, got %q", KindDataContract, s)
	}
	return KindDataContract
}

func (d *decoder) fundamentals(r record) Fundamentals {
	f := Fundamentals{
		APIVersion:               d.apiVersion(r),
		Kind:                     d.kind(r),
		ID:                       r.coercedStr("id", true),
		Name:                     r.str("name", true),
		Version:                  r.str("version", true),
		Status:                   enumValue(r, "status", Statuses, false, StatusDraft),
		Tenant:                   r.str("tenant", true),
		Tags:                     r.strList("tags"),
		Domain:                   r.str("domain", true),
		AuthoritativeDefinitions: r.strList("authoritativeDefinitions"),
		DataProduct:              r.str("dataProduct", true),
		Description:              r.text("description", false),
	}
	r.each("slaProperties", false, func(path string, item any) {
		if sub, ok := d.record(path, item); ok {
			f.SLAProperties = append(f.SLAProperties, d.sla(sub))
		}
	})
	return f
}

func (d *decoder) dataContract(r record) DataContract {
	dc := DataContract{Fundamentals: d.fundamentals(r), Schema: []Object{}}
	r.each("schema", true, func(path string, item any) {
		if sub, ok := d.record(path, item); ok {
			dc.Schema = append(dc.Schema, d.object(sub))
		}
	})
	return dc
}

// Package contract is the typed model of an Open Data Contract Standard
// (ODCS) document and the validator that maps a raw, generically decoded
// YAML/JSON tree onto it.
//
// Values produced by Decode are immutable by convention: callers read them,
// re-serialize them, or hand them to downstream tooling, and build a new
// value instead of mutating one in place.
package contract

import (
	"encoding/json"
)

const (
	// APIVersion is the only ODCS standard version this model accepts.
	APIVersion = "3.1.0"
	// KindDataContract is the pinned value of the kind field.
	KindDataContract = "DataContract"
)

// Description is the structured form of a description block.
type Description struct {
	Purpose                  string           `json:"purpose" yaml:"purpose"`
	Limitations              string           `json:"limitations,omitempty" yaml:"limitations,omitempty"`
	Usage                    string           `json:"usage,omitempty" yaml:"usage,omitempty"`
	AuthoritativeDefinitions []string         `json:"authoritativeDefinitions,omitempty" yaml:"authoritativeDefinitions,omitempty"`
	CustomProperties         []map[string]any `json:"customProperties,omitempty" yaml:"customProperties,omitempty"`
}

// Text holds a description that is either free text or a structured
// Description. At most one of the two is set.
type Text struct {
	Plain      string
	Structured *Description
}

// PlainText wraps s as a free-text description.
func PlainText(s string) Text { return Text{Plain: s} }

// IsZero reports whether neither form is set.
func (t Text) IsZero() bool { return t.Plain == "" && t.Structured == nil }

// String returns the free text, or the purpose of a structured description.
func (t Text) String() string {
	if t.Structured != nil {
		return t.Structured.Purpose
	}
	return t.Plain
}

func (t Text) MarshalJSON() ([]byte, error) {
	if t.Structured != nil {
		return json.Marshal(t.Structured)
	}
	return json.Marshal(t.Plain)
}

func (t Text) MarshalYAML() (any, error) {
	if t.Structured != nil {
		return t.Structured, nil
	}
	return t.Plain, nil
}

// Quality declares one data-quality rule. Rules are described, not executed.
type Quality struct {
	ID                       string           `json:"id,omitempty" yaml:"id,omitempty"`
	Name                     string           `json:"name" yaml:"name"`
	Description              Text             `json:"description,omitzero" yaml:"description,omitempty"`
	Type                     QualityType      `json:"type" yaml:"type"`
	Metric                   string           `json:"metric,omitempty" yaml:"metric,omitempty"`
	Arguments                []map[string]any `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Unit                     string           `json:"unit,omitempty" yaml:"unit,omitempty"`
	Query                    string           `json:"query,omitempty" yaml:"query,omitempty"`
	Engine                   string           `json:"engine,omitempty" yaml:"engine,omitempty"`
	Implementation           string           `json:"implementation,omitempty" yaml:"implementation,omitempty"`
	Dimension                string           `json:"dimension,omitempty" yaml:"dimension,omitempty"`
	Method                   string           `json:"method,omitempty" yaml:"method,omitempty"`
	Severity                 string           `json:"severity,omitempty" yaml:"severity,omitempty"`
	CustomProperties         []map[string]any `json:"customProperties,omitempty" yaml:"customProperties,omitempty"`
	Tags                     []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
	AuthoritativeDefinitions []string         `json:"authoritativeDefinitions,omitempty" yaml:"authoritativeDefinitions,omitempty"`
	Scheduler                string           `json:"scheduler,omitempty" yaml:"scheduler,omitempty"`
	Schedule                 string           `json:"schedule,omitempty" yaml:"schedule,omitempty"`
}

// References is a named relationship between two schema elements. To and
// From are dotted "schema.property" paths; they are not resolved against
// the document.
type References struct {
	Type             string           `json:"type" yaml:"type"`
	To               string           `json:"to,omitempty" yaml:"to,omitempty"`
	From             string           `json:"from,omitempty" yaml:"from,omitempty"`
	CustomProperties []map[string]any `json:"customProperties,omitempty" yaml:"customProperties,omitempty"`
}

// ServiceLevelAgreement is one SLA clause.
type ServiceLevelAgreement struct {
	ID          string `json:"id" yaml:"id"`
	Property    string `json:"property" yaml:"property"`
	Value       string `json:"value" yaml:"value"`
	ValueExt    string `json:"valueExt,omitempty" yaml:"valueExt,omitempty"`
	Unit        string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Element     string `json:"element,omitempty" yaml:"element,omitempty"`
	Driver      Driver `json:"driver,omitempty" yaml:"driver,omitempty"`
	Description string `json:"description" yaml:"description"`
	Scheduler   string `json:"scheduler,omitempty" yaml:"scheduler,omitempty"`
	Schedule    string `json:"schedule,omitempty" yaml:"schedule,omitempty"`
}

// CommonSchema carries the fields shared by Object and ObjectProperties.
type CommonSchema struct {
	ID                       string           `json:"id,omitempty" yaml:"id,omitempty"`
	Name                     string           `json:"name" yaml:"name"`
	PhysicalName             string           `json:"physicalName,omitempty" yaml:"physicalName,omitempty"`
	PhysicalType             string           `json:"physicalType,omitempty" yaml:"physicalType,omitempty"`
	Description              Text             `json:"description,omitzero" yaml:"description,omitempty"`
	BusinessName             string           `json:"businessName,omitempty" yaml:"businessName,omitempty"`
	AuthoritativeDefinitions []string         `json:"authoritativeDefinitions,omitempty" yaml:"authoritativeDefinitions,omitempty"`
	Quality                  []Quality        `json:"quality,omitempty" yaml:"quality,omitempty"`
	Tags                     []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
	CustomProperties         []map[string]any `json:"customProperties,omitempty" yaml:"customProperties,omitempty"`
	Relationships            []References     `json:"relationships,omitempty" yaml:"relationships,omitempty"`
}

// ObjectProperties is a column or field of an Object.
//
// PrimaryKeyPosition and PartitionKeyPosition are 1-based and only
// meaningful when PrimaryKey or Partitioned is set; nil means absent.
type ObjectProperties struct {
	CommonSchema `yaml:",inline"`

	PrimaryKey             bool           `json:"primaryKey" yaml:"primaryKey"`
	PrimaryKeyPosition     *int           `json:"primaryKeyPosition,omitempty" yaml:"primaryKeyPosition,omitempty"`
	LogicalType            string         `json:"logicalType,omitempty" yaml:"logicalType,omitempty"`
	LogicalTypeOptions     map[string]any `json:"logicalTypeOptions,omitempty" yaml:"logicalTypeOptions,omitempty"`
	Required               bool           `json:"required" yaml:"required"`
	Unique                 bool           `json:"unique" yaml:"unique"`
	Partitioned            bool           `json:"partitioned" yaml:"partitioned"`
	PartitionKeyPosition   *int           `json:"partitionKeyPosition,omitempty" yaml:"partitionKeyPosition,omitempty"`
	Classification         string         `json:"classification,omitempty" yaml:"classification,omitempty"`
	EncryptedName          string         `json:"encryptedName,omitempty" yaml:"encryptedName,omitempty"`
	TransformSourceObjects []string       `json:"transformSourceObjects,omitempty" yaml:"transformSourceObjects,omitempty"`
	TransformLogic         string         `json:"transformLogic,omitempty" yaml:"transformLogic,omitempty"`
	TransformDescription   string         `json:"transformDescription,omitempty" yaml:"transformDescription,omitempty"`
	Examples               []string       `json:"examples,omitempty" yaml:"examples,omitempty"`
	CriticalDataElement    bool           `json:"criticalDataElement" yaml:"criticalDataElement"`
	Items                  []string       `json:"items,omitempty" yaml:"items,omitempty"`
}

// Object is a table, view, topic or file described by the contract.
type Object struct {
	CommonSchema `yaml:",inline"`

	DataGranularityDescription string             `json:"dataGranularityDescription,omitempty" yaml:"dataGranularityDescription,omitempty"`
	Properties                 []ObjectProperties `json:"properties" yaml:"properties"`
}

// Fundamentals is the top-level contract metadata.
type Fundamentals struct {
	APIVersion               string                  `json:"apiVersion" yaml:"apiVersion"`
	Kind                     string                  `json:"kind" yaml:"kind"`
	ID                       string                  `json:"id" yaml:"id"`
	Name                     string                  `json:"name" yaml:"name"`
	Version                  string                  `json:"version" yaml:"version"`
	Status                   Status                  `json:"status" yaml:"status"`
	Tenant                   string                  `json:"tenant" yaml:"tenant"`
	Tags                     []string                `json:"tags,omitempty" yaml:"tags,omitempty"`
	Domain                   string                  `json:"domain" yaml:"domain"`
	AuthoritativeDefinitions []string                `json:"authoritativeDefinitions,omitempty" yaml:"authoritativeDefinitions,omitempty"`
	DataProduct              string                  `json:"dataProduct" yaml:"dataProduct"`
	Description              Text                    `json:"description,omitzero" yaml:"description,omitempty"`
	SLAProperties            []ServiceLevelAgreement `json:"slaProperties,omitempty" yaml:"slaProperties,omitempty"`
}

// DataContract is the root document.
type DataContract struct {
	Fundamentals `yaml:",inline"`

	Schema []Object `json:"schema" yaml:"schema"`
}

// Object returns the schema object with the given name.
func (dc *DataContract) Object(name string) (*Object, bool) {
	for i := range dc.Schema {
		if dc.Schema[i].Name == name {
			return &dc.Schema[i], true
		}
	}
	return nil, false
}

// Property returns the property with the given name.
func (o *Object) Property(name string) (*ObjectProperties, bool) {
	for i := range o.Properties {
		if o.Properties[i].Name == name {
			return &o.Properties[i], true
		}
	}
	return nil, false
}

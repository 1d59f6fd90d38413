package contract

// Status is the lifecycle state of a data contract.
type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusInactive   Status = "INACTIVE"
	StatusDeprecated Status = "DEPRECATED"
	StatusDraft      Status = "DRAFT"
)

// Statuses lists the accepted wire values in declaration order.
var Statuses = []Status{StatusActive, StatusInactive, StatusDeprecated, StatusDraft}

// Valid reports whether s is one of the declared literals.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s Status) String() string { return string(s) }

// QualityType selects how a quality rule is expressed.
type QualityType string

const (
	QualityLibrary QualityType = "library"
	QualityText    QualityType = "text"
	QualitySQL     QualityType = "sql"
	QualityCustom  QualityType = "custom"
)

var QualityTypes = []QualityType{QualityLibrary, QualityText, QualitySQL, QualityCustom}

func (t QualityType) Valid() bool {
	for _, v := range QualityTypes {
		if t == v {
			return true
		}
	}
	return false
}

func (t QualityType) String() string { return string(t) }

// Driver describes why an SLA clause matters. The zero value means unset.
type Driver string

const (
	DriverRegulatory  Driver = "regulatory"
	DriverAnalytics   Driver = "analytics"
	DriverOperational Driver = "operational"
)

var Drivers = []Driver{DriverRegulatory, DriverAnalytics, DriverOperational}

func (d Driver) Valid() bool {
	for _, v := range Drivers {
		if d == v {
			return true
		}
	}
	return false
}

func (d Driver) String() string { return string(d) }

func literals[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}

// Package metadata defines the in-memory model for managed-reference API
// metadata and the YAML loader that produces it.
package metadata

// Kind classifies a record as a type-like or member-like API element.
type Kind string

const (
	KindNamespace Kind = "Namespace"

	KindClass     Kind = "Class"
	KindStruct    Kind = "Struct"
	KindInterface Kind = "Interface"
	KindEnum      Kind = "Enum"
	KindDelegate  Kind = "Delegate"

	KindField       Kind = "Field"
	KindProperty    Kind = "Property"
	KindMethod      Kind = "Method"
	KindOperator    Kind = "Operator"
	KindEvent       Kind = "Event"
	KindConstructor Kind = "Constructor"
)

// IsType reports whether the kind produces its own documentation page.
func (k Kind) IsType() bool {
	switch k {
	case KindClass, KindStruct, KindInterface, KindEnum, KindDelegate:
		return true
	}
	return false
}

// IsMember reports whether the kind documents a member of a type.
func (k Kind) IsMember() bool {
	switch k {
	case KindField, KindProperty, KindMethod, KindOperator, KindEvent, KindConstructor:
		return true
	}
	return false
}

// Parameter describes a method/delegate parameter or a type parameter.
type Parameter struct {
	ID          string `yaml:"id"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

// Return describes a return value.
type Return struct {
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

// Exception describes a documented thrown exception.
type Exception struct {
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

// Attribute describes an attribute applied to an API element.
type Attribute struct {
	Type      string   `yaml:"type"`
	Arguments []string `yaml:"arguments"`
}

// Syntax carries declaration text and signature details.
type Syntax struct {
	Content        string      `yaml:"content"`
	Parameters     []Parameter `yaml:"parameters"`
	TypeParameters []Parameter `yaml:"typeParameters"`
	Return         *Return     `yaml:"return"`
}

// Record is one parsed API element. Records are read-only after loading;
// parent/child links are plain uid strings, never pointers.
type Record struct {
	UID        string      `yaml:"uid"`
	ID         string      `yaml:"id"`
	ParentUID  string      `yaml:"parent"`
	Kind       Kind        `yaml:"type"`
	Name       string      `yaml:"name"`
	FullName   string      `yaml:"fullName"`
	Namespace  string      `yaml:"namespace"`
	Assemblies []string    `yaml:"assemblies"`
	Summary    string      `yaml:"summary"`
	Remarks    string      `yaml:"remarks"`
	Syntax     *Syntax     `yaml:"syntax"`
	Children   []string    `yaml:"children"`
	Inherits   []string    `yaml:"inheritance"`
	Implements []string    `yaml:"implements"`
	Exceptions []Exception `yaml:"exceptions"`
	Attributes []Attribute `yaml:"attributes"`
}

// SimpleName returns the display name of the record without namespace
// qualification: the declared name when present, else the last '.'-delimited
// segment of the uid.
func (r *Record) SimpleName() string {
	if r.Name != "" {
		return r.Name
	}
	return lastSegment(r.UID)
}

// FirstAssembly returns the first declaring assembly, or "" when unknown.
func (r *Record) FirstAssembly() string {
	if len(r.Assemblies) == 0 {
		return ""
	}
	return r.Assemblies[0]
}

func lastSegment(uid string) string {
	last := uid
	for i := len(uid) - 1; i >= 0; i-- {
		if uid[i] == '.' {
			last = uid[i+1:]
			break
		}
	}
	return last
}

// Reference is an entry from a metadata file's references section. A non-empty
// Href marks an external target for uids with no generated file.
type Reference struct {
	UID      string `yaml:"uid"`
	Name     string `yaml:"name"`
	FullName string `yaml:"fullName"`
	Href     string `yaml:"href"`
}

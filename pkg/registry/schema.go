// pkg/registry/schema.go
package registry

import (
	"encoding/json"
	"fmt"
	"math"
)

// ShapeKind is the closed set of shape variants the generator understands.
type ShapeKind int

const (
	KindScalar ShapeKind = iota // boolean, integer, blob, timestamp, ...
	KindString
	KindStructure
	KindMap
	KindList
)

func (k ShapeKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindStructure:
		return "structure"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	default:
		return "scalar"
	}
}

// kindFromType maps a document type tag onto a ShapeKind.
func kindFromType(t string) ShapeKind {
	switch t {
	case "string":
		return KindString
	case "structure":
		return KindStructure
	case "map":
		return KindMap
	case "list":
		return KindList
	default:
		return KindScalar
	}
}

// ServiceDocument is the on-disk service description.
type ServiceDocument struct {
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Operations map[string]Operation   `json:"operations"`
	Shapes     map[string]*Shape      `json:"shapes"`
}

type Operation struct {
	Name  string    `json:"name,omitempty"`
	Input *ShapeRef `json:"input,omitempty"`
}

// ShapeRef points at a named shape.
type ShapeRef struct {
	Shape string `json:"shape"`
}

// Shape is one named schema node.
type Shape struct {
	Name     string              `json:"-"`
	Type     string              `json:"type"`
	Members  map[string]ShapeRef `json:"members,omitempty"`
	Required []string            `json:"required,omitempty"`
	Key      *ShapeRef           `json:"key,omitempty"`
	Value    *ShapeRef           `json:"value,omitempty"`
	Member   *ShapeRef           `json:"member,omitempty"`
	Enum     []string            `json:"enum,omitempty"`
	Pattern  string              `json:"pattern,omitempty"`
	Min      *json.Number        `json:"min,omitempty"`

	kind     ShapeKind
	required map[string]bool
}

// Kind returns the shape variant.
func (s *Shape) Kind() ShapeKind { return s.kind }

// IsRequired reports whether member is in the required set.
func (s *Shape) IsRequired(member string) bool { return s.required[member] }

// MinCount returns the declared minimum as a count, 0 when absent.
// Fractional minimums round up so a valid instance always satisfies them.
func (s *Shape) MinCount() int {
	if s.Min == nil {
		return 0
	}
	f, err := s.Min.Float64()
	if err != nil || f <= 0 {
		return 0
	}
	return int(math.Ceil(f))
}

// HasPattern reports a declared forbidden-character constraint.
func (s *Shape) HasPattern() bool { return s.Pattern != "" }

// HasEnum reports a declared enum.
func (s *Shape) HasEnum() bool { return len(s.Enum) > 0 }

// prepare derives the cached variant and required set after decoding.
func (s *Shape) prepare(name string) {
	s.Name = name
	s.kind = kindFromType(s.Type)
	s.required = make(map[string]bool, len(s.Required))
	for _, m := range s.Required {
		s.required[m] = true
	}
}

// references lists every shape name this shape points at, tagged by role.
func (s *Shape) references() map[string]string {
	refs := map[string]string{}
	switch s.kind {
	case KindStructure:
		for m, r := range s.Members {
			refs["member "+m] = r.Shape
		}
	case KindMap:
		if s.Key != nil {
			refs["key"] = s.Key.Shape
		}
		if s.Value != nil {
			refs["value"] = s.Value.Shape
		}
	case KindList:
		if s.Member != nil {
			refs["member"] = s.Member.Shape
		}
	}
	return refs
}

// check reports structural problems a decoded shape cannot be generated from.
func (s *Shape) check() []string {
	var problems []string
	switch s.kind {
	case KindStructure:
		for _, m := range s.Required {
			if _, ok := s.Members[m]; !ok {
				problems = append(problems, fmt.Sprintf("shape %s: required member %s is not declared", s.Name, m))
			}
		}
	case KindMap:
		if s.Key == nil || s.Value == nil {
			problems = append(problems, fmt.Sprintf("shape %s: map needs key and value", s.Name))
		}
	case KindList:
		if s.Member == nil {
			problems = append(problems, fmt.Sprintf("shape %s: list needs member", s.Name))
		}
	}
	return problems
}

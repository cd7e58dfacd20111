package generator

import (
	"alternator-reqgen/internal/common/config"
	"alternator-reqgen/pkg/registry"
)

// ShapeSource resolves shape names. *registry.Catalog satisfies it.
type ShapeSource interface {
	Shape(name string) (*registry.Shape, error)
}

// Violation labels attached to emitted cases.
const (
	LabelUnexpectedNull      = "unexpected_null"
	LabelUnexpectedString    = "unexpected_string"
	LabelUnexpectedObject    = "unexpected_object"
	LabelUnexpectedList      = "unexpected_list"
	LabelInvalidTableName    = "invalid_table_name"
	LabelInvalidAttrName     = "invalid_attr_name"
	LabelInvalidResourceName = "invalid_resource_name"
	LabelInvalidEnum         = "invalid_enum"
	LabelEmptyString         = "empty_string"
	LabelForbiddenString     = "forbidden_string"
	LabelMissingValue        = "missing_value"
	LabelNullValue           = "null_value"
	LabelMissingSuffix       = "_missing"
	LabelNullSuffix          = "_null"
)

// Literals written by the string mutations.
const (
	sentinelString       = "invalid"
	invalidTableLiteral  = "+@"
	invalidAttrLiteral   = "$*"
	invalidResourceLit   = "!%"
	invalidEnumLiteral   = "invalid"
	forbiddenLiteral     = "!@#$%^&*"
	rootReferenceName    = "body"
	valueReferenceSuffix = ".value"
	keyReferenceSuffix   = ".key"
	firstElementSuffix   = "[0]"
)

// identifierKind tags the shapes that carry substitutable identifiers.
type identifierKind int

const (
	notIdentifier identifierKind = iota
	tableIdentifier
	attributeIdentifier
	resourceIdentifier
)

// Options configures the builder and the generator.
type Options struct {
	MaxDepth          int
	RecursiveShapes   []string
	RecursiveDepthCap int

	TableShapes     []string
	AttributeShapes []string
	ResourceShapes  []string

	TablePlaceholder     string
	AttributePlaceholder string
	ResourcePlaceholder  string
	StringPlaceholder    string
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		MaxDepth:             8,
		RecursiveShapes:      []string{"AttributeValue"},
		RecursiveDepthCap:    2,
		TableShapes:          []string{"TableName", "TableArn"},
		AttributeShapes:      []string{"AttributeName"},
		ResourceShapes:       []string{"ResourceArnString"},
		TablePlaceholder:     "__TABLE__",
		AttributePlaceholder: "__ATTR__",
		ResourcePlaceholder:  "arn:test",
		StringPlaceholder:    "_TEST_",
	}
}

// OptionsFromConfig maps the generator configuration section.
func OptionsFromConfig(cfg config.GeneratorConfig) Options {
	return Options{
		MaxDepth:             cfg.MaxDepth,
		RecursiveShapes:      cfg.RecursiveShapes,
		RecursiveDepthCap:    cfg.RecursiveDepthCap,
		TableShapes:          cfg.Identifiers.TableShapes,
		AttributeShapes:      cfg.Identifiers.AttributeShapes,
		ResourceShapes:       cfg.Identifiers.ResourceShapes,
		TablePlaceholder:     cfg.Placeholders.Table,
		AttributePlaceholder: cfg.Placeholders.Attribute,
		ResourcePlaceholder:  cfg.Placeholders.Resource,
		StringPlaceholder:    cfg.Placeholders.String,
	}
}

func (o Options) identifiers() map[string]identifierKind {
	ids := make(map[string]identifierKind)
	for _, n := range o.TableShapes {
		ids[n] = tableIdentifier
	}
	for _, n := range o.AttributeShapes {
		ids[n] = attributeIdentifier
	}
	for _, n := range o.ResourceShapes {
		ids[n] = resourceIdentifier
	}
	return ids
}

func (o Options) marker(kind identifierKind) string {
	switch kind {
	case tableIdentifier:
		return o.TablePlaceholder
	case attributeIdentifier:
		return o.AttributePlaceholder
	case resourceIdentifier:
		return o.ResourcePlaceholder
	default:
		return ""
	}
}

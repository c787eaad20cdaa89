package schema

import "strings"

// TypeTag is the semantic type reported for a column.
type TypeTag string

const (
	TypeString      TypeTag = "string"
	TypeInteger     TypeTag = "integer"
	TypeFloat       TypeTag = "float"
	TypeBool        TypeTag = "bool"
	TypeList        TypeTag = "list"
	TypeDate        TypeTag = "date"
	TypeDateTime    TypeTag = "datetime"
	TypeUserDefined TypeTag = "user-defined"
)

// shapeTypeLookup maps PostgreSQL storage types reported by the shape
// import to semantic types. Read only.
var shapeTypeLookup = map[string]TypeTag{
	"integer":                     TypeInteger,
	"smallint":                    TypeInteger,
	"bigint":                      TypeInteger,
	"numeric":                     TypeFloat,
	"real":                        TypeFloat,
	"double precision":            TypeFloat,
	"character varying":           TypeString,
	"character":                   TypeString,
	"text":                        TypeString,
	"boolean":                     TypeBool,
	"date":                        TypeDate,
	"timestamp without time zone": TypeDateTime,
	"timestamp with time zone":    TypeDateTime,
	"ARRAY":                       TypeList,
	"USER-DEFINED":                TypeUserDefined,
}

// LookupShapeType maps a storage type to a TypeTag. A miss returns
// TypeUserDefined together with an *UnknownDataTypeError.
func LookupShapeType(dataType string) (TypeTag, error) {
	if tag, ok := shapeTypeLookup[strings.TrimSpace(dataType)]; ok {
		return tag, nil
	}
	return TypeUserDefined, &UnknownDataTypeError{DataType: dataType}
}

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLiteral(t *testing.T) {
	cases := []struct {
		in   string
		tag  TypeTag
		isOK bool
	}{
		{"42", TypeInteger, true},
		{"-7", TypeInteger, true},
		{"+7", TypeInteger, true},
		{"1_000", TypeInteger, true},
		{"0x1F", TypeInteger, true},
		{"0", TypeInteger, true},
		{"000", TypeInteger, true},
		{"3.14", TypeFloat, true},
		{".5", TypeFloat, true},
		{"5.", TypeFloat, true},
		{"1e5", TypeFloat, true},
		{"-36.1415201376041", TypeFloat, true},
		{"True", TypeBool, true},
		{"False", TypeBool, true},
		{"[1, 2, 3]", TypeList, true},
		{"['a', \"b\", [None, 1.5]]", TypeList, true},
		{"[]", TypeList, true},
		{"[1,]", TypeList, true},
		{"02134", "", false},
		{"nan", "", false},
		{"inf", "", false},
		{"None", "", false},
		{"'quoted'", "", false},
		{"1j", "", false},
		{"1__0", "", false},
		{"1.2.3", "", false},
		{"2024-01-05", "", false},
		{"true", "", false},
		{"[1, 2", "", false},
		{"[,]", "", false},
		{"", "", false},
		{"clinic", "", false},
	}
	for _, tc := range cases {
		tag, ok := ParseLiteral(tc.in)
		assert.Equal(t, tc.isOK, ok, tc.in)
		assert.Equal(t, tc.tag, tag, tc.in)
	}
}

func TestParseLiteralDepthLimit(t *testing.T) {
	_, ok := ParseLiteral("[[[[[[[[[[[[1]]]]]]]]]]]]")
	assert.False(t, ok)
}

func TestInferColumnType(t *testing.T) {
	assert.Equal(t, TypeInteger, InferColumnType([]string{"1", "2", "", "3"}))
	assert.Equal(t, TypeFloat, InferColumnType([]string{"1", "2.5", "3"}))
	assert.Equal(t, TypeString, InferColumnType([]string{"a", "b", "1"}))
	assert.Equal(t, TypeInteger, InferColumnType([]string{"a", "1", "2"}))
	assert.Equal(t, TypeDate, InferColumnType([]string{"2024-01-05", "2024-1-6"}))
	assert.Equal(t, TypeDateTime, InferColumnType([]string{"2024-01-05T10:00:00", "2024-01-06 11:30:00+00:00"}))
	assert.Equal(t, TypeBool, InferColumnType([]string{"True", "False"}))
	assert.Equal(t, TypeList, InferColumnType([]string{"[1]", "[]"}))
	assert.Equal(t, TypeString, InferColumnType([]string{"2023/10/23 19:46:51+00"}))
	assert.Equal(t, TypeString, InferColumnType([]string{"", ""}))
}

func TestInferColumnTypeTieBreak(t *testing.T) {
	assert.Equal(t, TypeString, InferColumnType([]string{"x", "1", "y", "2"}))
	assert.Equal(t, TypeInteger, InferColumnType([]string{"1", "x", "2", "y"}))
}

func TestInferColumnTypeStrict(t *testing.T) {
	assert.Equal(t, TypeString, InferColumnType([]string{"1", "2.5"}, WithStrict(true)))
	assert.Equal(t, TypeString, InferColumnType([]string{"1", "a", "2"}, WithStrict(true)))
	assert.Equal(t, TypeInteger, InferColumnType([]string{"1", "2"}, WithStrict(true)))
	assert.Equal(t, TypeFloat, InferColumnType([]string{"1", "2.5"}))
	assert.Equal(t, TypeString, InferColumnType([]string{"2.5", "1", "1"}, WithStrict(true)))
}

func TestInferColumnTypeNullEquivalents(t *testing.T) {
	values := []string{"nan", "1", "nan", "2"}
	assert.Equal(t, TypeString, InferColumnType(values))
	assert.Equal(t, TypeInteger, InferColumnType(values, WithNullEquivalents("", "nan")))
}

func TestInferTypes(t *testing.T) {
	rows := []Row{
		{"X": "-5.35572243464645", "osm_id": "10956361305", "name": "Midtown Clinic", "beds": "nan"},
		{"X": "-5.3", "osm_id": "10956361306", "name": "Health Centre", "beds": "nan"},
		{"X": "-5", "osm_id": "", "name": "", "beds": "nan"},
		{"X": "-5.1", "osm_id": "7", "name": "Pharmacy"},
	}

	types := InferTypes(rows)
	assert.Equal(t, map[string]TypeTag{
		"X":      TypeFloat,
		"osm_id": TypeInteger,
		"name":   TypeString,
		"beds":   TypeString,
	}, types)
}

func TestInferTypesNoRows(t *testing.T) {
	assert.Empty(t, InferTypes(nil))
}

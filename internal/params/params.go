// Package params converts user supplied values to template parameters.
//
// Values arrive either as command line strings or as HCL values from a
// manifest. Both paths go through cty so that "3" and 3 convert the same way.
package params

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/tacogips/dcg/internal/template/model"
)

// kind describes a parameter type that values can be converted to.
type kind struct {
	goType  reflect.Type
	ctyType cty.Type
}

var kinds = map[string]kind{
	"string":            {reflect.TypeOf(""), cty.String},
	"bool":              {reflect.TypeOf(false), cty.Bool},
	"int":               {reflect.TypeOf(int(0)), cty.Number},
	"int32":             {reflect.TypeOf(int32(0)), cty.Number},
	"int64":             {reflect.TypeOf(int64(0)), cty.Number},
	"uint":              {reflect.TypeOf(uint(0)), cty.Number},
	"float32":           {reflect.TypeOf(float32(0)), cty.Number},
	"float64":           {reflect.TypeOf(float64(0)), cty.Number},
	"[]string":          {reflect.TypeOf([]string(nil)), cty.List(cty.String)},
	"[]int":             {reflect.TypeOf([]int(nil)), cty.List(cty.Number)},
	"[]float64":         {reflect.TypeOf([]float64(nil)), cty.List(cty.Number)},
	"[]bool":            {reflect.TypeOf([]bool(nil)), cty.List(cty.Bool)},
	"map[string]string": {reflect.TypeOf(map[string]string(nil)), cty.Map(cty.String)},
	"map[string]int":    {reflect.TypeOf(map[string]int(nil)), cty.Map(cty.Number)},
}

// normalizeType removes spaces so "map[string] string" matches.
func normalizeType(typ string) string {
	return strings.Join(strings.Fields(typ), "")
}

func isDynamic(typ string) bool {
	return typ == "any" || typ == "interface{}"
}

// Supported reports whether values can be converted to typ.
func Supported(typ string) bool {
	typ = normalizeType(typ)
	_, ok := kinds[typ]
	return ok || isDynamic(typ)
}

// SupportedTypes returns the convertible type names, sorted.
func SupportedTypes() []string {
	names := []string{"any", "interface{}"}
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromString converts a command line value. Lists are comma separated and
// maps are written as "k=v,k=v".
func FromString(name, typ, value string) (interface{}, error) {
	norm := normalizeType(typ)
	if isDynamic(norm) {
		return value, nil
	}
	k, ok := kinds[norm]
	if !ok {
		return nil, newConversionError(UnsupportedType, name, typ, value, nil)
	}

	var v cty.Value
	switch {
	case k.ctyType.IsListType():
		v = stringList(value)
	case k.ctyType.IsMapType():
		m, err := stringMap(value)
		if err != nil {
			return nil, newConversionError(InvalidValue, name, typ, value, err)
		}
		v = m
	default:
		v = cty.StringVal(value)
	}
	return fromCty(name, typ, k, v)
}

// FromCty converts a manifest value.
func FromCty(name, typ string, v cty.Value) (interface{}, error) {
	norm := normalizeType(typ)
	if isDynamic(norm) {
		native, err := ctyToNative(v)
		if err != nil {
			return nil, newConversionError(InvalidValue, name, typ, v.GoString(), err)
		}
		return native, nil
	}
	k, ok := kinds[norm]
	if !ok {
		return nil, newConversionError(UnsupportedType, name, typ, v.GoString(), nil)
	}
	return fromCty(name, typ, k, v)
}

func fromCty(name, typ string, k kind, v cty.Value) (interface{}, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, newConversionError(InvalidValue, name, typ, "null", nil)
	}
	conv, err := convert.Convert(v, k.ctyType)
	if err != nil {
		return nil, newConversionError(InvalidValue, name, typ, describe(v), err)
	}
	target := reflect.New(k.goType)
	if err := gocty.FromCtyValue(conv, target.Interface()); err != nil {
		return nil, newConversionError(InvalidValue, name, typ, describe(v), err)
	}
	return target.Elem().Interface(), nil
}

// FromStrings converts command line values for every declared parameter, in
// declaration order. A parameter without a value is an error.
func FromStrings(decls []model.Parameter, values map[string]string) ([]interface{}, error) {
	out := make([]interface{}, 0, len(decls))
	for _, p := range decls {
		raw, ok := values[p.Name]
		if !ok {
			return nil, newConversionError(MissingValue, p.Name, p.Type, "", nil)
		}
		v, err := FromString(p.Name, p.Type, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := checkUnknown(decls, keysOf(values)); err != nil {
		return nil, err
	}
	return out, nil
}

// FromCtyObject converts the attributes of an HCL object or map for every
// declared parameter, in declaration order.
func FromCtyObject(decls []model.Parameter, obj cty.Value) ([]interface{}, error) {
	values := make(map[string]cty.Value)
	if !obj.IsNull() && obj.IsKnown() {
		ty := obj.Type()
		if !ty.IsObjectType() && !ty.IsMapType() {
			return nil, newConversionError(InvalidValue, "params", "object", describe(obj), nil)
		}
		for it := obj.ElementIterator(); it.Next(); {
			key, val := it.Element()
			values[key.AsString()] = val
		}
	}

	out := make([]interface{}, 0, len(decls))
	for _, p := range decls {
		raw, ok := values[p.Name]
		if !ok {
			return nil, newConversionError(MissingValue, p.Name, p.Type, "", nil)
		}
		v, err := FromCty(p.Name, p.Type, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	if err := checkUnknown(decls, names); err != nil {
		return nil, err
	}
	return out, nil
}

// Missing returns the declared parameters without a value.
func Missing(decls []model.Parameter, values map[string]string) []model.Parameter {
	var missing []model.Parameter
	for _, p := range decls {
		if _, ok := values[p.Name]; !ok {
			missing = append(missing, p)
		}
	}
	return missing
}

// ParseAssignments parses "name=value" arguments. The first "=" splits.
func ParseAssignments(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, newConversionError(InvalidAssignment, name, "", arg, nil)
		}
		values[name] = value
	}
	return values, nil
}

func checkUnknown(decls []model.Parameter, names []string) error {
	declared := make(map[string]bool, len(decls))
	for _, p := range decls {
		declared[p.Name] = true
	}
	sort.Strings(names)
	for _, name := range names {
		if !declared[name] {
			return newConversionError(UnknownParameter, name, "", "", nil)
		}
	}
	return nil
}

func keysOf(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func stringList(value string) cty.Value {
	if strings.TrimSpace(value) == "" {
		return cty.ListValEmpty(cty.String)
	}
	parts := strings.Split(value, ",")
	vals := make([]cty.Value, 0, len(parts))
	for _, p := range parts {
		vals = append(vals, cty.StringVal(strings.TrimSpace(p)))
	}
	return cty.ListVal(vals)
}

func stringMap(value string) (cty.Value, error) {
	if strings.TrimSpace(value) == "" {
		return cty.MapValEmpty(cty.String), nil
	}
	vals := make(map[string]cty.Value)
	for _, pair := range strings.Split(value, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return cty.NilVal, fmt.Errorf("expected key=value, got %q", pair)
		}
		vals[strings.TrimSpace(k)] = cty.StringVal(strings.TrimSpace(v))
	}
	return cty.MapVal(vals), nil
}

// describe renders v for error messages.
func describe(v cty.Value) string {
	if v.Type() == cty.String && v.IsKnown() && !v.IsNull() {
		return v.AsString()
	}
	return v.GoString()
}

// ctyToNative converts v to its most natural Go value. Numbers become int64
// when whole and float64 otherwise.
func ctyToNative(v cty.Value) (interface{}, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == 0 {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]interface{}, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]interface{})
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			out[key.AsString()] = native
		}
		return out, nil
	}

	return nil, fmt.Errorf("unsupported value of type %s", ty.FriendlyName())
}

package repository

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Op es el tipo de comparación de un Filter.
type Op int

const (
	OpEquals Op = iota + 1
	OpIn
	OpRange
	OpLike
)

// Filter es una condición sobre un campo. Se construye con Equals, In, Range,
// AtLeast, AtMost o Like.
type Filter struct {
	Op      Op
	Value   any
	Values  []any
	Min     any
	Max     any
	Pattern string
}

// Equals compara por igualdad.
func Equals(v any) Filter { return Filter{Op: OpEquals, Value: v} }

// In matchea si el campo es alguno de los valores. Una lista vacía no matchea nada.
func In(vs ...any) Filter { return Filter{Op: OpIn, Values: vs} }

// Range matchea min <= campo <= max. Un extremo nil queda abierto.
func Range(min, max any) Filter { return Filter{Op: OpRange, Min: min, Max: max} }

// AtLeast es Range(min, nil).
func AtLeast(min any) Filter { return Range(min, nil) }

// AtMost es Range(nil, max).
func AtMost(max any) Filter { return Range(nil, max) }

// Like usa la semántica de LIKE de SQL: % es cualquier secuencia y _ un carácter.
func Like(pattern string) Filter { return Filter{Op: OpLike, Pattern: pattern} }

// Filters agrupa condiciones por nombre de campo (AND implícito).
// Los campos que la entidad no conoce se ignoran.
type Filters map[string]Filter

// Where arranca un Filters con una condición.
func Where(field string, f Filter) Filters {
	return Filters{field: f}
}

// And agrega una condición y devuelve el mismo Filters.
func (fs Filters) And(field string, f Filter) Filters {
	if fs == nil {
		fs = Filters{}
	}
	fs[field] = f
	return fs
}

// Fields devuelve los nombres de campo ordenados (orden estable para SQL y tests).
func (fs Filters) Fields() []string {
	out := make([]string, 0, len(fs))
	for k := range fs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Matches evalúa todas las condiciones contra un Record.
// Las condiciones sobre campos ausentes del record se ignoran.
func (fs Filters) Matches(rec Record) bool {
	for field, f := range fs {
		v, ok := rec[field]
		if !ok {
			continue
		}
		if !f.Matches(v) {
			return false
		}
	}
	return true
}

// Matches evalúa la condición contra un valor de almacenamiento.
func (f Filter) Matches(v any) bool {
	v = Normalize(v)
	switch f.Op {
	case OpEquals:
		return equal(v, Normalize(f.Value))
	case OpIn:
		for _, want := range f.Values {
			if equal(v, Normalize(want)) {
				return true
			}
		}
		return false
	case OpRange:
		if v == nil {
			return f.Min == nil && f.Max == nil
		}
		if f.Min != nil {
			c, ok := compare(v, Normalize(f.Min))
			if !ok || c < 0 {
				return false
			}
		}
		if f.Max != nil {
			c, ok := compare(v, Normalize(f.Max))
			if !ok || c > 0 {
				return false
			}
		}
		return true
	case OpLike:
		s, ok := v.(string)
		if !ok {
			return false
		}
		return likeRegexp(f.Pattern).MatchString(s)
	}
	return false
}

// Normalize reduce un valor a su tipo base (string, int64, float64, bool,
// time.Time en UTC) para que los tipos nombrados del dominio comparen igual que
// los valores guardados.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return t.UTC()
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC()
	case []byte:
		return string(t)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	}
	return v
}

// CompareValues ordena dos valores de almacenamiento (nil primero). Tipos no
// comparables se ordenan por su representación de texto.
func CompareValues(a, b any) int {
	a, b = Normalize(a), Normalize(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if c, ok := compare(a, b); ok {
		return c
	}
	x, okx := a.(bool)
	y, oky := b.(bool)
	if okx && oky && x != y {
		if !x {
			return -1
		}
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func equal(a, b any) bool {
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

func compare(a, b any) (int, bool) {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	case int64:
		switch y := b.(type) {
		case int64:
			return cmpOrdered(x, y), true
		case float64:
			return cmpOrdered(float64(x), y), true
		}
	case float64:
		switch y := b.(type) {
		case float64:
			return cmpOrdered(x, y), true
		case int64:
			return cmpOrdered(x, float64(y)), true
		}
	case bool:
		y, ok := b.(bool)
		if !ok || x != y {
			return 0, false
		}
		return 0, true
	}
	return 0, false
}

func cmpOrdered[N int64 | float64](a, b N) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func likeRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile("(?s)" + b.String())
}

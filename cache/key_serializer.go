package cache

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// KeySeparator joins the segments of a cache key.
const KeySeparator = "::"

// nilSegment stands in for nil arguments.
const nilSegment = "-"

type defaultKeySerializer struct{}

// NewDefaultKeySerializer returns the serializer used for listing keys:
// a namespace followed by scalar arguments such as page and limit.
func NewDefaultKeySerializer() KeySerializer {
	return defaultKeySerializer{}
}

func (s defaultKeySerializer) SerializeKey(method string, args ...any) string {
	var b strings.Builder
	b.WriteString(method)
	for _, arg := range args {
		b.WriteString(KeySeparator)
		b.WriteString(segment(arg))
	}
	return b.String()
}

func segment(v any) string {
	switch tv := v.(type) {
	case nil:
		return nilSegment
	case string:
		return tv
	case int:
		return strconv.Itoa(tv)
	case bool:
		return strconv.FormatBool(tv)
	case time.Time:
		return tv.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
			return nilSegment
		}
		return tv.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return nilSegment
		}
		return segment(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nilSegment
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = segment(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

package api

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ToString converts an option value to its canonical string form.
//
// Booleans become "1"/"0", floats use the shortest lossless decimal
// form, datetimes are ISO-8601 encoded (date only when the clock is
// exactly midnight UTC).
func ToString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case time.Time:
		if h, m, s := t.Clock(); h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 && t.Location() == time.UTC {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02T15:04:05Z07:00")
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// escapeMapValue backslash-escapes the characters which are
// significant in the piped k=v encoding.
func escapeMapValue(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `=`, `\=`, `|`, `\|`)
	return r.Replace(s)
}

// EncodeMap serializes a map as "k=v|k=v" with deterministic key
// order.  List-valued inner values are JSON-encoded.
func EncodeMap(m map[string]interface{}) (string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(m))
	for _, k := range keys {
		v := m[k]
		var s string
		if rv := reflect.ValueOf(v); v != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
			data, err := json.Marshal(v)
			if err != nil {
				return "", errors.Wrap(err, "failed to encode map value")
			}
			s = string(data)
		} else {
			s = ToString(v)
		}
		pairs = append(pairs, escapeMapValue(k)+"="+escapeMapValue(s))
	}
	return strings.Join(pairs, "|"), nil
}

// EncodeDoubleArray encodes a list of coordinate lists as
// "a,b,c|d,e,f", or a flat list as "a,b,c".
func EncodeDoubleArray(v interface{}) string {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return ToString(v)
	}
	if rv.Len() == 0 {
		return ""
	}
	first := reflect.ValueOf(rv.Index(0).Interface())
	if first.Kind() == reflect.Slice || first.Kind() == reflect.Array {
		outer := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			outer[i] = joinSlice(rv.Index(i).Interface(), ",")
		}
		return strings.Join(outer, "|")
	}
	return joinSlice(v, ",")
}

func joinSlice(v interface{}, sep string) string {
	rv := reflect.ValueOf(v)
	parts := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		parts[i] = ToString(rv.Index(i).Interface())
	}
	return strings.Join(parts, sep)
}

// NormalizeParams flattens an option map into the wire form.
//
// nil values are dropped, slices expand to indexed "key[i]" entries
// preserving order, maps use the piped k=v encoding and everything
// else goes through ToString.
func NormalizeParams(params map[string]interface{}) (url.Values, error) {
	out := url.Values{}
	for k, v := range params {
		if v == nil {
			continue
		}
		switch t := v.(type) {
		case map[string]interface{}:
			s, err := EncodeMap(t)
			if err != nil {
				return nil, err
			}
			if s != "" {
				out.Set(k, s)
			}
			continue
		case map[string]string:
			m := make(map[string]interface{}, len(t))
			for mk, mv := range t {
				m[mk] = mv
			}
			s, err := EncodeMap(m)
			if err != nil {
				return nil, err
			}
			if s != "" {
				out.Set(k, s)
			}
			continue
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			for i := 0; i < rv.Len(); i++ {
				out.Set(fmt.Sprintf("%s[%d]", k, i), ToString(rv.Index(i).Interface()))
			}
			continue
		}
		s := ToString(v)
		if s != "" {
			out.Set(k, s)
		}
	}
	return out, nil
}

// JSONBody produces the single JSON document used by endpoints which
// mandate JSON bodies.  encoding/json sorts map keys so the output is
// deterministic and signatures over it match.
func JSONBody(params interface{}) ([]byte, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request body")
	}
	return data, nil
}

package report

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/MOYARU/apiprobe/internal/jsonutil"
)

const circularPlaceholder = "[Circular]"

// Sanitize returns a value that always encodes to JSON. Values that already
// encode are returned unchanged. Anything else is rebuilt: sequences element
// by element, mappings and structs key by key, and leaves that still cannot
// be encoded are stringified. Keys whose values cannot be represented become
// "[Non-serializable <type>]". Sanitize never panics and its output is a
// fixed point: Sanitize(Sanitize(v)) equals Sanitize(v).
func Sanitize(v any) (out any) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("[Non-serializable %T]", v)
		}
	}()
	if encodes(v) {
		return v
	}
	return rebuild(reflect.ValueOf(v), map[uintptr]bool{})
}

func encodes(v any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_, err := jsonutil.Marshal(v)
	return err == nil
}

// keep returns v unchanged when it already encodes. Encodable values are
// acyclic, so handing them back does not reintroduce a cycle.
func keep(v reflect.Value) (any, bool) {
	if !v.IsValid() || !v.CanInterface() {
		return nil, false
	}
	iv := v.Interface()
	if encodes(iv) {
		return iv, true
	}
	return nil, false
}

func rebuild(v reflect.Value, path map[uintptr]bool) any {
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return rebuild(v.Elem(), path)

	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		leave, seen := enter(v, path)
		if seen {
			return circularPlaceholder
		}
		defer leave()
		return rebuild(v.Elem(), path)

	case reflect.Slice:
		if v.IsNil() {
			return []any{}
		}
		leave, seen := enter(v, path)
		if seen {
			return circularPlaceholder
		}
		defer leave()
		return rebuildSeq(v, path)

	case reflect.Array:
		return rebuildSeq(v, path)

	case reflect.Map:
		if v.IsNil() {
			return map[string]any{}
		}
		leave, seen := enter(v, path)
		if seen {
			return circularPlaceholder
		}
		defer leave()
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[keyString(iter.Key())] = rebuildEntry(iter.Value(), path)
		}
		return out

	case reflect.Struct:
		return rebuildStruct(v, path)

	case reflect.String:
		return validString(v.String())

	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprint(f)
		}
		return f
	}

	if kept, ok := keep(v); ok {
		return kept
	}
	return stringify(v)
}

func rebuildSeq(v reflect.Value, path map[uintptr]bool) []any {
	out := make([]any, v.Len())
	for i := range out {
		elem := v.Index(i)
		if kept, ok := keep(elem); ok {
			out[i] = kept
			continue
		}
		out[i] = rebuild(elem, path)
	}
	return out
}

func rebuildStruct(v reflect.Value, path map[uintptr]bool) map[string]any {
	t := v.Type()
	out := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		out[validString(name)] = rebuildEntry(v.Field(i), path)
	}
	return out
}

// rebuildEntry rebuilds one mapping value, substituting a typed placeholder
// when the value cannot be represented at all.
func rebuildEntry(v reflect.Value, path map[uintptr]bool) (out any) {
	defer func() {
		if recover() != nil {
			out = placeholder(v)
		}
	}()
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return placeholder(v)
	}
	if kept, ok := keep(v); ok {
		return kept
	}
	return rebuild(v, path)
}

func placeholder(v reflect.Value) string {
	if !v.IsValid() {
		return "[Non-serializable <nil>]"
	}
	return fmt.Sprintf("[Non-serializable %s]", v.Type())
}

func stringify(v reflect.Value) string {
	if !v.CanInterface() {
		return validString(v.String())
	}
	return validString(fmt.Sprintf("%v", v.Interface()))
}

func keyString(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return validString(k.String())
	}
	return stringify(k)
}

func validString(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "�")
}

// enter marks a reference value as being on the current descent path.
func enter(v reflect.Value, path map[uintptr]bool) (func(), bool) {
	ptr := v.Pointer()
	if ptr == 0 {
		return func() {}, false
	}
	if path[ptr] {
		return nil, true
	}
	path[ptr] = true
	return func() { delete(path, ptr) }, false
}

// SanitizeReport applies Sanitize to every free-form part of r. It returns r
// itself when the report already encodes.
func SanitizeReport(r *ScanReport) *ScanReport {
	if r == nil || encodes(r) {
		return r
	}
	out := *r
	out.RawResponse = Sanitize(r.RawResponse)
	out.Endpoint.URL = validString(r.Endpoint.URL)
	if r.Endpoint.Headers != nil {
		out.Endpoint.Headers = make(map[string]string, len(r.Endpoint.Headers))
		for k, v := range r.Endpoint.Headers {
			out.Endpoint.Headers[validString(k)] = validString(v)
		}
	}
	if r.Endpoint.Body != nil {
		body := validString(*r.Endpoint.Body)
		out.Endpoint.Body = &body
	}
	out.Findings = make([]Finding, len(r.Findings))
	for i, f := range r.Findings {
		f.Name = validString(f.Name)
		f.Description = validString(f.Description)
		f.Details = validString(f.Details)
		out.Findings[i] = f
	}
	return &out
}

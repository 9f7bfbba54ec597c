package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyDelimiter separates key segments.
const KeyDelimiter = ":"

// TenantSegment prefixes the tenant identifier inside a key.
const TenantSegment = "company"

// BuildKey composes a cache key from a resource type, an optional tenant
// identifier and ordered parameters: resource[:company:tenant][:param...].
// The tenant segment is omitted when tenantID is empty.
//
// Parameters are stringified as-is. A raw user-controlled string must go
// through SanitizeParam first, otherwise a value containing the delimiter can
// make two logical resources share a key.
func BuildKey(resourceType string, tenantID string, params ...any) string {
	segments := make([]string, 0, 3+len(params))
	segments = append(segments, resourceType)
	if tenantID != "" {
		segments = append(segments, TenantSegment, tenantID)
	}
	for _, p := range params {
		segments = append(segments, formatParam(p))
	}
	return strings.Join(segments, KeyDelimiter)
}

// ResourcePattern matches every key built under resourceType for tenantID
// with at least one extra parameter.
func ResourcePattern(resourceType string, tenantID string) string {
	return BuildKey(resourceType, tenantID) + KeyDelimiter + "*"
}

// TenantPatterns returns the patterns covering every key of one tenant,
// both the bare resource:company:id form and the parameterised one.
func TenantPatterns(tenantID string) []string {
	base := "*" + KeyDelimiter + TenantSegment + KeyDelimiter + tenantID
	return []string{base, base + KeyDelimiter + "*"}
}

// SanitizeParam replaces the delimiter, glob metacharacters and whitespace
// with underscores. It is a helper for callers that key on free text; the
// built-in services only key on integers and formatted dates, and tenant IDs
// are validated with ValidTenantID instead.
func SanitizeParam(s string) string {
	return strings.Map(func(r rune) rune {
		if isReserved(r) {
			return '_'
		}
		return r
	}, s)
}

// ValidTenantID reports whether id can be used as a tenant segment verbatim.
func ValidTenantID(id string) bool {
	if id == "" {
		return false
	}
	return strings.IndexFunc(id, isReserved) < 0
}

func isReserved(r rune) bool {
	switch r {
	case ':', '*', '?', '[', ']', '\\', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func formatParam(p any) string {
	switch v := p.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

package cache

import "time"

// DataClass names a family of cached data sharing one TTL.
type DataClass string

const (
	ClassDashboard    DataClass = "dashboard"
	ClassProductList  DataClass = "product-list"
	ClassReport       DataClass = "report"
	ClassCatalog      DataClass = "catalog"
	ClassFinancial    DataClass = "financial"
	ClassCustomerList DataClass = "customer-list"
	ClassDefault      DataClass = "default"
)

// DefaultTTL applies to ClassDefault and to any unknown class.
const DefaultTTL = 300 * time.Second

// Classes lists every known data class.
func Classes() []DataClass {
	return []DataClass{
		ClassDashboard,
		ClassProductList,
		ClassReport,
		ClassCatalog,
		ClassFinancial,
		ClassCustomerList,
		ClassDefault,
	}
}

// Policy maps data classes to TTLs. It is built once at startup and only read
// afterwards; a change affects future writes only.
type Policy struct {
	ttls map[DataClass]time.Duration
}

// DefaultPolicy returns the built-in TTL table.
func DefaultPolicy() Policy {
	return Policy{ttls: map[DataClass]time.Duration{
		ClassDashboard:    2 * time.Minute,
		ClassProductList:  10 * time.Minute,
		ClassReport:       30 * time.Minute,
		ClassCatalog:      time.Hour,
		ClassFinancial:    5 * time.Minute,
		ClassCustomerList: 10 * time.Minute,
		ClassDefault:      DefaultTTL,
	}}
}

// NewPolicy returns the default table with overrides applied. Non-positive
// overrides are ignored.
func NewPolicy(overrides map[DataClass]time.Duration) Policy {
	p := DefaultPolicy()
	for class, ttl := range overrides {
		if ttl > 0 {
			p.ttls[class] = ttl
		}
	}
	return p
}

// TTLFor returns the TTL configured for class, falling back to the default
// class for unknown names.
func (p Policy) TTLFor(class DataClass) time.Duration {
	if ttl, ok := p.ttls[class]; ok {
		return ttl
	}
	return p.Default()
}

// Default returns the TTL used when a caller gives none.
func (p Policy) Default() time.Duration {
	if ttl, ok := p.ttls[ClassDefault]; ok && ttl > 0 {
		return ttl
	}
	return DefaultTTL
}

package consumer

import (
	"fmt"

	"spapi/pkg/domain"
)

// Registry is a read-only lookup of consumers by organization number.
// It is built once at startup and safe for concurrent use without locking.
type Registry struct {
	byOrg map[string]*Consumer
	all   []*Consumer
}

// NewRegistry builds a registry. Two consumers sharing an organization
// number is a configuration error and must abort startup.
func NewRegistry(consumers ...*Consumer) (*Registry, error) {
	r := &Registry{byOrg: make(map[string]*Consumer, len(consumers))}
	for _, c := range consumers {
		key := c.OrganizationNumber.String()
		if _, exists := r.byOrg[key]; exists {
			return nil, fmt.Errorf("duplicate consumer with organization number %s", key)
		}
		r.byOrg[key] = c
		r.all = append(r.all, c)
	}
	return r, nil
}

// Lookup returns the consumer registered under the organization number.
func (r *Registry) Lookup(org domain.OrganizationNumber) (*Consumer, bool) {
	c, ok := r.byOrg[org.String()]
	return c, ok
}

// All returns every registered consumer.
func (r *Registry) All() []*Consumer {
	out := make([]*Consumer, len(r.all))
	copy(out, r.all)
	return out
}

package agents

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/JaimeStill/agent-chat/pkg/query"
)

// Filters contains optional filtering criteria for agent queries.
type Filters struct {
	Owner    *string
	Provider *Provider
	Active   *bool
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if o := values.Get("owner"); o != "" {
		f.Owner = &o
	}
	if p := values.Get("provider"); p != "" {
		provider := Provider(p)
		f.Provider = &provider
	}
	if a := values.Get("active"); a != "" {
		if active, err := strconv.ParseBool(a); err == nil {
			f.Active = &active
		}
	}

	return f
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	if f.Owner != nil {
		b.WhereEquals("OwnerUserID", *f.Owner)
	}
	if f.Provider != nil {
		b.WhereEquals("Provider", string(*f.Provider))
	}
	if f.Active != nil {
		b.WhereEquals("Active", *f.Active)
	}
	return b
}

// Match reports whether a satisfies the filters.
func (f Filters) Match(a Agent) bool {
	if f.Owner != nil && a.OwnerUserID != *f.Owner {
		return false
	}
	if f.Provider != nil && a.Provider != *f.Provider {
		return false
	}
	if f.Active != nil && a.Active != *f.Active {
		return false
	}
	return true
}

// matchSearch reports a case-insensitive substring match on name or description.
func matchSearch(a Agent, search *string) bool {
	if search == nil || *search == "" {
		return true
	}
	term := strings.ToLower(*search)
	return strings.Contains(strings.ToLower(a.Name), term) ||
		strings.Contains(strings.ToLower(a.Description), term)
}

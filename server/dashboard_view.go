package server

import (
	"net/url"
	"sort"

	"github.com/jrsteele09/dogtv-dashboard/tvs"
)

const queryOpen = "open"

// Expansion is the set of TvGroup ids shown expanded. It lives only in the page URL,
// so every new visit to the dashboard starts with everything collapsed.
type Expansion map[string]bool

func ParseExpansion(q url.Values) Expansion {
	e := Expansion{}
	for _, id := range q[queryOpen] {
		if id != "" {
			e[id] = true
		}
	}
	return e
}

// Toggle returns a copy of e with id flipped. e itself is unchanged.
func (e Expansion) Toggle(id string) Expansion {
	out := make(Expansion, len(e)+1)
	for k := range e {
		out[k] = true
	}
	if out[id] {
		delete(out, id)
	} else {
		out[id] = true
	}
	return out
}

// Query encodes e with ids in a stable order.
func (e Expansion) Query() string {
	ids := make([]string, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	q := url.Values{}
	for _, id := range ids {
		q.Add(queryOpen, id)
	}
	return q.Encode()
}

// Href is path with e as its query.
func (e Expansion) Href(path string) string {
	if q := e.Query(); q != "" {
		return path + "?" + q
	}
	return path
}

// TvEntry is one collapsible TvGroup as rendered on the dashboard.
type TvEntry struct {
	tvs.TvGroup
	Open       bool
	ToggleHref string
}

// buildEntries drops ids that name no group, then links each header to the page
// with only its own id toggled.
func buildEntries(path string, groups []tvs.TvGroup, exp Expansion) []TvEntry {
	known := Expansion{}
	for _, g := range groups {
		if exp[g.ID] {
			known[g.ID] = true
		}
	}
	entries := make([]TvEntry, 0, len(groups))
	for _, g := range groups {
		entries = append(entries, TvEntry{
			TvGroup:    g,
			Open:       known[g.ID],
			ToggleHref: known.Toggle(g.ID).Href(path),
		})
	}
	return entries
}

// Package catalog holds the fixed, ordered set of mobiles offered for booking.
package catalog

import "strings"

type Catalog struct {
	mobiles []string
	index   map[string]struct{}
}

// New keeps the first occurrence of every id, trimmed, in the given order.
// Blank ids are skipped.
func New(mobiles []string) *Catalog {
	c := &Catalog{
		mobiles: make([]string, 0, len(mobiles)),
		index:   make(map[string]struct{}, len(mobiles)),
	}
	for _, m := range mobiles {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, dup := c.index[m]; dup {
			continue
		}
		c.index[m] = struct{}{}
		c.mobiles = append(c.mobiles, m)
	}
	return c
}

// Parse builds a catalog from a comma separated list.
func Parse(list string) *Catalog {
	return New(strings.Split(list, ","))
}

// Mobiles returns a copy of the ids in catalog order.
func (c *Catalog) Mobiles() []string {
	out := make([]string, len(c.mobiles))
	copy(out, c.mobiles)
	return out
}

func (c *Catalog) Contains(mobile string) bool {
	_, ok := c.index[mobile]
	return ok
}

func (c *Catalog) Len() int {
	return len(c.mobiles)
}

package registry

import "log/slog"

// Connections maps connection tags to their identity tables. The empty tag is
// a valid key, meaning "no explicit connection tag in the log". A Connections
// value is owned by one parse; it is never shared between traces.
type Connections struct {
	tables map[string]*Table
	log    *slog.Logger
}

// NewConnections returns an empty connection registry.
func NewConnections(log *slog.Logger) *Connections {
	return &Connections{tables: make(map[string]*Table), log: log}
}

// Table returns the identity table for a connection tag, creating it on first
// use. A fresh table is seeded with wl_display#1, which every connection owns
// implicitly without a "new id" line ever announcing it.
func (c *Connections) Table(connection string) *Table {
	t, ok := c.tables[connection]
	if !ok {
		t = NewTable(c.log)
		// The display is object 1 on every Wayland connection.
		_, _ = t.Create("wl_display", 1)
		c.tables[connection] = t
	}
	return t
}

// Len returns the number of distinct connections seen so far.
func (c *Connections) Len() int {
	return len(c.tables)
}

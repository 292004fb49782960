// Package state computes desired network state documents from legacy
// network configuration diffed against the previously persisted running
// config and the live current state. All builders are pure computations;
// fetching and applying state belong to the caller.
package state

import (
	"github.com/projecteru2/yanet/internal/nmstate"
)

// CurrentState is a read-only snapshot of the manager's reported state,
// indexed for the builders. Routes and DNS come from the "running" view,
// rules from the "config" view; the manager's schema has no running view
// for rules.
type CurrentState struct {
	ifaces map[string]nmstate.Interface
	dns    []string
	routes []nmstate.Route
	rules  []nmstate.RouteRule
}

// ParseCurrentState indexes one reported document.
func ParseCurrentState(doc *nmstate.NetworkState) *CurrentState {
	cur := &CurrentState{
		ifaces: make(map[string]nmstate.Interface, len(doc.Interfaces)),
	}
	for _, iface := range doc.Interfaces {
		cur.ifaces[iface.Name] = iface
	}
	if doc.DNS != nil && doc.DNS.Running != nil {
		cur.dns = doc.DNS.Running.Server
	}
	if doc.Routes != nil {
		cur.routes = doc.Routes.Running
	}
	if doc.RouteRules != nil {
		cur.rules = doc.RouteRules.Config
	}
	return cur
}

// Interfaces .
func (c *CurrentState) Interfaces() map[string]nmstate.Interface {
	return c.ifaces
}

// Iface .
func (c *CurrentState) Iface(name string) (nmstate.Interface, bool) {
	iface, ok := c.ifaces[name]
	return iface, ok
}

// FilteredInterfaces returns the subset of interfaces with the given
// names, skipping unknown ones.
func (c *CurrentState) FilteredInterfaces(names []string) map[string]nmstate.Interface {
	filtered := make(map[string]nmstate.Interface, len(names))
	for _, name := range names {
		if iface, ok := c.ifaces[name]; ok {
			filtered[name] = iface
		}
	}
	return filtered
}

// MacAddress returns the live MAC of the named interface, or empty when
// unknown.
func (c *CurrentState) MacAddress(name string) string {
	iface, ok := c.ifaces[name]
	if !ok {
		return ""
	}
	return iface.MacAddress
}

// MTU returns the live MTU of the named interface, or 0 when unknown.
func (c *CurrentState) MTU(name string) int {
	iface, ok := c.ifaces[name]
	if !ok {
		return 0
	}
	return iface.MTU
}

// IsUp .
func (c *CurrentState) IsUp(name string) bool {
	iface, ok := c.ifaces[name]
	return ok && iface.State == nmstate.StateUp
}

// DNS .
func (c *CurrentState) DNS() []string {
	return c.dns
}

// Routes .
func (c *CurrentState) Routes() []nmstate.Route {
	return c.routes
}

// Rules .
func (c *CurrentState) Rules() []nmstate.RouteRule {
	return c.rules
}

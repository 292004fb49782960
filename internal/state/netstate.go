package state

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"

	"github.com/projecteru2/yanet/internal/nmstate"
)

// NetState accumulates every per-network fragment of one batch and
// assembles the final desired-state document.
type NetState struct {
	ifaces      map[string]*nmstate.Interface
	routes      []nmstate.Route
	rules       []nmstate.RouteRule
	dnsByNet    map[string][]string
	dnsOrder    []string
	ovnMappings *string
}

// NewNetState .
func NewNetState() *NetState {
	return &NetState{
		ifaces:   map[string]*nmstate.Interface{},
		dnsByNet: map[string][]string{},
	}
}

// AddInterface stores one fragment, replacing any previous fragment of
// the same name.
func (s *NetState) AddInterface(iface *nmstate.Interface) {
	s.ifaces[iface.Name] = iface
}

// Interface returns the accumulated fragment for name, or nil.
func (s *NetState) Interface(name string) *nmstate.Interface {
	return s.ifaces[name]
}

// AddRoutes .
func (s *NetState) AddRoutes(routes []nmstate.Route) {
	s.routes = append(s.routes, routes...)
}

// AddRouteRules .
func (s *NetState) AddRouteRules(rules []nmstate.RouteRule) {
	s.rules = append(s.rules, rules...)
}

// AddNetworkDNS records one network's nameserver opinion; nil means no
// opinion and is not recorded. Per-network order is preserved into the
// flattened document, networks in insertion order.
func (s *NetState) AddNetworkDNS(network string, servers *[]string) {
	if servers == nil {
		return
	}
	if _, ok := s.dnsByNet[network]; !ok {
		s.dnsOrder = append(s.dnsOrder, network)
	}
	s.dnsByNet[network] = *servers
}

// SetOvnMappings records the OVN bridge-mapping string. The empty string
// is a valid value (an OVS batch with zero mappings) distinct from the
// mapping never being set (no OVS batch at all).
func (s *NetState) SetOvnMappings(mappings string) {
	s.ovnMappings = &mappings
}

// AddBondState layers one bond fragment into the interface map. A bond
// may already carry a fragment from serving as some network's base
// device; its IP and MTU fields survive, with the bond-specific fields
// set on top. Removal fragments replace outright.
func (s *NetState) AddBondState(iface *nmstate.Interface) {
	existing, ok := s.ifaces[iface.Name]
	if !ok || iface.State == nmstate.StateAbsent {
		s.ifaces[iface.Name] = iface
		return
	}

	existing.Type = iface.Type
	existing.State = iface.State
	existing.Bond = iface.Bond
	if iface.MacAddress != "" {
		existing.MacAddress = iface.MacAddress
	}
	if existing.IPv4 == nil {
		existing.IPv4 = iface.IPv4
	}
	if existing.IPv6 == nil {
		existing.IPv6 = iface.IPv6
	}
}

// UpdateMTU runs the two cross-cutting MTU passes over the accumulated
// fragments. The VLAN pass only runs when the batch requested at least
// one linux-bridge network.
func (s *NetState) UpdateMTU(current *CurrentState, linuxBridgeRequested bool) {
	if linuxBridgeRequested {
		s.setVlanBaseMTU(current)
	}
	s.setBondSlavesMTU(current)
}

// setVlanBaseMTU raises every VLAN base interface's MTU to the largest
// MTU among its live VLANs, so a VLAN's effective MTU never exceeds its
// carrier's.
func (s *NetState) setVlanBaseMTU(current *CurrentState) {
	baseMTUs := map[string][]int{}
	for name, iface := range current.Interfaces() {
		if iface.Type != nmstate.TypeVlan || iface.Vlan == nil {
			continue
		}
		desired := s.ifaces[name]
		if desired != nil && desired.State == nmstate.StateAbsent {
			continue
		}

		mtu := iface.MTU
		if desired != nil && desired.MTU > 0 {
			mtu = desired.MTU
		}
		base := iface.Vlan.BaseIface
		baseMTUs[base] = append(baseMTUs[base], mtu)
		if baseDesired := s.ifaces[base]; baseDesired != nil && baseDesired.MTU > 0 {
			baseMTUs[base] = append(baseMTUs[base], baseDesired.MTU)
		}
	}

	for base, mtus := range baseMTUs {
		maxMTU := lo.Max(mtus)
		if frag := s.ifaces[base]; frag != nil {
			frag.MTU = maxMTU
		} else if current.MTU(base) != maxMTU {
			s.ifaces[base] = &nmstate.Interface{
				Name:  base,
				State: nmstate.StateUp,
				MTU:   maxMTU,
			}
		}
	}
}

// setBondSlavesMTU pushes every bond's effective MTU down to its slaves.
// A slave that already has a fragment keeps the larger of the two MTUs,
// covering a VLAN sitting directly on a bond slave.
func (s *NetState) setBondSlavesMTU(current *CurrentState) {
	bonds := mapset.NewThreadUnsafeSet[string]()
	for name, frag := range s.ifaces {
		if frag.Type == nmstate.TypeBond || frag.Bond != nil {
			bonds.Add(name)
		}
	}
	for name, iface := range current.Interfaces() {
		if iface.Type == nmstate.TypeBond {
			bonds.Add(name)
		}
	}

	names := bonds.ToSlice()
	sort.Strings(names)
	for _, name := range names {
		frag := s.ifaces[name]
		curIface, inCurrent := current.Iface(name)

		mtu := nmstate.DefaultMTU
		switch {
		case frag != nil && frag.State == nmstate.StateAbsent:
			// removed bonds fall back to the default
		case frag != nil && frag.MTU > 0:
			mtu = frag.MTU
		case inCurrent && curIface.MTU > 0:
			mtu = curIface.MTU
		}

		var slaves []string
		switch {
		case frag != nil && frag.Bond != nil && len(frag.Bond.Port) > 0:
			slaves = frag.Bond.Port
		case inCurrent && curIface.Bond != nil:
			slaves = curIface.Bond.Port
		}

		for _, slave := range slaves {
			if slaveFrag := s.ifaces[slave]; slaveFrag != nil {
				if mtu > slaveFrag.MTU {
					slaveFrag.MTU = mtu
				}
			} else if current.MTU(slave) != mtu {
				s.ifaces[slave] = &nmstate.Interface{
					Name:  slave,
					State: nmstate.StateUp,
					MTU:   mtu,
				}
			}
		}
	}
}

// State assembles the final document: interfaces sorted by name, routes
// and rules under their config keys when non-empty, nameservers
// flattened, and the OVN mapping attached whenever an OVS batch set it
// (including the empty-string case).
func (s *NetState) State() *nmstate.NetworkState {
	doc := &nmstate.NetworkState{}

	names := lo.Keys(s.ifaces)
	sort.Strings(names)
	doc.Interfaces = make([]nmstate.Interface, 0, len(names))
	for _, name := range names {
		doc.Interfaces = append(doc.Interfaces, *s.ifaces[name])
	}

	if len(s.routes) > 0 {
		doc.Routes = &nmstate.Routes{Config: s.routes}
	}
	if len(s.rules) > 0 {
		doc.RouteRules = &nmstate.RouteRules{Config: s.rules}
	}

	var servers []string
	for _, network := range s.dnsOrder {
		servers = append(servers, s.dnsByNet[network]...)
	}
	if len(servers) > 0 {
		doc.DNS = &nmstate.DNSState{Config: &nmstate.DNSResolver{Server: servers}}
	}

	if s.ovnMappings != nil {
		doc.OvsDB = &nmstate.OvsDBGlobal{
			ExternalIDs: map[string]string{
				nmstate.OvnBridgeMappingsKey: *s.ovnMappings,
			},
		}
	}
	return doc
}

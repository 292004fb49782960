package state

import (
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/projecteru2/yanet/internal/netconf"
	"github.com/projecteru2/yanet/internal/nmstate"
)

// OvsInfo indexes the northbound/southbound/bridge relationships found
// in current state. It is rebuilt fresh for every operation and holds
// read-only views; planners build their own maps instead of mutating it.
type OvsInfo struct {
	// NorthboundsBySouthbound maps each southbound device to the set of
	// northbound interfaces riding its bridge.
	NorthboundsBySouthbound map[string]mapset.Set[string]
	// PortsByBridge maps each OVS bridge to its full port list.
	PortsByBridge map[string][]nmstate.BridgePort
	// BridgeBySouthbound maps each southbound device to its bridge.
	BridgeBySouthbound map[string]string
	// PortByName maps every bridge port to its port entry.
	PortByName map[string]nmstate.BridgePort
}

// NewOvsInfo derives the OVS indices from current state. A bridge port
// backed by an ovs-interface is northbound; any other port is the
// bridge's southbound device.
func NewOvsInfo(current *CurrentState) *OvsInfo {
	info := &OvsInfo{
		NorthboundsBySouthbound: map[string]mapset.Set[string]{},
		PortsByBridge:           map[string][]nmstate.BridgePort{},
		BridgeBySouthbound:      map[string]string{},
		PortByName:              map[string]nmstate.BridgePort{},
	}

	for name, iface := range current.Interfaces() {
		if iface.Type != nmstate.TypeOvsBridge || iface.Bridge == nil {
			continue
		}
		info.PortsByBridge[name] = iface.Bridge.Port

		var southbound string
		northbounds := mapset.NewThreadUnsafeSet[string]()
		for _, port := range iface.Bridge.Port {
			info.PortByName[port.Name] = port
			if portIface, ok := current.Iface(port.Name); ok && portIface.Type == nmstate.TypeOvsInterface {
				northbounds.Add(port.Name)
			} else {
				southbound = port.Name
			}
		}
		if southbound != "" {
			info.BridgeBySouthbound[southbound] = name
			info.NorthboundsBySouthbound[southbound] = northbounds
		}
	}
	return info
}

// GenerateOvsState builds the desired state for one batch of OVS
// networks: the per-southbound bridge plan, per-network northbound
// interfaces and ports, routes, rules, DNS and the OVN bridge-mapping
// string. The mapping is set even when empty so consumers can tell an
// OVS batch with zero mappings from a batch with no OVS networks.
func GenerateOvsState(ns *NetState, nets, running map[string]*netconf.NetworkConfig, current *CurrentState) error {
	info := NewOvsInfo(current)
	plan := planBridges(nets, running)

	bridgeBySouthbound := map[string]string{}
	southbounds := lo.Keys(plan.northbounds)
	sort.Strings(southbounds)
	for _, southbound := range southbounds {
		northbounds := plan.northbounds[southbound]
		existing := info.BridgeBySouthbound[southbound]
		touched := plan.touched.Contains(southbound)

		if northbounds.Cardinality() == 0 {
			if existing != "" && touched {
				ns.AddInterface(&nmstate.Interface{
					Name:  existing,
					State: nmstate.StateAbsent,
				})
			}
			continue
		}

		if existing == "" && !touched {
			// Running config claims networks on this device but current
			// state has no bridge for it; nothing to reconcile here.
			continue
		}

		bridge := existing
		if bridge == "" {
			bridge = randomBridgeName()
		}
		bridgeBySouthbound[southbound] = bridge

		mtu := maxNorthboundMTU(northbounds, nets, current)
		if !touched {
			// Untouched bridges only surface when their southbound MTU
			// must grow to satisfy a northbound network.
			if current.MTU(southbound) != mtu {
				ns.AddInterface(southboundState(southbound, mtu))
			}
			continue
		}

		ports := []nmstate.BridgePort{{Name: southbound}}
		if existing != "" {
			// Keep the persisted port list, dropping ports owned by
			// networks reconfigured in this batch; the per-network
			// builder appends them back. Ports not managed here are
			// preserved untouched.
			ports = nil
			for _, port := range info.PortsByBridge[existing] {
				if _, reconfigured := nets[port.Name]; reconfigured {
					continue
				}
				ports = append(ports, port)
			}
		}
		ns.AddInterface(&nmstate.Interface{
			Name:   bridge,
			Type:   nmstate.TypeOvsBridge,
			State:  nmstate.StateUp,
			Bridge: &nmstate.BridgeConfig{Port: ports},
		})
		ns.AddInterface(southboundState(southbound, mtu))
	}

	names := lo.Keys(nets)
	sort.Strings(names)
	for _, name := range names {
		cfg := nets[name]
		prev := running[name]
		if err := buildOvsNetwork(ns, cfg, prev, current, bridgeBySouthbound); err != nil {
			return err
		}
	}

	for _, bridge := range bridgeBySouthbound {
		if frag := ns.Interface(bridge); frag != nil && frag.Bridge != nil {
			sort.Slice(frag.Bridge.Port, func(i, j int) bool {
				return frag.Bridge.Port[i].Name < frag.Bridge.Port[j].Name
			})
		}
	}

	ns.SetOvnMappings(ovnBridgeMappings(plan.northbounds, info, bridgeBySouthbound))
	return nil
}

type bridgePlan struct {
	northbounds map[string]mapset.Set[string]
	touched     mapset.Set[string]
}

// planBridges computes the desired northbound set per southbound device:
// the running OVS networks, minus networks removed or moved off their
// device, plus the batch's networks on their new devices.
func planBridges(nets, running map[string]*netconf.NetworkConfig) bridgePlan {
	plan := bridgePlan{
		northbounds: map[string]mapset.Set[string]{},
		touched:     mapset.NewThreadUnsafeSet[string](),
	}
	add := func(southbound, network string) {
		if _, ok := plan.northbounds[southbound]; !ok {
			plan.northbounds[southbound] = mapset.NewThreadUnsafeSet[string]()
		}
		plan.northbounds[southbound].Add(network)
	}

	for name, prev := range running {
		if prev.Ovs() && prev.BaseIface() != "" {
			add(prev.BaseIface(), name)
		}
	}
	for name, cfg := range nets {
		prev := running[name]
		if prev != nil && prev.BaseIface() != "" {
			old := prev.BaseIface()
			if cfg.Remove || old != cfg.BaseIface() {
				if set, ok := plan.northbounds[old]; ok {
					set.Remove(name)
				}
				plan.touched.Add(old)
			}
		}
		if !cfg.Remove && cfg.BaseIface() != "" {
			add(cfg.BaseIface(), name)
			plan.touched.Add(cfg.BaseIface())
		}
	}
	return plan
}

func buildOvsNetwork(ns *NetState, cfg, prev *netconf.NetworkConfig, current *CurrentState, bridgeBySouthbound map[string]string) error {
	servers := BuildDNS(cfg, prev)
	ns.AddNetworkDNS(cfg.Name, servers)
	ns.AddRoutes(BuildRoutes(cfg, prev))
	routes, rules, err := BuildSourceRoutes(cfg, prev, current)
	if err != nil {
		return err
	}
	ns.AddRoutes(routes)
	ns.AddRouteRules(rules)

	if cfg.Remove {
		ns.AddInterface(&nmstate.Interface{
			Name:  cfg.Name,
			State: nmstate.StateAbsent,
		})
		return nil
	}

	autoDNS := AutoDNS(cfg, servers)
	ipv4, err := BuildIPv4(cfg, autoDNS)
	if err != nil {
		return err
	}
	ipv6, err := BuildIPv6(cfg, autoDNS)
	if err != nil {
		return err
	}
	northbound := &nmstate.Interface{
		Name:  cfg.Name,
		Type:  nmstate.TypeOvsInterface,
		State: nmstate.StateUp,
		MTU:   cfg.MTU,
		IPv4:  ipv4,
		IPv6:  ipv6,
	}
	// Carrying the southbound MAC onto the northbound interface keeps
	// DHCP lease continuity across the MAC split.
	if mac := current.MacAddress(cfg.BaseIface()); mac != "" {
		northbound.MacAddress = mac
	}
	ns.AddInterface(northbound)

	bridge := ns.Interface(bridgeBySouthbound[cfg.BaseIface()])
	if bridge == nil || bridge.Bridge == nil {
		return nil
	}
	port := nmstate.BridgePort{Name: cfg.Name}
	if cfg.Vlan != nil {
		port.Vlan = &nmstate.PortVlanConf{
			Mode: nmstate.OvsPortModeAccess,
			Tag:  *cfg.Vlan,
		}
	}
	bridge.Bridge.Port = append(bridge.Bridge.Port, port)
	return nil
}

func maxNorthboundMTU(northbounds mapset.Set[string], nets map[string]*netconf.NetworkConfig, current *CurrentState) int {
	mtu := 0
	for _, name := range northbounds.ToSlice() {
		netMTU := 0
		if cfg, ok := nets[name]; ok {
			netMTU = cfg.MTU
		} else {
			netMTU = current.MTU(name)
		}
		if netMTU > mtu {
			mtu = netMTU
		}
	}
	if mtu == 0 {
		mtu = nmstate.DefaultMTU
	}
	return mtu
}

func southboundState(name string, mtu int) *nmstate.Interface {
	return &nmstate.Interface{
		Name:  name,
		State: nmstate.StateUp,
		MTU:   mtu,
		IPv4:  DisabledIP(),
		IPv6:  DisabledIP(),
	}
}

// ovnBridgeMappings renders "northbound:bridge" pairs sorted by
// northbound name. The literal empty string is significant downstream.
func ovnBridgeMappings(northbounds map[string]mapset.Set[string], info *OvsInfo, bridgeBySouthbound map[string]string) string {
	var pairs []string
	for southbound, nbs := range northbounds {
		bridge := bridgeBySouthbound[southbound]
		if bridge == "" {
			bridge = info.BridgeBySouthbound[southbound]
		}
		if bridge == "" {
			continue
		}
		for _, nb := range nbs.ToSlice() {
			pairs = append(pairs, nb+":"+bridge)
		}
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

// randomBridgeName generates a fresh bridge name; existing bridges keep
// their names verbatim, so randomness only shows up on creation.
func randomBridgeName() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return nmstate.OvsBridgePrefix + suffix[:8]
}

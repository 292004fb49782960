// Package nmstate types the declarative network state documents exchanged
// with the external state manager. Field names follow the manager's wire
// schema; all internal computation stays on these typed values and only
// the document boundary serializes them.
package nmstate

import "encoding/json"

// Interface is one interface's desired or reported configuration.
// The zero value of an optional field means "no opinion".
type Interface struct {
	Name       string          `json:"name"`
	Type       InterfaceType   `json:"type,omitempty"`
	State      InterfaceState  `json:"state,omitempty"`
	MTU        int             `json:"mtu,omitempty"`
	MacAddress string          `json:"mac-address,omitempty"`
	IPv4       *IPConfig       `json:"ipv4,omitempty"`
	IPv6       *IPConfig       `json:"ipv6,omitempty"`
	Vlan       *VlanConfig     `json:"vlan,omitempty"`
	Bridge     *BridgeConfig   `json:"bridge,omitempty"`
	Bond       *BondConfig     `json:"link-aggregation,omitempty"`
	Ethernet   *EthernetConfig `json:"ethernet,omitempty"`
}

// IPConfig is one address family's state on one interface.
type IPConfig struct {
	Enabled          bool        `json:"enabled"`
	Address          []IPAddress `json:"address,omitempty"`
	DHCP             *bool       `json:"dhcp,omitempty"`
	Autoconf         *bool       `json:"autoconf,omitempty"`
	AutoDNS          *bool       `json:"auto-dns,omitempty"`
	AutoGateway      *bool       `json:"auto-gateway,omitempty"`
	AutoRoutes       *bool       `json:"auto-routes,omitempty"`
	AutoRouteTableID *uint32     `json:"auto-route-table-id,omitempty"`
}

// IPAddress .
type IPAddress struct {
	IP           string `json:"ip"`
	PrefixLength int    `json:"prefix-length"`
}

// VlanConfig .
type VlanConfig struct {
	BaseIface string `json:"base-iface"`
	ID        int    `json:"id"`
}

// BridgeConfig covers both linux-bridge and ovs-bridge interfaces.
type BridgeConfig struct {
	Options *BridgeOptions `json:"options,omitempty"`
	Port    []BridgePort   `json:"port,omitempty"`
}

// BridgeOptions .
type BridgeOptions struct {
	STP *STPOptions `json:"stp,omitempty"`
}

// STPOptions .
type STPOptions struct {
	Enabled bool `json:"enabled"`
}

// BridgePort .
type BridgePort struct {
	Name string        `json:"name"`
	Vlan *PortVlanConf `json:"vlan,omitempty"`
}

// PortVlanConf tags an OVS port with its VLAN mode and tag.
type PortVlanConf struct {
	Mode string `json:"mode,omitempty"`
	Tag  int    `json:"tag,omitempty"`
}

// BondConfig .
type BondConfig struct {
	Mode    string            `json:"mode,omitempty"`
	Port    []string          `json:"port,omitempty"`
	Options map[string]string `json:"options,omitempty"`
}

// EthernetConfig .
type EthernetConfig struct {
	SRIOV *SRIOVConfig `json:"sr-iov,omitempty"`
}

// SRIOVConfig .
type SRIOVConfig struct {
	TotalVFs int `json:"total-vfs"`
}

// Route is one routing entry. Removal entries carry State "absent".
type Route struct {
	State            string `json:"state,omitempty"`
	Destination      string `json:"destination,omitempty"`
	NextHopAddress   string `json:"next-hop-address,omitempty"`
	NextHopInterface string `json:"next-hop-interface,omitempty"`
	TableID          uint32 `json:"table-id,omitempty"`
}

// RouteRule is one policy-routing rule entry.
type RouteRule struct {
	State      string `json:"state,omitempty"`
	IPFrom     string `json:"ip-from,omitempty"`
	IPTo       string `json:"ip-to,omitempty"`
	Priority   int64  `json:"priority,omitempty"`
	RouteTable uint32 `json:"route-table,omitempty"`
}

// Routes .
type Routes struct {
	Running []Route `json:"running,omitempty"`
	Config  []Route `json:"config,omitempty"`
}

// RouteRules has no running view in the manager's schema; only the
// configured rules are reported.
type RouteRules struct {
	Config []RouteRule `json:"config,omitempty"`
}

// DNSResolver .
type DNSResolver struct {
	Server []string `json:"server,omitempty"`
	Search []string `json:"search,omitempty"`
}

// DNSState .
type DNSState struct {
	Running *DNSResolver `json:"running,omitempty"`
	Config  *DNSResolver `json:"config,omitempty"`
}

// OvsDBGlobal is the host-global OVS database configuration; it carries
// the OVN bridge mappings through the external-IDs mechanism.
type OvsDBGlobal struct {
	ExternalIDs map[string]string `json:"external_ids,omitempty"`
}

// NetworkState is a whole desired-state or current-state document.
type NetworkState struct {
	DNS        *DNSState    `json:"dns-resolver,omitempty"`
	RouteRules *RouteRules  `json:"route-rules,omitempty"`
	Routes     *Routes      `json:"routes,omitempty"`
	Interfaces []Interface  `json:"interfaces,omitempty"`
	OvsDB      *OvsDBGlobal `json:"ovs-db,omitempty"`
}

// Marshal serializes the document for the state manager.
func (s *NetworkState) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal parses a document reported by the state manager.
func Unmarshal(doc []byte) (*NetworkState, error) {
	state := &NetworkState{}
	if err := json.Unmarshal(doc, state); err != nil {
		return nil, err
	}
	return state, nil
}

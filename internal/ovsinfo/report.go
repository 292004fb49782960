package ovsinfo

// The legacy-shaped reporting schema consumed by management callers.
// OVS networks are rendered to look like linux-bridge ones: bridge and
// VLAN entries are synthesized where the real topology has an OVS bridge
// and a tagged port instead.

// IPInfo carries one device's address-family facts in the legacy shape.
type IPInfo struct {
	IPv4Addr         string   `json:"ipv4addr,omitempty"`
	IPv4Netmask      string   `json:"ipv4netmask,omitempty"`
	IPv4Addrs        []string `json:"ipv4addrs"`
	Gateway          string   `json:"gateway"`
	IPv4DefaultRoute bool     `json:"ipv4defaultroute"`
	DHCPv4           bool     `json:"dhcpv4"`
	IPv6Addrs        []string `json:"ipv6addrs"`
	IPv6Gateway      string   `json:"ipv6gateway"`
	DHCPv6           bool     `json:"dhcpv6"`
	IPv6AutoConf     bool     `json:"ipv6autoconf"`
}

// Network is one logical network's report entry.
type Network struct {
	IPInfo
	Iface      string   `json:"iface"`
	Bridged    bool     `json:"bridged"`
	Southbound string   `json:"southbound"`
	Ports      []string `json:"ports"`
	STP        bool     `json:"stp"`
	Switch     string   `json:"switch"`
	MTU        int      `json:"mtu"`
	VlanID     *int     `json:"vlanid,omitempty"`
}

// Device is a nic or bonding report entry.
type Device struct {
	IPInfo
	MTU int `json:"mtu"`
}

// Vlan is a VLAN device report entry.
type Vlan struct {
	IPInfo
	Iface  string `json:"iface"`
	VlanID int    `json:"vlanid"`
	MTU    int    `json:"mtu"`
}

// Bridge is a (possibly synthesized) bridge report entry.
type Bridge struct {
	Ports []string `json:"ports"`
	STP   bool     `json:"stp"`
}

// Report is the legacy-shaped reporting document.
type Report struct {
	Networks map[string]*Network `json:"networks"`
	Vlans    map[string]*Vlan    `json:"vlans"`
	Bondings map[string]*Device  `json:"bondings"`
	Nics     map[string]*Device  `json:"nics"`
	Bridges  map[string]*Bridge  `json:"bridges"`
}

// NewReport .
func NewReport() *Report {
	return &Report{
		Networks: map[string]*Network{},
		Vlans:    map[string]*Vlan{},
		Bondings: map[string]*Device{},
		Nics:     map[string]*Device{},
		Bridges:  map[string]*Bridge{},
	}
}

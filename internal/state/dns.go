package state

import (
	"github.com/projecteru2/yanet/internal/netconf"
)

// BuildDNS resolves one network's nameserver opinion. Three states are
// distinguished and must never be conflated:
//
//	nil          no opinion, inherited
//	empty slice  explicitly cleared
//	non-empty    explicitly set
//
// The default-route network's nameservers are authoritative. A network
// that loses default-route ownership while the previous config carried
// nameservers clears them explicitly, so stale DNS never lingers.
func BuildDNS(cfg, prev *netconf.NetworkConfig) *[]string {
	if cfg.DefaultRoute && !cfg.Remove {
		servers := make([]string, len(cfg.Nameservers))
		copy(servers, cfg.Nameservers)
		return &servers
	}
	if prev != nil && prev.DefaultRoute && len(prev.Nameservers) > 0 {
		return &[]string{}
	}
	return nil
}

// AutoDNS reports whether the network wants DHCP-provided DNS: it owns
// the default route and stated no nameservers of its own.
func AutoDNS(cfg *netconf.NetworkConfig, servers *[]string) bool {
	if !cfg.DefaultRoute {
		return false
	}
	return servers == nil || len(*servers) == 0
}

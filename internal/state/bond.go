package state

import (
	"sort"
	"strings"

	"github.com/projecteru2/yanet/internal/netconf"
	"github.com/projecteru2/yanet/internal/nmstate"
)

// BuildBondState computes one bond's interface fragment. isNew marks a
// bond absent from the previously running bond set; such bonds get both
// IP families disabled explicitly, so a bond with no network attached
// never auto-configures IP.
func BuildBondState(bond *netconf.Bond, isNew bool) *nmstate.Interface {
	if bond.Remove {
		return &nmstate.Interface{
			Name:  bond.Name,
			State: nmstate.StateAbsent,
		}
	}

	mode, options := parseBondOptions(bond.Options)
	ports := make([]string, len(bond.Nics))
	copy(ports, bond.Nics)
	sort.Strings(ports)

	iface := &nmstate.Interface{
		Name:       bond.Name,
		Type:       nmstate.TypeBond,
		State:      nmstate.StateUp,
		MacAddress: bond.Hwaddr,
		Bond: &nmstate.BondConfig{
			Mode:    mode,
			Port:    ports,
			Options: options,
		},
	}
	if isNew {
		iface.IPv4 = DisabledIP()
		iface.IPv6 = DisabledIP()
	}
	return iface
}

// parseBondOptions splits the legacy space-separated option string,
// extracting the mode. Purely numeric modes translate through the static
// mode-name table; symbolic modes pass through unchanged.
func parseBondOptions(raw string) (string, map[string]string) {
	var (
		mode    string
		options map[string]string
	)
	for _, field := range strings.Fields(raw) {
		key, value, found := strings.Cut(field, "=")
		if !found {
			continue
		}
		if key == "mode" {
			if name, ok := nmstate.BondModeNames[value]; ok {
				value = name
			}
			mode = value
			continue
		}
		if options == nil {
			options = map[string]string{}
		}
		options[key] = value
	}
	return mode, options
}

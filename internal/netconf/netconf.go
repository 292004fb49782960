// Package netconf models the legacy flat network/bonding configuration
// consumed by management callers. Entries arrive as loose attribute maps
// keyed by the original flat names; they are decoded once into immutable
// values and never mutated afterwards.
package netconf

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"

	"github.com/projecteru2/yanet/internal/nmstate"
	"github.com/projecteru2/yanet/pkg/terrors"
)

// Switch types recognized in legacy network entries.
const (
	SwitchLinuxBridge = "linux-bridge"
	SwitchOvs         = "ovs"
)

type networkAttrs struct {
	Nic          string   `mapstructure:"nic"`
	Bonding      string   `mapstructure:"bonding"`
	Vlan         *int     `mapstructure:"vlan"`
	Bridged      bool     `mapstructure:"bridged"`
	STP          bool     `mapstructure:"stp"`
	MTU          int      `mapstructure:"mtu"`
	IPAddr       string   `mapstructure:"ipaddr"`
	Netmask      string   `mapstructure:"netmask"`
	BootProto    string   `mapstructure:"bootproto"`
	IPv6Addr     string   `mapstructure:"ipv6addr"`
	DHCPv6       bool     `mapstructure:"dhcpv6"`
	IPv6AutoConf bool     `mapstructure:"ipv6autoconf"`
	Gateway      string   `mapstructure:"gateway"`
	IPv6Gateway  string   `mapstructure:"ipv6gateway"`
	DefaultRoute bool     `mapstructure:"defaultRoute"`
	Nameservers  []string `mapstructure:"nameservers"`
	Remove       bool     `mapstructure:"remove"`
	Switch       string   `mapstructure:"switch"`
}

// NetworkConfig is the normalized view of one legacy network entry.
type NetworkConfig struct {
	Name         string
	Vlan         *int
	Bond         string
	Nic          string
	Bridged      bool
	STP          bool
	MTU          int
	IPv4Addr     string
	IPv4Netmask  string
	DHCPv4       bool
	IPv6Addr     string
	DHCPv6       bool
	IPv6AutoConf bool
	Gateway      string
	IPv6Gateway  string
	DefaultRoute bool
	Nameservers  []string
	Remove       bool
	Switch       string
}

// NewNetworkConfig decodes one legacy attribute map. Well-formed input is
// a precondition established by the config-loading layer; a malformed
// entry, including a non-removal without a nic or bonding, surfaces as an
// error propagated uncaught.
func NewNetworkConfig(name string, attrs map[string]any) (*NetworkConfig, error) {
	raw := networkAttrs{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &raw,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := dec.Decode(attrs); err != nil {
		return nil, errors.Wrapf(err, "network %s", name)
	}

	cfg := &NetworkConfig{
		Name:         name,
		Vlan:         raw.Vlan,
		Bond:         raw.Bonding,
		Nic:          raw.Nic,
		Bridged:      raw.Bridged,
		STP:          raw.STP,
		MTU:          raw.MTU,
		IPv4Addr:     raw.IPAddr,
		IPv4Netmask:  raw.Netmask,
		DHCPv4:       raw.BootProto == "dhcp",
		IPv6Addr:     raw.IPv6Addr,
		DHCPv6:       raw.DHCPv6,
		IPv6AutoConf: raw.IPv6AutoConf,
		Gateway:      raw.Gateway,
		IPv6Gateway:  raw.IPv6Gateway,
		DefaultRoute: raw.DefaultRoute,
		Nameservers:  raw.Nameservers,
		Remove:       raw.Remove,
		Switch:       raw.Switch,
	}
	if cfg.MTU == 0 {
		cfg.MTU = nmstate.DefaultMTU
	}
	if cfg.Switch == "" {
		cfg.Switch = SwitchLinuxBridge
	}
	if cfg.Switch != SwitchLinuxBridge && cfg.Switch != SwitchOvs {
		return nil, errors.Wrapf(terrors.ErrUnknownSwitchType, "network %s: %s", name, cfg.Switch)
	}
	if !cfg.Remove && cfg.BaseIface() == "" {
		return nil, errors.Wrapf(terrors.ErrNoBaseInterface, "network %s", name)
	}
	return cfg, nil
}

// BaseIface is the carrier device beneath the network's bridge or VLAN
// layer: the bond when present, the nic otherwise.
func (c *NetworkConfig) BaseIface() string {
	if c.Bond != "" {
		return c.Bond
	}
	return c.Nic
}

// VlanIface is the tagged device name, or empty without a VLAN.
func (c *NetworkConfig) VlanIface() string {
	if c.Vlan == nil {
		return ""
	}
	return fmt.Sprintf("%s.%d", c.BaseIface(), *c.Vlan)
}

// NextHopIface is the device routes for this network egress through.
func (c *NetworkConfig) NextHopIface() string {
	if c.Ovs() || c.Bridged {
		return c.Name
	}
	if vlan := c.VlanIface(); vlan != "" {
		return vlan
	}
	return c.BaseIface()
}

// Ovs .
func (c *NetworkConfig) Ovs() bool {
	return c.Switch == SwitchOvs
}

// Bond is one legacy bonding entry.
type Bond struct {
	Name    string
	Nics    []string `mapstructure:"nics"`
	Options string   `mapstructure:"options"`
	Hwaddr  string   `mapstructure:"hwaddr"`
	Remove  bool     `mapstructure:"remove"`
}

// NewBond decodes one legacy bonding attribute map.
func NewBond(name string, attrs map[string]any) (*Bond, error) {
	bond := &Bond{Name: name}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           bond,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := dec.Decode(attrs); err != nil {
		return nil, errors.Wrapf(err, "bonding %s", name)
	}
	return bond, nil
}

package nmstate

// Wire constants shared by the state-generation and introspection paths.
// The table ID and rule priority are part of the external contract and
// must never drift between the two.
const (
	// DefaultMTU is the kernel default for ethernet-like devices.
	DefaultMTU = 1500

	// DefaultRouteTable is the main kernel routing table. Route removal
	// entries fall back to this table unless explicitly overridden.
	DefaultRouteTable uint32 = 254

	// SourceRoutePriority is the fixed priority of policy-routing rules
	// emitted for source routing.
	SourceRoutePriority int64 = 3200

	// DefaultDestinationV4 and DefaultDestinationV6 are the default-route
	// destinations per address family.
	DefaultDestinationV4 = "0.0.0.0/0"
	DefaultDestinationV6 = "::/0"

	// OvsBridgePrefix prefixes every auto-generated OVS bridge name.
	OvsBridgePrefix = "vdsmbr_"

	// OvnBridgeMappingsKey is the OVS external-IDs key carrying the OVN
	// bridge-mapping string.
	OvnBridgeMappingsKey = "ovn-bridge-mappings"

	// EmptyBridgeMappings is the value emitted for an OVS batch that
	// resolves to zero mappings. Consumers treat an absent key and an
	// empty value differently, so the empty string is significant.
	EmptyBridgeMappings = ""
)

// InterfaceType .
type InterfaceType string

const (
	TypeEthernet     InterfaceType = "ethernet"
	TypeBond         InterfaceType = "bond"
	TypeVlan         InterfaceType = "vlan"
	TypeLinuxBridge  InterfaceType = "linux-bridge"
	TypeOvsBridge    InterfaceType = "ovs-bridge"
	TypeOvsInterface InterfaceType = "ovs-interface"
)

// InterfaceState .
type InterfaceState string

const (
	StateUp     InterfaceState = "up"
	StateDown   InterfaceState = "down"
	StateAbsent InterfaceState = "absent"
)

// RouteStateAbsent marks a route or rule entry for removal.
const RouteStateAbsent = "absent"

// OvsPortModeAccess tags an OVS port with a VLAN in access mode.
const OvsPortModeAccess = "access"

// BondModeNames maps the legacy numeric bonding modes to their symbolic
// kernel names. Symbolic modes pass through untranslated.
var BondModeNames = map[string]string{
	"0": "balance-rr",
	"1": "active-backup",
	"2": "balance-xor",
	"3": "broadcast",
	"4": "802.3ad",
	"5": "balance-tlb",
	"6": "balance-alb",
}

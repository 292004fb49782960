package terrors

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidValue indicates the value is invalid.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidNetmask .
	ErrInvalidNetmask = errors.New("invalid dotted-decimal netmask")
	// ErrInvalidIPv4Addr .
	ErrInvalidIPv4Addr = errors.New("invalid IPv4 address")
	// ErrInvalidCIDR .
	ErrInvalidCIDR = errors.New("invalid CIDR")

	// ErrNoBaseInterface indicates a network entry carries neither a nic
	// nor a bonding while not being removed.
	ErrNoBaseInterface = errors.New("network has no nic or bonding")
	// ErrUnknownSwitchType .
	ErrUnknownSwitchType = errors.New("unknown switch type")

	// ErrStateShow .
	ErrStateShow = errors.New("query current network state error")
	// ErrStateApply .
	ErrStateApply = errors.New("apply network state error")

	// ErrLoadRunningConfig .
	ErrLoadRunningConfig = errors.New("load running config error")
	// ErrSaveRunningConfig .
	ErrSaveRunningConfig = errors.New("save running config error")
)

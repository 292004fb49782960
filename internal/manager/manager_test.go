package manager

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yanet/configs"
	"github.com/projecteru2/yanet/internal/netconf"
	"github.com/projecteru2/yanet/internal/nmstate"
	"github.com/projecteru2/yanet/internal/state"
	"github.com/projecteru2/yanet/pkg/test/assert"
)

type fakeState struct {
	doc      *nmstate.NetworkState
	applied  [][]byte
	verified []bool
	applyErr error
	showErr  error
}

func (f *fakeState) Show(context.Context) ([]byte, error) {
	if f.showErr != nil {
		return nil, f.showErr
	}
	doc := f.doc
	if doc == nil {
		doc = &nmstate.NetworkState{}
	}
	return doc.Marshal()
}

func (f *fakeState) Apply(_ context.Context, doc []byte, verify bool) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, doc)
	f.verified = append(f.verified, verify)
	return nil
}

func testNetAttrs() map[string]map[string]any {
	return map[string]map[string]any{
		"net1": {
			"nic":          "eth0",
			"bridged":      true,
			"ipaddr":       "192.168.1.10",
			"netmask":      "255.255.255.0",
			"gateway":      "192.168.1.1",
			"defaultRoute": true,
			"nameservers":  []any{"8.8.8.8"},
		},
	}
}

func TestGenerateStateLinuxBridge(t *testing.T) {
	doc, err := GenerateState(testNetAttrs(), nil, netconf.NewRunningConfig(), emptyCurrent())
	assert.NilErr(t, err)

	byName := map[string]nmstate.Interface{}
	for _, iface := range doc.Interfaces {
		byName[iface.Name] = iface
	}

	bridge, ok := byName["net1"]
	assert.True(t, ok)
	assert.Equal(t, nmstate.TypeLinuxBridge, bridge.Type)
	assert.True(t, bridge.IPv4.Enabled)

	sb, ok := byName["eth0"]
	assert.True(t, ok)
	assert.False(t, sb.IPv4.Enabled)

	assert.NotNil(t, doc.Routes)
	assert.NotNil(t, doc.DNS)
	assert.Equal(t, []string{"8.8.8.8"}, doc.DNS.Config.Server)
	assert.Nil(t, doc.OvsDB)
}

func TestGenerateStateDeterministic(t *testing.T) {
	running := netconf.NewRunningConfig()
	first, err := GenerateState(testNetAttrs(), nil, running, emptyCurrent())
	assert.NilErr(t, err)
	second, err := GenerateState(testNetAttrs(), nil, running, emptyCurrent())
	assert.NilErr(t, err)

	firstBuf, err := first.Marshal()
	assert.NilErr(t, err)
	secondBuf, err := second.Marshal()
	assert.NilErr(t, err)
	assert.Equal(t, string(firstBuf), string(secondBuf))
}

func TestGenerateStateOvsPath(t *testing.T) {
	nets := map[string]map[string]any{
		"net1": {"nic": "eth0", "switch": "ovs"},
	}

	doc, err := GenerateState(nets, nil, netconf.NewRunningConfig(), emptyCurrent())
	assert.NilErr(t, err)
	assert.NotNil(t, doc.OvsDB)
}

func TestGenerateStateBonds(t *testing.T) {
	bonds := map[string]map[string]any{
		"bond0": {"nics": []any{"eth0", "eth1"}, "options": "mode=1"},
	}

	doc, err := GenerateState(nil, bonds, netconf.NewRunningConfig(), emptyCurrent())
	assert.NilErr(t, err)
	assert.Len(t, doc.Interfaces, 3)
	assert.Equal(t, "bond0", doc.Interfaces[0].Name)
	assert.Equal(t, "active-backup", doc.Interfaces[0].Bond.Mode)
	// a brand-new bond gets IP disabled explicitly
	assert.False(t, doc.Interfaces[0].IPv4.Enabled)
}

func TestGenerateStateRemovalCanonicalized(t *testing.T) {
	running := netconf.NewRunningConfig()
	running.Update(map[string]map[string]any{
		"net1": {"nic": "eth0", "vlan": 100, "bridged": true},
	}, nil)

	// the caller only sends the remove marker; the persisted shape fills
	// in the vlan and bridge to tear down
	doc, err := GenerateState(map[string]map[string]any{
		"net1": {"remove": true},
	}, nil, running, emptyCurrent())
	assert.NilErr(t, err)

	byName := map[string]nmstate.Interface{}
	for _, iface := range doc.Interfaces {
		byName[iface.Name] = iface
	}
	assert.Equal(t, nmstate.StateAbsent, byName["net1"].State)
	assert.Equal(t, nmstate.StateAbsent, byName["eth0.100"].State)
}

func TestGenerateStateRemovalEmitsNoLiveRoute(t *testing.T) {
	running := netconf.NewRunningConfig()
	running.Update(testNetAttrs(), nil)

	doc, err := GenerateState(map[string]map[string]any{
		"net1": {"remove": true},
	}, nil, running, emptyCurrent())
	assert.NilErr(t, err)

	removed := false
	for _, iface := range doc.Interfaces {
		if iface.Name == "net1" {
			removed = iface.State == nmstate.StateAbsent
		}
	}
	assert.True(t, removed)

	// the persisted gateway must not resurface as a live route through
	// the interface this same document removes
	if doc.Routes != nil {
		for _, route := range doc.Routes.Config {
			if route.NextHopInterface == "net1" {
				assert.Equal(t, nmstate.RouteStateAbsent, route.State)
			}
		}
	}
}

func TestSetup(t *testing.T) {
	configs.Conf.RunningConfigPath = filepath.Join(t.TempDir(), "running-config.json")

	fake := &fakeState{}
	m := New(fake)
	assert.NilErr(t, m.Setup(context.Background(), testNetAttrs(), nil))

	assert.Len(t, fake.applied, 1)
	assert.True(t, fake.verified[0])

	applied := map[string]any{}
	assert.NilErr(t, json.Unmarshal(fake.applied[0], &applied))
	_, ok := applied["interfaces"]
	assert.True(t, ok)

	running, err := netconf.LoadRunningConfig(configs.Conf.RunningConfigPath)
	assert.NilErr(t, err)
	assert.Len(t, running.Networks, 1)
}

func TestSetupApplyFailure(t *testing.T) {
	configs.Conf.RunningConfigPath = filepath.Join(t.TempDir(), "running-config.json")

	fake := &fakeState{applyErr: errors.New("rollback")}
	m := New(fake)
	assert.Err(t, m.Setup(context.Background(), testNetAttrs(), nil))

	// a failed apply must not be persisted
	running, err := netconf.LoadRunningConfig(configs.Conf.RunningConfigPath)
	assert.NilErr(t, err)
	assert.Len(t, running.Networks, 0)
}

func TestReport(t *testing.T) {
	configs.Conf.RunningConfigPath = filepath.Join(t.TempDir(), "running-config.json")

	running := netconf.NewRunningConfig()
	running.Update(map[string]map[string]any{
		"net1": {"nic": "eth0", "switch": "ovs"},
	}, nil)
	assert.NilErr(t, running.Save(configs.Conf.RunningConfigPath))

	fake := &fakeState{doc: &nmstate.NetworkState{
		Interfaces: []nmstate.Interface{
			{Name: "eth0", Type: nmstate.TypeEthernet, MTU: 1500},
			{Name: "net1", Type: nmstate.TypeOvsInterface, MTU: 1500},
		},
	}}
	m := New(fake)

	report, err := m.Report(context.Background())
	assert.NilErr(t, err)
	assert.Len(t, report.Networks, 1)
	assert.Equal(t, "eth0", report.Networks["net1"].Iface)
}

func emptyCurrent() *state.CurrentState {
	return state.ParseCurrentState(&nmstate.NetworkState{})
}

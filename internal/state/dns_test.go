package state

import (
	"testing"

	"github.com/projecteru2/yanet/internal/netconf"
	"github.com/projecteru2/yanet/pkg/test/assert"
)

func TestBuildDNSAuthoritative(t *testing.T) {
	cfg := &netconf.NetworkConfig{
		Name:         "net1",
		DefaultRoute: true,
		Nameservers:  []string{"8.8.8.8", "1.1.1.1"},
	}

	servers := BuildDNS(cfg, nil)
	assert.NotNil(t, servers)
	assert.Equal(t, []string{"8.8.8.8", "1.1.1.1"}, *servers)
}

func TestBuildDNSNoOpinion(t *testing.T) {
	cfg := &netconf.NetworkConfig{Name: "net1"}
	assert.Nil(t, BuildDNS(cfg, nil))

	// previous config without nameservers leaves no trace either
	prev := &netconf.NetworkConfig{Name: "net1", DefaultRoute: true}
	assert.Nil(t, BuildDNS(cfg, prev))
}

func TestBuildDNSExplicitClear(t *testing.T) {
	prev := &netconf.NetworkConfig{
		Name:         "net1",
		DefaultRoute: true,
		Nameservers:  []string{"8.8.8.8"},
	}
	cfg := &netconf.NetworkConfig{Name: "net1"}

	servers := BuildDNS(cfg, prev)
	assert.NotNil(t, servers)
	assert.Len(t, *servers, 0)
}

func TestBuildDNSRemovedNetwork(t *testing.T) {
	prev := &netconf.NetworkConfig{
		Name:         "net1",
		DefaultRoute: true,
		Nameservers:  []string{"8.8.8.8"},
	}
	cfg := &netconf.NetworkConfig{
		Name:         "net1",
		DefaultRoute: true,
		Nameservers:  []string{"8.8.8.8"},
		Remove:       true,
	}

	servers := BuildDNS(cfg, prev)
	assert.NotNil(t, servers)
	assert.Len(t, *servers, 0)
}

func TestAutoDNS(t *testing.T) {
	cfg := &netconf.NetworkConfig{Name: "net1", DefaultRoute: true}
	assert.True(t, AutoDNS(cfg, nil))

	empty := []string{}
	assert.True(t, AutoDNS(cfg, &empty))

	set := []string{"8.8.8.8"}
	assert.False(t, AutoDNS(cfg, &set))

	nonDefault := &netconf.NetworkConfig{Name: "net1"}
	assert.False(t, AutoDNS(nonDefault, nil))
}

// ABOUTME: Tests for mDNS discovery
// ABOUTME: Covers manager construction, the advertised service type, and rediscovery debouncing
package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/hashicorp/mdns"
)

func TestNewManager(t *testing.T) {
	config := Config{
		ServiceName: "Test Server",
		Port:        4318,
	}

	mgr := NewManager(config)
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}
	defer mgr.Stop()
}

func TestServiceType(t *testing.T) {
	if ServiceType != "_driftsync._udp" {
		t.Errorf("unexpected service type: %s", ServiceType)
	}
}

func TestHandleEntryDebouncesRepeatSightings(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "Test Server", Port: 4318})
	defer mgr.Stop()

	entry := &mdns.ServiceEntry{
		Name:   "driftsync-server._driftsync._udp.local.",
		AddrV4: net.ParseIP("192.0.2.1"),
		Port:   4318,
	}

	mgr.handleEntry(entry)
	select {
	case <-mgr.Servers():
	case <-time.After(time.Second):
		t.Fatal("expected first sighting to be published")
	}

	mgr.handleEntry(entry)
	select {
	case s := <-mgr.Servers():
		t.Fatalf("expected repeat sighting within debounce window to be suppressed, got %+v", s)
	case <-time.After(50 * time.Millisecond):
	}

	mgr.mu.Lock()
	mgr.seen[entry.AddrV4.String()+":4318"] = time.Now().Add(-2 * rediscoverDebounce)
	mgr.mu.Unlock()

	mgr.handleEntry(entry)
	select {
	case <-mgr.Servers():
	case <-time.After(time.Second):
		t.Fatal("expected sighting past the debounce window to be published")
	}
}

func TestHandleEntrySkipsMissingAddrV4(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "Test Server", Port: 4318})
	defer mgr.Stop()

	mgr.handleEntry(&mdns.ServiceEntry{Name: "no-v4", Port: 4318})

	select {
	case s := <-mgr.Servers():
		t.Fatalf("expected entry without AddrV4 to be skipped, got %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

// ABOUTME: mDNS service discovery for the driftsync protocol
// ABOUTME: Handles both advertisement (server-initiated) and browsing (client-initiated)
// Package discovery advertises and browses for driftsync servers over
// mDNS, so a client need not be given --server explicitly.
//
// Unlike a player/server pair that switches between two service types
// depending on role, a driftsync deployment advertises exactly one
// long-lived singleton per network: the clock reference server. Browsing
// therefore debounces repeat sightings of the same server instead of
// re-announcing it every query round, and Stop shuts the mDNS responder
// down synchronously rather than leaving a watcher goroutine to do it.
package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
	"go.uber.org/zap"

	"github.com/driftsync-project/driftsync-go/internal/netutil"
)

// ServiceType is the mDNS service type a driftsync server advertises under.
const ServiceType = "_driftsync._udp"

// browseTimeout is how long each mDNS query round waits for responses
// before the browse loop issues the next one.
const browseTimeout = 3 * time.Second

// rediscoverDebounce bounds how often the same server is re-emitted onto
// the Servers channel. A driftsync server doesn't come and go the way a
// mobile player does, so without this a stalled consumer (one query round
// per browseTimeout, forever) would eventually block the browse goroutine
// against a full, undrained channel.
const rediscoverDebounce = 30 * time.Second

// Config holds discovery configuration.
type Config struct {
	ServiceName string
	Port        int
	Logger      *zap.SugaredLogger
}

// Manager handles mDNS advertisement and browsing.
type Manager struct {
	config Config
	logger *zap.SugaredLogger
	ctx    context.Context
	cancel context.CancelFunc

	servers chan *ServerInfo

	mu      sync.Mutex
	mdnsSrv *mdns.Server
	seen    map[string]time.Time
}

// ServerInfo describes a discovered server.
type ServerInfo struct {
	Name string
	Host string
	Port int
}

// NewManager creates a discovery manager.
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Manager{
		config:  config,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		servers: make(chan *ServerInfo, 10),
		seen:    make(map[string]time.Time),
	}
}

// Advertise advertises a driftsync server on the local network. The
// responder is kept on the Manager so Stop can shut it down directly
// instead of relying on a background goroutine to notice ctx cancellation.
func (m *Manager) Advertise() error {
	ips, err := netutil.IPv4Addrs()
	if err != nil {
		return fmt.Errorf("get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		[]string{"proto=driftsync/1"},
	)
	if err != nil {
		return fmt.Errorf("create mdns service: %w", err)
	}

	srv, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("create mdns server: %w", err)
	}

	m.mu.Lock()
	m.mdnsSrv = srv
	m.mu.Unlock()

	m.logger.Infow("advertising mdns service",
		"name", m.config.ServiceName,
		"port", m.config.Port,
		"type", ServiceType,
	)

	return nil
}

// Browse searches for driftsync servers until Stop is called.
func (m *Manager) Browse() error {
	go m.browseLoop()
	return nil
}

// browseLoop issues one mDNS query round per browseTimeout until canceled,
// forwarding newly (or stale-ly) seen servers to the Servers channel.
func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)
		drained := make(chan struct{})

		go func() {
			defer close(drained)
			for entry := range entries {
				m.handleEntry(entry)
			}
		}()

		mdns.Query(&mdns.QueryParam{
			Service: ServiceType,
			Domain:  "local",
			Timeout: browseTimeout,
			Entries: entries,
		})
		close(entries)
		<-drained
	}
}

// handleEntry publishes entry as a ServerInfo unless it was already
// reported within rediscoverDebounce.
func (m *Manager) handleEntry(entry *mdns.ServiceEntry) {
	if entry.AddrV4 == nil {
		return
	}

	key := fmt.Sprintf("%s:%d", entry.AddrV4, entry.Port)

	m.mu.Lock()
	last, wasSeen := m.seen[key]
	fresh := !wasSeen || time.Since(last) > rediscoverDebounce
	if fresh {
		m.seen[key] = time.Now()
	}
	m.mu.Unlock()

	if !fresh {
		return
	}

	server := &ServerInfo{
		Name: entry.Name,
		Host: entry.AddrV4.String(),
		Port: entry.Port,
	}

	m.logger.Infow("discovered server", "name", server.Name, "host", server.Host, "port", server.Port)

	select {
	case m.servers <- server:
	case <-m.ctx.Done():
	}
}

// Servers returns the channel of discovered servers.
func (m *Manager) Servers() <-chan *ServerInfo {
	return m.servers
}

// Stop stops browsing or advertising and, if a responder is running,
// shuts it down before returning.
func (m *Manager) Stop() {
	m.cancel()

	m.mu.Lock()
	srv := m.mdnsSrv
	m.mu.Unlock()

	if srv != nil {
		srv.Shutdown()
	}
}

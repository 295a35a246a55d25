// ABOUTME: Local network address helpers
// ABOUTME: Shared by internal/discovery to pick addresses to advertise over mDNS
package netutil

import "net"

// IPv4Addrs returns the non-loopback IPv4 addresses bound to interfaces that
// are currently up. It is the address set a host can plausibly be reached
// on, so it's what gets published alongside an mDNS service record.
func IPv4Addrs() ([]net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var ips []net.IP
	for _, iface := range ifaces {
		if !usable(iface) {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ip := asIPv4(addr); ip != nil {
				ips = append(ips, ip)
			}
		}
	}

	return ips, nil
}

func usable(iface net.Interface) bool {
	return iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagLoopback == 0
}

func asIPv4(addr net.Addr) net.IP {
	ipnet, ok := addr.(*net.IPNet)
	if !ok || ipnet.IP.IsLoopback() {
		return nil
	}
	return ipnet.IP.To4()
}

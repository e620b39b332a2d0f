package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the DNS-SD service type boards are advertised under.
const ServiceType = "_inkwell._tcp"

// Advertise announces a board served on port to the local network. The
// instance name defaults to the host name. Shut the returned server down
// to withdraw the announcement.
func Advertise(instance string, port int) (*mdns.Server, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("server: hostname: %w", err)
		}
		instance = host
	}
	service, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, nil, []string{"inkwell board", "path=/ws"})
	if err != nil {
		return nil, fmt.Errorf("server: mdns service: %w", err)
	}
	srv, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("server: mdns server: %w", err)
	}
	return srv, nil
}

// Browse looks for advertised boards for up to timeout and returns their
// host:port addresses.
func Browse(timeout time.Duration) ([]string, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	var addrs []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			addrs = append(addrs, fmt.Sprintf("%s:%d", e.AddrV4, e.Port))
		}
	}()
	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return nil, fmt.Errorf("server: mdns query: %w", err)
	}
	return addrs, nil
}

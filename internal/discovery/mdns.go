// Package discovery advertises and finds vecpad servers on the local
// network over mDNS.
package discovery

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_vecpad._tcp"

// Server is a vecpad server found on the network.
type Server struct {
	Name string
	Addr string // host:port
	Info map[string]string
}

// Advertise announces a server on port until the returned server is shut
// down.
func Advertise(port int, info map[string]string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, txtRecords(info))
	if err != nil {
		return nil, fmt.Errorf("create mdns service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("start mdns server: %w", err)
	}

	slog.Info("advertising over mdns", "service", ServiceType, "instance", host, "port", port)
	return server, nil
}

// Browse queries the network for timeout and returns the servers that
// answered.
func Browse(timeout time.Duration) ([]Server, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	var found []Server
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found = append(found, Server{
				Name: strings.TrimSuffix(e.Name, "."+ServiceType+".local."),
				Addr: fmt.Sprintf("%s:%d", e.AddrV4, e.Port),
				Info: parseTXT(e.InfoFields),
			})
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
		return nil, fmt.Errorf("mdns query: %w", err)
	}
	return found, nil
}

func txtRecords(info map[string]string) []string {
	out := make([]string, 0, len(info))
	for k, v := range info {
		out = append(out, k+"="+v)
	}
	return out
}

func parseTXT(fields []string) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		k, v, _ := strings.Cut(f, "=")
		out[k] = v
	}
	return out
}

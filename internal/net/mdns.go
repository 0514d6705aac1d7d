// Package net finds the analysis service on the LAN and shares results with
// other machines.
package net

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

// ErrNotFound is returned by Browse when no instance answered in time.
var ErrNotFound = errors.New("no service instance found")

const defaultBrowse = 2 * time.Second

// Advertise announces service on port under this machine's hostname.
// Shutdown the returned server to withdraw it.
func Advertise(service string, port int, info ...string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	zone, err := mdns.NewMDNSService(host, service, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: zone})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	log.Printf("[MDNS] Advertising %s on port %d", service, port)
	return server, nil
}

// Browse returns "ip:port" of the first IPv4 instance of service that answers
// before ctx is done. Without a deadline the query runs for defaultBrowse.
func Browse(ctx context.Context, service string) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(chan string, 1)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			select {
			case found <- fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port):
			default:
			}
		}
	}()

	params := mdns.DefaultParams(service)
	params.Entries = entries
	params.Timeout = defaultBrowse
	if deadline, ok := ctx.Deadline(); ok {
		params.Timeout = time.Until(deadline)
	}
	params.DisableIPv6 = true
	err := mdns.QueryContext(ctx, params)
	close(entries)
	<-drained

	select {
	case addr := <-found:
		log.Printf("[MDNS] Found %s at %s", service, addr)
		return addr, nil
	default:
	}
	if err != nil {
		return "", fmt.Errorf("browse %s: %w", service, err)
	}
	return "", fmt.Errorf("browse %s: %w", service, ErrNotFound)
}

// DiscoverEndpoint browses for the analysis service and returns its
// /save-image URL.
func DiscoverEndpoint(ctx context.Context, service string) (string, error) {
	addr, err := Browse(ctx, service)
	if err != nil {
		return "", err
	}
	return "http://" + addr + "/save-image", nil
}

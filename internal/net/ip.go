package net

import (
	"fmt"
	"log"
	"net"
	"strconv"
)

const loopback = "127.0.0.1"

// OutgoingIP returns the address other machines on the LAN can reach this
// host on. The UDP dial sends nothing; it only asks the kernel for a route.
func OutgoingIP() string {
	if conn, err := net.Dial("udp", "8.8.8.8:80"); err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
			return addr.IP.String()
		}
	}

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		log.Printf("[NET] Listing interface addresses: %v", err)
		return loopback
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			return ipnet.IP.String()
		}
	}
	log.Printf("[NET] No LAN address found, the feed link uses %s", loopback)
	return loopback
}

// FeedURL is the link subscribers open to follow results.
func FeedURL(host string, port int) string {
	return fmt.Sprintf("ws://%s%s", net.JoinHostPort(host, strconv.Itoa(port)), feedPath)
}

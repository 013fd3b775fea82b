// Package network waits for connectivity at boot and reports the pi-helper
// network description.
package network

import (
	"context"
	"net"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Checker reports whether the host is online.
type Checker interface {
	Online() bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func() bool

// Online calls f.
func (f CheckerFunc) Online() bool { return f() }

// Interface reports online when a named interface, or any non-loopback
// interface if Name is empty, is up with a global unicast address.
type Interface struct {
	Name string
}

// Online inspects the host interfaces.
func (c Interface) Online() bool {
	return len(c.Addrs()) > 0
}

// Addrs returns the global unicast addresses of the matching interfaces.
func (c Interface) Addrs() []string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}
	var out []string
	for _, ifc := range ifaces {
		if c.Name != "" && ifc.Name != c.Name {
			continue
		}
		if ifc.Flags&net.FlagUp == 0 || ifc.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := ifc.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipn, ok := a.(*net.IPNet)
			if ok && ipn.IP.IsGlobalUnicast() {
				out = append(out, ipn.IP.String())
			}
		}
	}
	return out
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

// Info holds network details from pi-helper env vars.
type Info struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ReadInfo returns the pi-helper description, or nil when it is not set.
func ReadInfo() *Info {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &Info{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// Display is the part of a character display the boot animation uses.
type Display interface {
	MoveCursor(col, row int)
	Write(text string)
	Clear()
}

// Banner is shown on the first display row while waiting.
const Banner = "WiFi connect...."

// Wait blocks until c reports online or ctx is done. While waiting, the
// second display row fills with dots one column per step, then empties the
// same way, and repeats. Connectivity is checked before every step.
func Wait(ctx context.Context, c Checker, d Display, cols int, step time.Duration, log zerolog.Logger) error {
	if c.Online() {
		return nil
	}
	log.Info().Msg("waiting for network")
	d.Clear()
	d.MoveCursor(0, 0)
	d.Write(Banner)

	ticker := time.NewTicker(step)
	defer ticker.Stop()

	fill := "."
	passes := 0
	for col := 0; ; col++ {
		if col == cols {
			col = 0
			passes++
			if fill == "." {
				fill = " "
			} else {
				fill = "."
			}
			log.Debug().Int("passes", passes).Msg("still waiting for network")
		}
		d.MoveCursor(col, 1)
		d.Write(fill)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if c.Online() {
			break
		}
	}
	d.Clear()
	log.Info().Int("passes", passes).Msg("network up")
	return nil
}

// Describe summarizes Info for logs.
func (i *Info) Describe() string {
	if i == nil {
		return "unknown"
	}
	parts := []string{i.Status}
	if i.Type != "" {
		parts = append(parts, i.Type)
	}
	if i.IP != "" {
		parts = append(parts, i.IP)
	}
	if i.SSID != "" {
		parts = append(parts, i.SSID)
	}
	return strings.Join(parts, " ")
}

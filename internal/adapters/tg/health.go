package tg

import (
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/larriantoniy/tg_relay_bot/internal/config"
)

const (
	probeTimeout      = 3 * time.Second
	proxyProbeTimeout = 5 * time.Second
)

// checkConnectivity пишет в лог, доступны ли IPv4, IPv6 и прокси. На запуск не влияет.
func checkConnectivity(logger *slog.Logger, proxy config.ProxyConfig) {
	probe(logger, "tcp4", "8.8.8.8:53", probeTimeout)
	probe(logger, "tcp6", "[2606:4700:4700::1111]:53", probeTimeout)
	checkProxy(logger, proxy)
}

func probe(logger *slog.Logger, network, addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout(network, addr, timeout)
	if err != nil {
		logger.Warn("endpoint unreachable", "network", network, "addr", addr, "error", err)
		return false
	}
	_ = conn.Close()
	logger.Info("endpoint reachable", "network", network, "addr", addr)
	return true
}

func checkProxy(logger *slog.Logger, proxy config.ProxyConfig) {
	if !proxy.Enabled() {
		logger.Info("proxy disabled, skipping check")
		return
	}

	addr := net.JoinHostPort(proxy.Server, strconv.Itoa(int(proxy.Port)))

	// literal-адрес проверяем только его семейством, hostname сначала по IPv6
	for _, network := range proxyNetworks(proxy.Server) {
		if probe(logger, network, addr, proxyProbeTimeout) {
			return
		}
	}
	logger.Error("proxy unreachable", "addr", addr)
}

func proxyNetworks(host string) []string {
	ip := net.ParseIP(host)
	switch {
	case ip == nil:
		return []string{"tcp6", "tcp4"}
	case ip.To4() != nil:
		return []string{"tcp4"}
	default:
		return []string{"tcp6"}
	}
}

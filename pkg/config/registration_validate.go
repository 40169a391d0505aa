package config

import (
	"fmt"
	"net"
	"strings"
)

// Validate 注册配置校验：tag 规则之外，要求宣告的主机名不带末尾的点
func (r *RegistrationConfig) Validate() error {
	if err := valid.Struct(r); err != nil {
		return fmt.Errorf("registration config invalid: %w", err)
	}
	if strings.HasSuffix(r.SourceHost, ".") {
		return fmt.Errorf("registration.source_host must not end with '.', got %s", r.SourceHost)
	}
	if r.DNSServer != "" {
		host, _, err := net.SplitHostPort(r.DNSServer)
		if err != nil {
			return fmt.Errorf("registration.dns_server format invalid (expected: ip:port), got %s: %w", r.DNSServer, err)
		}
		if net.ParseIP(host) == nil {
			return fmt.Errorf("registration.dns_server must be an IP address, got %s", host)
		}
	}
	return nil
}

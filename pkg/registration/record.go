package registration

import (
	"context"
	"net"
	"time"

	"github.com/registration-agent/pkg/catalog"
)

// Record 单轮注册载荷，序列化后即丢弃
type Record struct {
	Hostname        string            `json:"hostname"`
	Port            int               `json:"port"`
	MachineFunction string            `json:"machine_function"`
	Datacenter      string            `json:"datacenter"`
	Counters        []catalog.Counter `json:"counters"`
}

// NewRecord 用配置和目录快照构建注册记录，计数器按值拷贝
func NewRecord(cfg Config, counters []catalog.Counter) *Record {
	copied := make([]catalog.Counter, len(counters))
	for i, c := range counters {
		copied[i] = c.Clone()
	}
	return &Record{
		Hostname:        cfg.SourceHost,
		Port:            cfg.SourcePort,
		MachineFunction: cfg.MachineFunction,
		Datacenter:      cfg.Datacenter,
		Counters:        copied,
	}
}

// Serializer 注册记录序列化器（二进制格式由实现决定）
type Serializer interface {
	Marshal(r *Record) ([]byte, error)
}

// Resolver 目标主机名解析，*net.Resolver 满足该接口
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// NewResolver 创建解析器，server 为空时使用系统解析器，否则所有查询发往 server（ip:port）
func NewResolver(server string) *net.Resolver {
	if server == "" {
		return net.DefaultResolver
	}
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			d := net.Dialer{Timeout: 5 * time.Second}
			return d.DialContext(ctx, network, server)
		},
	}
}

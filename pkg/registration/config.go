package registration

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// RequestTimeout 单次注册请求（以及单轮 DNS 解析）的固定超时
	RequestTimeout = 30 * time.Second

	// RegisterPath 注册端点路径
	RegisterPath = "/register"

	// NoStatus 传输层失败时上报的状态码
	NoStatus = -1
)

var (
	ErrInvalidConfig  = errors.New("registration: invalid config")
	ErrMissingCatalog = errors.New("registration: counter catalog is required")
	ErrAlreadyStarted = errors.New("registration: agent already started")
	ErrDisposed       = errors.New("registration: agent disposed")
	ErrNoAddresses    = errors.New("registration: destination resolved to no addresses")
)

var valid = validator.New()

// Config 注册代理配置，构造后不可变
type Config struct {
	DestinationHost string        `validate:"required,hostname_rfc1123|ip"`
	DestinationPort int           `validate:"required,gt=0,lte=65535"`
	SourceHost      string        `validate:"required,hostname_rfc1123|ip"`
	SourcePort      int           `validate:"required,gt=0,lte=65535"`
	MachineFunction string        `validate:"omitempty,max=255"`
	Datacenter      string        `validate:"omitempty,max=255"`
	Interval        time.Duration `validate:"required,gt=0"`
	// DNSServer 可选的自定义 DNS 服务器（ip:port），为空时使用系统解析器
	DNSServer string `validate:"omitempty,hostname_port"`
}

// Validate 校验配置
func (c Config) Validate() error {
	if err := valid.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// EffectiveInterval 实际调度间隔，不小于请求超时，避免网络慢时轮次重叠
func EffectiveInterval(configured time.Duration) time.Duration {
	if configured < RequestTimeout {
		return RequestTimeout
	}
	return configured
}

package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var valid = validator.New()

// Config 全局配置结构体（聚合所有核心模块）
type Config struct {
	Registration RegistrationConfig `yaml:"registration" mapstructure:"registration" comment:"自注册配置"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server" comment:"HTTP服务配置"`
	Monitor      MonitorConfig      `yaml:"monitor" mapstructure:"monitor" comment:"监控采集配置"`
	Log          ZapLogConfig       `yaml:"log" mapstructure:"log" comment:"日志配置"`
}

// RegistrationConfig 自注册配置：向目标主机名解析出的每个地址周期性宣告本进程
type RegistrationConfig struct {
	DestinationHost string        `yaml:"destination_host" mapstructure:"destination_host" env:"REGISTRATION_DESTINATION_HOST" validate:"required,hostname_rfc1123|ip" comment:"注册目标主机名"`
	DestinationPort int           `yaml:"destination_port" mapstructure:"destination_port" env:"REGISTRATION_DESTINATION_PORT" validate:"required,gt=0,lte=65535" comment:"注册目标端口"`
	SourceHost      string        `yaml:"source_host" mapstructure:"source_host" env:"REGISTRATION_SOURCE_HOST" validate:"required,hostname_rfc1123|ip" comment:"本进程对外宣告的主机名（默认 os.Hostname）"`
	SourcePort      int           `yaml:"source_port" mapstructure:"source_port" env:"REGISTRATION_SOURCE_PORT" validate:"required,gt=0,lte=65535" comment:"本进程对外宣告的端口"`
	MachineFunction string        `yaml:"machine_function" mapstructure:"machine_function" env:"REGISTRATION_MACHINE_FUNCTION" validate:"omitempty,max=255" comment:"机器角色标签"`
	Datacenter      string        `yaml:"datacenter" mapstructure:"datacenter" env:"REGISTRATION_DATACENTER" validate:"omitempty,max=255" comment:"数据中心标签"`
	Interval        time.Duration `yaml:"interval" mapstructure:"interval" env:"REGISTRATION_INTERVAL" validate:"required,gt=0" comment:"注册间隔（低于30s按30s执行）" default:"60s"`
	DNSServer       string        `yaml:"dns_server" mapstructure:"dns_server" env:"REGISTRATION_DNS_SERVER" validate:"omitempty,hostname_port" comment:"自定义DNS服务器（ip:port），为空使用系统解析"`
}

// ServerConfig HTTP服务配置（超时统一为time.Duration，支持"30s"解析）
type ServerConfig struct {
	Addr         string        `yaml:"addr" mapstructure:"addr" env:"HTTP_ADDR" validate:"required,hostname_port" comment:"HTTP监听地址（格式：ip:port）"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" env:"HTTP_READ_TIMEOUT" validate:"required,gt=0" comment:"读取超时时间（如30s）"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" env:"HTTP_WRITE_TIMEOUT" validate:"required,gt=0" comment:"写入超时时间（如30s）"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" validate:"required,gt=0" comment:"空闲连接超时时间（如60s）"`
}

// MonitorConfig 监控采集全局配置
type MonitorConfig struct {
	Interval   time.Duration   `yaml:"interval" mapstructure:"interval" env:"MONITOR_INTERVAL" validate:"required,gt=0" comment:"监控采集间隔（如10s）" default:"10s"`
	Process    bool            `yaml:"process" mapstructure:"process" env:"MONITOR_PROCESS" comment:"是否暴露进程指标" default:"true"`
	Collectors CollectorConfig `yaml:"collectors" mapstructure:"collectors" comment:"各类数据源采集器配置"`
}

// CollectorConfig 多数据源采集器配置
type CollectorConfig struct {
	Host HostDataSourceConfig `yaml:"host" mapstructure:"host" comment:"CPU/负载/内存"`
	Sys  SysDataSourceConfig  `yaml:"sys" mapstructure:"sys" comment:"磁盘/网络"`
}

// HostDataSourceConfig CPU/负载/内存数据源配置
type HostDataSourceConfig struct {
	Enable         bool `yaml:"enable" mapstructure:"enable" env:"COLLECTOR_HOST_ENABLE" comment:"是否启用主机数据源" default:"true"`
	CollectPerCore bool `yaml:"collect_per_core" mapstructure:"collect_per_core" env:"COLLECTOR_HOST_PER_CORE" comment:"是否按每核心采集CPU指标" default:"false"`
}

// SysDataSourceConfig 磁盘/网络数据源配置
type SysDataSourceConfig struct {
	Enable         bool     `yaml:"enable" mapstructure:"enable" env:"COLLECTOR_SYS_ENABLE" comment:"是否启用磁盘/网络数据源" default:"false"`
	IgnoreDisks    []string `yaml:"ignore_disks" mapstructure:"ignore_disks" env:"COLLECTOR_SYS_IGNORE_DISKS" comment:"忽略的磁盘列表（如/dev/sda）" default:"[]"`
	IgnoreNetworks []string `yaml:"ignore_networks" mapstructure:"ignore_networks" env:"COLLECTOR_SYS_IGNORE_NETWORKS" comment:"忽略的网络接口列表（如eth0）" default:"[]"`
}

// ZapLogConfig 日志配置（修复标签笔误、补充默认值）
type ZapLogConfig struct {
	Level     string `yaml:"level" mapstructure:"level" env:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal" comment:"日志级别" default:"info"`
	Format    string `yaml:"format" mapstructure:"format" env:"LOG_FORMAT" validate:"required,oneof=json console" comment:"日志格式（json/console）" default:"json"`
	Path      string `yaml:"path" mapstructure:"path" env:"LOG_PATH" validate:"required" comment:"日志存储路径" default:"./logs"`
	MaxSize   int    `yaml:"max_size" mapstructure:"max_size" env:"LOG_MAX_SIZE" validate:"required,gt=0" comment:"单个日志文件最大大小（MB）" default:"100"`
	MaxBackup int    `yaml:"max_backup" mapstructure:"max_backup" env:"LOG_MAX_BACKUP" validate:"gte=0" comment:"按数量保留的日志文件数（max_age 为 0 时生效）" default:"30"`
	MaxAge    int    `yaml:"max_age" mapstructure:"max_age" env:"LOG_MAX_AGE" validate:"gte=0" comment:"日志文件最大保存天数（0 表示改为按 max_backup 数量保留）" default:"7"`
}

// NewDefaultConfig 创建默认配置（所有字段兜底，避免空指针/非法值）
// 注册目标没有默认值，必须由配置文件、flag 或环境变量给出
func NewDefaultConfig() *Config {
	return &Config{
		Registration: RegistrationConfig{
			DestinationPort: 80,
			SourceHost:      defaultSourceHost(),
			SourcePort:      8080,
			Interval:        60 * time.Second,
		},
		Server: ServerConfig{
			Addr:         "0.0.0.0:8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Monitor: MonitorConfig{
			Interval: 10 * time.Second,
			Process:  true,
			Collectors: CollectorConfig{
				Host: HostDataSourceConfig{
					Enable:         true,
					CollectPerCore: false,
				},
				Sys: SysDataSourceConfig{
					Enable:         false,
					IgnoreDisks:    []string{},
					IgnoreNetworks: []string{},
				},
			},
		},
		Log: ZapLogConfig{
			Level:     "info",
			Format:    "console",
			Path:      "./logs",
			MaxSize:   100,
			MaxBackup: 30,
			MaxAge:    7,
		},
	}
}

func defaultSourceHost() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "localhost"
	}
	return strings.ToLower(h)
}

// LoadConfigWithCli 支持 time.Duration，(Flags + YAML + ENV)
func LoadConfigWithCli(cmd *cobra.Command) (*Config, error) {
	cfg := NewDefaultConfig()
	v := viper.New()

	// 1. 绑定 Cobra Flags → Viper（server.read-timeout → server.read_timeout）
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	// 2. 解析配置文件 (--config)
	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	// 3. 绑定环境变量 ENV -> Viper （按结构体 env 标签，如 REGISTRATION_DESTINATION_HOST）
	if err := bindEnvs(v, "", reflect.TypeOf(*cfg)); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	// 4. 解码反序列化到结构体（支持 time.Duration）
	decoderConfig := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	}

	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// 5. 校验配置
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		err = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
	return err
}

// bindEnvs 递归读取 mapstructure/env 标签，把环境变量绑定到对应的 viper key
func bindEnvs(v *viper.Viper, prefix string, t reflect.Type) error {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		key := field.Tag.Get("mapstructure")
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		if field.Type.Kind() == reflect.Struct {
			if err := bindEnvs(v, key, field.Type); err != nil {
				return err
			}
			continue
		}
		if env := field.Tag.Get("env"); env != "" {
			if err := v.BindEnv(key, env); err != nil {
				return err
			}
		}
	}
	return nil
}

// Validate 配置校验
func (c *Config) Validate() error {
	err := valid.Struct(c)
	if err != nil {
		return err
	}
	//	1，校验注册配置
	if err := c.Registration.Validate(); err != nil {
		return err
	}
	// 	2,校验Server服务配置
	if err := c.Server.Validate(); err != nil {
		return err
	}
	// 	3，校验采集配置
	if err := c.Monitor.Validate(); err != nil {
		return err
	}

	// 	4，校验日志配置
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}

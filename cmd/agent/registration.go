package agent

import (
	"github.com/spf13/cobra"
)

func initRegistrationFlags(root *cobra.Command) {
	f := root.PersistentFlags()
	prefix := "registration."

	f.String(prefix+"destination-host", defaultCfg.Registration.DestinationHost,
		"-> Hostname whose addresses receive registrations | 注册目标主机名")
	f.Int(prefix+"destination-port", defaultCfg.Registration.DestinationPort,
		"-> Registration endpoint port | 注册目标端口")
	f.String(prefix+"source-host", defaultCfg.Registration.SourceHost,
		"-> Hostname announced for this process | 宣告的本机主机名")
	f.Int(prefix+"source-port", defaultCfg.Registration.SourcePort,
		"-> Port announced for this process | 宣告的本机端口")
	f.String(prefix+"machine-function", defaultCfg.Registration.MachineFunction,
		"-> Machine function label | 机器角色")
	f.String(prefix+"datacenter", defaultCfg.Registration.Datacenter,
		"-> Datacenter label | 数据中心")
	f.Duration(prefix+"interval", defaultCfg.Registration.Interval,
		"-> Registration interval, never below 30s | 注册间隔（最低30s）")
	f.String(prefix+"dns-server", defaultCfg.Registration.DNSServer,
		"-> Custom DNS server ip:port | 自定义DNS服务器")
}

package agent

import (
	"github.com/spf13/cobra"
)

func initMonitorFlags(root *cobra.Command) {
	f := root.PersistentFlags()
	prefix := "monitor."

	f.Duration(prefix+"interval", defaultCfg.Monitor.Interval, "-> Collection interval | 采集间隔")
	f.Bool(prefix+"process", defaultCfg.Monitor.Process, "-> Expose process metrics | 暴露进程指标")

	f.Bool(prefix+"collectors.host.enable", defaultCfg.Monitor.Collectors.Host.Enable, "-> Enable CPU/load/memory collector | 启用主机采集")
	f.Bool(prefix+"collectors.host.collect-per-core", defaultCfg.Monitor.Collectors.Host.CollectPerCore, "-> Per core CPU usage | 按核心采集")
	f.Bool(prefix+"collectors.sys.enable", defaultCfg.Monitor.Collectors.Sys.Enable, "-> Enable disk/network collector | 启用磁盘/网络采集")
	f.StringSlice(prefix+"collectors.sys.ignore-disks", defaultCfg.Monitor.Collectors.Sys.IgnoreDisks, "-> Ignored disks | 忽略磁盘")
	f.StringSlice(prefix+"collectors.sys.ignore-networks", defaultCfg.Monitor.Collectors.Sys.IgnoreNetworks, "-> Ignored interfaces | 忽略网卡")
}

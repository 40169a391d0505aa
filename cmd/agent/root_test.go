package agent

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/registration-agent/pkg/config"
)

func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "registration-agent"}
	cmd.PersistentFlags().StringP("config", "c", "", "")
	initRegistrationFlags(cmd)
	initServerFlags(cmd)
	initMonitorFlags(cmd)
	initLogFlags(cmd)
	return cmd
}

func TestFlagsReachConfig(t *testing.T) {
	cmd := newFlagCommand()
	require.NoError(t, cmd.ParseFlags([]string{
		"--registration.destination-host=registry.example.com",
		"--registration.destination-port=9000",
		"--registration.source-host=web-01",
		"--registration.datacenter=ams1",
		"--registration.interval=90s",
		"--server.read-timeout=5s",
		"--monitor.collectors.sys.enable=true",
		"--monitor.collectors.sys.ignore-networks=lo,docker0",
		"--log.path=" + t.TempDir(),
	}))

	cfg, err := config.LoadConfigWithCli(cmd)
	require.NoError(t, err)
	assert.Equal(t, "registry.example.com", cfg.Registration.DestinationHost)
	assert.Equal(t, 9000, cfg.Registration.DestinationPort)
	assert.Equal(t, "ams1", cfg.Registration.Datacenter)
	assert.Equal(t, 90*time.Second, cfg.Registration.Interval)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Monitor.Collectors.Sys.Enable)
	assert.Equal(t, []string{"lo", "docker0"}, cfg.Monitor.Collectors.Sys.IgnoreNetworks)

	ac := agentConfig(cfg.Registration)
	assert.Equal(t, "registry.example.com", ac.DestinationHost)
	assert.Equal(t, "web-01", ac.SourceHost)
	assert.Equal(t, 90*time.Second, ac.Interval)
	assert.NoError(t, ac.Validate())
}

func TestMissingDestinationFailsValidation(t *testing.T) {
	cmd := newFlagCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--log.path=" + t.TempDir()}))
	_, err := config.LoadConfigWithCli(cmd)
	assert.Error(t, err)
}

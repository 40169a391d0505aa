package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig(t *testing.T) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Registration.DestinationHost = "registry.example.com"
	cfg.Registration.SourceHost = "web-01"
	cfg.Log.Path = t.TempDir()
	return cfg
}

func TestDefaultConfigNeedsDestination(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Log.Path = t.TempDir()
	assert.Error(t, cfg.Validate())

	cfg = validTestConfig(t)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 60*time.Second, cfg.Registration.Interval)
	assert.NotEmpty(t, NewDefaultConfig().Registration.SourceHost)
}

func TestRegistrationValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegistrationConfig)
		ok     bool
	}{
		{"valid", func(*RegistrationConfig) {}, true},
		{"ip destination", func(r *RegistrationConfig) { r.DestinationHost = "10.0.0.1" }, true},
		{"bad destination", func(r *RegistrationConfig) { r.DestinationHost = "bad host" }, false},
		{"port zero", func(r *RegistrationConfig) { r.SourcePort = 0 }, false},
		{"port too large", func(r *RegistrationConfig) { r.DestinationPort = 65536 }, false},
		{"zero interval", func(r *RegistrationConfig) { r.Interval = 0 }, false},
		{"dns server", func(r *RegistrationConfig) { r.DNSServer = "10.0.0.53:53" }, true},
		{"dns server hostname", func(r *RegistrationConfig) { r.DNSServer = "dns.example.com:53" }, false},
		{"dns server without port", func(r *RegistrationConfig) { r.DNSServer = "10.0.0.53" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validTestConfig(t).Registration
			tt.mutate(&r)
			err := r.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSysValidateRejectsDuplicates(t *testing.T) {
	sys := SysDataSourceConfig{Enable: true, IgnoreNetworks: []string{"lo", "lo"}}
	assert.Error(t, sys.Validate())

	sys = SysDataSourceConfig{Enable: true, IgnoreDisks: []string{"/dev/sda", ""}}
	assert.Error(t, sys.Validate())

	sys = SysDataSourceConfig{Enable: false, IgnoreDisks: []string{""}}
	assert.NoError(t, sys.Validate())
}

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	f := cmd.Flags()
	f.String("config", "", "")
	f.String("registration.destination-host", "", "")
	f.Duration("registration.interval", 60*time.Second, "")
	f.String("server.addr", "0.0.0.0:8080", "")
	return cmd
}

func TestLoadConfigWithCli(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	yaml := `
registration:
  destination_host: registry.example.com
  destination_port: 9000
  source_host: web-01
  source_port: 8081
  machine_function: frontend
  interval: 2m
log:
  path: ` + filepath.Join(dir, "logs") + `
`
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0o644))

	t.Setenv("REGISTRATION_DATACENTER", "ams1")

	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("config", file))
	require.NoError(t, cmd.Flags().Set("server.addr", "127.0.0.1:9100"))

	cfg, err := LoadConfigWithCli(cmd)
	require.NoError(t, err)
	assert.Equal(t, "registry.example.com", cfg.Registration.DestinationHost)
	assert.Equal(t, 9000, cfg.Registration.DestinationPort)
	assert.Equal(t, 8081, cfg.Registration.SourcePort)
	assert.Equal(t, "frontend", cfg.Registration.MachineFunction)
	assert.Equal(t, "ams1", cfg.Registration.Datacenter)
	assert.Equal(t, 2*time.Minute, cfg.Registration.Interval)
	assert.Equal(t, "127.0.0.1:9100", cfg.Server.Addr)
	assert.True(t, cfg.Monitor.Collectors.Host.Enable)
}

func TestLoadConfigWithCliFlagOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	yaml := `
registration:
  destination_host: registry.example.com
  source_host: web-01
log:
  path: ` + filepath.Join(dir, "logs") + `
`
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0o644))

	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("config", file))
	require.NoError(t, cmd.Flags().Set("registration.destination-host", "other.example.com"))

	cfg, err := LoadConfigWithCli(cmd)
	require.NoError(t, err)
	assert.Equal(t, "other.example.com", cfg.Registration.DestinationHost)
}

func TestLoadConfigWithCliMissingFile(t *testing.T) {
	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml")))
	_, err := LoadConfigWithCli(cmd)
	assert.Error(t, err)
}

func TestLogValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ZapLogConfig)
		wantErr bool
	}{
		{"defaults", func(*ZapLogConfig) {}, false},
		{"count based rotation", func(l *ZapLogConfig) { l.MaxAge = 0; l.MaxBackup = 5 }, false},
		{"no backups", func(l *ZapLogConfig) { l.MaxBackup = 0 }, false},
		{"negative age", func(l *ZapLogConfig) { l.MaxAge = -1 }, true},
		{"dpanic level", func(l *ZapLogConfig) { l.Level = "dpanic" }, false},
		{"panic level", func(l *ZapLogConfig) { l.Level = "panic" }, false},
		{"fatal level", func(l *ZapLogConfig) { l.Level = "fatal" }, false},
		{"upper case level", func(l *ZapLogConfig) { l.Level = "WARN" }, false},
		{"unknown level", func(l *ZapLogConfig) { l.Level = "verbose" }, true},
		{"unknown format", func(l *ZapLogConfig) { l.Format = "text" }, true},
		{"path is a file", func(l *ZapLogConfig) {
			f := filepath.Join(l.Path, "file")
			_ = os.WriteFile(f, nil, 0o644)
			l.Path = f
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig(t)
			tt.mutate(&cfg.Log)
			err := cfg.Log.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

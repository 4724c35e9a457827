package client

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config is the session's runtime configuration: connection parameters,
// addressing, and retry/timeout policy (spec §4.6/§6.4). JSON tags mirror
// the teacher config's upper-case schema so a deployment can keep a single
// config.json shape across tooling.
type Config struct {
	SERIAL struct {
		PORT     string `json:"PORT"`
		BAUDRATE int    `json:"BAUDRATE"`
	} `json:"SERIAL"`
	TCPAddr string `json:"TCP_ADDR,omitempty"`

	HostAddr     byte `json:"HOST_ADDR"`
	TurbineAddr  byte `json:"TURBINE_ADDR"`
	LoginCode    byte `json:"LOGIN_CODE"`
	DEBUG        bool `json:"DEBUG"`

	RequestTimeoutMS  int `json:"REQUEST_TIMEOUT_MS,omitempty"`
	MaxRetries        int `json:"MAX_RETRIES,omitempty"`
	MaxAlarmRetries   int `json:"MAX_ALARM_RETRIES,omitempty"`
	PacketSendDelayMS int `json:"PACKET_SEND_DELAY_MS,omitempty"`
}

// Defaults for any zero-valued policy fields (spec §6.4).
const (
	DefaultRequestTimeout  = 2 * time.Second
	DefaultMaxRetries      = 3
	DefaultMaxAlarmRetries = 6
	DefaultPacketSendDelay = 50 * time.Millisecond

	// DefaultHostAddr/DefaultTurbineAddr are the conventional node addresses
	// (spec §3): host 0xFB, turbine 0x01.
	DefaultHostAddr    byte = 0xFB
	DefaultTurbineAddr byte = 0x01
)

func (c *Config) applyDefaults() {
	if c.HostAddr == 0 {
		c.HostAddr = DefaultHostAddr
	}
	if c.TurbineAddr == 0 {
		c.TurbineAddr = DefaultTurbineAddr
	}
	if c.RequestTimeoutMS == 0 {
		c.RequestTimeoutMS = int(DefaultRequestTimeout / time.Millisecond)
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.MaxAlarmRetries == 0 {
		c.MaxAlarmRetries = DefaultMaxAlarmRetries
	}
	if c.PacketSendDelayMS == 0 {
		c.PacketSendDelayMS = int(DefaultPacketSendDelay / time.Millisecond)
	}
}

func (c Config) requestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

func (c Config) packetSendDelay() time.Duration {
	return time.Duration(c.PacketSendDelayMS) * time.Millisecond
}

// LoadConfig reads a JSON config file from path, applying policy defaults to
// any field left at its zero value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("client: read config %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("client: parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// PersistConfig overwrites path with cfg's JSON encoding (mirrors the
// teacher's PersistParameters). The cmd binaries only load a config; none
// of them calls PersistConfig.
func PersistConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("client: marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("client: write config %s: %w", path, err)
	}
	return nil
}

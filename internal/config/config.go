// Package config loads the daemon's YAML configuration.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Serial struct {
	Port string `yaml:"port"` // e.g. /dev/ttyUSB0
	Baud int    `yaml:"baud"` // e.g. 115200
}

type Bridge struct {
	Enabled  bool   `yaml:"enabled"`
	USBPort  string `yaml:"usb_port"`
	UARTPort string `yaml:"uart_port"`
	Baud     int    `yaml:"baud"`
}

type LED struct {
	Driver string `yaml:"driver"`  // "sim" | "spi" | "nrz" | "screen"
	SPIDev string `yaml:"spi_dev"` // e.g. /dev/spidev0.0
}

type Buzzer struct {
	Driver string `yaml:"driver"` // "gpio" | "sim"
	Pin    string `yaml:"pin"`    // e.g. "GPIO8"
}

type Monitor struct {
	Addr string `yaml:"addr"` // e.g. ":8080"; empty disables the monitor
}

type Config struct {
	Serial  Serial  `yaml:"serial"`
	Bridge  Bridge  `yaml:"bridge,omitempty"`
	LED     LED     `yaml:"led"`
	Buzzer  Buzzer  `yaml:"buzzer"`
	Monitor Monitor `yaml:"monitor,omitempty"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

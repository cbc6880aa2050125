// Package config provides configuration structures and defaults for the
// CSI monitor tools
package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Listen  ListenConfig  `yaml:"listen" mapstructure:"listen"`   // live UDP feed settings
	Replay  ReplayConfig  `yaml:"replay" mapstructure:"replay"`   // recorded-file replay settings
	Render  RenderConfig  `yaml:"render" mapstructure:"render"`   // render driver settings
	Record  RecordConfig  `yaml:"record" mapstructure:"record"`   // live capture settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"` // logging configuration
}

// ListenConfig contains the live UDP endpoint parameters
type ListenConfig struct {
	Address     string `yaml:"address" mapstructure:"address"`           // bind address
	Port        int    `yaml:"port" mapstructure:"port"`                 // UDP port
	MaxDatagram int    `yaml:"max_datagram" mapstructure:"max_datagram"` // receive buffer size in bytes
}

// ReplayConfig contains the recorded-file replay parameters
type ReplayConfig struct {
	Folder   string        `yaml:"folder" mapstructure:"folder"`     // directory holding recording files
	Files    []string      `yaml:"files" mapstructure:"files"`       // ordered file list; empty means all *.csi in Folder
	Interval time.Duration `yaml:"interval" mapstructure:"interval"` // pause between replayed records
	Loop     bool          `yaml:"loop" mapstructure:"loop"`         // restart from the first file when done
}

// RenderConfig contains the render driver and presenter parameters
type RenderConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"` // tick cadence of the render loop
	Output   string        `yaml:"output" mapstructure:"output"`     // presenter: "term", "png" or "quiet"
	PNGDir   string        `yaml:"png_dir" mapstructure:"png_dir"`   // output directory for the png presenter
	Width    int           `yaml:"width" mapstructure:"width"`       // plot width in characters (term), 0 = auto
	Height   int           `yaml:"height" mapstructure:"height"`     // plot height in lines (term)
}

// RecordConfig contains the live capture parameters
type RecordConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`                           // capture directory; empty disables recording
	FilePrefix string `yaml:"file_prefix" mapstructure:"file_prefix"`           // prefix for capture filenames
	PerFile    int    `yaml:"records_per_file" mapstructure:"records_per_file"` // rotation threshold
}

// LoggingConfig contains logging configuration parameters
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // log level (debug, info, warn, error)
}

// DefaultConfig returns a configuration with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Listen: ListenConfig{
			Address:     "0.0.0.0", // all interfaces
			Port:        5000,      // CSI feed port
			MaxDatagram: 8192,      // maximum accepted datagram size
		},
		Replay: ReplayConfig{
			Folder:   "./csi_data_logs",     // default recording folder
			Files:    nil,                   // enumerate the folder
			Interval: 50 * time.Millisecond, // simulated real-time arrival
			Loop:     false,                 // single pass
		},
		Render: RenderConfig{
			Interval: 50 * time.Millisecond, // redraw cadence
			Output:   "term",                // ASCII plots by default
			PNGDir:   "./csi_plots",         // png presenter output
			Width:    0,                     // size from the terminal
			Height:   10,                    // 10 lines per plot
		},
		Record: RecordConfig{
			Dir:        "",    // recording disabled by default
			FilePrefix: "csi", // capture file prefix
			PerFile:    1000,  // records per capture file
		},
		Logging: LoggingConfig{
			Level: "info", // info level logging
		},
	}
}

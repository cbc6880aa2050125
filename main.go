// CSI Monitor - live channel-state-information stream visualizer
// This program receives per-antenna CSI measurement datagrams over UDP,
// keeps the most recent state per RX port and redraws derived plots on a
// fixed cadence.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"csi-monitor/internal/config"
	"csi-monitor/internal/plot"
	"csi-monitor/internal/recording"
	"csi-monitor/internal/render"
	"csi-monitor/internal/source"
	"csi-monitor/internal/store"
	"csi-monitor/internal/version"
	"csi-monitor/internal/wire"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Command line flag variables
var (
	cfgFile       string        // configuration file path
	listenAddress string        // UDP bind address
	listenPort    int           // UDP port for the CSI feed
	renderEvery   time.Duration // render tick interval
	output        string        // presenter: term, png or quiet
	pngDir        string        // output directory for the png presenter
	recordDir     string        // capture directory, empty disables recording
	showVersion   bool          // show version information
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "csi-monitor",
	Short: "Live CSI stream visualizer",
	Long: `CSI Monitor listens for channel-state-information datagrams on a UDP
port, keeps the most recent measurement per RX port together with the full
time-alignment history, and redraws magnitude, unwrapped-phase and timing
plots on a fixed cadence. Optionally every ingested sample is captured
into rotating recording files for later replay with csi-replay.`,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersionInfo("CSI Monitor"))
			return
		}
		if err := runMonitor(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// init initializes the CLI flags and configuration
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "./config.yaml", "config file (default is ./config.yaml)")

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")
	rootCmd.Flags().StringVarP(&listenAddress, "listen", "l", "0.0.0.0", "UDP listen address")
	rootCmd.Flags().IntVarP(&listenPort, "port", "p", 5000, "UDP listen port")
	rootCmd.Flags().DurationVarP(&renderEvery, "interval", "i", 50*time.Millisecond, "render tick interval")
	rootCmd.Flags().StringVarP(&output, "output", "o", "term", "presenter: term, png or quiet")
	rootCmd.Flags().StringVar(&pngDir, "png-dir", "./csi_plots", "output directory for the png presenter")
	rootCmd.Flags().StringVar(&recordDir, "record-dir", "", "capture ingested samples into this directory")

	// Bind command line flags to viper configuration keys
	viper.BindPFlag("listen.address", rootCmd.Flags().Lookup("listen"))
	viper.BindPFlag("listen.port", rootCmd.Flags().Lookup("port"))
	viper.BindPFlag("render.interval", rootCmd.Flags().Lookup("interval"))
	viper.BindPFlag("render.output", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("render.png_dir", rootCmd.Flags().Lookup("png-dir"))
	viper.BindPFlag("record.dir", rootCmd.Flags().Lookup("record-dir"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// runMonitor is the main application logic
func runMonitor() error {
	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	fmt.Printf("CSI Monitor starting...\n")
	fmt.Printf("Listening: %s:%d (UDP, max datagram %d bytes)\n",
		cfg.Listen.Address, cfg.Listen.Port, cfg.Listen.MaxDatagram)
	fmt.Printf("Render: every %v (%s)\n", cfg.Render.Interval, cfg.Render.Output)

	st := store.New()

	presenter, err := plot.ForConfig(&cfg.Render)
	if err != nil {
		return err
	}

	// The ingestion sink is the store, optionally teed into a capture
	// recorder for later replay.
	sink := source.Ingester(st)
	if cfg.Record.Dir != "" {
		recorder, err := recording.NewRecorder(cfg.Record.Dir, cfg.Record.FilePrefix, cfg.Record.PerFile)
		if err != nil {
			return fmt.Errorf("failed to start recorder: %w", err)
		}
		defer recorder.Close()
		fmt.Printf("Recording to: %s\n", cfg.Record.Dir)
		sink = source.Tee(st, recorderSink{recorder})
	}

	src := source.NewUDP(cfg.Listen.Address, cfg.Listen.Port, cfg.Listen.MaxDatagram, sink)
	driver := render.NewDriver(st, presenter, cfg.Render.Interval)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Printf("\nReceived interrupt signal, shutting down...\n")
		src.Stop()
		driver.Stop()
	}()

	// Ingestion runs in its own goroutine; an empty payload or a socket
	// error ends it and takes the render loop down with it.
	srcErr := make(chan error, 1)
	go func() {
		err := src.Run()
		driver.Stop()
		srcErr <- err
	}()

	if err := driver.Run(); err != nil {
		return fmt.Errorf("render loop failed: %w", err)
	}
	if err := <-srcErr; err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Monitor stopped.\n")
	return nil
}

// recorderSink adapts the capture recorder to the ingestion path. A
// failed write is logged and dropped so capture problems never stall
// ingestion.
type recorderSink struct {
	rec *recording.Recorder
}

func (r recorderSink) Ingest(sample wire.Sample) {
	if err := r.rec.Record(recording.FromSample(sample)); err != nil {
		log.Printf("[record] dropping sample: %v", err)
	}
}

// main is the entry point of the application
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

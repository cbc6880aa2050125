// CSI Replay - feeds recorded CSI sample files through the live
// visualization pipeline, simulating real-time arrival.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"csi-monitor/internal/config"
	"csi-monitor/internal/plot"
	"csi-monitor/internal/render"
	"csi-monitor/internal/source"
	"csi-monitor/internal/store"
	"csi-monitor/internal/version"

	"github.com/spf13/cobra"
)

var (
	folder      string        // directory holding recording files
	files       []string      // explicit ordered file list
	interval    time.Duration // pause between replayed records
	loop        bool          // restart from the first file when done
	renderEvery time.Duration // render tick interval
	output      string        // presenter: term, png or quiet
	pngDir      string        // output directory for the png presenter
	showVersion bool          // show version information
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "csi-replay",
	Short: "Replay recorded CSI sample files",
	Long: `CSI Replay plays recording files produced by csi-monitor back through
the visualization pipeline. Records are replayed in file order with a
fixed inter-record pause; the channel ids of the first file are known to
the plot layout before the first record arrives.

Examples:
  csi-replay --folder ./csi_data_logs
  csi-replay --folder ./captures --files a.csi,b.csi --interval 10ms --loop`,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersionInfo("CSI Replay"))
			return
		}
		if err := runReplay(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	defaults := config.DefaultConfig()

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")
	rootCmd.Flags().StringVarP(&folder, "folder", "d", defaults.Replay.Folder, "directory holding .csi recording files")
	rootCmd.Flags().StringSliceVar(&files, "files", nil, "ordered file list (default: all .csi files in the folder, sorted)")
	rootCmd.Flags().DurationVar(&interval, "interval", defaults.Replay.Interval, "pause between replayed records")
	rootCmd.Flags().BoolVar(&loop, "loop", false, "restart from the first file after the last record")
	rootCmd.Flags().DurationVarP(&renderEvery, "render-interval", "i", defaults.Render.Interval, "render tick interval")
	rootCmd.Flags().StringVarP(&output, "output", "o", defaults.Render.Output, "presenter: term, png or quiet")
	rootCmd.Flags().StringVar(&pngDir, "png-dir", defaults.Render.PNGDir, "output directory for the png presenter")
}

// runReplay wires the replay source to the render driver
func runReplay() error {
	replayFiles := files
	if len(replayFiles) == 0 {
		var err error
		replayFiles, err = enumerateRecordings(folder)
		if err != nil {
			return err
		}
	}
	if len(replayFiles) == 0 {
		return fmt.Errorf("no recording files found in %s", folder)
	}

	fmt.Printf("CSI Replay starting...\n")
	fmt.Printf("Folder: %s (%d files, interval %v, loop %v)\n", folder, len(replayFiles), interval, loop)

	st := store.New()

	renderCfg := config.DefaultConfig().Render
	renderCfg.Interval = renderEvery
	renderCfg.Output = output
	renderCfg.PNGDir = pngDir
	presenter, err := plot.ForConfig(&renderCfg)
	if err != nil {
		return err
	}

	src := source.NewReplay(folder, replayFiles, interval, loop, st)

	// The first file's channel ids fix the layout before any record is
	// replayed, so the driver never waits for the first sample.
	if err := src.SeedChannels(); err != nil {
		return err
	}

	driver := render.NewDriver(st, presenter, renderCfg.Interval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Printf("\nReceived interrupt signal, shutting down...\n")
		src.Stop()
		driver.Stop()
	}()

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
		return fmt.Errorf("replay failed: %w", err)
	}

	fmt.Printf("Replay finished.\n")
	return nil
}

// enumerateRecordings lists all .csi files in the folder in sorted order
func enumerateRecordings(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", folder, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".csi") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// main is the entry point of the application
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

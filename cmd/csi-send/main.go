// CSI Send - synthetic CSI datagram generator for exercising csi-monitor
// without radio hardware. Encodes samples in the wire layout and
// transmits them over UDP at a fixed rate.
package main

import (
	"fmt"
	"math"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"csi-monitor/internal/version"
	"csi-monitor/internal/wire"

	"github.com/spf13/cobra"
)

var (
	target      string        // destination host:port
	channels    int           // number of RX ports to simulate
	subcarriers int           // measurement vector length per sample
	interval    time.Duration // pause between datagrams
	count       int           // total datagrams to send, 0 = until interrupted
	closeStream bool          // send an empty payload at the end to stop the receiver
	showVersion bool          // show version information
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "csi-send",
	Short: "Send synthetic CSI datagrams",
	Long: `CSI Send generates a synthetic CSI feed: for each simulated RX port it
transmits a measurement vector with a slowly drifting phase ramp and a
jittering time-alignment value, encoded in the same wire layout the live
monitor decodes.

Examples:
  csi-send --target 127.0.0.1:5000
  csi-send --channels 4 --subcarriers 128 --interval 20ms --count 500 --close`,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersionInfo("CSI Send"))
			return
		}
		if err := runSender(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")
	rootCmd.Flags().StringVarP(&target, "target", "t", "127.0.0.1:5000", "destination address of the monitor")
	rootCmd.Flags().IntVar(&channels, "channels", 2, "number of RX ports to simulate")
	rootCmd.Flags().IntVar(&subcarriers, "subcarriers", 64, "subcarriers per measurement vector")
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", 50*time.Millisecond, "pause between datagrams")
	rootCmd.Flags().IntVarP(&count, "count", "n", 0, "datagrams to send (0 = until interrupted)")
	rootCmd.Flags().BoolVar(&closeStream, "close", false, "send an empty payload at the end to stop the receiver")
}

// runSender generates and transmits the synthetic feed
func runSender() error {
	conn, err := net.Dial("udp", target)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", target, err)
	}
	defer conn.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("Sending to %s: %d channels x %d subcarriers every %v\n",
		target, channels, subcarriers, interval)

	sent := 0
	for tick := 0; ; tick++ {
		for ch := 0; ch < channels; ch++ {
			sample := synthesize(ch, tick)
			if _, err := conn.Write(wire.Encode(sample)); err != nil {
				return fmt.Errorf("send failed after %d datagrams: %w", sent, err)
			}
			sent++
			if count > 0 && sent >= count {
				return finish(conn, sent)
			}
		}

		select {
		case <-sigChan:
			fmt.Printf("\nInterrupted.\n")
			return finish(conn, sent)
		case <-time.After(interval):
		}
	}
}

// synthesize builds one sample for a channel: a sinusoidal magnitude
// profile under a phase ramp whose slope drifts with time, plus a
// jittering time alignment around 10 µs.
func synthesize(channel, tick int) wire.Sample {
	meas := make([]complex64, subcarriers)
	slope := 0.1 * (1 + 0.5*math.Sin(float64(tick)/40)) * float64(channel+1)
	for k := range meas {
		mag := 0.5 + 0.4*math.Sin(2*math.Pi*float64(k)/float64(subcarriers))
		phase := slope * float64(k)
		meas[k] = complex(float32(mag*math.Cos(phase)), float32(mag*math.Sin(phase)))
	}

	ta := 10e-6 + 2e-6*math.Sin(float64(tick)/25) + 0.5e-6*float64(channel)

	return wire.Sample{
		ChannelID:    channel,
		PeerID:       0,
		TimingOffset: ta,
		Measurement:  meas,
	}
}

func finish(conn net.Conn, sent int) error {
	if closeStream {
		if _, err := conn.Write(nil); err != nil {
			return fmt.Errorf("failed to send end-of-stream: %w", err)
		}
	}
	fmt.Printf("Sent %d datagrams.\n", sent)
	return nil
}

// main is the entry point of the application
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

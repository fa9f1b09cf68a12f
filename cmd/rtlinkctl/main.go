// Command rtlinkctl runs a host and client rtlink.Link against each
// other over an in-memory transport, optionally loading a YAML task
// table onto the host, and reports PTP convergence and node states.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/atsika/rtlink"
	"github.com/atsika/rtlink/loader"
	"github.com/atsika/rtlink/memtransport"
)

func main() {
	configFlag := flag.String("config", "", "YAML task description file to deploy on the host")
	durationFlag := flag.Duration("duration", 2*time.Second, "how long to run the link before reporting and exiting")
	dropFlag := flag.Float64("drop", 0.0, "packet drop rate on the in-memory transport, 0..1")
	skewFlag := flag.Duration("skew", 0, "constant clock skew applied to the client's clock")
	flag.Usage = printUsage
	flag.Parse()

	if err := run(*configFlag, *durationFlag, *dropFlag, *skewFlag); err != nil {
		log.Fatal(err)
	}
}

func run(configPath string, duration time.Duration, dropRate float64, skew time.Duration) error {
	pipe := memtransport.NewPipe(8)
	pipe.DropRate = dropRate

	hostStart := time.Now()
	clientStart := hostStart.Add(skew)

	host, err := rtlink.NewLink(pipe.HostSide(), true, clockFrom(hostStart))
	if err != nil {
		return fmt.Errorf("new host link: %w", err)
	}
	client, err := rtlink.NewLink(pipe.ClientSide(), false, clockFrom(clientStart))
	if err != nil {
		return fmt.Errorf("new client link: %w", err)
	}

	if configPath != "" {
		if err := loader.Load(configPath, host); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	if err := memtransport.RunPair(ctx, host, client); err != nil &&
		!errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run: %w", err)
	}

	fmt.Printf("link %s: ptp offset %.1fus over %d ticks, %d packets published\n",
		host.ID, host.PTP.PTPOffset(), host.Metrics().GetTicks(), host.Metrics().GetPublished())
	for i := 0; i < client.Manager.NNodes; i++ {
		n := &client.Manager.Nodes[i]
		fmt.Printf("  node %d: status=%s data=%v\n", i, n.Status, n.Data[:n.NOutputs])
	}
	return nil
}

func clockFrom(start time.Time) rtlink.Clock {
	return func() uint32 { return uint32(time.Since(start).Microseconds()) }
}

func printUsage() {
	fmt.Println("rtlinkctl - host/client PTP+RTNT link demo over an in-memory transport")
	fmt.Println("Usage:")
	fmt.Println("  rtlinkctl [-config file.yaml] [-duration 2s] [-drop 0.01] [-skew 50ms]")
}

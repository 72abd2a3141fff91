package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/suyash-sneo/kvload"
	"github.com/suyash-sneo/kvload/topo"
	topored "github.com/suyash-sneo/kvload/topo/redis"
)

func main() {
	var (
		profilePath string
		verbose     bool
	)
	flag.StringVar(&profilePath, "profile", "", "path to YAML workload profile")
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.Parse()

	profile := kvload.DefaultProfile()
	if profilePath != "" {
		var err error
		profile, err = kvload.LoadProfile(profilePath)
		if err != nil {
			log.Fatalf("profile: %v", err)
		}
	}
	profile, err := profile.WithEnv()
	if err != nil {
		log.Fatalf("environment: %v", err)
	}

	topology, err := buildTopology(profile)
	if err != nil {
		log.Fatalf("topology: %v", err)
	}
	defer topology.Close()

	logger := stdLogger{verbose: verbose}
	logger.Info("configured",
		kvload.Field{Key: "topology", Value: profile.Topology},
		kvload.Field{Key: "ops_per_second", Value: profile.Config().OpsPerSecond},
		kvload.Field{Key: "read_ratio_pct", Value: profile.Config().ReadRatio})

	gen, err := kvload.NewGenerator(profile.Config(), topology, logger, kvload.NopMetrics())
	if err != nil {
		log.Fatalf("generator: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()
	if err := gen.Run(ctx); err != nil {
		// Only the startup connect path errors; steady state survives.
		log.Fatalf("load generator: %v", err)
	}
}

func buildTopology(p kvload.Profile) (topo.Topology, error) {
	return topored.New(p.Topology, topored.Options{
		ClusterNodes:  p.ClusterNodes,
		SentinelAddrs: p.SentinelAddrs,
		MasterName:    p.MasterName,
		PrimaryAddr:   p.PrimaryAddr,
		ReplicaAddrs:  p.ReplicaAddrs,
	})
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
	}()
	return ctx, cancel
}

type stdLogger struct {
	verbose bool
}

func (l stdLogger) Debug(msg string, fields ...kvload.Field) {
	if l.verbose {
		log.Print(format(msg, fields...))
	}
}

func (l stdLogger) Info(msg string, fields ...kvload.Field) { log.Print(format(msg, fields...)) }
func (l stdLogger) Warn(msg string, fields ...kvload.Field) {
	log.Print("WARN: " + format(msg, fields...))
}
func (l stdLogger) Error(msg string, fields ...kvload.Field) {
	log.Print("ERROR: " + format(msg, fields...))
}

func format(msg string, fields ...kvload.Field) string {
	if len(fields) == 0 {
		return msg
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", f.Key, f.Value))
	}
	return msg + " " + strings.Join(parts, " ")
}

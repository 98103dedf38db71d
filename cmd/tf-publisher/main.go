// tf-publisher loads [[tf]] entries from a config file and republishes
// them on a timer over tftransport.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/grailbio/tf/tfconfig"
	"github.com/grailbio/tf/tfcore"
	"github.com/grailbio/tf/tftransport"
)

var (
	addr     = flag.String("addr", "ws://localhost:8080", "base websocket URL of the tf server")
	input    = flag.String("input", "", "path to a [[tf]] TOML config file")
	static   = flag.Bool("static", false, "publish to /tf_static instead of /tf")
	interval = flag.Duration("interval", time.Second, "republish interval")
	version  = flag.Bool("version", false, "print version and exit")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if *version {
		fmt.Println("tf-publisher (github.com/grailbio/tf)")
		return
	}
	if *input == "" {
		log.Fatalf("-input is required; see -h")
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("reading %s: %v", *input, err)
	}
	cfg, err := tfconfig.Decode(data)
	if err != nil {
		log.Fatalf("decoding %s: %v", *input, err)
	}

	topic := "/tf"
	if *static {
		topic = "/tf_static"
	}

	ctx := context.Background()
	pub, err := tftransport.DialPublisher(ctx, *addr+topic)
	if err != nil {
		log.Fatalf("dialing %s%s: %v", *addr, topic, err)
	}
	defer pub.Close()

	msg := tfcore.TFMessage{Transforms: cfg.Transforms}
	if *static {
		if err := pub.Publish(msg); err != nil {
			log.Fatalf("publish: %v", err)
		}
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for range ticker.C {
		if err := pub.Publish(msg); err != nil {
			log.Error.Printf("publish: %v", err)
		}
	}
}

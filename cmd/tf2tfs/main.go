// tf2tfs loads [[tf2tf]] lookup-and-rebroadcast pipelines, runs each one
// against a live buffer fed from the dynamic/static topics, and
// republishes the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/grailbio/tf/tfbuffer"
	"github.com/grailbio/tf/tfconfig"
	"github.com/grailbio/tf/tfcore"
	"github.com/grailbio/tf/tflisten"
	"github.com/grailbio/tf/tfmath"
	"github.com/grailbio/tf/tftransport"
)

var (
	addr     = flag.String("addr", "ws://localhost:8080", "base websocket URL of the tf server")
	input    = flag.String("input", "", "path to a [[tf2tf]] TOML config file")
	interval = flag.Duration("interval", 100*time.Millisecond, "republish interval")
	version  = flag.Bool("version", false, "print version and exit")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if *version {
		fmt.Println("tf2tfs (github.com/grailbio/tf)")
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
	if len(cfg.Rebroadcasts) == 0 {
		log.Fatalf("%s declares no [[tf2tf]] entries", *input)
	}

	ctx := context.Background()

	buf := tfbuffer.New(tfbuffer.DefaultCacheDuration)
	dyn, err := tftransport.DialSource(ctx, *addr+"/tf")
	if err != nil {
		log.Fatalf("dialing %s/tf: %v", *addr, err)
	}
	stat, err := tftransport.DialSource(ctx, *addr+"/tf_static")
	if err != nil {
		log.Fatalf("dialing %s/tf_static: %v", *addr, err)
	}
	listener := tflisten.New(dyn, stat, buf)
	go func() {
		if err := listener.Run(ctx); err != nil {
			log.Error.Printf("listener stopped: %v", err)
		}
	}()

	pub, err := tftransport.DialPublisher(ctx, *addr+"/tf")
	if err != nil {
		log.Fatalf("dialing %s/tf: %v", *addr, err)
	}
	defer pub.Close()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for range ticker.C {
		var out tfcore.TFMessage
		for _, rb := range cfg.Rebroadcasts {
			looked, err := buf.Lookup(rb.LookupParent, rb.LookupChild, nil)
			if err != nil {
				log.Error.Printf("tf2tfs: lookup %s->%s: %v", rb.LookupParent, rb.LookupChild, err)
				continue
			}
			out.Transforms = append(out.Transforms, tfcore.TransformStamped{
				Header:       tfcore.Header{FrameID: rb.BroadcastParent, Stamp: looked.Header.Stamp},
				ChildFrameID: rb.BroadcastChild,
				Transform:    tfmath.Compose(rb.FixedOffset, looked.Transform),
			})
		}
		if len(out.Transforms) > 0 {
			if err := pub.Publish(out); err != nil {
				log.Error.Printf("tf2tfs: publish: %v", err)
			}
		}
	}
}

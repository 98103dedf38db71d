// tf-echo subscribes to a peer's dynamic and static topics and prints
// every inbound TFMessage until -wait seconds elapse.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/grailbio/tf/tftransport"
)

var (
	addr    = flag.String("addr", "ws://localhost:8080", "base websocket URL of the tf server")
	wait    = flag.Float64("wait", 10, "seconds to listen before exiting")
	version = flag.Bool("version", false, "print version and exit")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if *version {
		fmt.Println("tf-echo (github.com/grailbio/tf)")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*wait*float64(time.Second)))
	defer cancel()

	dyn, err := tftransport.DialSource(ctx, *addr+"/tf")
	if err != nil {
		log.Fatalf("dialing %s/tf: %v", *addr, err)
	}
	defer dyn.Close()

	stat, err := tftransport.DialSource(ctx, *addr+"/tf_static")
	if err != nil {
		log.Fatalf("dialing %s/tf_static: %v", *addr, err)
	}
	defer stat.Close()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		printIfReady("/tf", dyn, ctx)
		printIfReady("/tf_static", stat, ctx)
		time.Sleep(10 * time.Millisecond)
	}
}

func printIfReady(topic string, src *tftransport.Source, ctx context.Context) {
	msg, err := src.Recv(ctx)
	if err != nil {
		return
	}
	for _, ts := range msg.Transforms {
		fmt.Printf("%s %s -> %s: %+v\n", topic, ts.Header.FrameID, ts.ChildFrameID, ts.Transform)
	}
}

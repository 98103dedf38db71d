// tf-from-joints loads [[joint]] descriptors from a config file, reads a
// stream of "<joint name> <position radians>" lines from stdin, and
// publishes the resulting TransformStamped values via tftransport.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/grailbio/tf/tfconfig"
	"github.com/grailbio/tf/tfcore"
	"github.com/grailbio/tf/tfjoint"
	"github.com/grailbio/tf/tftransport"
)

var (
	addr    = flag.String("addr", "ws://localhost:8080", "base websocket URL of the tf server")
	input   = flag.String("input", "", "path to a [[joint]] TOML config file")
	version = flag.Bool("version", false, "print version and exit")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if *version {
		fmt.Println("tf-from-joints (github.com/grailbio/tf)")
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

	joints := make(map[string]tfjoint.Joint, len(cfg.Joints))
	for _, j := range cfg.Joints {
		joints[j.Name] = j
	}

	ctx := context.Background()
	pub, err := tftransport.DialPublisher(ctx, *addr+"/tf")
	if err != nil {
		log.Fatalf("dialing %s/tf: %v", *addr, err)
	}
	defer pub.Close()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		j, ok := joints[fields[0]]
		if !ok {
			log.Error.Printf("tf-from-joints: unknown joint %q", fields[0])
			continue
		}
		pos, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			log.Error.Printf("tf-from-joints: bad position for %q: %v", fields[0], err)
			continue
		}
		ts := j.Transform(pos, tfcore.StampFromSeconds(float64(time.Now().UnixNano())/1e9))
		if err := pub.Publish(tfcore.TFMessage{Transforms: []tfcore.TransformStamped{ts}}); err != nil {
			log.Error.Printf("tf-from-joints: publish: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("reading stdin: %v", err)
	}
}

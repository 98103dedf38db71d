// tf-tree loads one or more config/capture files, builds a buffer from
// their contents, and prints the resolved frame forest.
package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/grailbio/tf/tfbuffer"
	"github.com/grailbio/tf/tfcapture"
	"github.com/grailbio/tf/tfconfig"
)

var (
	version = flag.Bool("version", false, "print version and exit")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] file.toml|file.tfcap ...\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if *version {
		fmt.Println("tf-tree (github.com/grailbio/tf)")
		return
	}

	if flag.NArg() == 0 {
		log.Fatalf("at least one input file is required; see -h")
	}

	buf := tfbuffer.New(tfbuffer.DefaultCacheDuration)
	for _, path := range flag.Args() {
		if err := loadInto(buf, path); err != nil {
			log.Fatalf("loading %s: %v", path, err)
		}
	}

	for _, root := range buf.FrameRoots() {
		printTree(buf, root, 0)
	}
}

// loadInto reads path (local or, via grailbio/base/file, s3://) and
// applies its contents to buf. path is a [[tf]] TOML config if it ends in
// .toml, else a tfcapture stream.
func loadInto(buf *tfbuffer.Buffer, path string) (err error) {
	ctx := vcontext.Background()
	src, err := file.Open(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, src, &err)

	if ext(path) == ".toml" {
		data, err := ioutil.ReadAll(src.Reader(ctx))
		if err != nil {
			return err
		}
		cfg, err := tfconfig.Decode(data)
		if err != nil {
			return err
		}
		for _, ts := range cfg.Transforms {
			if err := buf.AddTransform(ts, true); err != nil {
				log.Error.Printf("tf-tree: dropping %s->%s: %v", ts.Header.FrameID, ts.ChildFrameID, err)
			}
		}
		return nil
	}

	r, err := tfcapture.NewReader(src.Reader(ctx))
	if err != nil {
		return err
	}
	defer r.Close()
	recs, err := r.ReadAll()
	if err != nil && err != io.EOF {
		return err
	}
	for _, rec := range recs {
		for _, ts := range rec.Message.Transforms {
			if err := buf.AddTransform(ts, rec.IsStatic); err != nil {
				log.Error.Printf("tf-tree: dropping %s->%s: %v", ts.Header.FrameID, ts.ChildFrameID, err)
			}
		}
	}
	return nil
}

func ext(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func printTree(buf *tfbuffer.Buffer, frame string, depth int) {
	for i := 0; i < depth; i++ {
		fmt.Print("  ")
	}
	fmt.Println(frame)
	for _, child := range buf.Children(frame) {
		printTree(buf, child, depth+1)
	}
}

// Command froster archives, restores and indexes large folder trees
// against S3-compatible cold storage.
package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/dirkpetersen/froster-go/cli"
)

func main() {
	app := kingpin.New("froster", "Archive, restore and index large folder trees against cold S3 storage.")

	a := cli.NewApp()
	a.Attach(app)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

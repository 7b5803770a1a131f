// assfilter removes events from ASS/SSA subtitle scripts by style or layer.
package main

import (
	"os"

	"github.com/hupe1980/assfilter/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

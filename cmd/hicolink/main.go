// Command hicolink links sort orders and value scales between pileup
// widgets from a terminal.
package main

import (
	"os"

	"github.com/hicognition/hicolink/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

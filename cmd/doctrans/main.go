// Command doctrans converts a callable's interface between its docstring,
// class and argparse representations and keeps them in sync.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/SamuelMarks/docstring2class/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}

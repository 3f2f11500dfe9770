package main

import (
	"confdata/cmd/confdata/commands"
	"confdata/lib/serviceutil"
)

func main() {
	ctx, stop := serviceutil.SignalContext()
	defer stop()
	commands.ExecuteContext(ctx)
}

package main

import (
	"context"
	"os"

	"git.hub.com/wangyl/RtspRequest/app"
)

func main() {
	os.Exit(app.Run(context.Background(), os.Args, app.DefaultEnv()))
}

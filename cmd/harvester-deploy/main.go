package main

import (
	"context"

	"github.com/trialdata/harvester-deploy/cmd/cli"
	"github.com/trialdata/harvester-deploy/internal/tracing"
	"github.com/trialdata/harvester-deploy/internal/util"
)

func main() {
	util.SetLogLevel()

	ctx := context.Background()
	shutdown := tracing.Init(ctx)
	defer shutdown()

	cli.Invoke(ctx)
}

package router

import (
	"context"
	"fmt"
	"os"

	"github.com/trialdata/harvester-deploy/cmd/cli/param"
	"github.com/trialdata/harvester-deploy/cmd/cli/view"
	"github.com/trialdata/harvester-deploy/pkg/sdk"

	"github.com/alexflint/go-arg"
)

type Root struct {
	param.GlobalOpts
	Deploy *param.Deploy `arg:"subcommand:deploy" help:"Provision the scheduled harvester function end to end"`
	Config *param.Config `arg:"subcommand:config" help:"Print the resolved configuration"`
}

func (Root) Description() string {
	return "harvester-deploy provisions a periodic, containerized harvester as a scheduled Lambda"
}

func (r Root) Route(ctx context.Context, api sdk.API) error {
	switch {
	case r.Deploy != nil:
		summary, err := api.Pipeline.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Fprint(os.Stdout, view.RenderSummary(summary))
		return nil

	case r.Config != nil:
		rendered, err := api.Config.Json()
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, rendered)
		return nil

	default:
		arg.MustParse(&r).WriteHelp(os.Stdout)
		return nil
	}
}

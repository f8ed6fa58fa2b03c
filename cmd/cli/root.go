package cli

import (
	"context"
	"os"

	"github.com/trialdata/harvester-deploy/cmd/cli/router"
	"github.com/trialdata/harvester-deploy/internal/util"
	"github.com/trialdata/harvester-deploy/pkg/convention/config"
	"github.com/trialdata/harvester-deploy/pkg/sdk"

	"github.com/alexflint/go-arg"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Invoke(ctx context.Context) {
	var err error
	var cfg config.Config
	var api sdk.API

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var root router.Root
	arg.MustParse(&root)

	retryLogger := util.RetryLogger{
		Log: &log.Logger,
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(root.Region),
		awsconfig.WithLogger(&retryLogger),
		awsconfig.WithClientLogMode(aws.LogRetries))

	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS configuration")
	}

	stsc := sts.NewFromConfig(awsConfig)

	options := config.Options{
		Region:         root.Region,
		FunctionName:   root.Function,
		RepositoryName: root.Repository,
		ImageTag:       root.Tag,
		Bucket:         root.Bucket,
		BuildContext:   root.Context,
		Expression:     root.Schedule,
	}

	if cfg, err = config.Stateful(ctx, stsc, options); err != nil {
		log.Fatal().Err(err).Msg("failed to resolve configuration")
	}

	if api, err = sdk.Init(ctx, awsConfig, cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize SDK")
	}

	if err := root.Route(ctx, api); err != nil {
		log.Fatal().Err(err).Strs("argv", os.Args).Msg("failed command")
	}
}

package config

import (
	"context"
	"fmt"

	"github.com/trialdata/harvester-deploy/internal/gitlib"

	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog/log"
)

type StsClient interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Options are the caller-facing knobs. Empty fields fall back to the
// package defaults.
type Options struct {
	Region         string
	FunctionName   string
	RepositoryName string
	ImageTag       string
	Bucket         string
	BuildContext   string
	Expression     string
}

func (o Options) withDefaults() Options {
	if o.Region == "" {
		o.Region = DefaultRegion
	}
	if o.FunctionName == "" {
		o.FunctionName = DefaultFunctionName
	}
	if o.RepositoryName == "" {
		o.RepositoryName = DefaultRepositoryName
	}
	if o.ImageTag == "" {
		o.ImageTag = DefaultImageTag
	}
	if o.Bucket == "" {
		o.Bucket = DefaultBucket
	}
	if o.BuildContext == "" {
		o.BuildContext = DefaultBuildContext
	}
	if o.Expression == "" {
		o.Expression = DefaultScheduleExpression
	}
	return o
}

// FromOptions builds a Config without touching the network. The caller
// supplies the account id; Stateful discovers it.
func FromOptions(o Options, accountId string) Config {
	o = o.withDefaults()

	return Config{
		Account: Account{
			Id:     accountId,
			Region: o.Region,
		},
		Registry: Registry{
			Id:     accountId,
			Region: o.Region,
			Url:    fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com", accountId, o.Region),
		},
		Repository: Repository{
			Name: o.RepositoryName,
			Tag:  o.ImageTag,
		},
		Function: Function{
			Name:         o.FunctionName,
			Architecture: DefaultArchitecture,
			MemorySize:   DefaultMemorySize,
			Timeout:      DefaultTimeout,
		},
		Role: Role{
			Name:       o.FunctionName + "-role",
			PolicyArns: ManagedPolicyArns,
		},
		Schedule: Schedule{
			RuleName:    o.FunctionName + "-schedule",
			Expression:  o.Expression,
			Description: "periodic trigger for " + o.FunctionName + ", managed by harvester-deploy",
			StatementId: o.FunctionName + "-schedule",
		},
		Workload: Workload{
			Bucket:          o.Bucket,
			DownloadTimeout: DefaultDownloadTimeout,
		},
		BuildContext: o.BuildContext,
	}
}

// Stateful resolves the pieces of config that require remote calls or
// local filesystem state: the caller's account identity and, when the
// build context sits inside a git worktree, HEAD.
func Stateful(ctx context.Context, stsc StsClient, o Options) (Config, error) {
	identity, err := stsc.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Config{}, err
	}

	c := FromOptions(o, *identity.Account)

	if dotgit, err := gitlib.FromPath(c.BuildContext); err == nil {
		c.Git = Git{
			Branch: dotgit.Branch,
			Sha:    dotgit.Sha,
			Dirty:  dotgit.Dirty,
		}
	} else {
		log.Debug().Err(err).Msg("build context is not a git worktree, images will carry no sha label")
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

package sdk

import (
	"context"

	// config
	"github.com/trialdata/harvester-deploy/pkg/convention/config"

	// services
	"github.com/trialdata/harvester-deploy/pkg/service/docker"
	"github.com/trialdata/harvester-deploy/pkg/service/event"
	"github.com/trialdata/harvester-deploy/pkg/service/function"
	"github.com/trialdata/harvester-deploy/pkg/service/registry"

	// conventions
	"github.com/trialdata/harvester-deploy/pkg/convention/deployment"
	"github.com/trialdata/harvester-deploy/pkg/convention/pipeline"
	"github.com/trialdata/harvester-deploy/pkg/convention/release"
	"github.com/trialdata/harvester-deploy/pkg/convention/schedule"

	// clients
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type Clients struct {
	StsClient         *sts.Client
	EcrClient         *ecr.Client
	LambdaClient      *lambda.Client
	IamClient         *iam.Client
	EventBridgeClient *eventbridge.Client
}

type Services struct {
	Docker   docker.Service
	Registry registry.Service
	Function function.Service
	Event    event.Service
}

type Conventions struct {
	Release    release.Convention
	Deployment deployment.Convention
	Schedule   schedule.Convention
}

type API struct {
	Conventions
	Pipeline pipeline.Pipeline
	Config   config.Config
}

func Init(ctx context.Context, awsConfig aws.Config, config config.Config) (API, error) {
	clients := InitClients(ctx, awsConfig)

	services, err := InitServices(ctx, clients)
	if err != nil {
		return API{}, err
	}

	conventions := InitConventions(ctx, config, services)

	return API{
		Conventions: conventions,
		Pipeline: pipeline.FromConventions(
			config,
			conventions.Release,
			conventions.Deployment,
			conventions.Schedule,
		),
		Config: config,
	}, nil
}

func InitConventions(ctx context.Context, config config.Config, services Services) Conventions {
	return Conventions{
		Release:    release.FromServices(config, services.Registry, services.Docker),
		Deployment: deployment.FromServices(config, services.Function),
		Schedule:   schedule.FromServices(config, services.Event),
	}
}

func InitServices(ctx context.Context, clients Clients) (Services, error) {
	docker, err := docker.FromPath()
	if err != nil {
		return Services{}, err
	}

	return Services{
		Docker:   docker,
		Registry: registry.FromClients(clients.EcrClient),
		Function: function.FromClients(clients.LambdaClient, clients.IamClient),
		Event:    event.FromClients(clients.EventBridgeClient, clients.LambdaClient),
	}, nil
}

func InitClients(ctx context.Context, awsConfig aws.Config) Clients {
	return Clients{
		StsClient:         sts.NewFromConfig(awsConfig),
		EcrClient:         ecr.NewFromConfig(awsConfig),
		LambdaClient:      lambda.NewFromConfig(awsConfig),
		IamClient:         iam.NewFromConfig(awsConfig),
		EventBridgeClient: eventbridge.NewFromConfig(awsConfig),
	}
}

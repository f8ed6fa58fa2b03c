package registry

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ecr"
)

type EcrClient interface {
	DescribeRepositories(ctx context.Context, params *ecr.DescribeRepositoriesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeRepositoriesOutput, error)
	CreateRepository(ctx context.Context, params *ecr.CreateRepositoryInput, optFns ...func(*ecr.Options)) (*ecr.CreateRepositoryOutput, error)
	GetAuthorizationToken(ctx context.Context, params *ecr.GetAuthorizationTokenInput, optFns ...func(*ecr.Options)) (*ecr.GetAuthorizationTokenOutput, error)
	DescribeImages(ctx context.Context, params *ecr.DescribeImagesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeImagesOutput, error)
}

type Client struct {
	Ecr EcrClient
}

type Service struct {
	Client Client
}

func FromClients(ecrClient EcrClient) Service {
	return Service{
		Client: Client{
			Ecr: ecrClient,
		},
	}
}

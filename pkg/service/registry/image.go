package registry

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecr/types"
)

// ImagePublished confirms the tag is present in the remote repository.
// A push the registry never recorded is an error here, not at the next
// scheduled invoke.
func (s Service) ImagePublished(ctx context.Context, repositoryName, tag string) error {
	describeImagesOutput, err := s.Client.Ecr.DescribeImages(ctx, &ecr.DescribeImagesInput{
		RepositoryName: aws.String(repositoryName),
		ImageIds: []types.ImageIdentifier{
			{ImageTag: aws.String(tag)},
		},
	})

	if err != nil {
		return err
	}

	if len(describeImagesOutput.ImageDetails) == 0 {
		return fmt.Errorf("tag %s not found in repository %s after push", tag, repositoryName)
	}

	return nil
}

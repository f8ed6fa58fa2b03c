package registry

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/smithy-go"
)

// PutRepository ensures the repository exists. The returned bool is true
// when this call created it. Both not-found-then-created and
// already-exists resolve to success.
func (s Service) PutRepository(ctx context.Context, repositoryName string) (bool, error) {
	var apiErr smithy.APIError

	_, err := s.Client.Ecr.DescribeRepositories(ctx, &ecr.DescribeRepositoriesInput{
		RepositoryNames: []string{repositoryName},
	})

	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "RepositoryNotFoundException":
			_, err = s.Client.Ecr.CreateRepository(ctx, &ecr.CreateRepositoryInput{
				RepositoryName: aws.String(repositoryName),
			})

			if err != nil {
				if errors.As(err, &apiErr) && apiErr.ErrorCode() == "RepositoryAlreadyExistsException" {
					return false, nil
				}
				return false, err
			}

			return true, nil

		case "RepositoryAlreadyExistsException":
			return false, nil

		default:
			return false, err
		}
	}

	return false, err
}

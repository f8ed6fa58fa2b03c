package registry

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/ecr"
)

// Token exchanges caller credentials for a registry password. The ECR
// token decodes to "AWS:<password>".
func (s Service) Token(ctx context.Context, registryId string) (string, error) {
	input := &ecr.GetAuthorizationTokenInput{
		RegistryIds: []string{registryId},
	}

	output, err := s.Client.Ecr.GetAuthorizationToken(ctx, input)
	if err != nil {
		return "", err
	}

	if len(output.AuthorizationData) == 0 {
		return "", fmt.Errorf("no authorization data returned for registry %s", registryId)
	}

	encodedToken := *output.AuthorizationData[0].AuthorizationToken

	data, err := base64.StdEncoding.DecodeString(encodedToken)
	if err != nil {
		return "", err
	}

	parts := strings.SplitN(string(data), ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("malformed authorization token for registry %s", registryId)
	}

	return parts[1], nil
}

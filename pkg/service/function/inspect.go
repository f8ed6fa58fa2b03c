package function

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/smithy-go"
)

func (s Service) Inspect(ctx context.Context, name string) (*lambda.GetFunctionOutput, error) {
	getFunctionInput := &lambda.GetFunctionInput{
		FunctionName: aws.String(name),
	}

	return s.Client.Lambda.GetFunction(ctx, getFunctionInput)
}

// Probe distinguishes a clean not-found from every other failure. Only a
// ResourceNotFoundException means the function is absent; an access
// error, a throttle, or anything else must not be read as "create it".
func (s Service) Probe(ctx context.Context, name string) (bool, error) {
	var apiErr smithy.APIError

	_, err := s.Inspect(ctx, name)
	if err == nil {
		return true, nil
	}

	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ResourceNotFoundException" {
		return false, nil
	}

	return false, err
}

package function

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	types "github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// reservedEnvKeys are owned by the Lambda runtime. The platform rejects
// configuration updates that try to set them, so they are stripped from
// the desired map before the call.
var reservedEnvKeys = map[string]bool{
	"AWS_REGION":         true,
	"AWS_DEFAULT_REGION": true,
}

type CreateInput struct {
	Name         string
	RoleArn      string
	ImageUri     string
	Architecture types.Architecture
	MemorySize   int32
	Timeout      int32
	Environment  map[string]string
}

// CreateFunction is the create branch of the provisioning decision. A
// freshly created role may not yet be assumable by Lambda, which
// surfaces as InvalidParameterValueException; that code is retried with
// bounded attempts rather than slept on.
func (s Service) CreateFunction(ctx context.Context, put CreateInput) (*lambda.GetFunctionOutput, error) {
	createFunctionInput := &lambda.CreateFunctionInput{
		FunctionName:  aws.String(put.Name),
		Role:          aws.String(put.RoleArn),
		Architectures: []types.Architecture{put.Architecture},
		Code: &types.FunctionCode{
			ImageUri: aws.String(put.ImageUri),
		},
		PackageType: types.PackageTypeImage,
		MemorySize:  aws.Int32(put.MemorySize),
		Timeout:     aws.Int32(put.Timeout),
		Environment: &types.Environment{
			Variables: stripReserved(put.Environment),
		},
	}

	_, err := s.Client.Lambda.CreateFunction(ctx, createFunctionInput, func(options *lambda.Options) {
		options.Retryer = retry.AddWithErrorCodes(options.Retryer, (*types.InvalidParameterValueException)(nil).ErrorCode())
		options.Retryer = retry.AddWithMaxAttempts(options.Retryer, 10)
	})

	if err != nil {
		return &lambda.GetFunctionOutput{}, err
	}

	return s.Inspect(ctx, put.Name)
}

// UpdateFunctionCode is the update branch: only the image reference
// changes. Architecture, memory, timeout and role binding are left as
// the existing function has them.
func (s Service) UpdateFunctionCode(ctx context.Context, name, imageUri string) (*lambda.GetFunctionOutput, error) {
	updateFunctionCodeInput := &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(name),
		ImageUri:     aws.String(imageUri),
		Publish:      true,
	}

	_, err := s.Client.Lambda.UpdateFunctionCode(ctx, updateFunctionCodeInput, func(options *lambda.Options) {
		options.Retryer = retry.AddWithErrorCodes(options.Retryer, (*types.ResourceConflictException)(nil).ErrorCode())
		options.Retryer = retry.AddWithMaxAttempts(options.Retryer, 10)
	})

	if err != nil {
		return &lambda.GetFunctionOutput{}, err
	}

	return s.Inspect(ctx, name)
}

// PutEnvironment replaces the function's variable set wholesale. The
// platform's UpdateFunctionConfiguration semantics are already
// replace-not-merge, so supplying the complete desired map is all that
// idempotency requires.
func (s Service) PutEnvironment(ctx context.Context, name string, environment map[string]string) (*lambda.UpdateFunctionConfigurationOutput, error) {
	updateFunctionConfigurationInput := &lambda.UpdateFunctionConfigurationInput{
		FunctionName: aws.String(name),
		Environment: &types.Environment{
			Variables: stripReserved(environment),
		},
	}

	return s.Client.Lambda.UpdateFunctionConfiguration(ctx, updateFunctionConfigurationInput, func(options *lambda.Options) {
		options.Retryer = retry.AddWithErrorCodes(options.Retryer, (*types.ResourceConflictException)(nil).ErrorCode())
		options.Retryer = retry.AddWithMaxAttempts(options.Retryer, 10)
	})
}

func stripReserved(environment map[string]string) map[string]string {
	variables := map[string]string{}
	for key, value := range environment {
		if reservedEnvKeys[key] {
			continue
		}
		variables[key] = value
	}
	return variables
}

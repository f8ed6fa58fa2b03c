package mock

import (
	"context"
	"time"

	"github.com/trialdata/harvester-deploy/pkg/convention/config"
	"github.com/trialdata/harvester-deploy/pkg/service/function"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/stretchr/testify/mock"
)

// MockFunctionService is a mock of the deployment.FunctionService interface
type MockFunctionService struct {
	mock.Mock
}

func (m *MockFunctionService) Probe(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockFunctionService) Inspect(ctx context.Context, name string) (*lambda.GetFunctionOutput, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(*lambda.GetFunctionOutput), args.Error(1)
}

func (m *MockFunctionService) CreateFunction(ctx context.Context, put function.CreateInput) (*lambda.GetFunctionOutput, error) {
	args := m.Called(ctx, put)
	return args.Get(0).(*lambda.GetFunctionOutput), args.Error(1)
}

func (m *MockFunctionService) UpdateFunctionCode(ctx context.Context, name, imageUri string) (*lambda.GetFunctionOutput, error) {
	args := m.Called(ctx, name, imageUri)
	return args.Get(0).(*lambda.GetFunctionOutput), args.Error(1)
}

func (m *MockFunctionService) PutEnvironment(ctx context.Context, name string, environment map[string]string) (*lambda.UpdateFunctionConfigurationOutput, error) {
	args := m.Called(ctx, name, environment)
	return args.Get(0).(*lambda.UpdateFunctionConfigurationOutput), args.Error(1)
}

func (m *MockFunctionService) PutRole(ctx context.Context, name string, document string) (*iam.GetRoleOutput, bool, error) {
	args := m.Called(ctx, name, document)
	return args.Get(0).(*iam.GetRoleOutput), args.Bool(1), args.Error(2)
}

func (m *MockFunctionService) GetRolePolicies(ctx context.Context, name string) (*iam.ListAttachedRolePoliciesOutput, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(*iam.ListAttachedRolePoliciesOutput), args.Error(1)
}

func (m *MockFunctionService) AttachPolicyToRole(ctx context.Context, policyArn, roleName string) (*iam.AttachRolePolicyOutput, error) {
	args := m.Called(ctx, policyArn, roleName)
	return args.Get(0).(*iam.AttachRolePolicyOutput), args.Error(1)
}

func (m *MockFunctionService) WaitSettled(ctx context.Context, name string, timeout time.Duration) error {
	args := m.Called(ctx, name, timeout)
	return args.Error(0)
}

func MockGetFunctionOutput(c config.Config, imageUri string) *lambda.GetFunctionOutput {
	arn := "arn:aws:lambda:" + c.Account.Region + ":" + c.Account.Id + ":function:" + c.Function.Name

	return &lambda.GetFunctionOutput{
		Configuration: &types.FunctionConfiguration{
			FunctionName: aws.String(c.Function.Name),
			FunctionArn:  aws.String(arn),
			Role:         aws.String(MockRoleArn(c)),
			State:        types.StateActive,
			LastModified: aws.String(time.Now().UTC().Format("2006-01-02T15:04:05.000-0700")),
			MemorySize:   aws.Int32(c.Function.MemorySize),
			Timeout:      aws.Int32(c.Function.Timeout),
		},
		Code: &types.FunctionCodeLocation{
			ImageUri: aws.String(imageUri),
		},
	}
}

func MockRoleArn(c config.Config) string {
	return "arn:aws:iam::" + c.Account.Id + ":role/" + c.Role.Name
}

func MockGetRoleOutput(c config.Config) *iam.GetRoleOutput {
	return &iam.GetRoleOutput{
		Role: &iamtypes.Role{
			RoleName: aws.String(c.Role.Name),
			Arn:      aws.String(MockRoleArn(c)),
		},
	}
}

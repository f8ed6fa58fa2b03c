package function

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

type fakeLambda struct {
	getErr error
}

func (f *fakeLambda) GetFunction(ctx context.Context, params *lambda.GetFunctionInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &lambda.GetFunctionOutput{
		Configuration: &types.FunctionConfiguration{FunctionName: params.FunctionName},
	}, nil
}

func (f *fakeLambda) CreateFunction(ctx context.Context, params *lambda.CreateFunctionInput, optFns ...func(*lambda.Options)) (*lambda.CreateFunctionOutput, error) {
	return &lambda.CreateFunctionOutput{}, nil
}

func (f *fakeLambda) UpdateFunctionCode(ctx context.Context, params *lambda.UpdateFunctionCodeInput, optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionCodeOutput, error) {
	return &lambda.UpdateFunctionCodeOutput{}, nil
}

func (f *fakeLambda) UpdateFunctionConfiguration(ctx context.Context, params *lambda.UpdateFunctionConfigurationInput, optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionConfigurationOutput, error) {
	return &lambda.UpdateFunctionConfigurationOutput{}, nil
}

type fakeIam struct {
	getErrs   []error
	gets      int
	createErr error
	creates   int
	attaches  []string
}

func (f *fakeIam) GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error) {
	defer func() { f.gets++ }()
	if f.gets < len(f.getErrs) && f.getErrs[f.gets] != nil {
		return nil, f.getErrs[f.gets]
	}
	return &iam.GetRoleOutput{
		Role: &iamtypes.Role{
			RoleName: params.RoleName,
			Arn:      aws.String("arn:aws:iam::123456789012:role/" + *params.RoleName),
		},
	}, nil
}

func (f *fakeIam) CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error) {
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &iam.CreateRoleOutput{}, nil
}

func (f *fakeIam) AttachRolePolicy(ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error) {
	f.attaches = append(f.attaches, *params.PolicyArn)
	return &iam.AttachRolePolicyOutput{}, nil
}

func (f *fakeIam) ListAttachedRolePolicies(ctx context.Context, params *iam.ListAttachedRolePoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedRolePoliciesOutput, error) {
	return &iam.ListAttachedRolePoliciesOutput{}, nil
}

func TestProbe(t *testing.T) {
	ctx := context.Background()

	t.Run("existing function is found", func(t *testing.T) {
		s := FromClients(&fakeLambda{}, &fakeIam{})
		found, err := s.Probe(ctx, "ctis-harvester")

		assert.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("clean not-found is not an error", func(t *testing.T) {
		s := FromClients(&fakeLambda{getErr: &smithy.GenericAPIError{Code: "ResourceNotFoundException"}}, &fakeIam{})
		found, err := s.Probe(ctx, "ctis-harvester")

		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("anything else propagates, no guessing", func(t *testing.T) {
		s := FromClients(&fakeLambda{getErr: &smithy.GenericAPIError{Code: "AccessDeniedException"}}, &fakeIam{})
		_, err := s.Probe(ctx, "ctis-harvester")

		assert.Error(t, err)
	})
}

func TestWaitSettled(t *testing.T) {
	ctx := context.Background()

	t.Run("visible role returns without sleeping", func(t *testing.T) {
		s := FromClients(&fakeLambda{}, &fakeIam{})
		assert.NoError(t, s.WaitSettled(ctx, "ctis-harvester-role", time.Second))
	})

	t.Run("deadline exceeded surfaces the last probe error", func(t *testing.T) {
		client := &fakeIam{getErrs: []error{
			&smithy.GenericAPIError{Code: "NoSuchEntity"},
			&smithy.GenericAPIError{Code: "NoSuchEntity"},
		}}
		s := FromClients(&fakeLambda{}, client)

		err := s.WaitSettled(ctx, "ctis-harvester-role", 0)
		assert.ErrorContains(t, err, "not visible")
	})
}

func TestStripReserved(t *testing.T) {
	variables := stripReserved(map[string]string{
		"AWS_REGION":       "eu-west-1",
		"S3_BUCKET":        "ctis-harvester-exports",
		"DOWNLOAD_TIMEOUT": "90",
	})

	assert.NotContains(t, variables, "AWS_REGION")
	assert.Equal(t, "ctis-harvester-exports", variables["S3_BUCKET"])
	assert.Equal(t, "90", variables["DOWNLOAD_TIMEOUT"])
}

package deployment

import (
	"context"
	"time"

	"github.com/trialdata/harvester-deploy/pkg/convention/config"
	"github.com/trialdata/harvester-deploy/pkg/service/function"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/rs/zerolog/log"
)

// rolePropagationTimeout bounds the post-creation wait for the execution
// role to become visible.
const rolePropagationTimeout = 30 * time.Second

type FunctionService interface {
	Probe(ctx context.Context, name string) (bool, error)
	Inspect(ctx context.Context, name string) (*lambda.GetFunctionOutput, error)
	CreateFunction(ctx context.Context, put function.CreateInput) (*lambda.GetFunctionOutput, error)
	UpdateFunctionCode(ctx context.Context, name, imageUri string) (*lambda.GetFunctionOutput, error)
	PutEnvironment(ctx context.Context, name string, environment map[string]string) (*lambda.UpdateFunctionConfigurationOutput, error)
	PutRole(ctx context.Context, name string, document string) (*iam.GetRoleOutput, bool, error)
	GetRolePolicies(ctx context.Context, name string) (*iam.ListAttachedRolePoliciesOutput, error)
	AttachPolicyToRole(ctx context.Context, policyArn, roleName string) (*iam.AttachRolePolicyOutput, error)
	WaitSettled(ctx context.Context, name string, timeout time.Duration) error
}

type Deployment struct {
	lambda.GetFunctionOutput
}

func (d Deployment) Arn() string {
	return *d.Configuration.FunctionArn
}

type Services struct {
	Function FunctionService
}

type Convention struct {
	Config  config.Config
	Service Services
}

func FromServices(c config.Config, f FunctionService) Convention {
	return Convention{
		Config: c,
		Service: Services{
			Function: f,
		},
	}
}

func (c Convention) Find(ctx context.Context) (Deployment, error) {
	ctx, span := otel.Tracer("").Start(ctx, "deployment.Find")
	defer span.End()

	out, err := c.Service.Function.Inspect(ctx, c.Config.Function.Name)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Deployment{}, err
	}

	return Deployment{*out}, nil
}

// Deploy is the create-or-update decision. The probe admits exactly two
// states: absent creates (provisioning the execution role first),
// present updates the image reference and nothing else. A probe failure
// that is not a clean not-found aborts here; guessing whether the
// function exists is how duplicates happen. The returned bool is true on
// the create branch.
func (c Convention) Deploy(ctx context.Context, imageUri string, architecture lambdatypes.Architecture) (Deployment, bool, error) {
	ctx, span := otel.Tracer("").Start(ctx, "deployment.Deploy")
	defer span.End()

	span.SetAttributes(
		attribute.String("function-name", c.Config.Function.Name),
		attribute.String("image-uri", imageUri),
	)

	found, err := c.Service.Function.Probe(ctx, c.Config.Function.Name)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Deployment{}, false, err
	}

	if found {
		log.Info().Str("function", c.Config.Function.Name).Msg("function exists, updating image reference")

		out, err := c.Service.Function.UpdateFunctionCode(ctx, c.Config.Function.Name, imageUri)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return Deployment{}, false, err
		}

		return Deployment{*out}, false, nil
	}

	log.Info().Str("function", c.Config.Function.Name).Msg("function absent, creating")

	roleArn, err := c.ensureRole(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Deployment{}, false, err
	}

	out, err := c.Service.Function.CreateFunction(ctx, function.CreateInput{
		Name:         c.Config.Function.Name,
		RoleArn:      roleArn,
		ImageUri:     imageUri,
		Architecture: architecture,
		MemorySize:   c.Config.Function.MemorySize,
		Timeout:      c.Config.Function.Timeout,
		Environment:  c.Config.Environment(),
	})

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Deployment{}, false, err
	}

	return Deployment{*out}, true, nil
}

// ApplyEnvironment overwrites the function's variables with the complete
// desired set. Runs on both branches, so a drifted mapping is healed
// even when only the image changed.
func (c Convention) ApplyEnvironment(ctx context.Context) error {
	ctx, span := otel.Tracer("").Start(ctx, "deployment.ApplyEnvironment")
	defer span.End()

	if _, err := c.Service.Function.PutEnvironment(ctx, c.Config.Function.Name, c.Config.Environment()); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

// ensureRole runs only on the create branch. An existing role is left as
// found; a created one is polled until visible before the function
// create is attempted against it.
func (c Convention) ensureRole(ctx context.Context) (string, error) {
	document, err := c.Config.TrustPolicy()
	if err != nil {
		return "", err
	}

	role, created, err := c.Service.Function.PutRole(ctx, c.Config.Role.Name, document)
	if err != nil {
		return "", err
	}

	// On an existing role only the missing managed policies are
	// attached; whatever else is on the role stays.
	attached := map[string]bool{}
	if !created {
		log.Info().Str("role", c.Config.Role.Name).Msg("role exists, leaving as found")

		policies, err := c.Service.Function.GetRolePolicies(ctx, c.Config.Role.Name)
		if err != nil {
			return "", err
		}

		for _, policy := range policies.AttachedPolicies {
			attached[aws.ToString(policy.PolicyArn)] = true
		}
	}

	for _, policyArn := range c.Config.Role.PolicyArns {
		if attached[policyArn] {
			continue
		}

		if _, err := c.Service.Function.AttachPolicyToRole(ctx, policyArn, c.Config.Role.Name); err != nil {
			return "", err
		}
	}

	if created {
		if err := c.Service.Function.WaitSettled(ctx, c.Config.Role.Name, rolePropagationTimeout); err != nil {
			return "", err
		}
	}

	return *role.Role.Arn, nil
}

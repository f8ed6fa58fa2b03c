package pipeline

import (
	"context"

	"github.com/trialdata/harvester-deploy/pkg/convention/config"
	"github.com/trialdata/harvester-deploy/pkg/convention/deployment"
	"github.com/trialdata/harvester-deploy/pkg/convention/release"
	"github.com/trialdata/harvester-deploy/pkg/convention/schedule"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog/log"
)

// Class is the per-step verdict. Benign covers the recognized
// "already exists" family; everything else that fails is fatal and halts
// the run where it stands, leaving remote state as the last successful
// step produced it.
type Class int

const (
	ClassSuccess Class = iota
	ClassBenign
	ClassFatal
)

func (c Class) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassBenign:
		return "benign"
	case ClassFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

type StepResult struct {
	Step   string
	Class  Class
	Detail string
}

type Summary struct {
	FunctionName string
	FunctionArn  string
	ImageUri     string
	State        string
	LastModified string
	Created      bool
	RuleArn      string
	Expression   string
	Environment  map[string]string
	Steps        []StepResult
}

type Conventions struct {
	Release    release.Convention
	Deployment deployment.Convention
	Schedule   schedule.Convention
}

type Pipeline struct {
	Config     config.Config
	Convention Conventions
}

func FromConventions(c config.Config, r release.Convention, d deployment.Convention, s schedule.Convention) Pipeline {
	return Pipeline{
		Config: c,
		Convention: Conventions{
			Release:    r,
			Deployment: d,
			Schedule:   s,
		},
	}
}

// Run executes the provisioning sequence in its fixed order: repository,
// build, registry session, push, function create-or-update, environment,
// schedule. Strictly linear, one step at a time; the first fatal result
// stops the run.
func (p Pipeline) Run(ctx context.Context) (Summary, error) {
	ctx, span := otel.Tracer("").Start(ctx, "pipeline.Run")
	defer span.End()

	var steps []stepOutcome

	fail := func(step string, err error) (Summary, error) {
		span.SetStatus(codes.Error, err.Error())
		steps = append(steps, stepOutcome{step, ClassFatal, err.Error()})
		log.Error().Err(err).Str("step", step).Msg("fatal, aborting run")
		return Summary{Steps: results(steps)}, err
	}

	created, err := p.Convention.Release.EnsureRepository(ctx)
	if err != nil {
		return fail("ensure repository", err)
	}
	steps = append(steps, repositoryOutcome(created))

	built, err := p.Convention.Release.Build(ctx)
	if err != nil {
		return fail("build image", err)
	}
	steps = append(steps, stepOutcome{"build image", ClassSuccess, built.Uri})

	if err := p.Convention.Release.Authenticate(ctx); err != nil {
		return fail("authenticate registry", err)
	}
	steps = append(steps, stepOutcome{"authenticate registry", ClassSuccess, p.Config.Registry.Url})

	if err := p.Convention.Release.Publish(ctx, built); err != nil {
		return fail("push image", err)
	}
	steps = append(steps, stepOutcome{"push image", ClassSuccess, built.Uri})

	deployed, createdFunction, err := p.Convention.Deployment.Deploy(ctx, built.Uri, built.Architecture)
	if err != nil {
		return fail("provision function", err)
	}
	steps = append(steps, functionOutcome(createdFunction))

	if err := p.Convention.Deployment.ApplyEnvironment(ctx); err != nil {
		return fail("apply environment", err)
	}
	steps = append(steps, stepOutcome{"apply environment", ClassSuccess, "full desired set applied"})

	ensured, err := p.Convention.Schedule.Ensure(ctx, deployed.Arn())
	if err != nil {
		return fail("ensure schedule", err)
	}
	steps = append(steps, scheduleOutcome(ensured))

	for _, step := range steps {
		log.Info().Str("step", step.step).Stringer("class", step.class).Msg(step.detail)
	}

	return Summary{
		FunctionName: p.Config.Function.Name,
		FunctionArn:  deployed.Arn(),
		ImageUri:     built.Uri,
		State:        string(deployed.Configuration.State),
		LastModified: aws.ToString(deployed.Configuration.LastModified),
		Created:      createdFunction,
		RuleArn:      ensured.RuleArn,
		Expression:   p.Config.Schedule.Expression,
		Environment:  p.Config.Environment(),
		Steps:        results(steps),
	}, nil
}

type stepOutcome struct {
	step   string
	class  Class
	detail string
}

func results(outcomes []stepOutcome) []StepResult {
	var out []StepResult
	for _, o := range outcomes {
		out = append(out, StepResult{Step: o.step, Class: o.class, Detail: o.detail})
	}
	return out
}

func repositoryOutcome(created bool) stepOutcome {
	if created {
		return stepOutcome{"ensure repository", ClassSuccess, "repository created"}
	}
	return stepOutcome{"ensure repository", ClassBenign, "repository already exists"}
}

func functionOutcome(created bool) stepOutcome {
	if created {
		return stepOutcome{"provision function", ClassSuccess, "function created"}
	}
	return stepOutcome{"provision function", ClassSuccess, "image reference updated"}
}

func scheduleOutcome(ensured schedule.Ensured) stepOutcome {
	if ensured.PermissionExisted {
		return stepOutcome{"ensure schedule", ClassBenign, "invoke permission already granted, target rebound"}
	}
	return stepOutcome{"ensure schedule", ClassSuccess, "rule, permission and target in place"}
}

package schedule

import (
	"context"
	"fmt"

	"github.com/trialdata/harvester-deploy/pkg/convention/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/rs/zerolog/log"
)

type EventService interface {
	PutRule(ctx context.Context, ruleName, expression, description string) (string, error)
	AddPermission(ctx context.Context, functionName, ruleArn, statementId string) (bool, error)
	PutTarget(ctx context.Context, ruleName, targetId, functionArn string) error
	ListTargets(ctx context.Context, ruleName string) ([]types.Target, error)
}

type Ensured struct {
	RuleArn           string
	PermissionExisted bool
}

type Services struct {
	Event EventService
}

type Convention struct {
	Config  config.Config
	Service Services
}

func FromServices(c config.Config, e EventService) Convention {
	return Convention{
		Config: c,
		Service: Services{
			Event: e,
		},
	}
}

// Ensure upserts the cron rule, grants the events principal leave to
// invoke the function, and binds the function as the rule's sole target.
// The function must already exist; both the permission and the target
// reference its identity. Each sub-step is an idempotent upsert, so a
// rerun converges on the same rule, one permission statement, one
// target.
func (c Convention) Ensure(ctx context.Context, functionArn string) (Ensured, error) {
	ctx, span := otel.Tracer("").Start(ctx, "schedule.Ensure")
	defer span.End()

	span.SetAttributes(
		attribute.String("rule-name", c.Config.Schedule.RuleName),
		attribute.String("expression", c.Config.Schedule.Expression),
		attribute.String("function-arn", functionArn),
	)

	ruleArn, err := c.Service.Event.PutRule(
		ctx,
		c.Config.Schedule.RuleName,
		c.Config.Schedule.Expression,
		c.Config.Schedule.Description,
	)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Ensured{}, err
	}

	existed, err := c.Service.Event.AddPermission(ctx, c.Config.Function.Name, ruleArn, c.Config.Schedule.StatementId)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Ensured{}, err
	}

	if existed {
		log.Info().Str("statement", c.Config.Schedule.StatementId).Msg("invoke permission already granted")
	}

	if err := c.Service.Event.PutTarget(ctx, c.Config.Schedule.RuleName, c.Config.Function.Name, functionArn); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Ensured{}, err
	}

	targets, err := c.Service.Event.ListTargets(ctx, c.Config.Schedule.RuleName)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Ensured{}, err
	}

	// Read the binding back. A prior run of an older tool, or a hand
	// edit, can leave the rule pointing at a stale function identity.
	bound := false
	for _, target := range targets {
		if aws.ToString(target.Arn) == functionArn {
			bound = true
		}
	}

	if !bound {
		err := fmt.Errorf("rule %s does not target %s after binding", c.Config.Schedule.RuleName, functionArn)
		span.SetStatus(codes.Error, err.Error())
		return Ensured{}, err
	}

	return Ensured{
		RuleArn:           ruleArn,
		PermissionExisted: existed,
	}, nil
}

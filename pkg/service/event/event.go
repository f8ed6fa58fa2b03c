package event

import (
	"context"
	"errors"

	"github.com/trialdata/harvester-deploy/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/smithy-go"
)

// InvokePrincipal is the service principal granted permission to invoke
// the function when a rule fires.
const InvokePrincipal = "events.amazonaws.com"

type EventBridgeClient interface {
	PutRule(ctx context.Context, params *eventbridge.PutRuleInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutRuleOutput, error)
	PutTargets(ctx context.Context, params *eventbridge.PutTargetsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutTargetsOutput, error)
	ListTargetsByRule(ctx context.Context, params *eventbridge.ListTargetsByRuleInput, optFns ...func(*eventbridge.Options)) (*eventbridge.ListTargetsByRuleOutput, error)
}

type LambdaClient interface {
	AddPermission(ctx context.Context, params *lambda.AddPermissionInput, optFns ...func(*lambda.Options)) (*lambda.AddPermissionOutput, error)
}

type Client struct {
	EventBridge EventBridgeClient
	Lambda      LambdaClient
}

type Service struct {
	Client Client
}

func FromClients(eventBridge EventBridgeClient, lambdaClient LambdaClient) Service {
	return Service{
		Client: Client{
			EventBridge: eventBridge,
			Lambda:      lambdaClient,
		},
	}
}

// PutRule upserts the schedule rule on the default bus, overwriting the
// expression and description if the rule already exists.
func (s Service) PutRule(ctx context.Context, ruleName, expression, description string) (string, error) {
	putRuleInput := &eventbridge.PutRuleInput{
		Name:               aws.String(ruleName),
		ScheduleExpression: aws.String(util.Chomp(expression)),
		State:              types.RuleStateEnabled,
		Description:        aws.String(description),
	}

	putRuleOutput, err := s.Client.EventBridge.PutRule(ctx, putRuleInput)
	if err != nil {
		return "", err
	}

	return *putRuleOutput.RuleArn, nil
}

// AddPermission grants the rule's principal leave to invoke the
// function. The returned bool is true when the statement already
// existed; only ResourceConflictException is read that way, every other
// failure propagates.
func (s Service) AddPermission(ctx context.Context, functionName, ruleArn, statementId string) (bool, error) {
	var apiErr smithy.APIError

	addPermissionInput := &lambda.AddPermissionInput{
		FunctionName: aws.String(functionName),
		StatementId:  aws.String(statementId),
		Action:       aws.String("lambda:InvokeFunction"),
		Principal:    aws.String(InvokePrincipal),
		SourceArn:    aws.String(ruleArn),
	}

	if _, err := s.Client.Lambda.AddPermission(ctx, addPermissionInput); err != nil {
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ResourceConflictException" {
			return true, nil
		}
		return false, err
	}

	return false, nil
}

// PutTarget binds the function as the rule's target. Rebinding the same
// target id replaces the entry rather than appending a duplicate.
func (s Service) PutTarget(ctx context.Context, ruleName, targetId, functionArn string) error {
	putTargetsInput := &eventbridge.PutTargetsInput{
		Rule: aws.String(ruleName),
		Targets: []types.Target{
			{
				Id:  aws.String(targetId),
				Arn: aws.String(functionArn),
			},
		},
	}

	putTargetsOutput, err := s.Client.EventBridge.PutTargets(ctx, putTargetsInput)
	if err != nil {
		return err
	}

	if putTargetsOutput.FailedEntryCount > 0 {
		entry := putTargetsOutput.FailedEntries[0]
		return &TargetError{Code: aws.ToString(entry.ErrorCode), Message: aws.ToString(entry.ErrorMessage)}
	}

	return nil
}

func (s Service) ListTargets(ctx context.Context, ruleName string) ([]types.Target, error) {
	listTargetsOutput, err := s.Client.EventBridge.ListTargetsByRule(ctx, &eventbridge.ListTargetsByRuleInput{
		Rule: aws.String(ruleName),
	})

	if err != nil {
		return nil, err
	}

	return listTargetsOutput.Targets, nil
}

// TargetError reports a partial failure from PutTargets, which the SDK
// does not surface as an error.
type TargetError struct {
	Code    string
	Message string
}

func (e *TargetError) Error() string {
	return "put targets failed: " + e.Code + ": " + e.Message
}

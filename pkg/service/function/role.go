package function

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/smithy-go"
)

func (s Service) GetRole(ctx context.Context, name string) (*iam.GetRoleOutput, error) {
	getRoleInput := &iam.GetRoleInput{
		RoleName: aws.String(name),
	}
	return s.Client.Iam.GetRole(ctx, getRoleInput)
}

func (s Service) GetRolePolicies(ctx context.Context, name string) (*iam.ListAttachedRolePoliciesOutput, error) {
	getRolePoliciesInput := &iam.ListAttachedRolePoliciesInput{
		RoleName: aws.String(name),
	}
	return s.Client.Iam.ListAttachedRolePolicies(ctx, getRolePoliciesInput)
}

// PutRole creates the execution role, treating EntityAlreadyExists as
// success. An existing role is read back untouched: the trust policy is
// written once at creation and never rewritten on later runs.
func (s Service) PutRole(ctx context.Context, name string, document string) (*iam.GetRoleOutput, bool, error) {
	var apiErr smithy.APIError

	createRoleInput := &iam.CreateRoleInput{
		RoleName:                 aws.String(name),
		AssumeRolePolicyDocument: aws.String(document),
	}

	created := true
	_, err := s.Client.Iam.CreateRole(ctx, createRoleInput)
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "EntityAlreadyExists":
			created = false
		default:
			return &iam.GetRoleOutput{}, false, err
		}
	} else if err != nil {
		return &iam.GetRoleOutput{}, false, err
	}

	getRoleOutput, err := s.GetRole(ctx, name)
	if err != nil {
		return &iam.GetRoleOutput{}, false, err
	}

	return getRoleOutput, created, nil
}

// AttachPolicyToRole is idempotent on the IAM side; re-attaching an
// already-attached managed policy is not an error.
func (s Service) AttachPolicyToRole(ctx context.Context, policyArn, roleName string) (*iam.AttachRolePolicyOutput, error) {
	attachRolePolicyInput := &iam.AttachRolePolicyInput{
		PolicyArn: aws.String(policyArn),
		RoleName:  aws.String(roleName),
	}
	return s.Client.Iam.AttachRolePolicy(ctx, attachRolePolicyInput)
}

// WaitSettled polls until the freshly created role is readable through
// the IAM read path, backing off between probes up to the deadline. It
// runs on the creation path only. Assumability by Lambda can still lag
// visibility; CreateFunction covers that tail by retrying the
// role-not-assumable error code.
func (s Service) WaitSettled(ctx context.Context, name string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	backoff := 1 * time.Second

	for {
		_, err := s.GetRole(ctx, name)
		if err == nil {
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("role %s not visible after %s: %w", name, timeout, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		if backoff < 8*time.Second {
			backoff *= 2
		}
	}
}

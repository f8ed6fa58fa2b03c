package function

import (
	"context"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

const trustDocument = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"Service":"lambda.amazonaws.com"},"Action":"sts:AssumeRole"}]}`

func TestPutRole(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the role and reads it back", func(t *testing.T) {
		client := &fakeIam{}
		s := FromClients(&fakeLambda{}, client)

		out, created, err := s.PutRole(ctx, "ctis-harvester-role", trustDocument)

		assert.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "ctis-harvester-role", *out.Role.RoleName)
		assert.Equal(t, 1, client.creates)
	})

	t.Run("already-exists leaves the role as found", func(t *testing.T) {
		client := &fakeIam{createErr: &smithy.GenericAPIError{Code: "EntityAlreadyExists"}}
		s := FromClients(&fakeLambda{}, client)

		out, created, err := s.PutRole(ctx, "ctis-harvester-role", trustDocument)

		assert.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "ctis-harvester-role", *out.Role.RoleName)
	})

	t.Run("other create failures propagate", func(t *testing.T) {
		client := &fakeIam{createErr: &smithy.GenericAPIError{Code: "AccessDenied"}}
		s := FromClients(&fakeLambda{}, client)

		_, _, err := s.PutRole(ctx, "ctis-harvester-role", trustDocument)

		assert.Error(t, err)
	})
}

func TestAttachPolicyToRole(t *testing.T) {
	ctx := context.Background()
	client := &fakeIam{}
	s := FromClients(&fakeLambda{}, client)

	// attaching twice mirrors a rerun; IAM treats it as a no-op
	for i := 0; i < 2; i++ {
		_, err := s.AttachPolicyToRole(ctx, "arn:aws:iam::aws:policy/AmazonS3FullAccess", "ctis-harvester-role")
		assert.NoError(t, err)
	}

	assert.Len(t, client.attaches, 2)
}

package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromOptionsDefaults(t *testing.T) {
	c := FromOptions(Options{BuildContext: t.TempDir()}, "123456789012")

	assert.Equal(t, "eu-west-1", c.Account.Region)
	assert.Equal(t, "ctis-harvester", c.Function.Name)
	assert.Equal(t, "ctis-harvester-role", c.Role.Name)
	assert.Equal(t, "ctis-harvester-schedule", c.Schedule.RuleName)
	assert.Equal(t, "123456789012.dkr.ecr.eu-west-1.amazonaws.com", c.Registry.Url)
	assert.Equal(t, "123456789012.dkr.ecr.eu-west-1.amazonaws.com/ctis-harvester:latest", c.ImageUri())
	assert.NoError(t, c.Validate())
}

func TestFromOptionsOverrides(t *testing.T) {
	c := FromOptions(Options{
		Region:         "us-east-1",
		FunctionName:   "harvester-staging",
		RepositoryName: "harvester/staging",
		ImageTag:       "v12",
		Bucket:         "staging-exports",
		BuildContext:   t.TempDir(),
		Expression:     "rate(12 hours)",
	}, "210987654321")

	assert.Equal(t, "us-east-1", c.Account.Region)
	assert.Equal(t, "harvester-staging-role", c.Role.Name)
	assert.Equal(t, "210987654321.dkr.ecr.us-east-1.amazonaws.com/harvester/staging:v12", c.ImageUri())
	assert.Equal(t, "staging-exports", c.Workload.Bucket)
	assert.NoError(t, c.Validate())
}

func TestEnvironmentIsCompleteDesiredSet(t *testing.T) {
	c := FromOptions(Options{BuildContext: t.TempDir()}, "123456789012")

	assert.Equal(t, map[string]string{
		"AWS_REGION":       "eu-west-1",
		"S3_BUCKET":        "ctis-harvester-exports",
		"DOWNLOAD_TIMEOUT": "90",
	}, c.Environment())
}

func TestTrustPolicyNamesOnlyLambda(t *testing.T) {
	c := FromOptions(Options{BuildContext: t.TempDir()}, "123456789012")

	document, err := c.TrustPolicy()
	assert.NoError(t, err)

	var decoded struct {
		Version   string
		Statement []struct {
			Effect    string
			Principal map[string]string
			Action    string
		}
	}
	assert.NoError(t, json.Unmarshal([]byte(document), &decoded))
	assert.Len(t, decoded.Statement, 1)
	assert.Equal(t, map[string]string{"Service": "lambda.amazonaws.com"}, decoded.Statement[0].Principal)
	assert.Equal(t, "sts:AssumeRole", decoded.Statement[0].Action)
}

func TestValidateRejections(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty region", func(c *Config) { c.Account.Region = "" }},
		{"empty function", func(c *Config) { c.Function.Name = "" }},
		{"empty tag", func(c *Config) { c.Repository.Tag = "" }},
		{"no policies", func(c *Config) { c.Role.PolicyArns = nil }},
		{"bad schedule", func(c *Config) { c.Schedule.Expression = "tuesdays" }},
		{"tiny memory", func(c *Config) { c.Function.MemorySize = 64 }},
		{"zero timeout", func(c *Config) { c.Function.Timeout = 0 }},
		{"missing context", func(c *Config) { c.BuildContext = dir + "/nope" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := FromOptions(Options{BuildContext: dir}, "123456789012")
			tc.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

package config

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/trialdata/harvester-deploy/internal/util"
)

// Defaults describe the one deployment this tool manages: the CTIS
// harvester image, built locally and run on a daily schedule.
const (
	DefaultRegion         = "eu-west-1"
	DefaultFunctionName   = "ctis-harvester"
	DefaultRepositoryName = "ctis-harvester"
	DefaultImageTag       = "latest"
	DefaultBucket         = "ctis-harvester-exports"
	DefaultBuildContext   = "."

	DefaultArchitecture    = "x86_64"
	DefaultMemorySize      = 512
	DefaultTimeout         = 300
	DefaultDownloadTimeout = 90

	DefaultScheduleExpression = "cron(0 6 * * ? *)"
)

// LambdaServicePrincipal is the only principal the execution role trusts.
const LambdaServicePrincipal = "lambda.amazonaws.com"

// ManagedPolicyArns are attached to the execution role on creation and
// never modified afterwards.
var ManagedPolicyArns = []string{
	"arn:aws:iam::aws:policy/service-role/AWSLambdaBasicExecutionRole",
	"arn:aws:iam::aws:policy/AmazonS3FullAccess",
}

type Account struct {
	Id     string
	Region string
}

type Registry struct {
	Id     string
	Region string
	Url    string
}

type Repository struct {
	Name string
	Tag  string
}

type Function struct {
	Name         string
	Architecture string
	MemorySize   int32
	Timeout      int32
}

type Role struct {
	Name       string
	PolicyArns []string
}

type Schedule struct {
	RuleName    string
	Expression  string
	Description string
	StatementId string
}

type Workload struct {
	Bucket          string
	DownloadTimeout int32
}

type Git struct {
	Branch string
	Sha    string
	Dirty  bool
}

type Config struct {
	Account      Account
	Registry     Registry
	Repository   Repository
	Function     Function
	Role         Role
	Schedule     Schedule
	Workload     Workload
	Git          Git
	BuildContext string
	Version      string
}

func (c Config) RepositoryUrl() string {
	return c.Registry.Url + "/" + c.Repository.Name
}

func (c Config) ImageUri() string {
	return c.RepositoryUrl() + ":" + c.Repository.Tag
}

// Environment is the complete desired variable set for the function.
// It is applied wholesale on every run; nothing is merged. AWS_REGION is
// reserved by the Lambda runtime and may never be observable inside the
// workload, it is carried here for parity with non-Lambda runs of the
// harvester image.
func (c Config) Environment() map[string]string {
	return map[string]string{
		"AWS_REGION":       c.Account.Region,
		"S3_BUCKET":        c.Workload.Bucket,
		"DOWNLOAD_TIMEOUT": strconv.Itoa(int(c.Workload.DownloadTimeout)),
	}
}

type policyStatement struct {
	Effect    string            `json:"Effect"`
	Principal map[string]string `json:"Principal"`
	Action    string            `json:"Action"`
}

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

// TrustPolicy renders the execution role's assume-role document. It is
// held in memory for the duration of the run, never written to disk.
func (c Config) TrustPolicy() (string, error) {
	document := policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{
			{
				Effect:    "Allow",
				Principal: map[string]string{"Service": LambdaServicePrincipal},
				Action:    "sts:AssumeRole",
			},
		},
	}

	rendered, err := json.Marshal(document)
	if err != nil {
		return "", err
	}

	return string(rendered), nil
}

func (c Config) Json() (string, error) {
	cJson, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}

	return string(cJson), nil
}

// Validate runs once at the start of a run. Everything downstream
// assumes the config is well formed.
func (c Config) Validate() error {
	switch {
	case c.Account.Region == "":
		return fmt.Errorf("region must not be empty")
	case c.Function.Name == "":
		return fmt.Errorf("function name must not be empty")
	case c.Repository.Name == "":
		return fmt.Errorf("repository name must not be empty")
	case c.Repository.Tag == "":
		return fmt.Errorf("image tag must not be empty")
	case c.Role.Name == "":
		return fmt.Errorf("role name must not be empty")
	case len(c.Role.PolicyArns) == 0:
		return fmt.Errorf("role must have at least one attached policy")
	case !util.ScheduleExpression(c.Schedule.Expression):
		return fmt.Errorf("schedule %q is not a cron() or rate() expression", c.Schedule.Expression)
	case c.Function.MemorySize < 128:
		return fmt.Errorf("memory size %d is below the 128mb platform minimum", c.Function.MemorySize)
	case c.Function.Timeout < 1:
		return fmt.Errorf("timeout must be at least 1 second")
	case c.Workload.DownloadTimeout < 1:
		return fmt.Errorf("download timeout must be at least 1 second")
	}

	if !util.PathExists(c.BuildContext) {
		return fmt.Errorf("build context %s does not exist", c.BuildContext)
	}

	return nil
}

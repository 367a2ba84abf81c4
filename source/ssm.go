package source

import (
	"context"

	"github.com/agentuity/go-paramcache/cache"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
	"github.com/cockroachdb/errors"
)

// SSMAPI is the subset of the SSM client used by SSM.
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

var _ SSMAPI = (*ssm.Client)(nil)

// SSM is a Fetcher backed by AWS Systems Manager Parameter Store.
type SSM struct {
	client SSMAPI
	cfg    config
}

var _ cache.Fetcher = (*SSM)(nil)

// NewSSM returns an SSM source using client.
func NewSSM(client SSMAPI, opts ...Option) *SSM {
	return &SSM{client: client, cfg: applyOptions(opts)}
}

// NewSSMFromEnv builds an SSM client from the default AWS credential chain.
func NewSSMFromEnv(ctx context.Context, opts ...Option) (*SSM, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, transportError(err, "loading aws config")
	}
	return NewSSM(ssm.NewFromConfig(awsCfg), opts...), nil
}

var ssmTransportErrorCodes = map[string]bool{
	"AccessDeniedException":       true,
	"UnrecognizedClientException": true,
	"ExpiredTokenException":       true,
	"InvalidSignatureException":   true,
	"ThrottlingException":         true,
}

func (s *SSM) GetParameter(ctx context.Context, name string) (string, error) {
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(s.cfg.withDecryption),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", notFoundError(err, name)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && !ssmTransportErrorCodes[apiErr.ErrorCode()] {
			return "", errors.Wrapf(err, "ssm get %q", name)
		}
		return "", transportError(err, "ssm get %q", name)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", cache.NotFound(name)
	}
	s.cfg.logger.Trace("ssm read %s version %d", name, out.Parameter.Version)
	return aws.ToString(out.Parameter.Value), nil
}

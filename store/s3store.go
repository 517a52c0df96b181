package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"gocloud.dev/blob/s3blob"

	"github.com/TuSKan/ngff-pixelbuffer/pberrors"
	"github.com/TuSKan/ngff-pixelbuffer/tilecache"
)

// s3Credentials is the parsed form of the S3 URI's query options.
type s3Credentials struct {
	Anonymous       bool
	AccessKeyID     string
	SecretAccessKey string
	Profile         string
	Region          string
}

// ambientCredentialEnvVars are the process-wide AWS credential
// variables whose presence is a hard configuration error: silently
// picking these up has caused cross-tenant data leaks in shared hosts,
// so the engine refuses to start rather than risk using them
// implicitly, no matter which explicit credential mode was requested.
var ambientCredentialEnvVars = []string{
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"AWS_SESSION_TOKEN",
}

func rejectAmbientCredentials() error {
	for _, name := range ambientCredentialEnvVars {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			return pberrors.New(pberrors.InvalidCredentialsConfig,
				"ambient environment credential %s is set; refusing to use it implicitly", name)
		}
	}
	return nil
}

func (c s3Credentials) region() string {
	if c.Region != "" {
		return c.Region
	}
	return "us-east-1"
}

func (c s3Credentials) buildAWSConfig(ctx context.Context) (aws.Config, error) {
	if err := rejectAmbientCredentials(); err != nil {
		return aws.Config{}, err
	}

	region := c.region()
	switch {
	case c.Anonymous:
		return aws.Config{Region: region, Credentials: aws.AnonymousCredentials{}}, nil
	case c.AccessKeyID != "" && c.SecretAccessKey != "":
		return aws.Config{
			Region:      region,
			Credentials: credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, ""),
		}, nil
	case c.Profile != "":
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region), awsconfig.WithSharedConfigProfile(c.Profile))
		if err != nil {
			return aws.Config{}, pberrors.Wrap(pberrors.InvalidCredentialsConfig, err, "load profile %q", c.Profile)
		}
		return cfg, nil
	default:
		// Profile chain -> instance-profile chain. Because ambient
		// AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY/AWS_SESSION_TOKEN are
		// rejected above before we ever reach here, the SDK's default
		// resolver chain cannot silently pick them up even though it
		// would otherwise consider them.
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return aws.Config{}, pberrors.Wrap(pberrors.InvalidCredentialsConfig, err, "load default credential chain")
		}
		return cfg, nil
	}
}

// s3ClientKey identifies a distinct S3 client configuration: same
// endpoint host, bucket, and credential mode share one client.
type s3ClientKey struct {
	host   string
	bucket string
	creds  s3Credentials
}

// s3ClientFactory memoizes *s3v2.Client construction per s3ClientKey
// using a tilecache.Loader, giving synchronized construct-or-lookup
// without a bespoke sync.Once map.
type s3ClientFactory struct {
	loader *tilecache.Loader[s3ClientKey, *s3v2.Client]
}

func newS3ClientFactory() *s3ClientFactory {
	loader, err := tilecache.NewLoader(64, func(ctx context.Context, key s3ClientKey) (*s3v2.Client, error) {
		cfg, err := key.creds.buildAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		return s3v2.NewFromConfig(cfg, func(o *s3v2.Options) {
			o.UsePathStyle = true
			if key.host != "" && key.host != "s3.amazonaws.com" {
				o.BaseEndpoint = aws.String("https://" + key.host)
			}
		}), nil
	})
	if err != nil {
		// size=64 is a constant; NewLoader only fails on invalid size.
		panic(fmt.Sprintf("tilecache: %v", err))
	}
	return &s3ClientFactory{loader: loader}
}

var (
	defaultS3ClientFactoryOnce sync.Once
	defaultS3ClientFactory     *s3ClientFactory
)

func getDefaultS3ClientFactory() *s3ClientFactory {
	defaultS3ClientFactoryOnce.Do(func() {
		defaultS3ClientFactory = newS3ClientFactory()
	})
	return defaultS3ClientFactory
}

// openS3 builds (or reuses) an S3-backed Store rooted at bucket/keyPrefix.
func openS3(ctx context.Context, host, bucket, keyPrefix string, creds s3Credentials, o options) (Store, error) {
	client, err := getDefaultS3ClientFactory().loader.Get(ctx, s3ClientKey{host: host, bucket: bucket, creds: creds})
	if err != nil {
		return nil, err
	}

	o.logger.Info("opened S3 store", "host", host, "bucket", bucket, "region", creds.region(),
		"anonymous", creds.Anonymous, "profile", creds.Profile)

	bucketHandle, err := s3blob.OpenBucketV2(ctx, client, bucket, nil)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.StoreError, err, "open s3 bucket %s", bucket)
	}
	return &blobStore{bucket: bucketHandle, prefix: keyPrefix, logger: o.logger}, nil
}

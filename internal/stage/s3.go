package stage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"
)

// S3Config holds connection settings for an S3-backed stage.
type S3Config struct {
	BucketName string
	Region     string
	AccessKey  string
	SecretKey  string
	// Endpoint switches to an S3-compatible backend (minio etc) with
	// path-style addressing.
	Endpoint string
}

// S3Stage implements Stage on an S3 bucket. Objects live under the stage's
// simple name, which is why listing keys carry that prefix.
type S3Stage struct {
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	config     *S3Config
}

// NewS3Stage builds a stage client from an existing S3 client.
func NewS3Stage(client *s3.Client, cfg *S3Config) *S3Stage {
	return &S3Stage{
		client:     client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		config:     cfg,
	}
}

// NewS3StageWithConfig builds the S3 client from config, with a pooled
// HTTP/2 transport sized for concurrent transfers.
func NewS3StageWithConfig(cfg *S3Config) (*S3Stage, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          200,
			MaxIdleConnsPerHost:   100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ForceAttemptHTTP2:     true,
		},
		Timeout: 30 * time.Second,
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
		config.WithRegion(cfg.Region),
		config.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3Stage(client, cfg), nil
}

func (s *S3Stage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	ref := ParseRef(prefix)
	keyPrefix := ref.ListingPrefix()
	if keyPrefix != "" {
		keyPrefix += "/"
	}

	var objects []ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: &s.config.BucketName,
		Prefix: &keyPrefix,
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			objects = append(objects, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	return objects, nil
}

func (s *S3Stage) PutDirectory(ctx context.Context, localDir string, dest string, opts *PutOptions) ([]PutResult, error) {
	if opts == nil {
		opts = &PutOptions{Parallel: 1}
	}

	ref := ParseRef(dest)
	entries, err := os.ReadDir(localDir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", localDir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	parallel := opts.Parallel
	if parallel < 1 {
		parallel = 1
	}

	results := make([]PutResult, len(files))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallel)

	for i, name := range files {
		eg.Go(func() error {
			res, err := s.putFile(egCtx, filepath.Join(localDir, name), ref.Join(name), opts.Overwrite)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *S3Stage) putFile(ctx context.Context, localPath string, target Ref, overwrite bool) (PutResult, error) {
	key := target.ListingPrefix()
	name := filepath.Base(localPath)

	if !overwrite {
		exists, err := s.exists(ctx, key)
		if err != nil {
			return PutResult{}, err
		}
		if exists {
			slog.Debug("object exists, skipping", "key", key)
			return PutResult{Source: name, Target: target.String(), Status: StatusSkipped}, nil
		}
	}

	f, err := os.Open(localPath)
	if err != nil {
		return PutResult{}, fmt.Errorf("open %q: %w", localPath, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return PutResult{}, err
	}

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: &s.config.BucketName,
		Key:    &key,
		Body:   f,
	})
	if err != nil {
		return PutResult{}, fmt.Errorf("upload %q: %w", key, err)
	}

	return PutResult{
		Source: name,
		Target: target.String(),
		Size:   fi.Size(),
		Status: StatusUploaded,
	}, nil
}

func (s *S3Stage) Get(ctx context.Context, source string, destDir string, parallel int) error {
	ref := ParseRef(source)
	key := ref.ListingPrefix()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	// Like the vendor tool, the download keeps its own naming convention:
	// the object lands in destDir under its base name.
	destPath := filepath.Join(destDir, filepath.Base(key))
	f, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if parallel < 1 {
		parallel = 1
	}
	_, err = s.downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: &s.config.BucketName,
		Key:    &key,
	}, func(d *manager.Downloader) {
		d.Concurrency = parallel
	})
	if err != nil {
		// Do not leave a zero-byte artifact behind for the caller's
		// filename search to trip over.
		f.Close()
		os.Remove(destPath)
		return fmt.Errorf("download %q: %w", key, err)
	}

	return nil
}

func (s *S3Stage) exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.config.BucketName,
		Key:    &key,
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

var _ Stage = (*S3Stage)(nil)

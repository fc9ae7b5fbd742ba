package main

import (
	"errors"

	"github.com/spf13/viper"

	"github.com/stagepack/stagepack/internal/pkgmgr"
	"github.com/stagepack/stagepack/internal/stage"
)

// newManager wires the package manager to the configured S3-backed stage.
// Connection settings come from the config file or STAGEPACK_* environment
// variables.
func newManager() (*pkgmgr.Manager, error) {
	bucket := viper.GetString("bucket")
	if bucket == "" {
		return nil, errors.New("no bucket configured, set bucket in the config file or STAGEPACK_BUCKET")
	}

	s3Stage, err := stage.NewS3StageWithConfig(&stage.S3Config{
		BucketName: bucket,
		Region:     viper.GetString("region"),
		AccessKey:  viper.GetString("access_key"),
		SecretKey:  viper.GetString("secret_key"),
		Endpoint:   viper.GetString("endpoint"),
	})
	if err != nil {
		return nil, err
	}

	return pkgmgr.New(s3Stage), nil
}

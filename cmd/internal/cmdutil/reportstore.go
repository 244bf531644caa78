package cmdutil

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cockroachdb/dataexpect/reportstore"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2/google"
)

type reportStoreConfig struct {
	s3Bucket  string
	gcpBucket string
	localPath string
}

var reportStoreCfg reportStoreConfig

func RegisterReportStoreFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&reportStoreCfg.s3Bucket,
		"s3-bucket",
		"",
		"s3 bucket to upload reports to",
	)
	cmd.PersistentFlags().StringVar(
		&reportStoreCfg.gcpBucket,
		"gcp-bucket",
		"",
		"gcp bucket to upload reports to",
	)
	cmd.PersistentFlags().StringVar(
		&reportStoreCfg.localPath,
		"local-path",
		"",
		"path to write reports to locally",
	)
}

// ReportStore returns the configured report store, or nil if none is.
func ReportStore(ctx context.Context, logger zerolog.Logger) (reportstore.Store, error) {
	switch {
	case reportStoreCfg.gcpBucket != "":
		creds, err := google.FindDefaultCredentials(ctx, storage.ScopeReadWrite)
		if err != nil {
			return nil, err
		}
		gcpClient, err := storage.NewClient(ctx)
		if err != nil {
			return nil, err
		}
		return reportstore.NewGCPStore(logger, gcpClient, creds, reportStoreCfg.gcpBucket), nil
	case reportStoreCfg.s3Bucket != "":
		sess, err := session.NewSession()
		if err != nil {
			return nil, err
		}
		return reportstore.NewS3Store(logger, sess, reportStoreCfg.s3Bucket), nil
	case reportStoreCfg.localPath != "":
		return reportstore.NewLocalStore(logger, reportStoreCfg.localPath)
	}
	return nil, nil
}

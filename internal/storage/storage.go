package storage

import (
	"context"
	"fmt"
	"time"
)

// ObjectStorage captures the minimal S3-compatible operations the engine
// needs for archiving run reports.
type ObjectStorage interface {
	UploadObject(ctx context.Context, key string, contentType string, data []byte) error
	DownloadObject(ctx context.Context, key string) ([]byte, error)
}

// RunReportKey builds the archive key for one engine run.
func RunReportKey(calcDate time.Time, runID string) string {
	return fmt.Sprintf("runs/%s/%s.json", calcDate.Format("2006-01-02"), runID)
}

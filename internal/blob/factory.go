package blob

import (
	"context"
	"fmt"
	"os"
)

// OpenFromEnv selects a blob backend using environment variables. Defaults
// to the filesystem driver when unset.
//
//	COMPATH_BLOB_DRIVER: fs|memory|s3 (default fs)
//	COMPATH_BLOB_FS_ROOT: filesystem root (default ./compath-artifacts)
//	COMPATH_BLOB_S3_*: see OpenS3FromEnv
func OpenFromEnv(ctx context.Context) (Store, error) {
	driver := os.Getenv("COMPATH_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystemStore(os.Getenv("COMPATH_BLOB_FS_ROOT"))
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverS3:
		return OpenS3FromEnv(ctx)
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

package service

import "context"

// MediaUploader moves a locally staged file into durable storage and returns
// its public URL. Implementations should remove or ignore the staged file
// after the attempt; callers do not rely on it afterwards.
type MediaUploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

package storage

import "time"

// DownloadTTL is the lifetime of signed playback/thumbnail URLs.
const DownloadTTL = time.Hour

// Object keys are derived from (owner, video) so the video bytes and the
// thumbnail share a prefix and can be authorized and cleaned up together.

func VideoKey(ownerID, videoID string) string {
	return ownerID + "/" + videoID
}

func ThumbnailKey(ownerID, videoID string) string {
	return VideoKey(ownerID, videoID) + "-thumbnail"
}

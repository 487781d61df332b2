package common

import (
	"path/filepath"
	"strings"
)

// MediaFileType classifies uploaded post media.
type MediaFileType string

const (
	MediaFileTypeImage MediaFileType = "image"
	MediaFileTypeVideo MediaFileType = "video"
)

func (mft MediaFileType) String() string {
	return string(mft)
}

func (mft MediaFileType) IsValid() bool {
	return mft == MediaFileTypeImage || mft == MediaFileTypeVideo
}

// Folder groups stored files per type, mirroring the mobile client's buckets.
func (mft MediaFileType) Folder() string {
	if mft == MediaFileTypeVideo {
		return "postVideos"
	}
	return "postImages"
}

// DetectFileType treats anything that is not video/* as an image.
func DetectFileType(mimeType string) MediaFileType {
	if strings.HasPrefix(strings.ToLower(mimeType), "video/") {
		return MediaFileTypeVideo
	}
	return MediaFileTypeImage
}

// ContentTypeForName guesses a response Content-Type from a stored file name.
func ContentTypeForName(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}

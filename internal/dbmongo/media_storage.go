package dbmongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plugu/internal/common"
)

type MediaStorage struct {
	gridFS *gridfs.Bucket
	now    func() time.Time
}

func NewMediaStorage(mongoClient *MongoClient) *MediaStorage {
	return &MediaStorage{
		gridFS: mongoClient.GridFS,
		now:    time.Now,
	}
}

type MediaFile struct {
	ID         string               `json:"id"`
	Filename   string               `json:"filename"`
	Size       int64                `json:"size"`
	FileType   common.MediaFileType `json:"file_type"`
	MimeType   string               `json:"mime_type"`
	UploadedBy string               `json:"uploaded_by"`
	UploadedAt time.Time            `json:"uploaded_at"`
}

// StoredName places a file under its type folder, e.g. postImages/field.jpg.
func StoredName(folder, filename string) string {
	if folder == "" {
		return filename
	}
	return path.Join(folder, path.Base(filename))
}

// UploadFile stores content under folder. Files are classified as video
// only when the MIME type says so.
func (ms *MediaStorage) UploadFile(ctx context.Context, folder, filename, mimeType, uploaderID string, content io.Reader) (*MediaFile, error) {
	fileType := common.DetectFileType(mimeType)
	uploadedAt := ms.now().UTC()
	name := StoredName(folder, filename)

	metadata := bson.M{
		"file_type":   fileType.String(),
		"mime_type":   mimeType,
		"uploaded_by": uploaderID,
		"uploaded_at": uploadedAt,
	}

	stream, err := ms.gridFS.OpenUploadStream(name, options.GridFSUpload().SetMetadata(metadata))
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}

	size, err := io.Copy(stream, content)
	if err != nil {
		_ = stream.Abort()
		return nil, fmt.Errorf("file copy failed: %w", err)
	}
	if err := stream.Close(); err != nil {
		return nil, fmt.Errorf("finalize upload: %w", err)
	}

	id, ok := stream.FileID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected file id type %T", stream.FileID)
	}

	return &MediaFile{
		ID:         id.Hex(),
		Filename:   name,
		Size:       size,
		FileType:   fileType,
		MimeType:   mimeType,
		UploadedBy: uploaderID,
		UploadedAt: uploadedAt,
	}, nil
}

// DownloadFile opens a stream the caller must close.
func (ms *MediaStorage) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, *MediaFile, error) {
	objectID, err := parseFileID(fileID)
	if err != nil {
		return nil, nil, err
	}

	stream, err := ms.gridFS.OpenDownloadStream(objectID)
	if err != nil {
		return nil, nil, fromGridFS(fileID, err)
	}

	fileInfo := stream.GetFile()
	var metadata bson.M
	if fileInfo.Metadata != nil {
		_ = bson.Unmarshal(fileInfo.Metadata, &metadata)
	}

	mediaFile := &MediaFile{
		ID:         fileID,
		Filename:   fileInfo.Name,
		Size:       fileInfo.Length,
		FileType:   common.MediaFileType(stringField(metadata, "file_type")),
		MimeType:   stringField(metadata, "mime_type"),
		UploadedBy: stringField(metadata, "uploaded_by"),
		UploadedAt: fileInfo.UploadDate,
	}
	return stream, mediaFile, nil
}

func (ms *MediaStorage) DeleteFile(ctx context.Context, fileID string) error {
	objectID, err := parseFileID(fileID)
	if err != nil {
		return err
	}
	if err := ms.gridFS.DeleteContext(ctx, objectID); err != nil {
		return fromGridFS(fileID, err)
	}
	return nil
}

func parseFileID(fileID string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return primitive.NilObjectID, common.Invalidf("invalid file id %q", fileID)
	}
	return objectID, nil
}

func fromGridFS(fileID string, err error) error {
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return fmt.Errorf("file %s: %w", fileID, common.ErrNotFound)
	}
	return fmt.Errorf("gridfs: %w", err)
}

func stringField(m bson.M, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

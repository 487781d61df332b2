// Package feed serves the community post board and the media attached to
// posts.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"plugu/internal/common"
	"plugu/internal/dbmongo"
	"plugu/internal/dbsql"
)

const (
	DefaultPostType = "general"
	DefaultLimit    = 10
	MaxLimit        = 100
)

// MediaStore is the write side of the media store.
type MediaStore interface {
	UploadFile(ctx context.Context, folder, filename, mimeType, uploaderID string, content io.Reader) (*dbmongo.MediaFile, error)
	DeleteFile(ctx context.Context, fileID string) error
}

type PostInput struct {
	PostID   string   `json:"post_id"`
	Content  string   `json:"content"`
	PostType string   `json:"post_type"`
	Images   []string `json:"images"`
	Tags     []string `json:"tags"`
	Type     string   `json:"type"`
}

// Upload is one attached file of a post.
type Upload struct {
	Filename string
	MimeType string
	Content  io.Reader
}

type FeedUsecase interface {
	UpsertPost(ctx context.Context, userID string, in PostInput, files []Upload) (*dbsql.Post, error)
	FetchPosts(ctx context.Context, limit int) ([]*dbsql.Post, error)
	DeletePost(ctx context.Context, userID, postID string) error
}

type FeedService struct {
	posts        Posts
	media        MediaStore
	mediaBaseURL string
	now          func() time.Time
}

func NewFeedService(p Posts, m MediaStore, mediaBaseURL string) *FeedService {
	return &FeedService{posts: p, media: m, mediaBaseURL: mediaBaseURL, now: time.Now}
}

func (s *FeedService) mediaURL(fileID string) string {
	return s.mediaBaseURL + fileID
}

// fileIDFromURL reverses mediaURL; foreign URLs yield false.
func (s *FeedService) fileIDFromURL(u string) (string, bool) {
	if s.mediaBaseURL == "" || !strings.HasPrefix(u, s.mediaBaseURL) {
		return "", false
	}
	id := strings.TrimPrefix(u, s.mediaBaseURL)
	return id, id != ""
}

// UpsertPost uploads the attached files and saves the post. Uploaded URLs
// replace in.Images; without files the given images are kept. Files uploaded
// for a save that fails are removed, as is stored media the saved post no
// longer references.
func (s *FeedService) UpsertPost(ctx context.Context, userID string, in PostInput, files []Upload) (*dbsql.Post, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return nil, err
	}
	if common.IsBlank(in.Content) && len(in.Images) == 0 && len(files) == 0 {
		return nil, common.Invalidf("post must have content or media")
	}

	var existing *dbsql.Post
	if in.PostID != "" {
		found, err := s.posts.GetPost(ctx, in.PostID)
		switch {
		case errors.Is(err, common.ErrNotFound):
		case err != nil:
			return nil, fmt.Errorf("fetch post: %w", err)
		case found.UserID != userID:
			return nil, fmt.Errorf("post %s: %w", in.PostID, common.ErrPermissionDenied)
		default:
			existing = found
		}
	}

	images := in.Images
	var uploaded []string
	if len(files) > 0 {
		ids, urls, err := s.upload(ctx, userID, files)
		if err != nil {
			return nil, err
		}
		uploaded = ids
		images = urls
	}

	post := &dbsql.Post{
		PostID:    in.PostID,
		UserID:    userID,
		Content:   in.Content,
		PostType:  orDefault(in.PostType),
		Images:    nonNil(images),
		Tags:      nonNil(in.Tags),
		Type:      orDefault(in.Type),
		UpdatedAt: s.now().UTC(),
	}
	if err := s.posts.UpsertPost(ctx, post); err != nil {
		s.deleteFiles(ctx, uploaded)
		return nil, fmt.Errorf("save post: %w", err)
	}
	if existing != nil && s.media != nil {
		s.deleteFiles(ctx, s.mediaIDs(stale(existing.Images, post.Images)))
	}

	saved, err := s.posts.GetPost(ctx, post.PostID)
	if err != nil {
		log.Warn().Err(err).Str("post_id", post.PostID).Msg("post saved but reload failed")
		return post, nil
	}
	return saved, nil
}

// upload stores files and returns their ids and URLs. A failed upload
// removes the files stored before it.
func (s *FeedService) upload(ctx context.Context, userID string, files []Upload) ([]string, []string, error) {
	if s.media == nil {
		return nil, nil, errors.New("media storage is not configured")
	}

	var ids []string
	urls := make([]string, 0, len(files))
	for _, f := range files {
		if f.Content == nil {
			continue
		}
		folder := common.DetectFileType(f.MimeType).Folder()
		file, err := s.media.UploadFile(ctx, folder, f.Filename, f.MimeType, userID, f.Content)
		if err != nil {
			s.deleteFiles(ctx, ids)
			return nil, nil, fmt.Errorf("failed to upload media file %s: %w", f.Filename, err)
		}
		ids = append(ids, file.ID)
		urls = append(urls, s.mediaURL(file.ID))
	}
	return ids, urls, nil
}

// mediaIDs keeps the URLs that point into our media store.
func (s *FeedService) mediaIDs(urls []string) []string {
	var ids []string
	for _, u := range urls {
		if id, ok := s.fileIDFromURL(u); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// stale returns the entries of before missing from after.
func stale(before, after []string) []string {
	keep := make(map[string]struct{}, len(after))
	for _, u := range after {
		keep[u] = struct{}{}
	}
	var out []string
	for _, u := range before {
		if _, ok := keep[u]; !ok {
			out = append(out, u)
		}
	}
	return out
}

func (s *FeedService) deleteFiles(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := s.media.DeleteFile(ctx, id); err != nil {
			log.Warn().Err(err).Str("file_id", id).Msg("failed to delete media file")
		}
	}
}

// FetchPosts returns the latest posts with their authors.
func (s *FeedService) FetchPosts(ctx context.Context, limit int) ([]*dbsql.Post, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	posts, err := s.posts.ListPosts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("could not fetch the posts: %w", err)
	}
	return posts, nil
}

// DeletePost removes the caller's post. Stored media goes too; failures
// there do not fail the delete.
func (s *FeedService) DeletePost(ctx context.Context, userID, postID string) error {
	if err := common.RequireID("user id", userID); err != nil {
		return err
	}
	if err := common.RequireID("post id", postID); err != nil {
		return err
	}

	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("fetch post: %w", err)
	}
	if post.UserID != userID {
		return fmt.Errorf("post %s: %w", postID, common.ErrPermissionDenied)
	}

	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if s.media != nil {
		s.deleteFiles(ctx, s.mediaIDs(post.Images))
	}
	return nil
}

func orDefault(v string) string {
	if common.IsBlank(v) {
		return DefaultPostType
	}
	return strings.TrimSpace(v)
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

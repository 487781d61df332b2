package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"

	"plugu/internal/common"
	"plugu/internal/dbmongo"
	"plugu/internal/dbsql"
)

type memPosts struct {
	mu      sync.Mutex
	posts   map[string]*dbsql.Post
	users   map[string]*dbsql.User
	saveErr error
}

func newMemPosts() *memPosts {
	return &memPosts{posts: map[string]*dbsql.Post{}, users: map[string]*dbsql.User{}}
}

func (m *memPosts) UpsertPost(ctx context.Context, p *dbsql.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if p.PostID == "" {
		p.PostID = uuid.NewString()
	}
	if old, ok := m.posts[p.PostID]; ok {
		p.CreatedAt = old.CreatedAt
	} else {
		p.CreatedAt = p.UpdatedAt
	}
	cp := *p
	m.posts[p.PostID] = &cp
	return nil
}

func (m *memPosts) ListPosts(ctx context.Context, limit int) ([]*dbsql.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*dbsql.Post
	for _, p := range m.posts {
		cp := *p
		cp.User = m.users[p.UserID]
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memPosts) GetPost(ctx context.Context, postID string) (*dbsql.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", postID, common.ErrNotFound)
	}
	cp := *p
	cp.User = m.users[p.UserID]
	return &cp, nil
}

func (m *memPosts) DeletePost(ctx context.Context, postID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[postID]; !ok {
		return common.ErrNotFound
	}
	delete(m.posts, postID)
	return nil
}

type memMedia struct {
	mu      sync.Mutex
	files   map[string]*dbmongo.MediaFile
	next    int
	failOn  string
	deleted []string
}

func newMemMedia() *memMedia {
	return &memMedia{files: map[string]*dbmongo.MediaFile{}}
}

func (m *memMedia) UploadFile(ctx context.Context, folder, filename, mimeType, uploaderID string, content io.Reader) (*dbmongo.MediaFile, error) {
	if filename == m.failOn {
		return nil, errors.New("gridfs unavailable")
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	f := &dbmongo.MediaFile{
		ID:         fmt.Sprintf("file-%d", m.next),
		Filename:   dbmongo.StoredName(folder, filename),
		Size:       int64(len(data)),
		FileType:   common.DetectFileType(mimeType),
		MimeType:   mimeType,
		UploadedBy: uploaderID,
	}
	m.files[f.ID] = f
	return f, nil
}

func (m *memMedia) DeleteFile(ctx context.Context, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, fileID)
	delete(m.files, fileID)
	return nil
}

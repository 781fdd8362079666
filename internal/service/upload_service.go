package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/portfolio-blog-api/internal/policy"
	"github.com/portfolio-blog-api/internal/storage"
	"github.com/rs/zerolog"
)

// UploadResult is returned after an image is stored
type UploadResult struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

var extByType = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// uploadService is the concrete implementation of UploadService
type uploadService struct {
	storage      ObjectStorage
	maxSize      int64
	allowedTypes map[string]bool
	log          zerolog.Logger
}

func newUploadService(d Deps) *uploadService {
	allowed := make(map[string]bool, len(d.Config.Upload.AllowedTypes))
	for _, t := range d.Config.Upload.AllowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return &uploadService{
		storage:      d.Storage,
		maxSize:      d.Config.Upload.MaxSize,
		allowedTypes: allowed,
		log:          d.Log.With().Str("service", "upload").Logger(),
	}
}

// Upload stores an image under uploads/<userID>/<uuid><ext>. The type is
// detected from the content, not the client's header.
func (s *uploadService) Upload(ctx context.Context, actor policy.Actor, file io.Reader, filename string, size int64) (*UploadResult, error) {
	if !policy.Can(actor, policy.ActionUpload, "") {
		return nil, ErrNotAuthorized
	}
	if size > s.maxSize {
		return nil, invalidField("file", fmt.Sprintf("must be at most %d bytes", s.maxSize))
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, invalidField("file", "could not be read")
	}
	head = head[:n]
	if n == 0 {
		return nil, invalidField("file", "is empty")
	}

	contentType := detectImageType(head, filename)
	if !s.allowedTypes[contentType] {
		return nil, invalidField("file", "must be an image ("+strings.Join(sortedKeys(s.allowedTypes), ", ")+")")
	}

	key := storage.ObjectKey(storage.PrefixUploads, actor.ID, uuid.NewString()+extension(filename, contentType))
	body := io.MultiReader(bytes.NewReader(head), file)
	url, err := s.storage.Put(ctx, key, body, size, contentType)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to store upload")
		return nil, ErrInternal
	}

	s.log.Info().Str("key", key).Int64("size", size).Str("by", actor.ID).Msg("Image uploaded")
	return &UploadResult{URL: url, Key: key, Size: size}, nil
}

// Delete removes an uploaded or generated image. Only the owner named in the
// key or an admin may delete it.
func (s *uploadService) Delete(ctx context.Context, actor policy.Actor, key string) error {
	if !policy.Can(actor, policy.ActionUpload, "") {
		return ErrNotAuthorized
	}
	key = strings.TrimSpace(key)
	owner := storage.Owner(key)
	if owner == "" {
		return invalidField("key", "is not a valid upload key")
	}
	if !policy.Can(actor, policy.ActionDeleteUpload, owner) {
		s.log.Warn().Str("key", key).Str("by", actor.ID).Msg("Rejected delete of another user's image")
		return ErrNotAuthorized
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to delete upload")
		return ErrInternal
	}
	return nil
}

func detectImageType(head []byte, filename string) string {
	ct := http.DetectContentType(head)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	// svg sniffs as text. It is only accepted when UPLOAD_ALLOWED_TYPES lists it.
	if strings.HasPrefix(ct, "text/") && strings.EqualFold(filepath.Ext(filename), ".svg") &&
		bytes.Contains(bytes.ToLower(head), []byte("<svg")) {
		return "image/svg+xml"
	}
	return ct
}

func extension(filename, contentType string) string {
	if ext, ok := extByType[contentType]; ok {
		return ext
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 1 && len(ext) <= 6 {
		return ext
	}
	return ""
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

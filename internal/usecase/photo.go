package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Domis382/Redibo-back-wtt/internal/core/domain"
	"github.com/Domis382/Redibo-back-wtt/internal/core/port"
	"github.com/Domis382/Redibo-back-wtt/internal/infra/config"
)

var (
	// ErrUnsupportedPhotoFormat indicates the upload is not a PNG.
	ErrUnsupportedPhotoFormat = errors.New("unsupported photo format")
	// ErrPhotoTooLarge indicates the upload exceeds the size cap.
	ErrPhotoTooLarge = errors.New("photo payload too large")
	// ErrNoPhotoToDelete indicates the account has no stored photo.
	ErrNoPhotoToDelete = errors.New("no photo to delete")
)

var photoNamespaceStrip = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// PhotoService stores and removes profile photos in per-account namespaces.
type PhotoService struct {
	accounts port.AccountRepository
	events   port.EventPublisher
	cfg      config.UploadsSettings
	logger   *zap.Logger
}

// NewPhotoService constructs a PhotoService instance.
func NewPhotoService(accounts port.AccountRepository, events port.EventPublisher, cfg config.UploadsSettings, log *zap.Logger) *PhotoService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PhotoService{accounts: accounts, events: events, cfg: cfg, logger: log}
}

// Namespace derives the storage directory for an account. It is stable for a
// given display name; a rename starts a fresh namespace and the old one is
// left behind on disk. The sanitizer keeps the ASCII alphabet only, so
// accented letters are stripped rather than transliterated; directory names
// stay portable across filesystems and the account id keeps them unique.
func (s *PhotoService) Namespace(account *domain.Account) string {
	name := strings.Join(strings.Fields(account.DisplayName), "_")
	name = photoNamespaceStrip.ReplaceAllString(name, "")
	return fmt.Sprintf("account_%d_%s", account.ID, name)
}

// Upload validates the payload, writes it under the account's namespace and
// persists the new relative path. The previous photo file, if any, is removed
// best-effort.
func (s *PhotoService) Upload(ctx context.Context, account *domain.Account, contentType string, size int64, payload io.Reader) (string, error) {
	if contentType != "image/png" {
		return "", ErrUnsupportedPhotoFormat
	}
	if size > s.cfg.MaxPhotoBytes {
		return "", ErrPhotoTooLarge
	}

	namespace := s.Namespace(account)
	dir := filepath.Join(s.cfg.Directory, namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create photo namespace: %w", err)
	}

	fileName := uuid.NewString() + ".png"
	relPath := filepath.Join(namespace, fileName)
	fullPath := filepath.Join(s.cfg.Directory, relPath)

	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}

	// Copy caps at one byte over the limit so an understated size header
	// cannot smuggle an oversized payload.
	written, err := io.Copy(out, io.LimitReader(payload, s.cfg.MaxPhotoBytes+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		s.removeFile(fullPath)
		return "", fmt.Errorf("write photo file: %w", err)
	}
	if written > s.cfg.MaxPhotoBytes {
		s.removeFile(fullPath)
		return "", ErrPhotoTooLarge
	}

	previous := account.PhotoPath

	if err := s.accounts.UpdatePhotoPath(ctx, account.ID, &relPath); err != nil {
		s.removeFile(fullPath)
		return "", fmt.Errorf("persist photo path: %w", err)
	}
	account.PhotoPath = &relPath

	if previous != nil && *previous != "" {
		s.removeFile(filepath.Join(s.cfg.Directory, *previous))
		s.removeDirIfEmpty(filepath.Dir(filepath.Join(s.cfg.Directory, *previous)))
	}

	s.publishPhotoChanged(ctx, account.ID, &relPath, false)

	return relPath, nil
}

// Delete clears the stored photo. File and directory removal are best-effort:
// the database reference is the authoritative state and is cleared even when
// the underlying file is already gone.
func (s *PhotoService) Delete(ctx context.Context, account *domain.Account) error {
	if account.PhotoPath == nil || *account.PhotoPath == "" {
		return ErrNoPhotoToDelete
	}

	fullPath := filepath.Join(s.cfg.Directory, *account.PhotoPath)
	s.removeFile(fullPath)
	s.removeDirIfEmpty(filepath.Dir(fullPath))

	if err := s.accounts.UpdatePhotoPath(ctx, account.ID, nil); err != nil {
		return fmt.Errorf("clear photo path: %w", err)
	}
	account.PhotoPath = nil

	s.publishPhotoChanged(ctx, account.ID, nil, true)

	return nil
}

func (s *PhotoService) removeFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("remove photo file failed", zap.String("path", path), zap.Error(err))
	}
}

func (s *PhotoService) removeDirIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("read photo namespace failed", zap.String("dir", dir), zap.Error(err))
		}
		return
	}
	if len(entries) > 0 {
		return
	}
	if err := os.Remove(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("remove photo namespace failed", zap.String("dir", dir), zap.Error(err))
	}
}

func (s *PhotoService) publishPhotoChanged(ctx context.Context, accountID int64, path *string, deleted bool) {
	if s.events == nil {
		return
	}
	event := domain.ProfilePhotoChangedEvent{
		AccountID: accountID,
		PhotoPath: path,
		Deleted:   deleted,
		ChangedAt: time.Now().UTC(),
	}
	if err := s.events.PublishProfilePhotoChanged(ctx, event); err != nil {
		s.logger.Warn("publish photo change failed", zap.Error(err))
	}
}

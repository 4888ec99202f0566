package usecase

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Domis382/Redibo-back-wtt/internal/core/domain"
	"github.com/Domis382/Redibo-back-wtt/internal/infra/config"
)

func newPhotoFixture(t *testing.T) (*PhotoService, *memAccounts, *recordingPublisher, string) {
	t.Helper()

	dir := t.TempDir()
	accounts := newMemAccounts()
	publisher := &recordingPublisher{}
	service := NewPhotoService(accounts, publisher, config.UploadsSettings{
		Directory:     dir,
		MaxPhotoBytes: 2 * 1024 * 1024,
	}, nil)
	return service, accounts, publisher, dir
}

func TestPhotoNamespace(t *testing.T) {
	service, _, _, _ := newPhotoFixture(t)

	cases := []struct {
		name string
		want string
	}{
		{"Ana Flores", "account_7_Ana_Flores"},
		// Whitespace collapses to single underscores; accented runes are
		// outside the sanitizer alphabet and get stripped.
		{"Ana  María  Flores", "account_7_Ana_Mara_Flores"},
		{"O'Brien (QA)", "account_7_OBrien_QA"},
	}

	for _, tc := range cases {
		account := &domain.Account{ID: 7, DisplayName: tc.name}
		if got := service.Namespace(account); got != tc.want {
			t.Fatalf("Namespace(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestUploadStoresPNGAndPersistsPath(t *testing.T) {
	service, accounts, publisher, dir := newPhotoFixture(t)
	account := accounts.add(domain.Account{Email: "ana@example.com", DisplayName: "Ana Flores"})

	payload := []byte("\x89PNG\r\n\x1a\nfake-image-bytes")
	path, err := service.Upload(context.Background(), account, "image/png", int64(len(payload)), bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if !strings.HasPrefix(path, service.Namespace(account)) {
		t.Fatalf("path %q not under namespace %q", path, service.Namespace(account))
	}
	if !strings.HasSuffix(path, ".png") {
		t.Fatalf("path %q has no .png suffix", path)
	}

	written, err := os.ReadFile(filepath.Join(dir, path))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if !bytes.Equal(written, payload) {
		t.Fatal("stored bytes differ from payload")
	}

	stored, _ := accounts.GetByID(context.Background(), account.ID)
	if stored.PhotoPath == nil || *stored.PhotoPath != path {
		t.Fatalf("persisted path = %v, want %q", stored.PhotoPath, path)
	}
	if len(publisher.photoChanges) != 1 || publisher.photoChanges[0].Deleted {
		t.Fatalf("unexpected photo events: %+v", publisher.photoChanges)
	}
}

func TestUploadRejectsNonPNG(t *testing.T) {
	service, accounts, _, _ := newPhotoFixture(t)
	account := accounts.add(domain.Account{Email: "ana@example.com", DisplayName: "Ana Flores"})

	_, err := service.Upload(context.Background(), account, "image/jpeg", 10, bytes.NewReader([]byte("0123456789")))
	if !errors.Is(err, ErrUnsupportedPhotoFormat) {
		t.Fatalf("error = %v, want ErrUnsupportedPhotoFormat", err)
	}
}

func TestUploadRejectsOversizedPayload(t *testing.T) {
	service, accounts, _, dir := newPhotoFixture(t)
	account := accounts.add(domain.Account{Email: "ana@example.com", DisplayName: "Ana Flores"})

	_, err := service.Upload(context.Background(), account, "image/png", 3*1024*1024, bytes.NewReader(nil))
	if !errors.Is(err, ErrPhotoTooLarge) {
		t.Fatalf("error = %v, want ErrPhotoTooLarge", err)
	}

	// Nothing may be stored and the reference must stay clear.
	stored, _ := accounts.GetByID(context.Background(), account.ID)
	if stored.PhotoPath != nil {
		t.Fatalf("photo path set to %q after rejected upload", *stored.PhotoPath)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir returned error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("upload root holds %d entries after rejection", len(entries))
	}
}

func TestUploadRejectsUnderstatedSize(t *testing.T) {
	service, accounts, _, _ := newPhotoFixture(t)
	account := accounts.add(domain.Account{Email: "ana@example.com", DisplayName: "Ana Flores"})

	oversized := bytes.Repeat([]byte("x"), 2*1024*1024+1)
	_, err := service.Upload(context.Background(), account, "image/png", 100, bytes.NewReader(oversized))
	if !errors.Is(err, ErrPhotoTooLarge) {
		t.Fatalf("error = %v, want ErrPhotoTooLarge", err)
	}
}

func TestUploadReplacesPreviousPhoto(t *testing.T) {
	service, accounts, _, dir := newPhotoFixture(t)
	account := accounts.add(domain.Account{Email: "ana@example.com", DisplayName: "Ana Flores"})

	first, err := service.Upload(context.Background(), account, "image/png", 4, bytes.NewReader([]byte("png1")))
	if err != nil {
		t.Fatalf("first Upload returned error: %v", err)
	}
	second, err := service.Upload(context.Background(), account, "image/png", 4, bytes.NewReader([]byte("png2")))
	if err != nil {
		t.Fatalf("second Upload returned error: %v", err)
	}
	if first == second {
		t.Fatal("second upload reused the first path")
	}

	if _, err := os.Stat(filepath.Join(dir, first)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("first photo still on disk: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, second)); err != nil {
		t.Fatalf("second photo missing: %v", err)
	}
}

func TestDeleteClearsReferenceEvenWhenFileMissing(t *testing.T) {
	service, accounts, publisher, _ := newPhotoFixture(t)
	missing := filepath.Join("account_1_Ana_Flores", "gone.png")
	account := accounts.add(domain.Account{Email: "ana@example.com", DisplayName: "Ana Flores", PhotoPath: &missing})

	if err := service.Delete(context.Background(), account); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	stored, _ := accounts.GetByID(context.Background(), account.ID)
	if stored.PhotoPath != nil {
		t.Fatalf("photo path still set: %q", *stored.PhotoPath)
	}
	if len(publisher.photoChanges) != 1 || !publisher.photoChanges[0].Deleted {
		t.Fatalf("unexpected photo events: %+v", publisher.photoChanges)
	}
}

func TestDeleteRemovesFileAndEmptyNamespace(t *testing.T) {
	service, accounts, _, dir := newPhotoFixture(t)
	account := accounts.add(domain.Account{Email: "ana@example.com", DisplayName: "Ana Flores"})

	path, err := service.Upload(context.Background(), account, "image/png", 4, bytes.NewReader([]byte("png1")))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if err := service.Delete(context.Background(), account); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, path)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("photo still on disk: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.Dir(path))); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("empty namespace still on disk: %v", err)
	}
}

func TestDeleteWithoutPhoto(t *testing.T) {
	service, accounts, _, _ := newPhotoFixture(t)
	account := accounts.add(domain.Account{Email: "ana@example.com", DisplayName: "Ana Flores"})

	if err := service.Delete(context.Background(), account); !errors.Is(err, ErrNoPhotoToDelete) {
		t.Fatalf("error = %v, want ErrNoPhotoToDelete", err)
	}
}

package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"promoshow/media"
	"promoshow/utils"
)

// DirHost is a Host backed by a directory tree. It serves headless
// deployments where shares, downloads and the photo library are exported
// to disk:
//
//	<Dir>/shared/      shared files plus a .txt with the message
//	<Dir>/shared/messages.log
//	<Dir>/downloads/   browser-style downloads
//	<Dir>/library/     saved assets
//	<Dir>/albums/<name>/
type DirHost struct {
	Dir        string
	FileShare  bool
	Permission bool
	Logger     *zap.Logger

	mu sync.Mutex
}

func NewDirHost(dir string, logger *zap.Logger) *DirHost {
	return &DirHost{
		Dir:        dir,
		FileShare:  true,
		Permission: true,
		Logger:     utils.OrNop(logger),
	}
}

func (h *DirHost) CanShareFiles(context.Context) bool {
	return h.FileShare
}

func (h *DirHost) OpenShareSheet(_ context.Context, req media.ShareRequest) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	dst, err := h.copyInto("shared", req.LocalPath, filepath.Base(req.LocalPath))
	if err != nil {
		return err
	}
	if req.Message != "" {
		note := strings.TrimSuffix(dst, filepath.Ext(dst)) + ".txt"
		if err := os.WriteFile(note, []byte(req.Message+"\n"), 0o644); err != nil {
			return fmt.Errorf("write share message: %w", err)
		}
	}
	h.Logger.Info("shared file", zap.String("path", dst), zap.String("dialog_title", req.DialogTitle))
	return nil
}

func (h *DirHost) ShareText(_ context.Context, message string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	dir, err := h.subdir("shared")
	if err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, "messages.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	entry := fmt.Sprintf("%s\t%s\n", time.Now().UTC().Format(time.RFC3339), strings.ReplaceAll(message, "\n", `\n`))
	if _, err := f.WriteString(entry); err != nil {
		return err
	}
	h.Logger.Info("shared text")
	return nil
}

func (h *DirHost) RequestMediaPermission(context.Context) (bool, error) {
	return h.Permission, nil
}

func (h *DirHost) CreateAsset(_ context.Context, localPath string) (media.Asset, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.New().String()
	dst, err := h.copyInto("library", localPath, id+filepath.Ext(localPath))
	if err != nil {
		return media.Asset{}, err
	}
	h.Logger.Info("saved asset", zap.String("asset_id", id), zap.String("path", dst))
	return media.Asset{ID: id, LocalPath: dst}, nil
}

func (h *DirHost) GetAlbum(_ context.Context, name string) (*media.Album, error) {
	dir := filepath.Join(h.Dir, "albums", albumDirName(name))
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("album %q is not a directory", name)
	}
	return &media.Album{ID: albumDirName(name), Name: name}, nil
}

func (h *DirHost) CreateAlbum(ctx context.Context, name string, asset media.Asset) error {
	return h.AddAssetsToAlbum(ctx, []media.Asset{asset}, media.Album{ID: albumDirName(name), Name: name})
}

func (h *DirHost) AddAssetsToAlbum(_ context.Context, assets []media.Asset, album media.Album) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := filepath.Join("albums", albumDirName(album.Name))
	for _, asset := range assets {
		if _, err := h.copyInto(sub, asset.LocalPath, filepath.Base(asset.LocalPath)); err != nil {
			return err
		}
	}
	return nil
}

func (h *DirHost) SaveFile(_ context.Context, localPath, downloadName string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	dst, err := h.copyInto("downloads", localPath, filepath.Base(downloadName))
	if err != nil {
		return err
	}
	h.Logger.Info("saved download", zap.String("path", dst))
	return nil
}

func (h *DirHost) subdir(name string) (string, error) {
	dir := filepath.Join(h.Dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}

func (h *DirHost) copyInto(sub, src, name string) (string, error) {
	dir, err := h.subdir(sub)
	if err != nil {
		return "", err
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	dst := filepath.Join(dir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", err
	}
	return dst, out.Close()
}

func albumDirName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return "album"
	}
	return name
}

package media

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"promoshow/utils"
)

var (
	ErrDownloadInFlight = errors.New("a download is already in progress")
	ErrPermissionDenied = errors.New("gallery permission denied")
	ErrLocalCache       = errors.New("could not cache image locally")
	ErrNoImage          = errors.New("no image selected")
)

const jpegMimeType = "image/jpeg"

// User-facing notice texts.
const (
	titleSuccess          = "Éxito"
	titleError            = "Error"
	titlePermissionDenied = "Permiso Denegado"

	msgShareFailed      = "No se pudo compartir la imagen"
	msgDownloaded       = "Imagen descargada"
	msgSavedToGallery   = "Imagen guardada en la galería"
	msgSavedToAlbum     = "Imagen guardada en la galería en el álbum %q"
	msgDownloadFailed   = "No se pudo descargar la imagen. Intenta nuevamente."
	msgPermissionNeeded = "Se necesita permiso para guardar imágenes en la galería"
)

type Options struct {
	ShareMessage string
	DialogTitle  string
	AlbumName    string
	FilePrefix   string
}

// Dispatcher runs the share and download commands against one platform's
// capabilities. At most one download runs at a time.
type Dispatcher struct {
	Caps     Capabilities
	Cache    Cache
	Notifier Notifier
	Logger   *zap.Logger
	Options  Options

	downloading atomic.Bool
	now         func() time.Time
}

func NewDispatcher(caps Capabilities, cache Cache, notifier Notifier, opts Options, logger *zap.Logger) *Dispatcher {
	logger = utils.OrNop(logger)
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	if opts.FilePrefix == "" {
		opts.FilePrefix = "promo"
	}
	return &Dispatcher{
		Caps:     caps,
		Cache:    cache,
		Notifier: notifier,
		Logger:   logger,
		Options:  opts,
		now:      time.Now,
	}
}

// Downloading reports whether a download is currently running.
func (d *Dispatcher) Downloading() bool {
	return d.downloading.Load()
}

// Share hands the image at url to the platform share facility. When the
// platform cannot share files, the message and the URL are shared as text.
func (d *Dispatcher) Share(ctx context.Context, url string) error {
	if url == "" {
		return ErrNoImage
	}

	err := d.share(ctx, url)
	if err != nil {
		d.Logger.Error("share failed", zap.String("url", url), zap.Error(err))
		d.notify(NoticeError, titleError, msgShareFailed)
	}
	return err
}

func (d *Dispatcher) share(ctx context.Context, url string) error {
	sharer := d.Caps.Sharer
	if sharer == nil {
		return errors.New("sharing is not available")
	}

	if !sharer.CanShareFiles(ctx) {
		return sharer.ShareText(ctx, d.fallbackText(url))
	}

	filename := fmt.Sprintf("%s_share_%d.jpg", d.Options.FilePrefix, d.now().UnixMilli())
	localPath, err := d.Cache.DownloadToLocal(ctx, url, filename)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLocalCache, err)
	}

	return sharer.ShareFiles(ctx, ShareRequest{
		LocalPath:   localPath,
		MimeType:    jpegMimeType,
		DialogTitle: d.Options.DialogTitle,
		Message:     d.Options.ShareMessage,
	})
}

func (d *Dispatcher) fallbackText(url string) string {
	if d.Options.ShareMessage == "" {
		return url
	}
	return d.Options.ShareMessage + "\n\n" + url
}

// Download saves the image at url into the device gallery. A call made while
// another download is running returns ErrDownloadInFlight and does nothing.
func (d *Dispatcher) Download(ctx context.Context, url string) error {
	if url == "" {
		return ErrNoImage
	}
	if !d.downloading.CompareAndSwap(false, true) {
		return ErrDownloadInFlight
	}
	defer d.downloading.Store(false)

	gallery := d.Caps.Gallery
	if gallery == nil {
		d.notify(NoticeError, titleError, msgDownloadFailed)
		return errors.New("gallery is not available")
	}

	if d.Caps.Platform.RequiresGalleryPermission() {
		granted, err := gallery.RequestPermission(ctx)
		if err != nil {
			d.Logger.Error("permission request failed", zap.Error(err))
			d.notify(NoticeError, titleError, msgDownloadFailed)
			return err
		}
		if !granted {
			d.notify(NoticePermissionDenied, titlePermissionDenied, msgPermissionNeeded)
			return ErrPermissionDenied
		}
	}

	filename := fmt.Sprintf("%s_%d.jpg", d.Options.FilePrefix, d.now().UnixMilli())
	localPath, err := d.Cache.DownloadToLocal(ctx, url, filename)
	if err != nil {
		d.Logger.Error("download failed", zap.String("url", url), zap.Error(err))
		d.notify(NoticeError, titleError, msgDownloadFailed)
		return fmt.Errorf("%w: %w", ErrLocalCache, err)
	}

	asset, err := gallery.SaveAsset(ctx, localPath)
	if err != nil {
		d.Logger.Error("save to gallery failed", zap.String("path", localPath), zap.Error(err))
		d.notify(NoticeError, titleError, msgDownloadFailed)
		return err
	}

	switch {
	case !d.Caps.Platform.RequiresGalleryPermission():
		d.notify(NoticeSuccess, titleSuccess, msgDownloaded)
	case d.Caps.Platform.FilesIntoAlbum() && d.Options.AlbumName != "":
		if err := d.fileIntoAlbum(ctx, gallery, asset); err != nil {
			d.Logger.Warn("album filing failed, image kept in gallery",
				zap.String("album", d.Options.AlbumName), zap.Error(err))
			d.notify(NoticeSuccess, titleSuccess, msgSavedToGallery)
			break
		}
		d.notify(NoticeSuccess, titleSuccess, fmt.Sprintf(msgSavedToAlbum, d.Options.AlbumName))
	default:
		d.notify(NoticeSuccess, titleSuccess, msgSavedToGallery)
	}
	return nil
}

func (d *Dispatcher) fileIntoAlbum(ctx context.Context, gallery Gallery, asset Asset) error {
	album, err := gallery.FindAlbum(ctx, d.Options.AlbumName)
	if err != nil {
		return err
	}
	if album == nil {
		return gallery.CreateAlbum(ctx, d.Options.AlbumName, asset)
	}
	return gallery.AddToAlbum(ctx, asset, *album)
}

func (d *Dispatcher) notify(kind NoticeKind, title, message string) {
	if d.Notifier == nil {
		return
	}
	d.Notifier.Notify(Notice{Kind: kind, Title: title, Message: message})
}

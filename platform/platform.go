// Package platform adapts a host's native share and photo-library calls to
// the capabilities the media dispatcher needs. Each variant encodes one
// platform's rules.
package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"promoshow/media"
)

var ErrAlbumsUnsupported = errors.New("albums are not supported on this platform")

// Host is the set of primitive calls the embedding application provides.
type Host interface {
	CanShareFiles(ctx context.Context) bool
	OpenShareSheet(ctx context.Context, req media.ShareRequest) error
	ShareText(ctx context.Context, message string) error

	RequestMediaPermission(ctx context.Context) (bool, error)
	CreateAsset(ctx context.Context, localPath string) (media.Asset, error)
	GetAlbum(ctx context.Context, name string) (*media.Album, error)
	CreateAlbum(ctx context.Context, name string, asset media.Asset) error
	AddAssetsToAlbum(ctx context.Context, assets []media.Asset, album media.Album) error

	// SaveFile hands a local file to the user as a browser download.
	SaveFile(ctx context.Context, localPath, downloadName string) error
}

// Web shares files only where the browser supports it and saves images as a
// plain download named downloadName.
func Web(host Host, downloadName string) media.Capabilities {
	return media.Capabilities{
		Platform: media.PlatformWeb,
		Sharer:   hostSharer{host: host},
		Gallery:  webGallery{host: host, downloadName: downloadName},
	}
}

// IOS always shares the file together with the message and files saved
// images into an album.
func IOS(host Host) media.Capabilities {
	return media.Capabilities{
		Platform: media.PlatformIOS,
		Sharer:   hostSharer{host: host, alwaysFiles: true},
		Gallery:  libraryGallery{host: host, albums: true},
	}
}

// Android shares the file alone; the system dialog drops the message.
func Android(host Host) media.Capabilities {
	return media.Capabilities{
		Platform: media.PlatformAndroid,
		Sharer:   hostSharer{host: host, dropMessage: true},
		Gallery:  libraryGallery{host: host},
	}
}

// ForName picks a variant by platform name.
func ForName(name string, host Host, downloadName string) (media.Capabilities, error) {
	switch media.Platform(strings.ToLower(strings.TrimSpace(name))) {
	case media.PlatformWeb:
		return Web(host, downloadName), nil
	case media.PlatformIOS:
		return IOS(host), nil
	case media.PlatformAndroid:
		return Android(host), nil
	}
	return media.Capabilities{}, fmt.Errorf("unknown platform %q", name)
}

type hostSharer struct {
	host        Host
	alwaysFiles bool
	dropMessage bool
}

func (s hostSharer) CanShareFiles(ctx context.Context) bool {
	return s.alwaysFiles || s.host.CanShareFiles(ctx)
}

func (s hostSharer) ShareFiles(ctx context.Context, req media.ShareRequest) error {
	if s.dropMessage {
		req.Message = ""
	}
	return s.host.OpenShareSheet(ctx, req)
}

func (s hostSharer) ShareText(ctx context.Context, message string) error {
	return s.host.ShareText(ctx, message)
}

type webGallery struct {
	host         Host
	downloadName string
}

func (g webGallery) RequestPermission(context.Context) (bool, error) {
	return true, nil
}

func (g webGallery) SaveAsset(ctx context.Context, localPath string) (media.Asset, error) {
	if err := g.host.SaveFile(ctx, localPath, g.downloadName); err != nil {
		return media.Asset{}, err
	}
	return media.Asset{ID: g.downloadName, LocalPath: localPath}, nil
}

func (g webGallery) FindAlbum(context.Context, string) (*media.Album, error) {
	return nil, ErrAlbumsUnsupported
}

func (g webGallery) CreateAlbum(context.Context, string, media.Asset) error {
	return ErrAlbumsUnsupported
}

func (g webGallery) AddToAlbum(context.Context, media.Asset, media.Album) error {
	return ErrAlbumsUnsupported
}

type libraryGallery struct {
	host   Host
	albums bool
}

func (g libraryGallery) RequestPermission(ctx context.Context) (bool, error) {
	return g.host.RequestMediaPermission(ctx)
}

func (g libraryGallery) SaveAsset(ctx context.Context, localPath string) (media.Asset, error) {
	return g.host.CreateAsset(ctx, localPath)
}

func (g libraryGallery) FindAlbum(ctx context.Context, name string) (*media.Album, error) {
	if !g.albums {
		return nil, ErrAlbumsUnsupported
	}
	return g.host.GetAlbum(ctx, name)
}

func (g libraryGallery) CreateAlbum(ctx context.Context, name string, asset media.Asset) error {
	if !g.albums {
		return ErrAlbumsUnsupported
	}
	return g.host.CreateAlbum(ctx, name, asset)
}

func (g libraryGallery) AddToAlbum(ctx context.Context, asset media.Asset, album media.Album) error {
	if !g.albums {
		return ErrAlbumsUnsupported
	}
	return g.host.AddAssetsToAlbum(ctx, []media.Asset{asset}, album)
}

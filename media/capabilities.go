package media

import "context"

// Platform names a host family whose share and gallery rules differ.
type Platform string

const (
	PlatformWeb     Platform = "web"
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// RequiresGalleryPermission reports whether saving needs an explicit grant.
func (p Platform) RequiresGalleryPermission() bool {
	return p == PlatformIOS || p == PlatformAndroid
}

// FilesIntoAlbum reports whether saved images are also filed into a named album.
func (p Platform) FilesIntoAlbum() bool {
	return p == PlatformIOS
}

func (p Platform) Valid() bool {
	switch p {
	case PlatformWeb, PlatformIOS, PlatformAndroid:
		return true
	}
	return false
}

// ShareRequest asks the host to share a local file.
type ShareRequest struct {
	LocalPath   string
	MimeType    string
	DialogTitle string
	// Message accompanies the file where the host supports it.
	Message string
}

type Sharer interface {
	CanShareFiles(ctx context.Context) bool
	ShareFiles(ctx context.Context, req ShareRequest) error
	ShareText(ctx context.Context, message string) error
}

// Asset is an image saved into the device library.
type Asset struct {
	ID        string
	LocalPath string
}

type Album struct {
	ID   string
	Name string
}

type Gallery interface {
	RequestPermission(ctx context.Context) (bool, error)
	SaveAsset(ctx context.Context, localPath string) (Asset, error)
	// FindAlbum returns nil, nil when no album has that name.
	FindAlbum(ctx context.Context, name string) (*Album, error)
	CreateAlbum(ctx context.Context, name string, asset Asset) error
	AddToAlbum(ctx context.Context, asset Asset, album Album) error
}

// Cache materializes a remote image as a local file.
type Cache interface {
	DownloadToLocal(ctx context.Context, url, filename string) (string, error)
}

// Capabilities is what one platform variant provides to the dispatcher.
type Capabilities struct {
	Platform Platform
	Sharer   Sharer
	Gallery  Gallery
}

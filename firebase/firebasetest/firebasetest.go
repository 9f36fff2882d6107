// Package firebasetest provides in-memory document and blob stores with
// failure hooks, for tests of code built on the firebase store interfaces.
package firebasetest

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"promoshow/models"
)

// Docs is an in-memory DocumentStore. Documents are listed in insertion order.
type Docs struct {
	mu      sync.Mutex
	seq     int
	order   map[string][]string
	records map[string]map[string]models.Document

	ListFn   func(collection string) error
	AddFn    func(collection string, fields map[string]any) error
	DeleteFn func(collection, id string) error

	AddCalls    int
	DeleteCalls []string
	Now         func() time.Time
}

func NewDocs() *Docs {
	return &Docs{
		order:   map[string][]string{},
		records: map[string]map[string]models.Document{},
		Now:     time.Now,
	}
}

// Seed inserts a document with a fixed id.
func (d *Docs) Seed(collection, id string, fields map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.put(collection, id, fields)
}

func (d *Docs) put(collection, id string, fields map[string]any) {
	if d.records[collection] == nil {
		d.records[collection] = map[string]models.Document{}
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		if models.IsServerTimestamp(v) {
			v = d.Now()
		}
		copied[k] = v
	}
	if _, exists := d.records[collection][id]; !exists {
		d.order[collection] = append(d.order[collection], id)
	}
	d.records[collection][id] = models.Document{ID: id, Fields: copied}
}

func (d *Docs) List(ctx context.Context, collection string) ([]models.Document, error) {
	if d.ListFn != nil {
		if err := d.ListFn(collection); err != nil {
			return nil, err
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	docs := []models.Document{}
	for _, id := range d.order[collection] {
		if doc, ok := d.records[collection][id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (d *Docs) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	d.mu.Lock()
	d.AddCalls++
	d.mu.Unlock()
	if d.AddFn != nil {
		if err := d.AddFn(collection, fields); err != nil {
			return "", err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	id := fmt.Sprintf("doc-%d", d.seq)
	d.put(collection, id, fields)
	return id, nil
}

func (d *Docs) Delete(ctx context.Context, collection, id string) error {
	d.mu.Lock()
	d.DeleteCalls = append(d.DeleteCalls, id)
	d.mu.Unlock()
	if d.DeleteFn != nil {
		if err := d.DeleteFn(collection, id); err != nil {
			return err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.records[collection][id]; !ok {
		return fmt.Errorf("document %s/%s not found", collection, id)
	}
	delete(d.records[collection], id)
	order := d.order[collection][:0]
	for _, existing := range d.order[collection] {
		if existing != id {
			order = append(order, existing)
		}
	}
	d.order[collection] = order
	return nil
}

func (d *Docs) FindBy(ctx context.Context, collection, field string, value any) ([]models.Document, error) {
	docs, err := d.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	var out []models.Document
	for _, doc := range docs {
		if doc.Fields[field] == value {
			out = append(out, doc)
		}
	}
	return out, nil
}

// Count returns the number of live documents in collection.
func (d *Docs) Count(collection string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.records[collection])
}

// Blobs is an in-memory BlobStore.
type Blobs struct {
	mu      sync.Mutex
	Bucket  string
	objects map[string][]byte

	UploadFn    func(objectPath string) error
	PublicURLFn func(objectPath string) error
	DeleteFn    func(objectPath string) error

	UploadCalls []string
	DeleteCalls []string
}

func NewBlobs() *Blobs {
	return &Blobs{Bucket: "test-bucket", objects: map[string][]byte{}}
}

func (b *Blobs) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) error {
	b.mu.Lock()
	b.UploadCalls = append(b.UploadCalls, objectPath)
	b.mu.Unlock()
	if b.UploadFn != nil {
		if err := b.UploadFn(objectPath); err != nil {
			return err
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[objectPath] = data
	return nil
}

func (b *Blobs) PublicURL(ctx context.Context, objectPath string) (string, error) {
	if b.PublicURLFn != nil {
		if err := b.PublicURLFn(objectPath); err != nil {
			return "", err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[objectPath]; !ok {
		return "", fmt.Errorf("object %s not found", objectPath)
	}
	return "https://storage.googleapis.com/" + b.Bucket + "/" + objectPath, nil
}

func (b *Blobs) Delete(ctx context.Context, objectPath string) error {
	b.mu.Lock()
	b.DeleteCalls = append(b.DeleteCalls, objectPath)
	b.mu.Unlock()
	if b.DeleteFn != nil {
		if err := b.DeleteFn(objectPath); err != nil {
			return err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[objectPath]; !ok {
		return fmt.Errorf("object %s not found", objectPath)
	}
	delete(b.objects, objectPath)
	return nil
}

// Has reports whether an object exists.
func (b *Blobs) Has(objectPath string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[objectPath]
	return ok
}

// Paths lists stored object paths in sorted order.
func (b *Blobs) Paths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	paths := make([]string, 0, len(b.objects))
	for p := range b.objects {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Put stores an object directly.
func (b *Blobs) Put(objectPath string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[objectPath] = data
}

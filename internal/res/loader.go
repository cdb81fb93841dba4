package res

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ResourceType represents the type of resource
type ResourceType int

const (
	// ResourceTypeUnknown is an unknown resource type
	ResourceTypeUnknown ResourceType = iota
	// ResourceTypeHTML is an HTML document
	ResourceTypeHTML
	// ResourceTypeMarkdown is a Markdown document
	ResourceTypeMarkdown
	// ResourceTypeImage is an image resource
	ResourceTypeImage
	// ResourceTypeCSS is a CSS resource
	ResourceTypeCSS
	// ResourceTypeOther is any other resource
	ResourceTypeOther
)

// IsDocument reports whether resources of this type carry page content
func (t ResourceType) IsDocument() bool {
	return t == ResourceTypeHTML || t == ResourceTypeMarkdown
}

// Resource represents a loaded resource
type Resource struct {
	URL      string
	Type     ResourceType
	Data     []byte
	MimeType string
}

// Loader fetches input documents, stylesheets and images. Relative
// references resolve against BaseURL; local files that do not exist are
// looked up by name in the search paths.
type Loader struct {
	BaseURL string

	cache     map[string]*Resource
	cacheLock sync.RWMutex

	searchPaths []string

	client *http.Client
}

// NewLoader creates a new resource loader
func NewLoader(baseURL string) *Loader {
	return &Loader{
		BaseURL: baseURL,
		cache:   make(map[string]*Resource),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// AddSearchPath adds a directory to search for local resources
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// Load loads a resource from a URL, data URL or file path
func (l *Loader) Load(ref string) (*Resource, error) {
	l.cacheLock.RLock()
	cached, ok := l.cache[ref]
	l.cacheLock.RUnlock()
	if ok {
		return cached, nil
	}

	var (
		r   *Resource
		err error
	)
	switch {
	case strings.HasPrefix(ref, "data:"):
		r, err = parseDataURL(ref)
	default:
		var resolved string
		if resolved, err = l.resolve(ref); err != nil {
			return nil, err
		}
		if isRemote(resolved) {
			r, err = l.fetch(resolved)
		} else {
			r, err = l.readLocal(resolved)
		}
	}
	if err != nil {
		return nil, err
	}

	l.cacheLock.Lock()
	l.cache[ref] = r
	l.cacheLock.Unlock()
	return r, nil
}

// LoadImage loads an image resource
func (l *Loader) LoadImage(ref string) (*Resource, error) {
	return l.loadAs(ref, ResourceTypeImage, "an image")
}

// LoadCSS loads a CSS resource
func (l *Loader) LoadCSS(ref string) (*Resource, error) {
	return l.loadAs(ref, ResourceTypeCSS, "CSS")
}

func (l *Loader) loadAs(ref string, want ResourceType, what string) (*Resource, error) {
	r, err := l.Load(ref)
	if err != nil {
		return nil, err
	}
	if r.Type != want {
		return nil, fmt.Errorf("resource is not %s: %s", what, ref)
	}
	return r, nil
}

// LoadDocument loads an HTML or Markdown document. Resources of other
// types are read as HTML unless they are images or stylesheets.
func (l *Loader) LoadDocument(ref string) (*Resource, error) {
	r, err := l.Load(ref)
	if err != nil {
		return nil, err
	}

	switch r.Type {
	case ResourceTypeImage, ResourceTypeCSS:
		return nil, fmt.Errorf("resource is not a document: %s", ref)
	case ResourceTypeHTML, ResourceTypeMarkdown:
		return r, nil
	}
	doc := *r
	doc.Type = ResourceTypeHTML
	return &doc, nil
}

// GetReader returns a reader for a resource
func (r *Resource) GetReader() *bytes.Reader {
	return bytes.NewReader(r.Data)
}

// GetString returns the resource data as a string
func (r *Resource) GetString() string {
	return string(r.Data)
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// resolve makes ref absolute against the base URL or the base file's
// directory
func (l *Loader) resolve(ref string) (string, error) {
	if isRemote(ref) || filepath.IsAbs(ref) {
		return ref, nil
	}
	if !isRemote(l.BaseURL) {
		return filepath.Join(filepath.Dir(l.BaseURL), ref), nil
	}

	base, err := url.Parse(l.BaseURL)
	if err != nil {
		return "", err
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(rel).String(), nil
}

func (l *Loader) fetch(u string) (*Resource, error) {
	resp, err := l.client.Get(u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: HTTP error: %s", u, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}

	mt := mediaType(resp.Header.Get("Content-Type"))
	return &Resource{URL: u, Data: data, MimeType: mt, Type: typeOf(mt, u)}, nil
}

// readLocal reads path, falling back to a file of the same name in the
// search paths
func (l *Loader) readLocal(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return fileResource(path, data), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	name := filepath.Base(path)
	for _, dir := range l.searchPaths {
		candidate := filepath.Join(dir, name)
		if data, err := os.ReadFile(candidate); err == nil {
			return fileResource(candidate, data), nil
		}
	}
	return nil, fmt.Errorf("resource not found: %s", path)
}

func fileResource(path string, data []byte) *Resource {
	mt := mimeForExt(path)
	return &Resource{URL: path, Data: data, MimeType: mt, Type: typeOf(mt, path)}
}

// parseDataURL decodes an RFC 2397 data URL such as
// data:text/html;base64,PHA+ or data:text/plain,Hello%20World
func parseDataURL(u string) (*Resource, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URL")
	}

	mt := "application/octet-stream"
	encoded := false
	params := strings.Split(meta, ";")
	if params[0] != "" {
		mt = strings.ToLower(params[0])
	}
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			encoded = true
		}
	}

	var data []byte
	if encoded {
		d, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data URL: %w", err)
		}
		data = d
	} else if d, err := url.PathUnescape(payload); err == nil {
		data = []byte(d)
	} else {
		data = []byte(payload)
	}

	return &Resource{URL: u, Data: data, MimeType: mt, Type: typeOf(mt, "")}, nil
}

var extMimeTypes = map[string]string{
	".jpg":      "image/jpeg",
	".jpeg":     "image/jpeg",
	".png":      "image/png",
	".gif":      "image/gif",
	".webp":     "image/webp",
	".tif":      "image/tiff",
	".tiff":     "image/tiff",
	".bmp":      "image/bmp",
	".ico":      "image/x-icon",
	".svg":      "image/svg+xml",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".css":      "text/css",
	".html":     "text/html",
	".htm":      "text/html",
}

func mimeForExt(path string) string {
	if mt, ok := extMimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return "application/octet-stream"
}

// typeOf classifies a resource by media type, then by file extension
func typeOf(mt, path string) ResourceType {
	if t := typeOfMedia(mt); t != ResourceTypeOther {
		return t
	}
	if path == "" {
		return ResourceTypeOther
	}
	return typeOfMedia(mimeForExt(path))
}

func typeOfMedia(mt string) ResourceType {
	switch {
	case strings.HasPrefix(mt, "image/"):
		return ResourceTypeImage
	case mt == "text/css":
		return ResourceTypeCSS
	case mt == "text/html", mt == "application/xhtml+xml":
		return ResourceTypeHTML
	case mt == "text/markdown", mt == "text/x-markdown":
		return ResourceTypeMarkdown
	}
	return ResourceTypeOther
}

// mediaType strips parameters such as charset from a Content-Type value
func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

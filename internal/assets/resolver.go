package assets

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"

	"github.com/mind-engage/mascot-survey/internal/catalog"
)

const (
	// Dir holds the mascot images, one file per question and option.
	Dir = "mascots"
	// Placeholder is served when an option image cannot be read.
	Placeholder = Dir + "/placeholder.webp"
)

// Path is the key of an option's image: mascots/<questionID>-<optionID>.
// Option ids are only unique within their question, so the file name always
// carries the question id. An option id that already starts with it is used
// as is.
func Path(questionID, optionID string) string {
	qid, opt := path.Base(questionID), path.Base(optionID)
	if !strings.HasPrefix(opt, qid+"-") {
		opt = qid + "-" + opt
	}
	return path.Join(Dir, opt)
}

// ContentType guesses the media type from the key's extension.
func ContentType(key string) string {
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}

type Resolver struct {
	store Store
	cat   *catalog.Catalog
	log   *slog.Logger
}

func NewResolver(store Store, cat *catalog.Catalog, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{store: store, cat: cat, log: log}
}

// Asset is an opened image. Fallback is set when the placeholder was served.
type Asset struct {
	io.ReadCloser
	Key      string
	Fallback bool
}

// Open returns the image of an option, or the placeholder when the option is
// unknown or its image cannot be read. The placeholder is tried once; its
// failure is returned as is.
func (r *Resolver) Open(questionID, optionID string) (*Asset, error) {
	if q, ok := r.cat.Lookup(questionID); ok && q.Has(optionID) {
		key := Path(questionID, optionID)
		rc, err := r.store.Get(key)
		if err == nil {
			return &Asset{ReadCloser: rc, Key: key}, nil
		}
		r.log.Warn("mascot image missing, serving placeholder", "key", key, "err", err)
	}
	rc, err := r.store.Get(Placeholder)
	if err != nil {
		return nil, fmt.Errorf("assets: placeholder: %w", err)
	}
	return &Asset{ReadCloser: rc, Key: Placeholder, Fallback: true}, nil
}

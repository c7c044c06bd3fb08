// Package source defines the data-loading contracts the viewer's host
// implements, plus ready-made in-memory and file-backed sources.
//
// The viewer itself never loads data; hosts fetch points through a
// Source and push them into the viewer with SetPoints or AppendPoints.
package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/gogpu/scatter"
)

// DefaultPageSize is the page size LoadAll requests per fetch.
const DefaultPageSize = 10000

// ErrStopped is returned from a page callback to end the load early.
// LoadAll swallows it and returns nil, the same convention as
// fs.SkipDir; any other callback error aborts the load and propagates.
var ErrStopped = errors.New("source: load stopped by callback")

// Source fetches points in pages. Offset and limit are in points; a page
// shorter than limit marks the end of the data set.
type Source interface {
	FetchPage(ctx context.Context, offset, limit int) ([]scatter.Point, error)
}

// PathResolver maps a point's stable identifier to the path of the file
// it represents. Hosts implement it to serve pick follow-ups (open,
// reveal, preview); the viewer never calls it.
type PathResolver interface {
	FilePath(ctx context.Context, id int64) (string, error)
}

// FileInfo describes the file behind a picked point.
type FileInfo struct {
	Path      string
	Name      string
	SizeBytes int64
	// Duration is the media length in seconds, zero when unknown.
	Duration float64
}

// Describe stats the file at path and fills the cheap FileInfo fields.
// Duration is left zero; it needs a media decoder the host owns.
func Describe(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Path:      path,
		Name:      filepath.Base(path),
		SizeBytes: st.Size(),
	}, nil
}

// LoadAll fetches every page from src and hands each to onPage in order.
// Fetching stops at the first short page, a fetch error, a canceled
// context, or an error from onPage (ErrStopped stops cleanly). The usual
// callback accumulates pages and makes a single SetPoints call at the end.
func LoadAll(ctx context.Context, src Source, onPage func([]scatter.Point) error) error {
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := src.FetchPage(ctx, offset, DefaultPageSize)
		if err != nil {
			return err
		}
		if len(page) > 0 {
			if err := onPage(page); err != nil {
				if errors.Is(err, ErrStopped) {
					return nil
				}
				return err
			}
		}
		if len(page) < DefaultPageSize {
			return nil
		}
		offset += len(page)
	}
}

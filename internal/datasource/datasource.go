// Package datasource abstracts where input batches come from. Implementations
// return a byte stream; parsing is someone else's job.
package datasource

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Transcode wraps rc with a decoder for the named source encoding so
// downstream readers always see UTF-8. Supported encodings: "" (UTF-8
// passthrough) and "latin1". Closing the returned reader closes rc.
func Transcode(rc io.ReadCloser, encoding string) (io.ReadCloser, error) {
	switch encoding {
	case "":
		return rc, nil
	case "latin1":
		return &transcodeCloser{
			Reader: transform.NewReader(rc, charmap.ISO8859_1.NewDecoder()),
			c:      rc,
		}, nil
	default:
		return nil, fmt.Errorf("datasource: unsupported encoding %q", encoding)
	}
}

type transcodeCloser struct {
	io.Reader
	c io.Closer
}

func (t *transcodeCloser) Close() error { return t.c.Close() }

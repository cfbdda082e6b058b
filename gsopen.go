// Package patchnwb holds I/O plumbing shared by the patch-clamp conversion
// tools. Recording bundles, slice images, and configs may live on the
// acquisition rig's disk or in the lab's Google Storage archive, so every
// input path may be local or gs://.
package patchnwb

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// ReaderAtCloser is satisfied by *os.File and by GSReaderAtCloser. The bundle
// loader needs ReadAt (archive/zip seeks), while image and config loading
// stream through Read.
type ReaderAtCloser interface {
	io.Reader
	io.ReaderAt
	io.Closer
}

// GSReaderAtCloser decorates a Google Storage object handle so it can stand
// in for a local file.
type GSReaderAtCloser struct {
	*storage.ObjectHandle
	Context context.Context
	Closer  *func() error
	Reader  *storage.Reader
}

// Read streams the object from the start, lazily opening one reader that
// lives until Close.
func (o *GSReaderAtCloser) Read(p []byte) (n int, err error) {
	if o.Reader == nil {
		o.Reader, err = o.NewReader(o.Context)
		if err != nil {
			return 0, err
		}
	}

	return o.Reader.Read(p)
}

// ReadAt satisfies io.ReaderAt. The read length is taken from len(p), so
// callers must size p to exactly what they want back. Each call opens and
// closes its own range reader.
func (o *GSReaderAtCloser) ReadAt(p []byte, offset int64) (n int, err error) {
	rdr, err := o.NewRangeReader(o.Context, offset, int64(len(p)))
	if err != nil {
		return 0, err
	}
	defer rdr.Close()

	return rdr.Read(p)
}

// Close satisfies io.Closer. The streaming reader, if one was opened, is
// released; o.Closer is then invoked when set.
func (o *GSReaderAtCloser) Close() error {
	var err error

	if o.Reader != nil {
		err = o.Reader.Close()
	}

	if o.Closer != nil {
		if closerErr := (*o.Closer)(); err == nil {
			err = closerErr
		}
	}

	return err
}

// MaybeOpenFromGoogleStorage opens path for reading and reports its size in
// bytes. If path starts with gs://, it is fetched via the given storage
// client (which must be non-nil in that case); otherwise it is opened as a
// local file.
func MaybeOpenFromGoogleStorage(path string, client *storage.Client) (ReaderAtCloser, int64, error) {
	if strings.HasPrefix(path, "gs://") {
		// Detect the bucket and the path to the actual file
		pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
		if len(pathParts) != 2 {
			return nil, 0, fmt.Errorf("Tried to split your google storage path into 2 parts, but got %d: %v", len(pathParts), pathParts)
		}
		bucketName := pathParts[0]
		pathName := pathParts[1]

		// Open the bucket with default credentials
		wrappedHandle := &GSReaderAtCloser{
			ObjectHandle: client.Bucket(bucketName).Object(pathName),
			Context:      context.Background(),
		}

		// Make a hard call to get the filesize
		attrs, err := wrappedHandle.ObjectHandle.Attrs(wrappedHandle.Context)
		if err != nil {
			return nil, 0, pfx.Err(fmt.Errorf("%s: %s", path, err))
		}

		return wrappedHandle, attrs.Size, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return f, 0, err
	}
	fstat, err := f.Stat()
	if err != nil {
		return f, 0, err
	}
	return f, fstat.Size(), nil
}

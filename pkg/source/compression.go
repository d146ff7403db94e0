package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression is the outer encoding wrapped around a volume file
type Compression string

const (
	None   Compression = ""
	Gzip   Compression = "gzip"
	Zstd   Compression = "zstd"
	Snappy Compression = "snappy"
)

// CompressionFor picks the encoding from the file suffix: .gz, .zst or .sz.
// Anything else is read as is.
func CompressionFor(path string) Compression {
	switch lower := strings.ToLower(path); {
	case strings.HasSuffix(lower, ".gz"):
		return Gzip
	case strings.HasSuffix(lower, ".zst"):
		return Zstd
	case strings.HasSuffix(lower, ".sz"):
		return Snappy
	}
	return None
}

// NewReader wraps in with the decoder for c.
func NewReader(in io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case None:
		return io.NopCloser(in), nil
	case Gzip:
		return gzip.NewReader(in)
	case Zstd:
		zr, err := zstd.NewReader(in)
		if err != nil {
			return nil, err
		}
		return zstdReader{zr}, nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(in)), nil
	default:
		return nil, fmt.Errorf("%w: compression %q", ErrUnsupportedFormat, string(c))
	}
}

// NewWriter wraps out with the encoder for c. Closing the returned writer
// flushes the encoder but leaves out open.
func NewWriter(out io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case None:
		return nopWriteCloser{out}, nil
	case Gzip:
		return gzip.NewWriter(out), nil
	case Zstd:
		return zstd.NewWriter(out)
	case Snappy:
		return snappy.NewBufferedWriter(out), nil
	default:
		return nil, fmt.Errorf("%w: compression %q", ErrUnsupportedFormat, string(c))
	}
}

type zstdReader struct {
	*zstd.Decoder
}

func (z zstdReader) Close() error {
	z.Decoder.Close()
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

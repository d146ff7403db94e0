// Package source loads raw volumes from disk and produces synthetic ones.
//
// The on-disk format is the PVM family: a short text header followed by
// interleaved 8-bit samples. A voxel with more than one byte is stored as
// that many components, most significant byte first.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/spatial/r3"

	"volslice/internal/logging"
	"volslice/internal/models"
	"volslice/pkg/volume"
)

var (
	// ErrUnsupportedFormat is returned for files that are not PVM volumes.
	ErrUnsupportedFormat = errors.New("unsupported volume format")

	// ErrCompressedPVM is returned for DDS-encoded PVM files, which need
	// the external codec to expand.
	ErrCompressedPVM = errors.New("DDS-compressed PVM volumes are not supported")
)

// maxSamples guards against headers that would allocate absurd buffers.
const maxSamples = 1 << 32

// Format is the PVM header revision
type Format string

const (
	PVM1 Format = "PVM"
	PVM2 Format = "PVM2"
	PVM3 Format = "PVM3"
)

// Raw is an undecoded volume: its header and the interleaved bytes.
type Raw struct {
	Header volume.Header
	Data   []byte
}

// Volume normalizes the raw bytes into a volume.
func (r *Raw) Volume() (*volume.Volume, error) {
	return volume.New(r.Header, r.Data)
}

// Open reads a PVM volume from path, decompressing by suffix.
func Open(path string) (*volume.Volume, error) {
	tlog := logging.NewTimeLog()
	raw, err := OpenRaw(path)
	if err != nil {
		return nil, err
	}
	vol, err := raw.Volume()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tlog.Debugf("loaded %s (%s, %d components, %s)", path, vol.Extents(), vol.Components(),
		humanize.Bytes(uint64(vol.SizeBytes())))
	return vol, nil
}

// OpenRaw reads the header and bytes of a PVM file without normalizing.
func OpenRaw(path string) (*Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := NewReader(f, CompressionFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer r.Close()

	raw, err := ReadRaw(r, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}

// ReadPVM parses an uncompressed PVM stream into a volume named name.
func ReadPVM(r io.Reader, name string) (*volume.Volume, error) {
	raw, err := ReadRaw(r, name)
	if err != nil {
		return nil, err
	}
	return raw.Volume()
}

// ReadRaw parses the header and reads exactly width*height*depth*components
// bytes. Trailing PVM3 description strings are ignored.
func ReadRaw(r io.Reader, name string) (*Raw, error) {
	br := bufio.NewReader(r)
	magic, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrUnsupportedFormat, err)
	}
	magic = strings.TrimSpace(magic)

	var format Format
	switch magic {
	case string(PVM1), string(PVM2), string(PVM3):
		format = Format(magic)
	case "DDS v3d", "DDS v3e":
		return nil, ErrCompressedPVM
	default:
		return nil, fmt.Errorf("%w: magic %q", ErrUnsupportedFormat, magic)
	}

	hdr := volume.Header{Name: name, Spacing: r3.Vec{X: 1, Y: 1, Z: 1}}
	dims, err := readInts(br, 3)
	if err != nil {
		return nil, err
	}
	hdr.Extents = models.Extents{X: dims[0], Y: dims[1], Z: dims[2]}

	if format != PVM1 {
		if hdr.Spacing, err = readSpacing(br); err != nil {
			return nil, err
		}
	}
	comps, err := readInts(br, 1)
	if err != nil {
		return nil, err
	}
	hdr.Components = comps[0]

	if !hdr.Extents.Valid() || hdr.Components < 1 {
		return nil, fmt.Errorf("%w: extents %s with %d components", volume.ErrInvalidVolume, hdr.Extents, hdr.Components)
	}
	n := uint64(hdr.Extents.X) * uint64(hdr.Extents.Y) * uint64(hdr.Extents.Z) * uint64(hdr.Components)
	if n > maxSamples {
		return nil, fmt.Errorf("%w: %d samples exceeds limit", volume.ErrInvalidVolume, n)
	}

	data := make([]byte, n)
	if _, err := io.ReadFull(br, data); err != nil {
		return nil, fmt.Errorf("%w: reading %d samples: %v", volume.ErrInvalidVolume, n, err)
	}
	return &Raw{Header: hdr, Data: data}, nil
}

func readSpacing(br *bufio.Reader) (r3.Vec, error) {
	var s [3]float64
	for i := range s {
		tok, err := token(br)
		if err != nil {
			return r3.Vec{}, err
		}
		if s[i], err = strconv.ParseFloat(tok, 64); err != nil {
			return r3.Vec{}, fmt.Errorf("%w: spacing %q", ErrUnsupportedFormat, tok)
		}
	}
	return r3.Vec{X: s[0], Y: s[1], Z: s[2]}, nil
}

func readInts(br *bufio.Reader, n int) ([]int, error) {
	out := make([]int, n)
	for i := range out {
		tok, err := token(br)
		if err != nil {
			return nil, err
		}
		if out[i], err = strconv.Atoi(tok); err != nil {
			return nil, fmt.Errorf("%w: header field %q", ErrUnsupportedFormat, tok)
		}
	}
	return out, nil
}

// token skips leading whitespace and reads one field. The whitespace byte
// that ends the field is consumed, so after the last header field the
// reader is positioned at the first sample.
func token(br *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", fmt.Errorf("%w: truncated header", ErrUnsupportedFormat)
		}
		if isSpace(b) {
			if sb.Len() > 0 {
				return sb.String(), nil
			}
			continue
		}
		if sb.Len() >= 64 {
			return "", fmt.Errorf("%w: header field too long", ErrUnsupportedFormat)
		}
		sb.WriteByte(b)
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\r' || b == '\t'
}

// WritePVM writes raw as a PVM2 stream, or PVM when the spacing is unit.
func WritePVM(w io.Writer, raw *Raw) error {
	hdr := raw.Header
	if err := hdr.Validate(len(raw.Data)); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	ext := hdr.Extents
	if hdr.Spacing == (r3.Vec{X: 1, Y: 1, Z: 1}) {
		fmt.Fprintf(bw, "%s\n%d %d %d\n%d\n", PVM1, ext.X, ext.Y, ext.Z, hdr.Components)
	} else {
		fmt.Fprintf(bw, "%s\n%d %d %d\n%s %s %s\n%d\n", PVM2, ext.X, ext.Y, ext.Z,
			formatFloat(hdr.Spacing.X), formatFloat(hdr.Spacing.Y), formatFloat(hdr.Spacing.Z), hdr.Components)
	}
	if _, err := bw.Write(raw.Data); err != nil {
		return err
	}
	return bw.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Create writes raw to path, compressing by suffix.
func Create(path string, raw *Raw) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w, err := NewWriter(f, CompressionFor(path))
	if err != nil {
		f.Close()
		return err
	}
	if err := WritePVM(w, raw); err != nil {
		w.Close()
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logging.Debugf("wrote %s (%s)", path, describe(raw))
	return nil
}

func describe(raw *Raw) string {
	return fmt.Sprintf("%s x %d, %s", raw.Header.Extents, raw.Header.Components, humanize.Bytes(uint64(len(raw.Data))))
}

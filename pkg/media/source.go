package media

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

var (
	ErrNotFound = errors.New("media: not found")
	ErrFrame    = errors.New("media: wrong frame")
)

// FrameSource returns next payload on each call.
// Empty payload with nil error means end of stream.
type FrameSource interface {
	Next() ([]byte, error)
}

type Opener interface {
	Open(name string) (FrameSource, error)
}

// PrefixSize - each frame in File starts with 5 ASCII digits of frame length
const PrefixSize = 5

// File reads frames in format: `00042` + 42 bytes of frame + `01234` + ...
type File struct {
	r     io.Reader
	frame int
}

func NewFile(r io.Reader) *File {
	return &File{r: r}
}

func (f *File) Next() ([]byte, error) {
	prefix := make([]byte, PrefixSize)
	if _, err := io.ReadFull(f.r, prefix); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, nil
		}
		return nil, err
	}

	size, err := strconv.ParseUint(string(prefix), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: length %q", ErrFrame, prefix)
	}

	b := make([]byte, size)
	if _, err = io.ReadFull(f.r, b); err != nil {
		return nil, fmt.Errorf("%w: frame %d: %v", ErrFrame, f.frame+1, err)
	}

	f.frame++

	return b, nil
}

// Frame returns number of the last read frame
func (f *File) Frame() int {
	return f.frame
}

func (f *File) Close() error {
	if c, ok := f.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Dir opens media files from local folder. Name `clip.bin` will also
// match `clip.bin.zst` compressed with zstd.
type Dir string

func (d Dir) Open(name string) (FrameSource, error) {
	name = strings.TrimPrefix(name, "/")
	if !fs.ValidPath(name) || name == "." {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	path := filepath.Join(string(d), filepath.FromSlash(name))

	f, err := os.Open(path)
	if err == nil {
		if fi, _ := f.Stat(); fi != nil && fi.IsDir() {
			_ = f.Close()
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return NewFile(f), nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if f, err = os.Open(path + ".zst"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return NewFile(&zstdFile{Decoder: dec, file: f}), nil
}

type zstdFile struct {
	*zstd.Decoder
	file *os.File
}

func (z *zstdFile) Close() error {
	z.Decoder.Close()
	return z.file.Close()
}

package boot

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"unicode/utf8"

	"github.com/raccog/caliga-bootloader/boot/alloc"
	"github.com/raccog/caliga-bootloader/internal/format"
	"github.com/raccog/caliga-bootloader/internal/logger"
)

// MaxOpenFiles is the number of descriptors the boot volume can have open.
const MaxOpenFiles = 5

// Path limits of the boot volume, in UCS-2 characters, without terminator.
const (
	MaxPathLen      = 32760
	MaxComponentLen = 255
)

// Open-file record layout inside its slab (little-endian).
const (
	fileSizeOffset = 0x00
	filePosOffset  = 0x08
	fileRecordLen  = 0x10
)

var (
	ErrTooManyFiles      = errors.New("boot: too many open files")
	ErrPathTooLong       = errors.New("boot: path too long")
	ErrComponentTooLong  = errors.New("boot: path component too long")
	ErrInvalidCharset    = errors.New("boot: path not representable in UCS-2")
	ErrFileNotFound      = errors.New("boot: file not found")
	ErrDirectoryNotFound = errors.New("boot: directory not found")
	ErrIsFile            = errors.New("boot: path component is a file")
	ErrIsDirectory       = errors.New("boot: path is a directory")
	ErrBadDescriptor     = errors.New("boot: bad file descriptor")
)

// Descriptor identifies an open file.
type Descriptor int

type openFile struct {
	path string
	f    fs.File
	rec  *alloc.Box // size and position
}

// FileTable reads files from the boot volume. Paths are absolute from the
// volume root; "/" or "\" separates components and empty components are
// skipped.
// Files are opened read-only.
type FileTable struct {
	fsys  fs.FS
	pool  Pool
	slots [MaxOpenFiles]*openFile
}

// NewFileTable returns a table over fsys. A nil fsys is an empty volume.
func NewFileTable(fsys fs.FS, pool Pool) *FileTable {
	return &FileTable{fsys: fsys, pool: pool}
}

// Open opens the regular file at path.
func (t *FileTable) Open(path string) (Descriptor, error) {
	comps, err := splitPath(path)
	if err != nil {
		return 0, err
	}
	slot := -1
	for i, f := range t.slots {
		if f == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return 0, ErrTooManyFiles
	}
	if t.fsys == nil || len(comps) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	name := ""
	for i, c := range comps {
		if name == "" {
			name = c
		} else {
			name += "/" + c
		}
		last := i == len(comps)-1

		info, err := fs.Stat(t.fsys, name)
		switch {
		case errors.Is(err, fs.ErrNotExist) && last:
			return 0, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		case errors.Is(err, fs.ErrNotExist):
			return 0, fmt.Errorf("%w: %s", ErrDirectoryNotFound, name)
		case err != nil:
			return 0, fmt.Errorf("boot: open %s: %w", path, err)
		case last && info.IsDir():
			return 0, fmt.Errorf("%w: %s", ErrIsDirectory, path)
		case !last && !info.IsDir():
			return 0, fmt.Errorf("%w: %s", ErrIsFile, name)
		}
	}

	f, err := t.fsys.Open(name)
	if err != nil {
		return 0, fmt.Errorf("boot: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return 0, fmt.Errorf("boot: stat %s: %w", path, err)
	}

	rec := make([]byte, fileRecordLen)
	format.PutU64(rec, fileSizeOffset, uint64(info.Size()))
	box, err := alloc.NewBox(t.pool, t.pool.Layout(), rec)
	if err != nil {
		f.Close()
		return 0, fmt.Errorf("boot: open %s: %w", path, err)
	}

	t.slots[slot] = &openFile{path: name, f: f, rec: box}
	logger.Debug("file opened", "path", name, "fd", slot, "size", info.Size())
	return Descriptor(slot), nil
}

// Size returns the size of the open file.
func (t *FileTable) Size(d Descriptor) (uint64, error) {
	of, err := t.get(d)
	if err != nil {
		return 0, err
	}
	return format.ReadU64(of.rec.Bytes(), fileSizeOffset), nil
}

// Seek sets the read position. Positions past the end are allowed; reads
// there return io.EOF.
func (t *FileTable) Seek(d Descriptor, pos uint64) error {
	of, err := t.get(d)
	if err != nil {
		return err
	}
	format.PutU64(of.rec.Bytes(), filePosOffset, pos)
	return nil
}

// Read reads from the current position and advances it.
func (t *FileTable) Read(d Descriptor, p []byte) (int, error) {
	of, err := t.get(d)
	if err != nil {
		return 0, err
	}
	rec := of.rec.Bytes()
	size := format.ReadU64(rec, fileSizeOffset)
	pos := format.ReadU64(rec, filePosOffset)
	if pos >= size {
		return 0, io.EOF
	}
	if rem := size - pos; uint64(len(p)) > rem {
		p = p[:rem]
	}

	var n int
	switch f := of.f.(type) {
	case io.ReaderAt:
		n, err = f.ReadAt(p, int64(pos))
	case io.ReadSeeker:
		if _, err = f.Seek(int64(pos), io.SeekStart); err == nil {
			n, err = io.ReadFull(f, p)
		}
	default:
		return 0, fmt.Errorf("boot: read %s: file is not seekable", of.path)
	}
	format.PutU64(rec, filePosOffset, pos+uint64(n))
	if errors.Is(err, io.EOF) && n == len(p) {
		err = nil
	}
	return n, err
}

// Close closes the file and releases its descriptor.
func (t *FileTable) Close(d Descriptor) error {
	of, err := t.get(d)
	if err != nil {
		return err
	}
	t.slots[d] = nil
	of.rec.Free()
	logger.Debug("file closed", "path", of.path, "fd", int(d))
	return of.f.Close()
}

// CloseAll closes every open file.
func (t *FileTable) CloseAll() error {
	var errs []error
	for i, of := range t.slots {
		if of != nil {
			errs = append(errs, t.Close(Descriptor(i)))
		}
	}
	return errors.Join(errs...)
}

// OpenCount returns the number of open descriptors.
func (t *FileTable) OpenCount() int {
	n := 0
	for _, of := range t.slots {
		if of != nil {
			n++
		}
	}
	return n
}

func (t *FileTable) get(d Descriptor) (*openFile, error) {
	if d < 0 || int(d) >= MaxOpenFiles || t.slots[d] == nil {
		return nil, fmt.Errorf("%w: %d", ErrBadDescriptor, int(d))
	}
	return t.slots[d], nil
}

// splitPath checks path against the volume's charset and length limits and
// returns its non-empty components.
func splitPath(path string) ([]string, error) {
	if !utf8.ValidString(path) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCharset, path)
	}
	for _, r := range path {
		if r > 0xFFFF || r == 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCharset, path)
		}
	}
	if utf8.RuneCountInString(path) > MaxPathLen {
		return nil, ErrPathTooLong
	}

	var comps []string
	for _, c := range strings.FieldsFunc(path, isSeparator) {
		if c == "." || c == ".." {
			return nil, fmt.Errorf("%w: %q", ErrFileNotFound, path)
		}
		if utf8.RuneCountInString(c) > MaxComponentLen {
			return nil, fmt.Errorf("%w: %.32q...", ErrComponentTooLong, c)
		}
		comps = append(comps, c)
	}
	return comps, nil
}

func isSeparator(r rune) bool { return r == '/' || r == '\\' }

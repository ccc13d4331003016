package epubfont

import (
	"archive/zip"
	"compress/flate"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"strings"
)

// TempSuffix is appended to the original path to name the temporary file
// ReplaceFile writes before it replaces the original.
const TempSuffix = ".opt"

// zipVersion20 is the version needed to extract a stored or deflated entry.
const zipVersion20 = 20

// renameFile is replaced in tests to simulate a crash before the original
// file is replaced.
var renameFile = os.Rename

// Rewrite writes a copy of the archive to w, substituting the content of
// every entry named in fonts.
//
// The "mimetype" entry is written first and stored uncompressed with its
// original bytes. All other entries follow in their original order,
// compressed with Deflate at the given level (see compress/flate). Entry
// names and modification times are kept.
func Rewrite(a *Archive, w io.Writer, fonts map[string][]byte, level int) error {
	if level < flate.HuffmanOnly || level > flate.BestCompression {
		return fmt.Errorf("epubfont: invalid compression level %d", level)
	}
	if err := a.checkRewritable(fonts); err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	mimeIndex := -1
	if f, ok := a.zipExact[mimetypeName]; ok {
		mimeIndex = a.indexOf(f)
		if err := writeStored(zw, f); err != nil {
			return err
		}
	}

	substituted := 0
	for i, f := range a.zip.File {
		if i == mimeIndex {
			continue
		}
		data, ok := fonts[f.Name]
		if ok {
			substituted++
		}
		if err := copyEntry(zw, f, data, ok); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("epubfont: finish archive: %w", err)
	}
	tracer().Debugf("rewrote %d entries, %d substituted", len(a.zip.File), substituted)
	return nil
}

// checkRewritable refuses archives in which an entry the rewriter must
// place first or substitute occurs more than once, and font maps naming
// entries the archive does not have.
func (a *Archive) checkRewritable(fonts map[string][]byte) error {
	if a.isDuplicate(mimetypeName) {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, mimetypeName)
	}
	for _, e := range a.entries {
		if IsFontResource(e.Name) && a.isDuplicate(e.Name) {
			return fmt.Errorf("%w: %s", ErrDuplicateEntry, e.Name)
		}
	}
	for name := range fonts {
		if _, ok := a.zipExact[name]; !ok {
			return fmt.Errorf("%w: %s", ErrFileNotFound, name)
		}
		if a.isDuplicate(name) {
			return fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
		}
	}
	return nil
}

// indexOf returns the archive position of f.
func (a *Archive) indexOf(f *zip.File) int {
	for i, g := range a.zip.File {
		if g == f {
			return i
		}
	}
	return -1
}

// writeStored copies f uncompressed, byte for byte. The header is written
// raw with CRC and sizes up front and without extra fields, so the content
// starts at a fixed offset when f is the first entry.
func writeStored(zw *zip.Writer, f *zip.File) error {
	data, err := readZipFile(f)
	if err != nil {
		return err
	}
	fw, err := zw.CreateRaw(&zip.FileHeader{
		Name:               f.Name,
		Method:             zip.Store,
		CreatorVersion:     zipVersion20,
		ReaderVersion:      zipVersion20,
		ModifiedTime:       f.ModifiedTime,
		ModifiedDate:       f.ModifiedDate,
		CRC32:              crc32.ChecksumIEEE(data),
		CompressedSize64:   uint64(len(data)),
		UncompressedSize64: uint64(len(data)),
	})
	if err != nil {
		return fmt.Errorf("epubfont: write %s: %w", f.Name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("epubfont: copy %s: %w", f.Name, err)
	}
	return nil
}

// copyEntry writes f to zw, with data as its content if replace is set and
// the original content otherwise. Directory entries are stored empty.
func copyEntry(zw *zip.Writer, f *zip.File, data []byte, replace bool) error {
	hdr := &zip.FileHeader{
		Name:           f.Name,
		Method:         zip.Deflate,
		Modified:       f.Modified,
		Comment:        f.Comment,
		CreatorVersion: f.CreatorVersion,
		ExternalAttrs:  f.ExternalAttrs,
	}
	if strings.HasSuffix(f.Name, "/") {
		hdr.Method = zip.Store
		_, err := zw.CreateHeader(hdr)
		return err
	}
	fw, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("epubfont: write %s: %w", f.Name, err)
	}
	if replace {
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("epubfont: write %s: %w", f.Name, err)
		}
		return nil
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("epubfont: open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()
	if _, err := io.Copy(fw, rc); err != nil {
		return fmt.Errorf("epubfont: copy %s: %w", f.Name, err)
	}
	return nil
}

// ReplaceFile rewrites the archive (see Rewrite) and replaces the file at
// path with the result. The archive must have been opened from path; it is
// closed before the replacement.
//
// The new archive is first written to path+TempSuffix, synced and closed.
// Until it is renamed over the original, any failure leaves the original
// file untouched and removes the temporary file.
func ReplaceFile(a *Archive, path string, fonts map[string][]byte, level int) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("epubfont: stat %s: %w", path, err)
	}

	tmp := path + TempSuffix
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return fmt.Errorf("epubfont: create %s: %w", tmp, err)
	}
	fail := func(err error) error {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := Rewrite(a, f, fonts, level); err != nil {
		return fail(err)
	}
	if err := f.Sync(); err != nil {
		return fail(fmt.Errorf("epubfont: sync %s: %w", tmp, err))
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("epubfont: close %s: %w", tmp, err)
	}

	// The source must be released before the rename on platforms that lock
	// open files.
	if err := a.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("epubfont: close %s: %w", path, err)
	}
	if err := os.Chmod(tmp, fi.Mode().Perm()); err != nil {
		tracer().Infof("cannot copy file mode to %s: %v", tmp, err)
	}

	if err := renameFile(tmp, path); err != nil {
		tracer().Infof("rename over %s failed (%v), removing original first", path, err)
		if rmErr := os.Remove(path); rmErr != nil {
			os.Remove(tmp)
			return fmt.Errorf("epubfont: replace %s: %w", path, err)
		}
		if err := renameFile(tmp, path); err != nil {
			return fmt.Errorf("epubfont: replace %s, new content left in %s: %w", path, tmp, err)
		}
	}
	tracer().Infof("replaced %s", path)
	return nil
}

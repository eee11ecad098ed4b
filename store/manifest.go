package store

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/conan-go/conancore/utils"
)

// Manifest is the file-list identity of an exported recipe or a built
// package (spec §6): sorted "relpath: sha1hex [sha256hex]" lines followed
// by a trailing "time: <unix-ts>" line. SHA-1 remains the canonical hash
// package_id and export-conflict comparisons are defined over (spec §3);
// SHA-256 is recorded alongside the same way the teacher's
// entities.Checksum carries both, computed in the same single read pass
// via utils.GetFileChecksums/CalcChecksums's AsyncMultiWriter.
type Manifest struct {
	Files  map[string]string // relpath -> sha1hex
	Sha256 map[string]string // relpath -> sha256hex
	Time   int64             // unix seconds
}

// ComputeManifest walks dir and hashes every regular file under it,
// producing a Manifest with Time left at zero. WriteManifest records
// whatever Time the caller has set; the exporter and the installer write
// the computed manifest with Time still zero.
func ComputeManifest(dir string) (Manifest, error) {
	files := make(map[string]string)
	sha256s := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		_, sha1sum, sha256sum, err := utils.GetFileChecksums(path, utils.SHA1, utils.SHA256)
		if err != nil {
			return err
		}
		relSlash := filepath.ToSlash(rel)
		files[relSlash] = sha1sum
		sha256s[relSlash] = sha256sum
		return nil
	})
	if err != nil {
		return Manifest{}, err
	}
	return Manifest{Files: files, Sha256: sha256s}, nil
}

// Text renders the manifest's canonical textual form. A file's sha256 is
// appended after its sha1 when known, so manifests written before this
// field existed still round-trip.
func (m Manifest) Text() string {
	paths := make([]string, 0, len(m.Files))
	for p := range m.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		if sum256 := m.Sha256[p]; sum256 != "" {
			fmt.Fprintf(&b, "%s: %s %s\n", p, m.Files[p], sum256)
		} else {
			fmt.Fprintf(&b, "%s: %s\n", p, m.Files[p])
		}
	}
	fmt.Fprintf(&b, "time: %d\n", m.Time)
	return b.String()
}

// Equal reports whether two manifests describe identical file content,
// ignoring Time - the basis for export-conflict and upload-diff checks.
// Only the canonical sha1 is compared: it is the hash spec §3 defines
// identity over, and a manifest read back from an older on-disk form may
// carry no sha256 at all.
func (m Manifest) Equal(other Manifest) bool {
	if len(m.Files) != len(other.Files) {
		return false
	}
	for p, sum := range m.Files {
		if other.Files[p] != sum {
			return false
		}
	}
	return true
}

// WriteManifest writes m's canonical text form to path.
func WriteManifest(path string, m Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if _, err := w.WriteString(m.Text()); err != nil {
		return err
	}
	return w.Flush()
}

// ReadManifest parses a manifest file previously written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	m := Manifest{Files: make(map[string]string), Sha256: make(map[string]string)}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "time" {
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Manifest{}, fmt.Errorf("parsing manifest time %q: %w", value, err)
			}
			m.Time = ts
			continue
		}
		fields := strings.Fields(value)
		if len(fields) == 0 {
			continue
		}
		m.Files[key] = fields[0]
		if len(fields) > 1 {
			m.Sha256[key] = fields[1]
		}
	}
	return m, nil
}

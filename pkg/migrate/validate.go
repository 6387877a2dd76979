package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

var migrationFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	upMarker    = "-- +goose Up"
	downMarker  = "-- +goose Down"
	beginMarker = "-- +goose StatementBegin"
	endMarker   = "-- +goose StatementEnd"
)

// migrationFile is one versioned SQL file found on disk.
type migrationFile struct {
	Version int64
	Name    string
}

// ValidateDir checks every .sql file in dir and reports all problems at once:
// filename format, duplicate versions, missing or misordered Up/Down sections
// and unbalanced statement blocks.
func ValidateDir(dir string) error {
	files, errs, err := scanDir(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 && errs == nil {
		return fmt.Errorf("no migrations found in %q", dir)
	}

	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f.Name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %q: %w", f.Name, err))
			continue
		}
		errs = multierr.Append(errs, checkSections(f.Name, string(data)))
	}
	return errs
}

// LatestVersion returns the highest migration version in dir, or zero when
// the directory is empty or missing.
func LatestVersion(dir string) (int64, error) {
	files, problems, err := scanDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return 0, nil
	case err != nil:
		return 0, err
	case problems != nil:
		return 0, problems
	}
	if len(files) == 0 {
		return 0, nil
	}
	return files[len(files)-1].Version, nil
}

// scanDir lists the well-formed migrations in dir sorted by version. Bad
// filenames and duplicate versions come back as problems, next to the files
// that passed; err is set only when dir cannot be read.
func scanDir(dir string) (files []migrationFile, problems error, err error) {
	if dir == "" {
		return nil, nil, fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	seen := map[int64]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		m := migrationFileRe.FindStringSubmatch(name)
		if m == nil {
			problems = multierr.Append(problems, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name))
			continue
		}
		version, _ := strconv.ParseInt(m[1], 10, 64)
		if prev, dup := seen[version]; dup {
			problems = multierr.Append(problems, fmt.Errorf("duplicate migration version %d in %q and %q", version, prev, name))
			continue
		}
		seen[version] = name
		files = append(files, migrationFile{Version: version, Name: name})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, problems, nil
}

func checkSections(name, body string) error {
	up := strings.Index(body, upMarker)
	down := strings.Index(body, downMarker)

	var errs error
	switch {
	case up < 0:
		errs = multierr.Append(errs, fmt.Errorf("migration %q missing %q", name, upMarker))
	case down < 0:
		errs = multierr.Append(errs, fmt.Errorf("migration %q missing %q", name, downMarker))
	case down < up:
		errs = multierr.Append(errs, fmt.Errorf("migration %q declares Down before Up", name))
	}

	if begins, ends := strings.Count(body, beginMarker), strings.Count(body, endMarker); begins != ends {
		errs = multierr.Append(errs, fmt.Errorf("migration %q has %d StatementBegin but %d StatementEnd", name, begins, ends))
	}
	return errs
}

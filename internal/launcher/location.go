package launcher

import (
	"os"
	"path/filepath"
	"strconv"
)

// NextResFolder returns <dir>/<prefix><N> for the smallest N >= 1 that does
// not exist yet. Unreadable candidates count as free. The folder is not created.
func NextResFolder(dir, prefix string) string {
	for i := 1; ; i++ {
		candidate := filepath.Join(dir, prefix+strconv.Itoa(i))
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
	}
}

// apiReportLocation picks the report folder of a service test. The second
// return value is false when a generated folder could not be created.
func apiReportLocation(d *Descriptor) (string, bool) {
	switch {
	case d.ReportPath != "":
		return d.ReportPath, true
	case d.ReportBaseDirectory != "":
		loc := NextResFolder(d.ReportBaseDirectory, d.ShortName()+"_")
		if err := os.MkdirAll(loc, 0o755); err != nil {
			return loc, false
		}
		return loc, true
	default:
		return NextResFolder(d.TestPath, "Report"), true
	}
}

// parallelReportLocation returns the Res<N> folder the parallel runner will
// write its next report into.
func parallelReportLocation(d *Descriptor) string {
	var root string
	switch {
	case d.ReportPath != "":
		root = d.ReportPath
	case d.ReportBaseDirectory != "":
		root = filepath.Join(d.ReportBaseDirectory, d.ShortName()+"_ParallelReport")
	default:
		root = filepath.Join(d.TestPath, "ParallelReport")
	}
	return NextResFolder(root, "Res")
}

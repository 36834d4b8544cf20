package repo

import (
	"io/fs"

	"github.com/odvcencio/bkk/pkg/object"
)

func modeFromFileInfo(info fs.FileInfo) string {
	if info.Mode()&fs.ModeSymlink != 0 {
		return object.TreeModeSymlink
	}
	if info.Mode()&0o111 != 0 {
		return object.TreeModeExecutable
	}
	return object.TreeModeFile
}

func normalizeFileMode(mode string) string {
	switch mode {
	case object.TreeModeExecutable, object.TreeModeSymlink, object.TreeModeGitlink:
		return mode
	}
	return object.TreeModeFile
}

func filePermFromMode(mode string) fs.FileMode {
	if normalizeFileMode(mode) == object.TreeModeExecutable {
		return 0o755
	}
	return 0o644
}

package common

import (
	"path"
	"strings"
)

// PkgAlias returns the package alias (last element of path) for a given package path.
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}

// SplitQualified splits "example.com/pkg.Name" into its package path and type name.
// The package path may itself contain dots, so only the last dot after the last slash counts.
func SplitQualified(qualified string) (pkgPath, name string) {
	slash := strings.LastIndexByte(qualified, '/')

	dot := strings.LastIndexByte(qualified[slash+1:], '.')
	if dot < 0 {
		return "", qualified
	}

	dot += slash + 1

	return qualified[:dot], qualified[dot+1:]
}

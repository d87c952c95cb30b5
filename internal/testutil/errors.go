package testutil

import "errors"

// ErrPackageNotFound is returned by PackageInspector for unknown packages.
var ErrPackageNotFound = errors.New("testutil: package not found")

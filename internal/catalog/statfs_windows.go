//go:build windows

package catalog

import "errors"

func statfsFree(path string) (uint64, error) {
	return 0, errors.New("catalog: free space reporting not supported on windows")
}

//go:build !linux && !darwin

package util

// detectPlatformStorage assumes local storage where detection is unsupported
func detectPlatformStorage(path string) (*StorageInfo, error) {
	return &StorageInfo{}, nil
}

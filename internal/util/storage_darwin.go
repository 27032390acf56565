//go:build darwin

package util

import "syscall"

func detectPlatformStorage(path string) (*StorageInfo, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return nil, err
	}

	info := &StorageInfo{MountPath: cString(stat.Mntonname[:])}
	if fsType := cString(stat.Fstypename[:]); isNetworkFSType(fsType) || fsType == "osxfuse" {
		info.IsNetwork = true
		info.Protocol = fsType
	}
	return info, nil
}

// cString converts a NUL-terminated int8 array to a string
func cString(arr []int8) string {
	b := make([]byte, 0, len(arr))
	for _, c := range arr {
		if c == 0 {
			break
		}
		b = append(b, byte(c))
	}
	return string(b)
}

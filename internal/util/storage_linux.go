//go:build linux

package util

import (
	"os"
	"syscall"
)

// Kernel superblock magic numbers of network filesystems
var networkMagic = map[uint32]string{
	0x6969:     "nfs",
	0xff534d42: "cifs",
	0x517b:     "smb",
	0xfe534d42: "smb2",
	0x564c:     "ncp",
}

func detectPlatformStorage(path string) (*StorageInfo, error) {
	info := &StorageInfo{}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return nil, err
	}
	if proto, ok := networkMagic[uint32(stat.Type)]; ok {
		info.IsNetwork = true
		info.Protocol = proto
	}

	// The mount table also catches FUSE network mounts and gives the mount point
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return info, nil
	}
	defer f.Close()

	mounts, err := parseMounts(f)
	if err != nil {
		return info, nil
	}
	if m, ok := mountFor(mounts, path); ok {
		info.MountPath = m.point
		if isNetworkFSType(m.fsType) {
			info.IsNetwork = true
			info.Protocol = m.fsType
		}
	}
	return info, nil
}

package util

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// StorageInfo describes the filesystem holding a path
type StorageInfo struct {
	IsNetwork bool   // Whether the filesystem is network-mounted
	Protocol  string // nfs, cifs, smbfs, ... or empty if local
	MountPath string // Mount point of the filesystem, when known
}

// networkFSTypes are filesystem type names that live on another machine
var networkFSTypes = []string{
	"nfs", "cifs", "smb", "smbfs", "smb2", "ncpfs", "afpfs", "webdav", "fuse.sshfs", "fuse.rclone",
}

// DetectStorage reports whether path lives on a network filesystem. The
// path does not have to exist yet; its nearest existing parent is checked,
// so a database that will be created on first run can be inspected.
func DetectStorage(path string) (*StorageInfo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	existing, err := nearestExisting(absPath)
	if err != nil {
		return nil, err
	}
	return detectPlatformStorage(existing)
}

// StoreLocationWarning returns a warning when a SQLite database at path
// would be unreliable: WAL mode needs shared memory that network
// filesystems do not provide. It returns "" for local storage.
func StoreLocationWarning(path string) string {
	info, err := DetectStorage(path)
	if err != nil || !info.IsNetwork {
		return ""
	}
	where := info.Protocol
	if info.MountPath != "" {
		where += " mount " + info.MountPath
	}
	return fmt.Sprintf("%s is on a network filesystem (%s); SQLite WAL locking is unreliable there", path, where)
}

func nearestExisting(path string) (string, error) {
	for {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
		parent := filepath.Dir(path)
		if parent == path {
			return "", fmt.Errorf("no existing parent for %s", path)
		}
		path = parent
	}
}

func isNetworkFSType(fsType string) bool {
	fsType = strings.ToLower(fsType)
	for _, t := range networkFSTypes {
		if fsType == t || strings.HasPrefix(fsType, t) {
			return true
		}
	}
	return false
}

// mount is one line of a mount table
type mount struct {
	point  string
	fsType string
}

// parseMounts reads a /proc/mounts style table:
// device mountpoint fstype options dump pass
func parseMounts(r io.Reader) ([]mount, error) {
	var mounts []mount
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		// Spaces in mount points are octal-escaped
		point := strings.ReplaceAll(fields[1], `\040`, " ")
		mounts = append(mounts, mount{point: point, fsType: fields[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return mounts, nil
}

// mountFor returns the longest mount point containing path
func mountFor(mounts []mount, path string) (mount, bool) {
	var best mount
	found := false
	for _, m := range mounts {
		if !withinMount(path, m.point) {
			continue
		}
		if !found || len(m.point) > len(best.point) {
			best = m
			found = true
		}
	}
	return best, found
}

func withinMount(path, point string) bool {
	if point == "/" || path == point {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(point, "/")+"/")
}

//go:build !windows

package files

// Reparse points are an NTFS concept; Lstat already covers symlinks here.
func isReparsePoint(string) (bool, error) {
	return false, nil
}

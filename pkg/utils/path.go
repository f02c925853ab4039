package utils

import "fmt"

// RequireAbsolute validates that path is a non-empty absolute path, the
// contract spec.md §6 imposes on both the backing directory and mount point
// arguments of every overlay binary.
func RequireAbsolute(label, path string) error {
	if path == "" {
		return fmt.Errorf("%s must not be empty", label)
	}
	if path[0] != '/' {
		return fmt.Errorf("%s must be an absolute path, got %q", label, path)
	}
	return nil
}

//go:build unix

package cli

import "golang.org/x/sys/unix"

func writable(path string) error {
	return unix.Access(path, unix.W_OK)
}

func accessible(path string) error {
	return unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK)
}

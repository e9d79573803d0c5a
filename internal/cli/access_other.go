//go:build !unix

package cli

import "os"

func writable(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	return f.Close()
}

func accessible(path string) error {
	_, err := os.Stat(path)
	return err
}

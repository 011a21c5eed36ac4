package utils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// FindProjectRoot walks up from the working directory to the directory holding go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// LoadProjectEnv loads <project root>/.env for tests that talk to live services.
// A missing file is not an error; variables already set in the environment win.
func LoadProjectEnv() error {
	root, err := FindProjectRoot()
	if err != nil {
		return err
	}
	err = godotenv.Load(filepath.Join(root, ".env"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

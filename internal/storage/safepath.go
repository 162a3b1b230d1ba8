package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var ErrPathTraversal = errors.New("path escapes root")

// resolveWithinRoot отображает ключ объекта в путь внутри root.
// Отвергает выход за пределы root, в том числе через существующие симлинки.
func resolveWithinRoot(root, key string) (string, error) {
	if root == "" {
		return "", errors.New("root is required")
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	rootAbs = filepath.Clean(rootAbs)

	rel := filepath.FromSlash(strings.TrimLeft(key, "/\\"))
	joined := filepath.Clean(filepath.Join(rootAbs, rel))

	if !isWithin(rootAbs, joined) || joined == rootAbs {
		return "", ErrPathTraversal
	}
	if hasSymlinkComponent(rootAbs, joined) {
		return "", ErrPathTraversal
	}
	return joined, nil
}

func hasSymlinkComponent(rootAbs, fullPath string) bool {
	rel, err := filepath.Rel(rootAbs, fullPath)
	if err != nil {
		return true
	}
	cur := rootAbs
	for _, p := range strings.Split(filepath.Clean(rel), string(filepath.Separator)) {
		if p == "" || p == "." {
			continue
		}
		cur = filepath.Join(cur, p)
		st, err := os.Lstat(cur)
		if err != nil {
			// компонента ещё нет — симлинка тоже нет
			return false
		}
		if st.Mode()&os.ModeSymlink != 0 {
			return true
		}
	}
	return false
}

func isWithin(root, candidate string) bool {
	if root == candidate {
		return true
	}
	sep := string(filepath.Separator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return strings.HasPrefix(candidate, root)
}

package compressor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DeriveOutput picks the destination for input.
//
// With no out, the file lands next to input as <name>_compressed<ext>, with a
// -1, -2, ... suffix while that name is taken. When out is an existing
// directory or ends in a separator, input's base name is placed inside it.
// Anything else is used as given.
func DeriveOutput(input, out string) string {
	if out == "" {
		ext := filepath.Ext(input)
		stem := strings.TrimSuffix(input, ext) + "_compressed"
		candidate := stem + ext
		for i := 1; exists(candidate); i++ {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		return candidate
	}

	if strings.HasSuffix(out, "/") || strings.HasSuffix(out, string(filepath.Separator)) {
		return filepath.Join(out, filepath.Base(input))
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, filepath.Base(input))
	}
	return out
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

package album

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"
)

// Discover counts the images in dir named after their 1-based page number,
// i.e. 1.ext, 2.ext, and so on. Counting stops at the first gap in the
// sequence.
func Discover(dir, ext string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("discovering images: %w", err)
	}
	suffix := "." + strings.TrimPrefix(ext, ".")

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Sort(natural.StringSlice(names))

	var n int
	for _, name := range names {
		base := strings.TrimSuffix(name, suffix)
		num, err := strconv.Atoi(base)
		if err != nil || strconv.Itoa(num) != base {
			// not named after a page number, e.g. cover.jpg or 01.jpg
			continue
		}
		if num != n+1 {
			break
		}
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("no images named 1%s found in %s: %w", suffix, dir, ErrNoPages)
	}
	return n, nil
}

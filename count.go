package epubfont

import (
	"fmt"
	"sync"
)

// CountArchive returns the number of non-whitespace characters of the
// rendered text of all content documents. TOC documents are not counted.
func CountArchive(a *Archive) (int, error) {
	total := 0
	for _, e := range a.textEntries() {
		data, err := a.ReadEntry(e.Index)
		if err != nil {
			return 0, fmt.Errorf("epubfont: read content document %s: %w", e.Name, err)
		}
		total += CountCharacters(data)
	}
	return total, nil
}

// CountFile opens the ePub at path and counts its characters.
func CountFile(path string) (int, error) {
	a, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer a.Close()
	return CountArchive(a)
}

// SplitChunks partitions items into at most n contiguous chunks of
// ceil(len/n) items each; the last chunk may be shorter. With n < 1 or no
// items the result is a single chunk holding everything.
func SplitChunks[T any](items []T, n int) [][]T {
	if n < 1 || len(items) == 0 {
		return [][]T{items}
	}
	size := (len(items) + n - 1) / n
	chunks := make([][]T, 0, n)
	for len(items) > 0 {
		take := min(size, len(items))
		chunks = append(chunks, items[:take:take])
		items = items[take:]
	}
	return chunks
}

// CountFiles counts the characters of every file in paths.
//
// The list is split into workers contiguous chunks, each counted by its own
// goroutine. If onFile is non-nil it is called as soon as a file is done,
// from the goroutine that counted it (calls are serialised). The returned
// slice is in chunk order, which is the order of paths.
func CountFiles(paths []string, workers int, onFile func(FileCount)) []FileCount {
	chunks := SplitChunks(paths, workers)
	results := make([][]FileCount, len(chunks))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for i, chunk := range chunks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counts := make([]FileCount, 0, len(chunk))
			for _, p := range chunk {
				n, err := CountFile(p)
				fc := FileCount{Path: p, Count: n, Err: err}
				if onFile != nil {
					mu.Lock()
					onFile(fc)
					mu.Unlock()
				}
				counts = append(counts, fc)
			}
			results[i] = counts
		}()
	}
	wg.Wait()

	all := make([]FileCount, 0, len(paths))
	for _, counts := range results {
		all = append(all, counts...)
	}
	return all
}

package transfer

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkConcurrentDisjointWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	sink, err := OpenSink(path)
	require.NoError(t, err)

	// 64 workers, each owning a disjoint 1 KiB range
	const workers = 64
	const blockSize = 1024
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			block := make([]byte, blockSize)
			for i := range block {
				block[i] = byte(w)
			}
			_, err := sink.WriteAt(block, int64(w)*blockSize)
			assert.NoError(t, err)
		}(w)
	}
	wg.Wait()
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, workers*blockSize)
	for w := 0; w < workers; w++ {
		for i := 0; i < blockSize; i++ {
			if data[w*blockSize+i] != byte(w) {
				t.Fatalf("range owned by worker %d corrupted at offset %d", w, w*blockSize+i)
			}
		}
	}
}

func TestSinkDoesNotTruncateExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.bin")
	require.NoError(t, os.WriteFile(path, []byte("partial-content"), 0644))

	sink, err := OpenSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "partial-content", string(data))
}

func TestExistingLength(t *testing.T) {
	dir := t.TempDir()

	length, err := ExistingLength(filepath.Join(dir, "missing.bin"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), length)

	path := filepath.Join(dir, "present.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0644))
	length, err = ExistingLength(path)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), length)

	_, err = ExistingLength(dir)
	assert.Error(t, err)
}

package hashindex

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Write_Then_Read_Round_Trips_Byte_For_Byte(t *testing.T) {
	t.Parallel()

	idx, err := New(Options{KeySize: 8, ValueSize: 4})
	require.NoError(t, err, "New should succeed")
	defer idx.Close()

	for i := uint32(0); i < 30; i++ {
		require.NoError(t, idx.Set(makeKey(i, 8), []byte{byte(i), 0, 0, 0}), "Set should succeed")
	}

	// Leave a tombstone in the persisted bucket array.
	require.NoError(t, idx.Delete(makeKey(5, 8)), "Delete should succeed")

	var buf bytes.Buffer
	require.NoError(t, Write(idx, &buf), "Write should succeed")

	got, err := Read(&buf, Options{KeySize: 8, ValueSize: 4})
	require.NoError(t, err, "Read should succeed")

	diff := cmp.Diff(idx, got, cmp.AllowUnexported(Index{}))
	assert.Empty(t, diff, "round-tripped index differs from original")
}

func Test_Read_Accepts_Zero_Options_Without_Revalidation(t *testing.T) {
	t.Parallel()

	idx, err := New(Options{KeySize: 8, ValueSize: 4})
	require.NoError(t, err)
	defer idx.Close()

	var buf bytes.Buffer
	require.NoError(t, Write(idx, &buf))

	_, err = Read(&buf, Options{})
	require.NoError(t, err, "a zero-value Options should skip key/value size re-validation")
}

func Test_Read_Rejects_Mismatched_KeySize_Or_ValueSize(t *testing.T) {
	t.Parallel()

	idx, err := New(Options{KeySize: 8, ValueSize: 4})
	require.NoError(t, err)
	// Cleanup, not defer: the parallel subtests below run after this
	// function returns, and they still Write idx.
	t.Cleanup(func() { idx.Close() })

	tests := []struct {
		name string
		opts Options
	}{
		{name: "WrongKeySize", opts: Options{KeySize: 16, ValueSize: 4}},
		{name: "WrongValueSize", opts: Options{KeySize: 8, ValueSize: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, Write(idx, &buf))

			_, err := Read(&buf, tt.opts)
			require.ErrorIs(t, err, ErrIncompatible, "mismatched %s should report ErrIncompatible", tt.name)
		})
	}
}

func Test_Read_Rejects_Bad_Magic(t *testing.T) {
	t.Parallel()

	idx, err := New(Options{KeySize: 8, ValueSize: 4})
	require.NoError(t, err)
	defer idx.Close()

	var buf bytes.Buffer
	require.NoError(t, Write(idx, &buf))

	corrupted := buf.Bytes()
	corrupted[0] = 'X'

	_, err = Read(bytes.NewReader(corrupted), Options{})
	require.ErrorIs(t, err, ErrIncompatible, "bad magic should report ErrIncompatible")
}

func Test_Read_Rejects_Truncated_Bucket_Blob(t *testing.T) {
	t.Parallel()

	idx, err := New(Options{KeySize: 8, ValueSize: 4})
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Set(makeKey(1, 8), []byte{1, 2, 3, 4}))

	var buf bytes.Buffer
	require.NoError(t, Write(idx, &buf))

	truncated := buf.Bytes()[:buf.Len()-10]

	_, err = Read(bytes.NewReader(truncated), Options{})
	require.Error(t, err, "truncated bucket blob should fail to read")
}

func Test_Read_Rejects_Trailing_Data_After_Bucket_Array(t *testing.T) {
	t.Parallel()

	idx, err := New(Options{KeySize: 8, ValueSize: 4})
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Set(makeKey(1, 8), []byte{1, 2, 3, 4}))

	var buf bytes.Buffer
	require.NoError(t, Write(idx, &buf))

	overlong := append(buf.Bytes(), 0xAA, 0xBB, 0xCC)

	_, err = Read(bytes.NewReader(overlong), Options{})
	require.ErrorIs(t, err, ErrCorrupt, "trailing bytes past the bucket array should report ErrCorrupt")
}

func Test_WriteAtomic_Then_ReadFile_Round_Trips(t *testing.T) {
	t.Parallel()

	idx, err := New(Options{KeySize: 8, ValueSize: 4})
	require.NoError(t, err)
	defer idx.Close()

	for i := uint32(0); i < 5; i++ {
		require.NoError(t, idx.Set(makeKey(i, 8), []byte{byte(i), 0, 0, 0}))
	}

	path := filepath.Join(t.TempDir(), "index.borg")
	require.NoError(t, WriteAtomic(idx, path), "WriteAtomic should succeed")

	info, err := os.Stat(path)
	require.NoError(t, err, "WriteAtomic should leave a regular file behind")
	assert.False(t, info.IsDir())

	got, err := ReadFile(path, Options{KeySize: 8, ValueSize: 4})
	require.NoError(t, err, "ReadFile should succeed")

	diff := cmp.Diff(idx, got, cmp.AllowUnexported(Index{}))
	assert.Empty(t, diff, "file round-trip differs from original")
}

package file_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jsoncodec "github.com/MasterOfBinary/seqbatch/codec/json"
	"github.com/MasterOfBinary/seqbatch/example"
	"github.com/MasterOfBinary/seqbatch/extractor/file"
	"github.com/MasterOfBinary/seqbatch/recordio"
)

func record(id int64) *example.Record {
	raw := &example.Raw{
		RapperID: id,
		Labels:   []int64{1},
		Chars:    [][]int64{{1, 2}},
		Phones:   [][]int64{{3}},
		Stresses: [][]int64{{0}},
	}
	return raw.Record(example.DefaultSchema)
}

func writeFile(t *testing.T, n int, opts ...file.Option) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.rec")
	w, err := file.Create(path, nil)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, w.Write(record(int64(i))))
	}
	assert.Equal(t, n, w.Count())
	require.NoError(t, w.Close())
	return path
}

func readIDs(t *testing.T, e *file.Extractor, path string, max int) ([]int64, error) {
	t.Helper()

	var ids []int64
	for len(ids) < max {
		rec, err := e.ReadAndDecodeSingleExample(context.Background(), path)
		if err != nil {
			return ids, err
		}
		ids = append(ids, rec.Context[example.KeyRapper][0])
	}
	return ids, nil
}

func TestExtractor_ReadOnce(t *testing.T) {
	path := writeFile(t, 3)
	e := file.New()
	defer e.Close()

	ids, err := readIDs(t, e, path, 10)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []int64{0, 1, 2}, ids)

	_, err = e.ReadAndDecodeSingleExample(context.Background(), path)
	assert.ErrorIs(t, err, io.EOF, "EOF is sticky")
}

func TestExtractor_Epochs(t *testing.T) {
	path := writeFile(t, 2)

	t.Run("two epochs", func(t *testing.T) {
		e := file.New(file.WithEpochs(2))
		defer e.Close()

		ids, err := readIDs(t, e, path, 10)
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, []int64{0, 1, 0, 1}, ids)
	})

	t.Run("forever", func(t *testing.T) {
		e := file.New(file.WithEpochs(0))
		defer e.Close()

		ids, err := readIDs(t, e, path, 7)
		require.NoError(t, err)
		assert.Equal(t, []int64{0, 1, 0, 1, 0, 1, 0}, ids)
		assert.Equal(t, 3, e.Epoch(path))
	})

	t.Run("empty file forever", func(t *testing.T) {
		e := file.New(file.WithEpochs(0))
		defer e.Close()

		_, err := e.ReadAndDecodeSingleExample(context.Background(), writeFile(t, 0))
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("negative", func(t *testing.T) {
		assert.PanicsWithValue(t, "epochs can't be < 0", func() {
			file.WithEpochs(-1)
		})
	})
}

func TestExtractor_IndependentCursors(t *testing.T) {
	a := writeFile(t, 2)
	b := writeFile(t, 2)
	e := file.New()
	defer e.Close()

	ctx := context.Background()
	for _, path := range []string{a, b, a} {
		_, err := e.ReadAndDecodeSingleExample(ctx, path)
		require.NoError(t, err)
	}

	_, err := e.ReadAndDecodeSingleExample(ctx, a)
	assert.ErrorIs(t, err, io.EOF)
	_, err = e.ReadAndDecodeSingleExample(ctx, b)
	assert.NoError(t, err)
}

func TestExtractor_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		e := file.New()
		_, err := e.ReadAndDecodeSingleExample(ctx, filepath.Join(t.TempDir(), "nope.rec"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("truncated file", func(t *testing.T) {
		path := writeFile(t, 2)
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.NoError(t, os.Truncate(path, info.Size()-2))

		e := file.New()
		defer e.Close()
		_, err = readIDs(t, e, path, 10)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		assert.Contains(t, err.Error(), "at offset")
	})

	t.Run("wrong codec", func(t *testing.T) {
		e := file.New(file.WithCodec(jsoncodec.New()))
		defer e.Close()
		_, err := e.ReadAndDecodeSingleExample(ctx, writeFile(t, 1))
		assert.ErrorContains(t, err, "decode")
	})

	t.Run("garbage payload", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "garbage.rec")
		f, err := os.Create(path)
		require.NoError(t, err)
		w := recordio.NewWriter(f)
		require.NoError(t, w.Write([]byte{0xc1}))
		require.NoError(t, w.Close())

		_, err = file.New().ReadAndDecodeSingleExample(ctx, path)
		assert.ErrorContains(t, err, "decode")
	})

	t.Run("canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := file.New().ReadAndDecodeSingleExample(cctx, writeFile(t, 1))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("closed", func(t *testing.T) {
		e := file.New()
		require.NoError(t, e.Close())
		require.NoError(t, e.Close())
		_, err := e.ReadAndDecodeSingleExample(ctx, writeFile(t, 1))
		assert.ErrorIs(t, err, file.ErrClosed)
	})
}

func TestWriter_JSONCodec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.jsonrec")
	w, err := file.Create(path, jsoncodec.New())
	require.NoError(t, err)
	require.NoError(t, w.Write(record(7)))
	require.NoError(t, w.Close())

	e := file.New(file.WithCodec(jsoncodec.New()))
	defer e.Close()
	rec, err := e.ReadAndDecodeSingleExample(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, record(7), rec)
}

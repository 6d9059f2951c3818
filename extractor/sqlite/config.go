package sqlite

import (
	"github.com/MasterOfBinary/seqbatch/codec"
)

// Config holds the settings of an Extractor or Writer.
type Config struct {
	codec  codec.Codec
	epochs int
}

type ConfigFunc = func(c *Config)

// Codec sets the codec used for the data column.
func (c *Config) Codec(cd codec.Codec) {
	if cd == nil {
		panic("codec can't be nil")
	}
	c.codec = cd
}

// Epochs sets how many times each database is read before io.EOF is
// returned. Zero cycles forever.
func (c *Config) Epochs(epochs int) {
	if epochs < 0 {
		panic("epochs can't be < 0")
	}
	c.epochs = epochs
}

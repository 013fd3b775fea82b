package i2c

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpen_MissingAdapter(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "i2c-9"))
	assert.Error(t, err)
}

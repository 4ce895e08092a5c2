package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, paginate(items, 0, 2))
	assert.Equal(t, []int{5}, paginate(items, 4, 2))
	assert.Equal(t, items, paginate(items, 0, 0))
	assert.Empty(t, paginate(items, 5, 2))
	assert.Empty(t, paginate(items, -80, 100), "offset negativo")
}

package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForCoversRange(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000
	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestForEachIndexOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinItems: 1}

	n := 257
	hits := make([]int32, n)
	For(n, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	}, cfg)

	for i, h := range hits {
		assert.Equal(t, int32(1), h, "index %d", i)
	}
}

func TestForSequentialFallback(t *testing.T) {
	cfg := Config{Enabled: false}

	order := make([]int, 0, 5)
	For(5, func(i int) {
		order = append(order, i)
	}, cfg)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

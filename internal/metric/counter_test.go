package metric

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_Inc(t *testing.T) {
	reg := NewRegistry()
	c := reg.MustDefineCounter("c", "meals", "food")

	for range 3 {
		require.NoError(t, c.Inc("Apple"))
	}
	require.NoError(t, c.Inc("Banana"))

	apples, err := c.Value("Apple")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), apples)

	bananas, err := c.Value("Banana")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), bananas)

	steak, err := c.Value("Steak")
	require.NoError(t, err)
	assert.Zero(t, steak, "untouched cells read as zero")
}

func TestCounter_LabelArity(t *testing.T) {
	reg := NewRegistry()
	c := reg.MustDefineCounter("meals_total", "meals", "food", "drink")

	tests := []struct {
		name   string
		values []string
	}{
		{"no values", nil},
		{"too few", []string{"Apple"}},
		{"too many", []string{"Apple", "Water", "Extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, c.Inc(tt.values...), ErrLabelArity)
			_, err := c.Value(tt.values...)
			assert.ErrorIs(t, err, ErrLabelArity)
		})
	}

	assert.Empty(t, c.Snapshot().Samples, "failed increments create no cells")
	assert.Panics(t, func() { c.MustInc("Apple") })
}

func TestCounter_Unlabelled(t *testing.T) {
	reg := NewRegistry()
	c := reg.MustDefineCounter("loops_total", "loops")

	c.MustInc()
	c.MustInc()

	assert.ErrorIs(t, c.Inc("unexpected"), ErrLabelArity)

	snap := c.Snapshot()
	require.Len(t, snap.Samples, 1)
	assert.Empty(t, snap.Samples[0].LabelValues)
	assert.Equal(t, 2.0, snap.Samples[0].Value)
}

func TestCounter_AddZeroCreatesCell(t *testing.T) {
	reg := NewRegistry()
	c := reg.MustDefineCounter("animals_total", "animals", "animal")

	require.NoError(t, c.Add(0, "Deer"))
	require.NoError(t, c.Add(5, "Goose"))

	snap := c.Snapshot()
	require.Len(t, snap.Samples, 2)
	assert.Equal(t, Sample{LabelValues: []string{"Deer"}, Value: 0}, snap.Samples[0])
	assert.Equal(t, Sample{LabelValues: []string{"Goose"}, Value: 5}, snap.Samples[1])
}

func TestCounter_SnapshotSorted(t *testing.T) {
	reg := NewRegistry()
	c := reg.MustDefineCounter("meals_total", "meals", "food", "drink")

	c.MustInc("Steak", "Wine")
	c.MustInc("Apple", "Water")
	c.MustInc("Apple", "Beer")

	var got [][]string
	for _, s := range c.Snapshot().Samples {
		got = append(got, s.LabelValues)
	}
	assert.Equal(t, [][]string{
		{"Apple", "Beer"},
		{"Apple", "Water"},
		{"Steak", "Wine"},
	}, got)
}

func TestCounter_SnapshotIsCopy(t *testing.T) {
	reg := NewRegistry()
	c := reg.MustDefineCounter("c_total", "c", "k")
	c.MustInc("a")

	snap := c.Snapshot()
	snap.Samples[0].LabelValues[0] = "mutated"
	snap.LabelKeys[0] = "mutated"

	v, err := c.Value("a")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
	assert.Equal(t, []string{"k"}, c.LabelKeys())
}

func TestCounter_ConcurrentIncrementsAndReads(t *testing.T) {
	reg := NewRegistry()
	c := reg.MustDefineCounter("c_total", "c", "worker")

	const workers, perWorker = 8, 500
	done := make(chan struct{})

	var readers sync.WaitGroup
	readers.Go(func() {
		last := 0.0
		for {
			select {
			case <-done:
				return
			default:
			}
			total := 0.0
			for _, s := range c.Snapshot().Samples {
				total += s.Value
			}
			assert.GreaterOrEqual(t, total, last, "counts never decrease")
			last = total
		}
	})

	var writers sync.WaitGroup
	for range workers {
		writers.Go(func() {
			for range perWorker {
				c.MustInc("shared")
			}
		})
	}
	writers.Wait()
	close(done)
	readers.Wait()

	v, err := c.Value("shared")
	require.NoError(t, err)
	assert.Equal(t, uint64(workers*perWorker), v)
}

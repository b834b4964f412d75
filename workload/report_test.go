package workload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/llxisdsh/fairrw"
)

func window(kind Kind, index int, start, end int, value int64) Window {
	base := time.Unix(0, 0)
	return Window{
		Task:  TaskID{Kind: kind, Index: index},
		Start: base.Add(time.Duration(start) * time.Millisecond),
		End:   base.Add(time.Duration(end) * time.Millisecond),
		Value: value,
	}
}

func TestReport_Overlaps(t *testing.T) {
	rep := &Report{Windows: []Window{
		window(Reader, 1, 0, 10, 0),
		window(Reader, 2, 5, 15, 0),
		window(Writer, 1, 15, 20, 1),
		window(Writer, 2, 19, 25, 2),
		window(Reader, 3, 24, 30, 2),
	}}
	got := rep.Overlaps()
	require.Len(t, got, 2)
	require.Equal(t, TaskID{Writer, 1}, got[0][0].Task)
	require.Equal(t, TaskID{Writer, 2}, got[0][1].Task)
	require.Equal(t, TaskID{Writer, 2}, got[1][0].Task)
	require.Equal(t, TaskID{Reader, 3}, got[1][1].Task)

	require.Equal(t, 2, rep.MaxConcurrentReaders())
}

func TestReport_Check(t *testing.T) {
	good := &Report{
		Initial: 0, Final: 1, Writes: 1, Reads: 1,
		Windows: []Window{
			window(Reader, 1, 0, 5, 0),
			window(Writer, 1, 5, 9, 1),
		},
	}
	require.NoError(t, good.Check())

	bad := &Report{
		Initial: 0, Final: 1, Writes: 2, Reads: 1,
		Windows: []Window{
			window(Writer, 1, 0, 5, 1),
			window(Writer, 2, 3, 9, 1),
			window(Reader, 1, 10, 11, 5),
		},
		Lock: fairrw.Stats{Readers: 1, Holder: fairrw.HolderReaders},
	}
	err := bad.Check()
	require.Error(t, err)
	require.ErrorContains(t, err, "final value 1, want 2")
	require.ErrorContains(t, err, "writer-1 cycle 0 overlaps writer-2 cycle 0")
	require.ErrorContains(t, err, "reader-1 cycle 0 read 5 outside [0, 1]")
	require.ErrorContains(t, err, "lock not idle")
}

func TestTaskID_String(t *testing.T) {
	require.Equal(t, "reader-3", TaskID{Reader, 3}.String())
	require.Equal(t, "writer-1", TaskID{Writer, 1}.String())
	require.Equal(t, "Phase(9)", Phase(9).String())
}

package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-alphasign/command"
	"github.com/arloliu/go-alphasign/object"
)

func newLayout(t *testing.T) (*object.Text, *object.String) {
	t.Helper()

	txt, err := object.NewText('A', []object.Span{object.Literal("Count: "), object.Call('1')}, object.WithSize(14))
	require.NoError(t, err)
	str, err := object.NewString('1', 5, "")
	require.NoError(t, err)

	return txt, str
}

func TestTable_AllocateAndValidateWrite(t *testing.T) {
	tbl := NewTable()
	txt, str := newLayout(t)

	cmd, err := tbl.Allocate(txt, str)
	require.NoError(t, err)
	assert.Equal(t, command.OpAllocateMemory, cmd.Op)
	assert.Equal(t, "$AAU000EFFFF1BL00050000", string(cmd.Payload))
	assert.True(t, tbl.Allocated())

	require.NoError(t, tbl.ValidateWrite('1', 5))
	require.ErrorIs(t, tbl.ValidateWrite('1', 6), ErrSizeMismatch)
	require.ErrorIs(t, tbl.ValidateWrite('Z', 1), ErrUnknownLabel)

	e, ok := tbl.Lookup('1')
	require.True(t, ok)
	assert.Equal(t, Entry{Label: '1', Kind: object.KindString, Size: 5, Locked: true}, e)
}

func TestTable_ValidateRunSequence(t *testing.T) {
	tbl := NewTable()
	txt, str := newLayout(t)
	_, err := tbl.Allocate(txt, str)
	require.NoError(t, err)

	require.NoError(t, tbl.ValidateRunSequence([]object.Label{'A'}))
	require.NoError(t, tbl.ValidateRunSequence([]object.Label{'A', 'A'}))
	require.ErrorIs(t, tbl.ValidateRunSequence([]object.Label{'Z'}), ErrUnknownLabel)
	require.ErrorIs(t, tbl.ValidateRunSequence([]object.Label{'A', '1'}), ErrWrongKind)
	require.ErrorIs(t, tbl.ValidateRunSequence(nil), ErrAllocation)
}

func TestTable_Clear(t *testing.T) {
	tbl := NewTable()
	txt, str := newLayout(t)
	_, err := tbl.Allocate(txt, str)
	require.NoError(t, err)

	tbl.Clear()
	assert.False(t, tbl.Allocated())
	assert.Empty(t, tbl.Entries())
	require.ErrorIs(t, tbl.ValidateWrite('1', 1), ErrUnknownLabel)
}

func TestTable_DuplicateLeavesTableUnchanged(t *testing.T) {
	tbl := NewTable()
	txt, str := newLayout(t)
	_, err := tbl.Allocate(txt, str)
	require.NoError(t, err)
	before := tbl.Entries()

	b1, err := object.NewText('B', nil)
	require.NoError(t, err)
	b2, err := object.NewText('B', nil)
	require.NoError(t, err)

	_, err = tbl.Allocate(b1, b2)
	require.ErrorIs(t, err, ErrDuplicateLabel)
	assert.Equal(t, before, tbl.Entries())

	_, err = tbl.Plan(str, str)
	require.ErrorIs(t, err, ErrDuplicateLabel)
	assert.Equal(t, before, tbl.Entries())
}

func TestTable_ReallocateRequiresClear(t *testing.T) {
	tbl := NewTable()
	txt, str := newLayout(t)
	_, err := tbl.Allocate(txt, str)
	require.NoError(t, err)

	_, err = tbl.Allocate(str)
	require.ErrorIs(t, err, ErrDuplicateLabel)

	tbl.Clear()
	bigger, err := object.NewString('1', 14, "")
	require.NoError(t, err)
	_, err = tbl.Allocate(bigger)
	require.NoError(t, err, "size may change after a clear")

	e, ok := tbl.Lookup('1')
	require.True(t, ok)
	assert.Equal(t, 14, e.Size)
}

func TestTable_KindIsFixedForSession(t *testing.T) {
	tbl := NewTable()
	txt, _ := newLayout(t)
	_, err := tbl.Allocate(txt)
	require.NoError(t, err)
	tbl.Clear()

	asString, err := object.NewString('A', 5, "")
	require.NoError(t, err)
	_, err = tbl.Allocate(asString)
	require.ErrorIs(t, err, ErrWrongKind)
	assert.False(t, tbl.Allocated())

	tbl.Reset()
	_, err = tbl.Allocate(asString)
	require.NoError(t, err)
}

func TestTable_ValidateObject(t *testing.T) {
	tbl := NewTable()
	txt, str := newLayout(t)
	pic, err := object.NewDots('D', 7, 80)
	require.NoError(t, err)

	cmd, err := tbl.Allocate(txt, str, pic)
	require.NoError(t, err)
	assert.Equal(t, "$AAU000EFFFF1BL00050000DDU07502000", string(cmd.Payload))

	require.NoError(t, tbl.ValidateObject(txt))
	require.NoError(t, tbl.ValidateObject(pic))

	require.NoError(t, str.SetData("12345"))
	require.NoError(t, tbl.ValidateObject(str), "full string")
	require.NoError(t, str.SetData("42"))
	require.NoError(t, tbl.ValidateObject(str), "short string")

	require.NoError(t, txt.SetContent(object.Literal("far too long for 14")))
	require.ErrorIs(t, tbl.ValidateObject(txt), ErrSizeMismatch)

	wrong, err := object.NewText('1', nil)
	require.NoError(t, err)
	require.ErrorIs(t, tbl.ValidateObject(wrong), ErrWrongKind)

	resized, err := object.NewDots('D', 7, 40)
	require.NoError(t, err)
	require.ErrorIs(t, tbl.ValidateObject(resized), ErrSizeMismatch)

	unknown, err := object.NewString('9', 5, "")
	require.NoError(t, err)
	require.ErrorIs(t, tbl.ValidateObject(unknown), ErrUnknownLabel)
	require.ErrorIs(t, tbl.ValidateObject(nil), ErrAllocation)
}

func TestTable_PlanDoesNotMutate(t *testing.T) {
	tbl := NewTable()
	txt, str := newLayout(t)

	l, err := tbl.Plan(txt, str)
	require.NoError(t, err)
	assert.Len(t, l.Entries(), 2)
	assert.False(t, tbl.Allocated())

	cmd, err := l.Command()
	require.NoError(t, err)
	assert.Equal(t, command.CodeWriteSpecial, cmd.Code)

	require.NoError(t, tbl.Commit(l))
	assert.True(t, tbl.Allocated())
}

func TestTable_CommitStaleLayout(t *testing.T) {
	tbl := NewTable()
	txt, str := newLayout(t)

	l, err := tbl.Plan(txt, str)
	require.NoError(t, err)
	tbl.Clear()

	require.ErrorIs(t, tbl.Commit(l), ErrStaleLayout)
	assert.False(t, tbl.Allocated())
}

func TestTable_PlanErrors(t *testing.T) {
	tbl := NewTable()

	_, err := tbl.Plan()
	require.ErrorIs(t, err, ErrAllocation)

	_, err = tbl.Plan(nil)
	require.ErrorIs(t, err, ErrAllocation)

	var str *object.String
	_, err = tbl.Plan(str)
	require.ErrorIs(t, err, ErrAllocation)
	require.ErrorIs(t, tbl.ValidateObject(str), ErrAllocation)
}

func TestTable_Pictures(t *testing.T) {
	tbl := NewTable()
	large, err := object.NewLargeDots('L', 40, 200, object.WithColorStatus(command.DotsMonochrome))
	require.NoError(t, err)
	rgb, err := object.NewRGBDots('R', 3, 4)
	require.NoError(t, err)

	cmd, err := tbl.Allocate(large, rgb)
	require.NoError(t, err)
	assert.Equal(t, "$LDU28C81000RDU03048000", string(cmd.Payload))

	e, ok := tbl.Lookup('R')
	require.True(t, ok)
	assert.Equal(t, Entry{Label: 'R', Kind: object.KindRGBDots, Size: 75, Rows: 3, Cols: 4, ColorStatus: command.DotsRGB}, e)

	require.NoError(t, tbl.ValidateObject(large))
	require.NoError(t, tbl.ValidateObject(rgb))

	resized, err := object.NewRGBDots('R', 3, 5)
	require.NoError(t, err)
	require.ErrorIs(t, tbl.ValidateObject(resized), ErrSizeMismatch)

	small, err := object.NewDots('L', 31, 200)
	require.NoError(t, err)
	require.ErrorIs(t, tbl.ValidateObject(small), ErrWrongKind)
}

func TestTable_ConcurrentReadersSeeWholeLayouts(t *testing.T) {
	tbl := NewTable()
	objs := make([]object.Object, 0, 10)
	for _, l := range "ABCDEFGHIJ" {
		txt, err := object.NewText(object.Label(l), []object.Span{object.Literal("x")})
		require.NoError(t, err)
		objs = append(objs, txt)
	}

	var wg sync.WaitGroup
	done := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				n := len(tbl.Entries())
				if n != 0 && n != len(objs) {
					t.Errorf("observed partial layout with %d entries", n)
					return
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		_, err := tbl.Allocate(objs...)
		require.NoError(t, err)
		tbl.Clear()
	}
	close(done)
	wg.Wait()
}

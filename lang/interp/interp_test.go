package interp_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/caivega/cascadelang/lang/interp"
	"github.com/caivega/cascadelang/lang/parser"
)

func run(t *testing.T, src string) (*interp.Interp, []string) {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	in := interp.New()
	var out []string
	in.SetPrint(func(s string) { out = append(out, s) })
	require.NoError(t, in.Run(prog))
	return in, out
}

func TestOptionalFieldCascadeSurvives(t *testing.T) {
	_, out := run(t, `
		struct Holder { optional ref }
		let target = {}
		let h = new Holder { ref: target }
		h.ref = null
		print h.ref
	`)
	require.Equal(t, []string{"null"}, out)
}

func TestMandatoryFieldWriteCascadesHolder(t *testing.T) {
	in, _ := run(t, `
		struct Holder { mandatory ref }
		let target = {}
		let h = new Holder { ref: target }
		h.ref = null
	`)
	// h is destroyed because its mandatory ref field was nulled; target
	// itself is merely unreferenced afterward, not cascade-deleted (spec's
	// "no GC of unreachable but legal objects" non-goal), so it survives.
	snap := in.Heap.Snapshot()
	require.Len(t, snap, 1)
	require.False(t, snap[0].HasType)
}

func TestMandatoryCycleFullyDeletes(t *testing.T) {
	in, out := run(t, `
		struct Node { mandatory next }
		let a = new Node { next: null }
		let b = new Node { next: a }
		a.next = b
		a.next = null
		print "done"
	`)
	require.Equal(t, []string{"\"done\""}, out)
	require.Empty(t, in.Heap.Snapshot())
}

func TestArrayElementCascadeLeavesArrayLive(t *testing.T) {
	_, out := run(t, `
		struct Leaf { mandatory tag }
		let leaf = new Leaf { tag: 1 }
		let arr = [leaf]
		leaf.tag = null
		print arr[0]
		print arr.length
	`)
	require.Equal(t, []string{"null", "1"}, out)
}

func TestUntypedObjectNeverCascades(t *testing.T) {
	_, out := run(t, `
		let holder = { ref: {} }
		holder.ref = null
		print holder.ref
	`)
	require.Equal(t, []string{"null"}, out)
}

func TestConstructionOmittingMandatoryFieldIsLegal(t *testing.T) {
	_, out := run(t, `
		struct Holder { mandatory ref }
		let h = new Holder {}
		print h.ref
	`)
	require.Equal(t, []string{"null"}, out)
}

func TestFunctionsAndClosures(t *testing.T) {
	_, out := run(t, `
		fn makeAdder(n) {
			fn add(x) {
				return x + n
			}
			return add
		}
		let add5 = makeAdder(5)
		print add5(3)
	`)
	require.Equal(t, []string{"8"}, out)
}

func TestAssertFailureRaisesAssertionError(t *testing.T) {
	prog, err := parser.Parse(`assert(1 == 2, "nope")`)
	require.NoError(t, err)
	in := interp.New()
	err = in.Run(prog)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "nope"))
}

func TestUndefinedVariableIsReferenceError(t *testing.T) {
	prog, err := parser.Parse(`print missing`)
	require.NoError(t, err)
	in := interp.New()
	in.SetPrint(func(string) {})
	err = in.Run(prog)
	require.Error(t, err)
}

func TestFieldAccessOnNonObjectIsTypeError(t *testing.T) {
	prog, err := parser.Parse(`
		let x = 1
		print x.y
	`)
	require.NoError(t, err)
	in := interp.New()
	in.SetPrint(func(string) {})
	err = in.Run(prog)
	require.Error(t, err)
}

func TestArrayPushGrowsLength(t *testing.T) {
	_, out := run(t, `
		let arr = []
		arr.push(1)
		arr.push(2)
		print arr[0]
		print arr[1]
		print arr.length
	`)
	require.Equal(t, []string{"1", "2", "2"}, out)
}

func TestPrintValueFormatting(t *testing.T) {
	_, out := run(t, `
		print "hi"
		print true
		print false
		print null
		print 3.5
	`)
	require.Equal(t, []string{`"hi"`, "true", "false", "null", "3.5"}, out)
}

package mem_test

import (
	"errors"
	"log"
	"os"
	"testing"

	"github.com/jcorbin/goforth/internal/logio"
	"github.com/jcorbin/goforth/internal/mem"
	"github.com/jcorbin/goforth/internal/panicerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cs = mem.CellSize

func Test_Arena(t *testing.T) {
	for _, tc := range []arenaTestCase{
		arenaTest("basic", 8*cs,
			"init", func(t *testing.T, a *mem.Arena) {
				require.Equal(t, cs, a.Here(), "expected first cell reserved")
				require.Equal(t, 8*cs, a.Cap(), "expected capacity")
				require.Equal(t, 7*cs, a.Free(), "expected free bytes")
			},

			"append cells", func(t *testing.T, a *mem.Arena) {
				addr, err := a.AppendCell(9)
				require.NoError(t, err, "must append")
				require.Equal(t, cs, addr, "expected first append address")
				addr, err = a.AppendCell(-3)
				require.NoError(t, err, "must append")
				require.Equal(t, 2*cs, addr, "expected second append address")
				expectCellsAt(t, a, cs, 9, -3)
			},

			"stor", func(t *testing.T, a *mem.Arena) {
				require.NoError(t, a.Stor(cs, 1, 2), "must stor")
				expectCellsAt(t, a, cs, 1, 2)
			},

			"null address", func(t *testing.T, a *mem.Arena) {
				_, err := a.Load(0)
				expectFault(t, err, "out of bounds")
			},

			"past here", func(t *testing.T, a *mem.Arena) {
				_, err := a.Load(a.Here())
				expectFault(t, err, "out of bounds")
				expectFault(t, a.Stor(a.Here(), 1), "out of bounds")
			},

			"misaligned", func(t *testing.T, a *mem.Arena) {
				_, err := a.Load(cs + 1)
				expectFault(t, err, "misaligned")
			},
		),

		arenaTest("bytes", 8*cs,
			"append bytes", func(t *testing.T, a *mem.Arena) {
				for _, b := range []byte("hi") {
					_, err := a.AppendByte(b)
					require.NoError(t, err, "must append byte")
				}
				require.Equal(t, cs+2, a.Here(), "expected unaligned here")
				b, err := a.LoadByte(cs + 1)
				require.NoError(t, err, "must load byte")
				assert.Equal(t, byte('i'), b, "expected byte")
			},

			"cell after bytes aligns", func(t *testing.T, a *mem.Arena) {
				addr, err := a.AppendCell(42)
				require.NoError(t, err, "must append")
				require.Equal(t, 2*cs, addr, "expected aligned address")
				require.Equal(t, 3*cs, a.Here(), "expected here after cell")
			},

			"stor byte", func(t *testing.T, a *mem.Arena) {
				require.NoError(t, a.StorByte(cs, 'H'), "must stor byte")
				b, err := a.Bytes(cs, 2)
				require.NoError(t, err, "must load bytes")
				assert.Equal(t, "Hi", string(b), "expected bytes")
			},
		),

		arenaTest("text", 16*cs,
			"store", func(t *testing.T, a *mem.Arena) {
				addr, err := a.StoreText("hello")
				require.NoError(t, err, "must store text")
				require.Equal(t, cs, addr, "expected text address")
				require.Equal(t, cs+mem.TextSize(5), a.Here(), "expected padded text")
				s, err := a.Text(addr)
				require.NoError(t, err, "must load text")
				assert.Equal(t, "hello", s, "expected text")
			},

			"empty", func(t *testing.T, a *mem.Arena) {
				addr, err := a.StoreText("")
				require.NoError(t, err, "must store text")
				s, err := a.Text(addr)
				require.NoError(t, err, "must load text")
				assert.Equal(t, "", s, "expected empty text")
			},
		),

		arenaTest("capacity", 4*cs,
			"fill", func(t *testing.T, a *mem.Arena) {
				for i := 0; i < 3; i++ {
					_, err := a.AppendCell(i)
					require.NoError(t, err, "must append cell #%v", i)
				}
				require.Equal(t, 0, a.Free(), "expected full arena")
			},

			"exceed", func(t *testing.T, a *mem.Arena) {
				here := a.Here()
				_, err := a.AppendCell(99)
				var ce mem.CapacityError
				require.True(t, errors.As(err, &ce), "expected capacity error, got %v", err)
				assert.Equal(t, here, a.Here(), "expected here unchanged")
				_, err = a.AppendByte(1)
				assert.True(t, errors.As(err, &ce), "expected capacity error, got %v", err)
			},
		),
	} {
		t.Run(tc.name, tc.run)
	}
}

func Test_AlignUp(t *testing.T) {
	for _, n := range []int{0, 1, cs - 1, cs, cs + 1, 3*cs + 2} {
		up := mem.AlignUp(n)
		assert.True(t, mem.Aligned(up), "expected AlignUp(%v) aligned", n)
		assert.True(t, up >= n && up-n < cs, "expected AlignUp(%v) = %v to be minimal", n, up)
	}
}

func expectCellsAt(t *testing.T, a *mem.Arena, addr int, values ...int) {
	buf := make([]int, len(values))
	require.NoError(t, a.LoadInto(addr, buf),
		"must load %v values from @%v", len(values), addr)
	require.Equal(t, values, buf, "expected values @%v", addr)
}

func expectFault(t *testing.T, err error, reason string) {
	var f mem.Fault
	if assert.True(t, errors.As(err, &f), "expected fault, got %v", err) {
		assert.Equal(t, reason, f.Reason, "expected fault reason")
	}
}

func arenaTest(name string, capacity int, args ...interface{}) (tc arenaTestCase) {
	tc.name = name
	tc.capacity = capacity
	for i := 0; i < len(args); i++ {
		var step arenaTestStep

		step.name = args[i].(string)

		if i++; i >= len(args) {
			panic("arenaTest: missing function argument after name")
		}
		step.f = args[i].(func(t *testing.T, a *mem.Arena))

		tc.steps = append(tc.steps, step)
	}
	return tc
}

type arenaTestCase struct {
	name     string
	capacity int
	steps    []arenaTestStep
}

type arenaTestStep struct {
	name string
	f    func(t *testing.T, a *mem.Arena)
}

func (tc arenaTestCase) run(t *testing.T) {
	tcLogOut := &logio.Writer{Logf: t.Logf}
	log.SetOutput(tcLogOut)
	defer log.SetOutput(os.Stderr)

	a := mem.NewArena(tc.capacity)
	for _, step := range tc.steps {
		if !t.Run(step.name, func(t *testing.T) {
			isolateTest(t, func(t *testing.T) { step.f(t, a) })
		}) {
			break
		}
	}
}

func isolateTest(t *testing.T, f func(t *testing.T)) {
	if err := panicerr.Recover(t.Name(), func() error {
		f(t)
		return nil
	}); err != nil {
		t.Logf("%+v", err)
		t.Fail()
	}
}

package provider

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/buildprop/internal/tracking"
)

func TestMap_TransformsPresentValue(t *testing.T) {
	p := Map(Value("hello"), strings.ToUpper)

	v, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, "HELLO", v)
}

func TestMap_NeverInvokedOnAbsent(t *testing.T) {
	invoked := false
	p := Map(Absent[string](), func(s string) string {
		invoked = true
		return s
	})

	_, ok, err := p.TryGet()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, invoked, "transform must not run on an absent value")
}

func TestMap_CompositionLaw(t *testing.T) {
	f := func(v int) int { return v + 3 }
	g := func(v int) int { return v * 2 }
	base := Value(10)

	chained, err := Map(Map(base, f), g).Get()
	require.NoError(t, err)
	composed, err := Map(base, func(v int) int { return g(f(v)) }).Get()
	require.NoError(t, err)

	assert.Equal(t, composed, chained)
}

func TestMapErr_FailureBecomesEvaluationError(t *testing.T) {
	p := MapErr(Value(1), func(int) (int, error) {
		return 0, errors.New("transform blew up")
	})

	_, err := p.Get()
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
}

func TestFlatMap_TracksUpstreamChanges(t *testing.T) {
	selector := New[string]("selector").Value("a")
	a := Value("value-a")
	b := Value("value-b")

	p := FlatMap[string, string](selector, func(which string) Provider[string] {
		if which == "a" {
			return a
		}
		return b
	})

	v, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, "value-a", v)

	require.NoError(t, selector.Set("b"))
	v, err = p.Get()
	require.NoError(t, err)
	assert.Equal(t, "value-b", v, "transform re-runs when the upstream changes")
}

func TestFlatMap_NilResultIsAbsent(t *testing.T) {
	p := FlatMap(Value(1), func(int) Provider[string] {
		return nil
	})

	_, ok, err := p.TryGet()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFlatMap_AbsentUpstreamSkipsTransform(t *testing.T) {
	invoked := false
	p := FlatMap(Absent[int](), func(int) Provider[string] {
		invoked = true
		return Value("x")
	})

	_, ok, err := p.TryGet()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, invoked)
}

func TestFlatMap_InnerDependenciesVisibleAfterEvaluation(t *testing.T) {
	inner := TaskOutput[string]("task.archive", SupplierFunc[string](func() (string, bool, error) {
		return "lib.jar", true, nil
	}))
	p := FlatMap(Value("x"), func(string) Provider[string] {
		return inner
	})

	_, err := p.Get()
	require.NoError(t, err)

	deps, err := tracking.NewTracker().DependenciesOf(p.Node())
	require.NoError(t, err)
	assert.Contains(t, deps, tracking.ProducerID("task.archive"))
}

func TestZip(t *testing.T) {
	combine := func(a string, b int) string {
		return a + strings.Repeat("!", b)
	}

	testCases := []struct {
		name        string
		a           Provider[string]
		b           Provider[int]
		wantPresent bool
		wantValue   string
	}{
		{name: "both present", a: Value("hey"), b: Value(2), wantPresent: true, wantValue: "hey!!"},
		{name: "left absent", a: Absent[string](), b: Value(2), wantPresent: false},
		{name: "right absent", a: Value("hey"), b: Absent[int](), wantPresent: false},
		{name: "both absent", a: Absent[string](), b: Absent[int](), wantPresent: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, ok, err := Zip(tc.a, tc.b, combine).TryGet()
			require.NoError(t, err)
			assert.Equal(t, tc.wantPresent, ok)
			if tc.wantPresent {
				assert.Equal(t, tc.wantValue, v)
			}
		})
	}
}

func TestZip_UnionsDependencies(t *testing.T) {
	a := TaskOutput[string]("task.left", SupplierFunc[string](func() (string, bool, error) {
		return "l", true, nil
	}))
	b := TaskOutput[string]("task.right", SupplierFunc[string](func() (string, bool, error) {
		return "r", true, nil
	}))

	deps, err := tracking.NewTracker().DependenciesOf(Zip(a, b, func(x, y string) string { return x + y }).Node())
	require.NoError(t, err)
	assert.Equal(t, []tracking.ProducerID{"task.left", "task.right"}, deps)
}

func TestOrElse(t *testing.T) {
	t.Run("primary wins when present", func(t *testing.T) {
		v, err := Value("primary").OrElse(Value("fallback")).Get()
		require.NoError(t, err)
		assert.Equal(t, "primary", v)
	})

	t.Run("fallback when primary absent", func(t *testing.T) {
		v, err := Absent[string]().OrElse(Value("fallback")).Get()
		require.NoError(t, err)
		assert.Equal(t, "fallback", v)
	})

	t.Run("absent when both absent", func(t *testing.T) {
		_, ok, err := Absent[string]().OrElse(Absent[string]()).TryGet()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("fixed fallback value", func(t *testing.T) {
		v, err := Absent[int]().OrElseValue(9).Get()
		require.NoError(t, err)
		assert.Equal(t, 9, v)
	})
}

func TestAll(t *testing.T) {
	t.Run("all present", func(t *testing.T) {
		v, err := All(Value(1), Value(2), Value(3)).Get()
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, v)
	})

	t.Run("one absent poisons the collection", func(t *testing.T) {
		_, ok, err := All(Value(1), Absent[int]()).TryGet()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("empty collection is present", func(t *testing.T) {
		v, err := All[int]().Get()
		require.NoError(t, err)
		assert.Empty(t, v)
	})
}

func TestDiamondChain_IsNotReportedAsCycle(t *testing.T) {
	shared := Value(2)
	left := Map(shared, func(v int) int { return v + 1 })
	right := Map(shared, func(v int) int { return v * 10 })

	v, err := Zip(left, right, func(a, b int) int { return a + b }).Get()
	require.NoError(t, err)
	assert.Equal(t, 23, v)
}

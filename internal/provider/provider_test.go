package provider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_AlwaysPresent(t *testing.T) {
	p := Value(42)

	v, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, ok, err := p.TryGet()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestValue_RepeatedGetsAreEqual(t *testing.T) {
	p := Value("stable")

	first, err := p.Get()
	require.NoError(t, err)
	second, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAbsent_NeverPresent(t *testing.T) {
	p := Absent[string]()

	_, ok, err := p.TryGet()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = p.Get()
	var noValue *NoValueError
	require.ErrorAs(t, err, &noValue)
}

func TestCall_EvaluatesLazilyOnEachGet(t *testing.T) {
	calls := 0
	p := Call(func() (int, error) {
		calls++
		return calls, nil
	})
	assert.Equal(t, 0, calls, "nothing should run before Get")

	v, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = p.Get()
	require.NoError(t, err)
	assert.Equal(t, 2, v, "Call re-evaluates on every Get")
}

func TestCall_FailureBecomesEvaluationError(t *testing.T) {
	cause := errors.New("upstream task failed")
	p := Call(func() (string, error) {
		return "", cause
	})

	_, err := p.Get()
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.ErrorIs(t, err, cause)
}

func TestOf_AdaptsSupplier(t *testing.T) {
	present := Of[int](SupplierFunc[int](func() (int, bool, error) {
		return 7, true, nil
	}))
	v, err := present.Get()
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	absent := Of[int](SupplierFunc[int](func() (int, bool, error) {
		return 0, false, nil
	}))
	_, ok, err := absent.TryGet()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOf_DoesNotDoubleWrapClassifiedErrors(t *testing.T) {
	inner := &EvaluationError{Subject: "inner", Err: errors.New("boom")}
	p := Of[int](SupplierFunc[int](func() (int, bool, error) {
		return 0, false, inner
	}))

	_, _, err := p.TryGet()
	assert.Same(t, inner, err)
}

func TestGetOrElse(t *testing.T) {
	testCases := []struct {
		name     string
		p        Provider[string]
		fallback string
		expected string
	}{
		{name: "present value wins", p: Value("set"), fallback: "fb", expected: "set"},
		{name: "absent uses fallback", p: Absent[string](), fallback: "fb", expected: "fb"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := tc.p.GetOrElse(tc.fallback)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, v)
		})
	}
}

func TestGetOrElse_DoesNotSwallowEvaluationFailures(t *testing.T) {
	p := Call(func() (string, error) {
		return "", errors.New("boom")
	})

	_, err := p.GetOrElse("fb")
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
}

func TestTaskOutput_CarriesProducer(t *testing.T) {
	p := TaskOutput[string]("task.compile", SupplierFunc[string](func() (string, bool, error) {
		return "classes", true, nil
	}))

	producers := p.Node().OwnProducers()
	require.Len(t, producers, 1)
	assert.EqualValues(t, "task.compile", producers[0])
}

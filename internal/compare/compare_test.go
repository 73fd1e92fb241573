package compare

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGen struct {
	chunks []string
	delay  time.Duration
	err    error
}

func (f *fakeGen) Stream(_ context.Context, _ string, onChunk func(string)) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return f.err
	}
	for _, c := range f.chunks {
		onChunk(c)
	}
	return nil
}

func (f *fakeGen) GenerateStructured(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("not used")
}

func TestRunReturnsBothOutputs(t *testing.T) {
	t.Parallel()

	a := Arm{Name: "openai", Gen: &fakeGen{chunks: []string{"alpha ", "one"}}}
	b := Arm{Name: "gemini", Gen: &fakeGen{chunks: []string{"beta ", "two"}, delay: 10 * time.Millisecond}}

	ra, rb := Run(context.Background(), "compare this", a, b)
	require.NoError(t, ra.Err)
	require.NoError(t, rb.Err)
	assert.Equal(t, "openai", ra.Name)
	assert.Equal(t, "alpha one", ra.Output)
	assert.Equal(t, "gemini", rb.Name)
	assert.Equal(t, "beta two", rb.Output)
}

func TestRunOneArmFailureDoesNotCancelOther(t *testing.T) {
	t.Parallel()

	a := Arm{Name: "broken", Gen: &fakeGen{err: fmt.Errorf("quota exhausted")}}
	b := Arm{Name: "healthy", Gen: &fakeGen{chunks: []string{"still ", "fine"}, delay: 20 * time.Millisecond}}

	ra, rb := Run(context.Background(), "compare this", a, b)
	require.Error(t, ra.Err)
	require.NoError(t, rb.Err)
	assert.Equal(t, "still fine", rb.Output)
}

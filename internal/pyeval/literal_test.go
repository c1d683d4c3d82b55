package pyeval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		src  string
		want string // repr
	}{
		{`[[1, 2], [3, 4]]`, `[[1, 2], [3, 4]]`},
		{`[['a', "b"], ["c", 'd']]`, `[['a', 'b'], ['c', 'd']]`},
		{"[\n  [1, 2.5],\n  [True, None],\n]", `[[1, 2.5], [True, None]]`},
		{`[-1, +2, -3.0]`, `[-1, 2, -3.0]`},
		{`[]`, `[]`},
		{`'it\'s'`, `"it's"`},
	}
	for _, tc := range tests {
		v, err := ParseLiteral(tc.src)
		require.NoError(t, err, tc.src)
		assert.Equal(t, tc.want, v.Repr(), tc.src)
	}
}

func TestParseLiteralErrors(t *testing.T) {
	for _, src := range []string{`[1, 2`, `[1 2]`, `[x]`, `[1] tail`, `['open]`, `[os.system('x')]`} {
		_, err := ParseLiteral(src)
		assert.Error(t, err, src)
	}
	_, err := ParseLiteral(`[abc]`)
	assert.ErrorIs(t, err, ErrRejected)
}

func TestParseLiteralPrefix(t *testing.T) {
	src := `[[1, 2], [3, 4]][1][0] vaut combien ? l'élève`
	v, end, err := ParseLiteralPrefix(src)
	require.NoError(t, err)
	assert.Equal(t, `[[1, 2], [3, 4]]`, v.Repr())
	assert.Equal(t, `[1][0] vaut combien ? l'élève`, src[end:])
}

func TestListItem(t *testing.T) {
	l := List{Int(1), Str("b"), Int(3)}
	v, ok := l.Item(-2)
	require.True(t, ok)
	assert.Equal(t, Str("b"), v)
	_, ok = l.Item(3)
	assert.False(t, ok)
	_, ok = l.Item(-4)
	assert.False(t, ok)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "chat", Display(Str("chat")))
	assert.Equal(t, "5", Display(Int(5)))
	assert.Equal(t, "1.0", Display(Float(1)))
	assert.Equal(t, "['a', 1]", Display(List{Str("a"), Int(1)}))
	assert.Equal(t, "False", Display(Bool(false)))
}

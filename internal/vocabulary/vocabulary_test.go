package vocabulary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAdd(t *testing.T) {
	l := NewList([]string{"钢梁", "塔吊"})

	assert.True(t, l.Add("模板"))
	assert.False(t, l.Add("钢梁"), "duplicate")
	assert.False(t, l.Add(""), "empty")
	assert.False(t, l.Add("   "), "whitespace")
	assert.True(t, l.Add("Beam"))
	assert.True(t, l.Add("beam"), "matching is case-sensitive")

	assert.Equal(t, []string{"钢梁", "塔吊", "模板", "Beam", "beam"}, l.Terms())
}

func TestListRemoveAndMove(t *testing.T) {
	l := NewList([]string{"a", "b", "c"})

	assert.False(t, l.MoveUp("a"), "first cannot move up")
	assert.False(t, l.MoveDown("c"), "last cannot move down")
	assert.False(t, l.MoveUp("zzz"))
	assert.Equal(t, []string{"a", "b", "c"}, l.Terms())

	assert.True(t, l.MoveUp("c"))
	assert.Equal(t, []string{"a", "c", "b"}, l.Terms())

	assert.True(t, l.MoveDown("a"))
	assert.Equal(t, []string{"c", "a", "b"}, l.Terms())

	assert.True(t, l.Remove("a"))
	assert.False(t, l.Remove("a"))
	assert.Equal(t, []string{"c", "b"}, l.Terms())
}

func TestNewListDropsDuplicates(t *testing.T) {
	l := NewList([]string{"a", "", "a", " b "})
	assert.Equal(t, []string{"a", "b"}, l.Terms())
}

func TestQuickSelect(t *testing.T) {
	v := New([]string{"钢梁", "塔吊"}, []string{"吊装", "焊接", "切割"})

	tests := []struct {
		name     string
		n        int
		noun     string
		wantKind Kind
		wantTerm string
		wantOK   bool
	}{
		{"noun first", 2, "", Nouns, "塔吊", true},
		{"verb after noun", 3, "钢梁", Verbs, "切割", true},
		{"noun out of range", 3, "", Nouns, "", false},
		{"verb out of range", 9, "钢梁", Verbs, "", false},
		{"zero", 0, "", Nouns, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, term, ok := v.QuickSelect(tt.n, tt.noun)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantTerm, term)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	v := New([]string{"塔吊", "钢梁"}, []string{"吊装"})
	v.Nouns().MoveDown("塔吊")

	data, err := v.Serialize()
	require.NoError(t, err)
	assert.Contains(t, string(data), "钢梁", "non-ASCII stays readable")

	back, err := Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"钢梁", "塔吊"}, back.Nouns().Terms())
	assert.Equal(t, []string{"吊装"}, back.Verbs().Terms())
}

func TestDeserializeCorrupt(t *testing.T) {
	v, err := Deserialize([]byte("{nouns: oops"))
	assert.Error(t, err)
	require.NotNil(t, v)
	assert.True(t, v.Empty())

	v, err = Deserialize([]byte(`{"nouns": ["x"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, v.Nouns().Terms())
	assert.Equal(t, 0, v.Verbs().Len())
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("Noun")
	assert.True(t, ok)
	assert.Equal(t, Nouns, k)

	k, ok = ParseKind("verbs")
	assert.True(t, ok)
	assert.Equal(t, Verbs, k)

	_, ok = ParseKind("adjective")
	assert.False(t, ok)
}

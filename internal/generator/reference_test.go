package generator

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "alternator-reqgen/internal/common/errors"
)

func TestSerialize_SortedKeysNoHTMLEscape(t *testing.T) {
	v := Object{
		"b": NewList("x", nil, Object{}),
		"a": "<&>",
		"c": NewList(),
	}
	out, err := Serialize(v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"<&>","b":["x",null,{}],"c":[]}`, out)

	out, err = Serialize(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", out)
}

func TestClone_IsDeep(t *testing.T) {
	orig := Object{"m": Object{"k": "v"}, "l": NewList("a")}
	cp := Clone(orig).(Object)

	cp["m"].(Object)["k"] = "changed"
	cp["l"].(*List).Items[0] = "changed"

	assert.Equal(t, "v", orig["m"].(Object)["k"])
	assert.Equal(t, "a", orig["l"].(*List).Items[0])
}

func TestMemberRef_ReadWrite(t *testing.T) {
	obj := Object{"Name": "x"}
	ref := NewMemberRef(obj, "Name", "body.Name")

	assert.Equal(t, "body.Name", ref.Name())
	assert.Equal(t, "x", ref.Read())
	require.NoError(t, ref.Write(NewList()))
	assert.Equal(t, NewList(), obj["Name"])
}

func TestKeyRef_RenamesKeepingValue(t *testing.T) {
	obj := Object{"a": "1", "b": "2"}
	ref := NewKeyRef(obj, "a", "body.key")

	require.NoError(t, ref.Write("z"))
	assert.Equal(t, Object{"z": "1", "b": "2"}, obj)
	assert.Equal(t, "z", ref.Key())
	assert.Equal(t, "z", ref.Read())

	require.NoError(t, ref.Write("a"))
	assert.Equal(t, Object{"a": "1", "b": "2"}, obj)
}

func TestKeyRef_RejectsLeaveContainerUntouched(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  error
	}{
		{"null", nil, errNotString},
		{"object", Object{}, errNotString},
		{"list", NewList(), errNotString},
		{"existing key", "b", errKeyTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := Object{"a": "1", "b": "2"}
			ref := NewKeyRef(obj, "a", "body.key")

			err := ref.Write(tt.value)
			assert.True(t, errors.Is(err, tt.want))
			assert.Equal(t, Object{"a": "1", "b": "2"}, obj)
		})
	}
}

func TestKeyRef_MissingKey(t *testing.T) {
	obj := Object{}
	ref := NewKeyRef(obj, "gone", "body.key")
	assert.ErrorIs(t, ref.Write("x"), errKeyMissing)
	assert.Empty(t, obj)
}

func TestIndexRef_OutOfRange(t *testing.T) {
	list := NewList("a")
	ref := NewIndexRef(list, 3, "body[0]")

	assert.Nil(t, ref.Read())
	assert.ErrorIs(t, ref.Write("x"), errOutOfRange)
	assert.Equal(t, []Value{"a"}, list.Items)
}

func TestAttempt_RestoresForEveryContainer(t *testing.T) {
	mutations := []Value{nil, "invalid", Object{}, NewList(), "", "!@#$%^&*"}

	t.Run("member", func(t *testing.T) {
		obj := Object{"A": Object{"S": "x"}, "B": "y"}
		before := Clone(obj)
		for _, m := range mutations {
			calls := 0
			err := attempt(NewMemberRef(obj, "A", "body.A"), m, func(string) error {
				calls++
				assert.Equal(t, m, obj["A"])
				return nil
			}, "label")
			require.NoError(t, err)
			assert.Equal(t, 1, calls)
			assert.Empty(t, cmp.Diff(before, obj))
		}
	})

	t.Run("key", func(t *testing.T) {
		obj := Object{"k": "v", "other": "w"}
		before := Clone(obj)
		for _, m := range mutations {
			require.NoError(t, attempt(NewKeyRef(obj, "k", "body.key"), m, func(string) error { return nil }, "label"))
			assert.Empty(t, cmp.Diff(before, obj))
		}
	})

	t.Run("index", func(t *testing.T) {
		list := NewList("a", "b")
		before := Clone(list)
		for _, m := range mutations {
			require.NoError(t, attempt(NewIndexRef(list, 0, "body[0]"), m, func(string) error { return nil }, "label"))
			assert.Empty(t, cmp.Diff(before, list))
		}
	})
}

func TestAttempt_RejectedWriteSkipsEmit(t *testing.T) {
	obj := Object{"k": "v"}
	called := false
	err := attempt(NewKeyRef(obj, "k", "body.key"), nil, func(string) error {
		called = true
		return nil
	}, "unexpected_null")

	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, Object{"k": "v"}, obj)
}

func TestAttempt_RestoresEvenWhenEmitFails(t *testing.T) {
	obj := Object{"A": "x"}
	boom := errors.New("boom")
	err := attempt(NewMemberRef(obj, "A", "body.A"), nil, func(string) error { return boom }, "label")

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Object{"A": "x"}, obj)
}

type brokenRef struct{ writes int }

func (b *brokenRef) Name() string { return "broken" }
func (b *brokenRef) Read() Value  { return "x" }
func (b *brokenRef) Write(Value) error {
	b.writes++
	if b.writes > 1 {
		return errors.New("cannot restore")
	}
	return nil
}

func TestAttempt_RestoreFailureIsReported(t *testing.T) {
	err := attempt(&brokenRef{}, nil, func(string) error { return nil }, "label")
	assert.ErrorIs(t, err, apperrors.ErrRestoreFailed)
}

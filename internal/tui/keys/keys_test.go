package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
)

func Test_keyMapToSlice(t *testing.T) {
	got := KeyMapToSlice(Navigation)
	want := []key.Binding{
		Navigation.Next,
		Navigation.Previous,
		Navigation.LineUp,
		Navigation.LineDown,
	}
	assert.Equal(t, want, got)
}

func Test_keyMapToSlice_NotStruct(t *testing.T) {
	assert.Nil(t, KeyMapToSlice("not a keymap"))
}

func TestNoGlobalConflicts(t *testing.T) {
	seen := make(map[string]string)
	for _, binding := range KeyMapToSlice(Global) {
		for _, k := range binding.Keys() {
			if other, ok := seen[k]; ok {
				t.Errorf("key %q bound to both %q and %q", k, other, binding.Help().Desc)
			}
			seen[k] = binding.Help().Desc
		}
	}
}

// pkg/domain/pipeline/directive_test.go
package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	reg := NewRegistry()
	for _, e := range named("config", "timeout") {
		reg.RegisterEntry(e)
	}
	return reg
}

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		directives []Directive
		want       []string
		wantErr    error
	}{
		{
			name:       "use by name",
			directives: []Directive{{Op: OpUse, Name: "config"}},
			want:       []string{"static", "lock", "config"},
		},
		{
			name:       "insert after by name",
			directives: []Directive{{Op: OpInsertAfter, Target: "static", Name: "config"}},
			want:       []string{"static", "config", "lock"},
		},
		{
			name:       "insert before by name",
			directives: []Directive{{Op: OpInsertBefore, Target: "static", Name: "config"}},
			want:       []string{"config", "static", "lock"},
		},
		{
			name:       "swap by name",
			directives: []Directive{{Op: OpSwap, Target: "lock", Name: "timeout"}},
			want:       []string{"static", "timeout"},
		},
		{
			name:       "delete",
			directives: []Directive{Delete("static")},
			want:       []string{"lock"},
		},
		{
			name: "code entry wins over registry",
			directives: []Directive{
				Use(named("custom")[0]),
				InsertBefore("custom", named("early")[0]),
				InsertAfter("static", named("late")[0]),
				Swap("lock", named("replacement")[0]),
			},
			want: []string{"static", "late", "replacement", "early", "custom"},
		},
		{
			name: "declaration order",
			directives: []Directive{
				{Op: OpUse, Name: "config"},
				{Op: OpInsertBefore, Target: "config", Name: "timeout"},
				Delete("lock"),
			},
			want: []string{"static", "timeout", "config"},
		},
		{
			name:       "unknown name",
			directives: []Directive{{Op: OpUse, Name: "nope"}},
			want:       []string{"static", "lock"},
			wantErr:    ErrUnknownMiddleware,
		},
		{
			name: "unknown target stops later directives",
			directives: []Directive{
				{Op: OpInsertAfter, Target: "missing", Name: "config"},
				{Op: OpUse, Name: "timeout"},
			},
			want:    []string{"static", "lock"},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStack(named("static", "lock")...)
			err := Apply(s, testRegistry(), tt.directives...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, s.Names())
		})
	}
}

func TestApply_NilRegistry(t *testing.T) {
	s := NewStack()
	err := Apply(s, nil, Directive{Op: OpUse, Name: "config"})
	assert.ErrorIs(t, err, ErrUnknownMiddleware)
}

func TestDirective_String(t *testing.T) {
	assert.Equal(t, "use config", Directive{Op: OpUse, Name: "config"}.String())
	assert.Equal(t, "insert_after static config", Directive{Op: OpInsertAfter, Target: "static", Name: "config"}.String())
	assert.Equal(t, "delete static", Delete("static").String())
}

func TestRegistry_Names(t *testing.T) {
	reg := testRegistry()
	assert.Equal(t, []string{"config", "timeout"}, reg.Names())

	_, err := reg.Lookup("config")
	assert.NoError(t, err)

	_, err = reg.Lookup("missing")
	var ue *UnknownMiddlewareError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "missing", ue.Name)
}

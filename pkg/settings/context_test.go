package settings

import (
	"context"
	"testing"
)

func TestFromContext(t *testing.T) {
	run := &Run{Mode: ModeTree, NoColor: true}
	tests := []struct {
		name   string
		ctx    context.Context
		want   *Run
		wantOk bool
	}{
		{
			name:   "with settings",
			ctx:    IntoContext(context.Background(), run),
			want:   run,
			wantOk: true,
		},
		{
			name: "without settings",
			ctx:  context.Background(),
		},
		{
			name: "nil settings",
			ctx:  IntoContext(context.Background(), nil),
		},
		{
			name: "wrong type",
			ctx:  context.WithValue(context.Background(), settingsContextKey, "wrong type"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromContext(tt.ctx)
			if ok != tt.wantOk {
				t.Errorf("FromContext() ok = %v; want %v", ok, tt.wantOk)
			}
			if got != tt.want {
				t.Errorf("FromContext() = %p; want %p", got, tt.want)
			}
		})
	}
}

func TestIntoContextKeepsParentValues(t *testing.T) {
	type otherKey struct{}
	parent := context.WithValue(context.Background(), otherKey{}, "kept")
	ctx := IntoContext(parent, &Run{})

	if ctx.Value(otherKey{}) != "kept" {
		t.Error("IntoContext() dropped parent values")
	}
	if _, ok := FromContext(parent); ok {
		t.Error("parent context must not see the settings")
	}
}

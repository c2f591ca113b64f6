package ggedit

import (
	"testing"

	"github.com/gogpu/ggedit/filter"
	"github.com/gogpu/ggedit/preset"
)

// TestDefaultOptions tests that NewEditor applies the defaults.
func TestDefaultOptions(t *testing.T) {
	e, err := NewEditor()
	if err != nil {
		t.Fatal(err)
	}

	st := e.State()
	if st.Width != DefaultWidth || st.Height != DefaultHeight {
		t.Errorf("size = %dx%d, want %dx%d", st.Width, st.Height, DefaultWidth, DefaultHeight)
	}
	if e.opts.fitRatio != DefaultFitRatio {
		t.Errorf("fitRatio = %v, want %v", e.opts.fitRatio, DefaultFitRatio)
	}
	if e.Presets() == nil || e.Presets().Len() == 0 {
		t.Error("default registry is empty")
	}
}

// TestOptionsApplied tests each option in isolation.
func TestOptionsApplied(t *testing.T) {
	reg, err := preset.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name  string
		opt   EditorOption
		check func(o editorOptions) bool
	}{
		{"size", WithSize(30, 20), func(o editorOptions) bool { return o.width == 30 && o.height == 20 }},
		{"background", WithBackground(filter.RGB(1, 2, 3)), func(o editorOptions) bool { return o.background == filter.RGB(1, 2, 3) }},
		{"fit ratio", WithFitRatio(0.5), func(o editorOptions) bool { return o.fitRatio == 0.5 }},
		{"fit ratio ignored", WithFitRatio(-1), func(o editorOptions) bool { return o.fitRatio == DefaultFitRatio }},
		{"history", WithHistoryLimit(3), func(o editorOptions) bool { return o.historyLimit == 3 }},
		{"presets", WithPresets(reg), func(o editorOptions) bool { return o.presets == reg }},
		{"export name", WithExportName("out.png"), func(o editorOptions) bool { return o.exportName == "out.png" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			tt.opt(&o)
			if !tt.check(o) {
				t.Errorf("option not applied: %+v", o)
			}
		})
	}
}

// TestCustomRegistryUsed tests that ApplyPreset looks names up in the
// injected registry.
func TestCustomRegistryUsed(t *testing.T) {
	reg, err := preset.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEditor(WithSize(20, 20), WithPresets(reg))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.LoadImage(testPhoto(4, 4)); err != nil {
		t.Fatal(err)
	}
	if err := e.ApplyPreset("cyberpunk"); err == nil {
		t.Error("empty registry resolved a built-in preset")
	}
}

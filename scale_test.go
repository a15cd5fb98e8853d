package pixeloid

import (
	"errors"
	"testing"
)

func TestScaleCheck(t *testing.T) {
	tests := []struct {
		scale   Scale
		wantErr bool
	}{
		{1, false},
		{100, false},
		{0, true},
		{-3, true},
	}

	for _, tt := range tests {
		err := tt.scale.Check()
		if (err != nil) != tt.wantErr {
			t.Errorf("Scale(%d).Check() error = %v, wantErr %v", tt.scale, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidScale) {
			t.Errorf("Scale(%d).Check() should wrap ErrInvalidScale, got %v", tt.scale, err)
		}
	}
}

func TestScaleDistance(t *testing.T) {
	if d := Scale(10).Distance(7); d != 3 {
		t.Errorf("Distance(10,7) = %d, want 3", d)
	}
	if d := Scale(3).Distance(9); d != 6 {
		t.Errorf("Distance(3,9) = %d, want 6", d)
	}
	if d := Scale(5).Distance(5); d != 0 {
		t.Errorf("Distance(5,5) = %d, want 0", d)
	}
}

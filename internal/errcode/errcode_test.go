package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"bare code", FrameTooShort, FrameTooShort},
		{"E", New(UnsupportedSensor, "op", "sensor 7"), UnsupportedSensor},
		{"wrapped E", fmt.Errorf("outer: %w", New(InvalidHeader, "decode", "")), InvalidHeader},
		{"plain error", errors.New("boom"), Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Of(tt.err))
		})
	}
}

func TestEIs(t *testing.T) {
	err := fmt.Errorf("wrap: %w", New(InvalidArgument, "ConvertSpeed", "unknown unit"))

	assert.ErrorIs(t, err, InvalidArgument)
	assert.NotErrorIs(t, err, UnsupportedStation)
	assert.Equal(t, "wrap: ConvertSpeed: invalid_argument: unknown unit", err.Error())
}

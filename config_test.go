package usbserial

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.BaudRate != 9600 {
		t.Errorf("Expected BaudRate 9600, got %d", config.BaudRate)
	}
	if config.ReadBufferSize != 1024 {
		t.Errorf("Expected ReadBufferSize 1024, got %d", config.ReadBufferSize)
	}
	if config.DefaultTimeout != time.Second {
		t.Errorf("Expected DefaultTimeout 1s, got %v", config.DefaultTimeout)
	}
}

func TestWithBaudRate(t *testing.T) {
	tests := []struct {
		rate    int
		wantErr bool
	}{
		{9600, false},
		{115200, false},
		{4000000, false},
		{0, true},
		{-9600, true},
		{12345, true},
	}

	for _, tt := range tests {
		config := DefaultConfig()
		err := WithBaudRate(tt.rate)(&config)
		if (err != nil) != tt.wantErr {
			t.Errorf("WithBaudRate(%d) error = %v, wantErr %v", tt.rate, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidBaudRate) {
			t.Errorf("WithBaudRate(%d) = %v, expected ErrInvalidBaudRate", tt.rate, err)
		}
		if err == nil && config.BaudRate != tt.rate {
			t.Errorf("BaudRate = %d, expected %d", config.BaudRate, tt.rate)
		}
	}
}

func TestWithReadBufferSize(t *testing.T) {
	config := DefaultConfig()

	if err := WithReadBufferSize(4096)(&config); err != nil {
		t.Errorf("WithReadBufferSize(4096) failed: %v", err)
	}
	if config.ReadBufferSize != 4096 {
		t.Errorf("ReadBufferSize = %d, expected 4096", config.ReadBufferSize)
	}

	if err := WithReadBufferSize(0)(&config); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("WithReadBufferSize(0) = %v, expected ErrInvalidConfig", err)
	}
}

func TestWithDefaultTimeout(t *testing.T) {
	config := DefaultConfig()

	if err := WithDefaultTimeout(5 * time.Second)(&config); err != nil {
		t.Errorf("WithDefaultTimeout(5s) failed: %v", err)
	}
	if config.DefaultTimeout != 5*time.Second {
		t.Errorf("DefaultTimeout = %v, expected 5s", config.DefaultTimeout)
	}

	if err := WithDefaultTimeout(0)(&config); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("WithDefaultTimeout(0) = %v, expected ErrInvalidConfig", err)
	}
	if err := WithDefaultTimeout(-time.Second)(&config); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("WithDefaultTimeout(-1s) = %v, expected ErrInvalidConfig", err)
	}
}

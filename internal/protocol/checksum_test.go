package protocol

import (
	"bytes"
	"testing"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want byte
	}{
		{name: "empty", data: nil, want: 0x00},
		{name: "single byte", data: []byte{0x42}, want: 0x42},
		{name: "no overflow", data: []byte{0x01, 0x02, 0x03}, want: 0x06},
		{name: "wraps at 256", data: []byte{0xFF, 0x02}, want: 0x01},
		{name: "exact multiple of 256", data: []byte{0x80, 0x80}, want: 0x00},
		{name: "magic header", data: []byte{0x50, 0x56, 0x54}, want: 0xFA},
		{
			name: "beep on payload",
			data: []byte{0x50, 0x56, 0x54, 0x06, 0x01, 0x0F, 0x00, 0xDD},
			want: 0xED,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.data); got != tt.want {
				t.Errorf("Checksum() = 0x%02X, want 0x%02X", got, tt.want)
			}
		})
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i * 7)
	}

	first := Checksum(data)
	for i := 0; i < 10; i++ {
		if got := Checksum(data); got != first {
			t.Fatalf("Checksum() not deterministic: 0x%02X then 0x%02X", first, got)
		}
	}

	var sum int
	for _, b := range data {
		sum += int(b)
	}
	if int(first) != sum%256 {
		t.Errorf("Checksum() = 0x%02X, want sum mod 256 = 0x%02X", first, sum%256)
	}
}

func TestAppendChecksum(t *testing.T) {
	data := []byte{0x50, 0x56, 0x54, 0x08, 0x0C}
	original := append([]byte(nil), data...)

	got := AppendChecksum(data)

	if len(got) != len(data)+1 {
		t.Fatalf("len = %d, want %d", len(got), len(data)+1)
	}
	if !bytes.Equal(got[:len(data)], data) {
		t.Errorf("prefix = % X, want % X", got[:len(data)], data)
	}
	if got[len(data)] != 0x0E {
		t.Errorf("checksum = 0x%02X, want 0x0E", got[len(data)])
	}
	if !bytes.Equal(data, original) {
		t.Errorf("input modified: % X, want % X", data, original)
	}

	// Appending to a slice with spare capacity must not write into it
	backing := make([]byte, 3, 10)
	out := AppendChecksum(backing)
	out[0] = 0xAA
	if backing[0] == 0xAA {
		t.Error("AppendChecksum() aliases the input backing array")
	}
}

func TestAppendChecksum_Empty(t *testing.T) {
	got := AppendChecksum(nil)
	if !bytes.Equal(got, []byte{0x00}) {
		t.Errorf("AppendChecksum(nil) = % X, want 00", got)
	}
}

func TestVerifyChecksum(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
		want  bool
	}{
		{name: "empty", frame: nil, want: false},
		{name: "single zero byte", frame: []byte{0x00}, want: true},
		{name: "valid", frame: []byte{0x01, 0x02, 0x03}, want: true},
		{name: "invalid", frame: []byte{0x01, 0x02, 0x04}, want: false},
		{name: "appended", frame: AppendChecksum([]byte{0xFE, 0xFE, 0xFE}), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyChecksum(tt.frame); got != tt.want {
				t.Errorf("VerifyChecksum(% X) = %v, want %v", tt.frame, got, tt.want)
			}
		})
	}
}

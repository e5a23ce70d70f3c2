package keycodec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		id   uint64
		want string
	}{
		{name: "zero", id: 0, want: "a"},
		{name: "one", id: 1, want: "b"},
		{name: "last single digit", id: 61, want: "9"},
		{name: "first two digits", id: 62, want: "ba"},
		{name: "two digits", id: 125, want: "cb"},
		{name: "three digits", id: 62 * 62, want: "baa"},
		{name: "max uint64", id: math.MaxUint64, want: "v8QrKbgkrIp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.id))
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    uint64
		wantErr error
	}{
		{name: "single char", key: "a", want: 0},
		{name: "last char counts", key: "ba", want: 62},
		{name: "last char counts 2", key: "bb", want: 63},
		{name: "three chars", key: "baa", want: 3844},
		{name: "max uint64", key: "v8QrKbgkrIp", want: math.MaxUint64},
		{name: "empty", key: "", wantErr: ErrInvalidKey},
		{name: "dash", key: "ab-c", wantErr: ErrInvalidKey},
		{name: "space", key: "ab c", wantErr: ErrInvalidKey},
		{name: "trailing bad char", key: "abc_", wantErr: ErrInvalidKey},
		{name: "unicode", key: "abé", wantErr: ErrInvalidKey},
		{name: "overflow", key: "v8QrKbgkrIq", wantErr: ErrInvalidKey},
		{name: "too long for uint64", key: "bAAAAAAAAAAA", wantErr: ErrInvalidKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.key)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	const upper = 10_000_000

	step := uint64(1)
	if testing.Short() {
		step = 997
	}
	for n := uint64(0); n <= upper; n += step {
		key := Encode(n)
		if key == "" {
			t.Fatalf("Encode(%d) returned empty key", n)
		}
		got, err := Decode(key)
		if err != nil {
			t.Fatalf("Decode(Encode(%d)) = %q error: %v", n, key, err)
		}
		if got != n {
			t.Fatalf("Decode(Encode(%d)) = %d", n, got)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{key: "mysite", want: true},
		{key: "a", want: true},
		{key: "Z9z9Z9z9Z9", want: true},
		{key: "", want: false},
		{key: "elevenchars", want: false},
		{key: "my-site", want: false},
		{key: "my site", want: false},
		{key: "сайт", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.key))
		})
	}
}

func BenchmarkEncode(b *testing.B) {
	for i := range b.N {
		_ = Encode(uint64(i))
	}
}

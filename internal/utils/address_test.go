package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantName    string
		wantAddress string
	}{
		{
			name:        "name and bracketed address",
			raw:         "John Doe <john@example.com>",
			wantName:    "John Doe",
			wantAddress: "john@example.com",
		},
		{
			name:        "quoted name",
			raw:         `"John Doe" <john@example.com>`,
			wantName:    "John Doe",
			wantAddress: "john@example.com",
		},
		{
			name:        "non-ascii name",
			raw:         "Сенчук Назар <senchuknazar6@gmail.com>",
			wantName:    "Сенчук Назар",
			wantAddress: "senchuknazar6@gmail.com",
		},
		{
			name:        "bare address",
			raw:         "john@example.com",
			wantName:    "",
			wantAddress: "john@example.com",
		},
		{
			name:        "address is lowercased",
			raw:         "Jane Doe <Jane@X.COM>",
			wantName:    "Jane Doe",
			wantAddress: "jane@x.com",
		},
		{
			name:        "bare address is lowercased",
			raw:         "USER@Example.COM",
			wantName:    "",
			wantAddress: "user@example.com",
		},
		{
			name:        "address embedded in malformed text",
			raw:         "forwarded by robot: jane@x.com, do not reply",
			wantName:    "",
			wantAddress: "jane@x.com",
		},
		{
			name:        "surrounding whitespace",
			raw:         "  john@example.com  ",
			wantName:    "",
			wantAddress: "john@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, address := ParseAddress(tt.raw)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantAddress, address)
		})
	}
}

func TestParseAddressNeverFails(t *testing.T) {
	// no usable address anywhere: the raw input comes back as the address
	// so downstream records always have a key
	name, address := ParseAddress("completely unparseable")
	assert.Equal(t, "", name)
	assert.Equal(t, "completely unparseable", address)

	name, address = ParseAddress("")
	assert.Equal(t, "", name)
	assert.Equal(t, "", address)
}

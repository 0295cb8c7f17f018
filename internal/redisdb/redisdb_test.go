package redisdb

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
)

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantAddr     string
		wantPassword string
		wantErr      bool
	}{
		{
			name:     "docker style address",
			url:      "redis:6379",
			wantAddr: "redis:6379",
		},
		{
			name:     "plain url",
			url:      "redis://localhost:6379",
			wantAddr: "localhost:6379",
		},
		{
			name:         "url with bare password",
			url:          "redis://secretpass@some-host:6380",
			wantAddr:     "some-host:6380",
			wantPassword: "secretpass",
		},
		{
			name:    "garbage",
			url:     "http://\x7f",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseRedisURL(tt.url, false)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantAddr, opts.Addr)
			assert.Equal(t, tt.wantPassword, opts.Password)
		})
	}
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	r, err := NewRedisClient(mr.Addr(), false)
	assert.NoError(t, err)
	assert.NotNil(t, r.Client())
	assert.NotNil(t, r.MakeRedisClient())
}

func TestNewRedisClientConnectionRefused(t *testing.T) {
	_, err := NewRedisClient("localhost:1", false)
	assert.Error(t, err)
}

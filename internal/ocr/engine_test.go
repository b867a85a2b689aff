package ocr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	testCases := []struct {
		engineType string
		wantErr    bool
	}{
		{engineType: "gosseract"},
		{engineType: ""},
		{engineType: "tesseract"},
		{engineType: "ollama", wantErr: true},
		{engineType: "magic", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("type=%q", tc.engineType), func(t *testing.T) {
			e, err := NewEngine(tc.engineType, "eng")
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, e)
			assert.NoError(t, e.Close())
		})
	}
}

func TestAvailable(t *testing.T) {
	orig := lookPath
	defer func() { lookPath = orig }()

	lookPath = func(string) (string, error) { return "", fmt.Errorf("not found") }
	assert.False(t, Available())

	lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	assert.True(t, Available())
}

func TestInstallHint(t *testing.T) {
	assert.Contains(t, InstallHint(), "tesseract-ocr")
}

package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShowLoading(t *testing.T) {
	var buf bytes.Buffer
	ShowLoading(&buf, "Analyzing %s", "sessions")
	assert.Equal(t, " Analyzing sessions...\n", buf.String())
}

func TestShowError(t *testing.T) {
	var buf bytes.Buffer
	ShowError(&buf, "Error", errors.New("bad config"))
	assert.Equal(t, " ✗ Error: bad config\n", buf.String())

	buf.Reset()
	ShowError(&buf, "scan cancelled", nil)
	assert.Equal(t, " ✗ scan cancelled\n", buf.String())
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyUploadResult(t *testing.T) {
	assert.Equal(t, "All changed files are ignored. Triggering passing notifications.",
		emptyUploadResult(`{"result": "All changed files are ignored. Triggering passing notifications.", "non_ignored_files": []}`))
	assert.Empty(t, emptyUploadResult(`{"non_ignored_files": ["a.go"]}`))
	assert.Empty(t, emptyUploadResult("not json"))
	assert.Empty(t, emptyUploadResult(""))
}

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractStructuredResponse(t *testing.T) {
	raw := `{"filename": "MainActivity.kt", "content": "class MainActivity"}`
	result := Extract(raw)
	assert.True(t, result.WasStructured)
	assert.Equal(t, "class MainActivity", result.Content)
}

func TestExtractStructuredWithSurroundingProse(t *testing.T) {
	raw := "Sure! Here is the file you asked for:\n" +
		`{"filename": "activity_main.xml", "content": "<LinearLayout/>"}` +
		"\nLet me know if you need anything else."
	result := Extract(raw)
	assert.True(t, result.WasStructured)
	assert.Equal(t, "<LinearLayout/>", result.Content)
}

func TestExtractMultilineContent(t *testing.T) {
	raw := `{"filename": "build.gradle.kts", "content": "plugins {\n    id(\"com.android.application\")\n}"}`
	result := Extract(raw)
	assert.True(t, result.WasStructured)
	assert.Equal(t, "plugins {\n    id(\"com.android.application\")\n}", result.Content)
}

func TestExtractNoBracesFallsBack(t *testing.T) {
	raw := "I could not produce JSON, here is the code instead: class MainActivity"
	result := Extract(raw)
	assert.False(t, result.WasStructured)
	assert.Equal(t, raw, result.Content)
}

func TestExtractMalformedJSONFallsBack(t *testing.T) {
	raw := `{"filename": "MainActivity.kt", "content": `
	result := Extract(raw)
	assert.False(t, result.WasStructured)
	assert.Equal(t, raw, result.Content)
}

func TestExtractEmptyContentFallsBack(t *testing.T) {
	raw := `{"filename": "MainActivity.kt", "content": ""}`
	result := Extract(raw)
	assert.False(t, result.WasStructured)
	assert.Equal(t, raw, result.Content)
}

func TestExtractMissingContentFieldFallsBack(t *testing.T) {
	raw := `{"filename": "MainActivity.kt"}`
	result := Extract(raw)
	assert.False(t, result.WasStructured)
	assert.Equal(t, raw, result.Content)
}

func TestExtractUnbalancedBracesFallsBack(t *testing.T) {
	raw := `}{"content": "x"`
	result := Extract(raw)
	assert.False(t, result.WasStructured)
	assert.Equal(t, raw, result.Content)
}

func TestExtractEmptyInput(t *testing.T) {
	result := Extract("")
	assert.False(t, result.WasStructured)
	assert.Equal(t, "", result.Content)
}

func TestExtractIgnoresClaimedFilename(t *testing.T) {
	// The filename field is conventional; only content matters.
	raw := `{"filename": "totally/wrong/path.txt", "content": "real content"}`
	result := Extract(raw)
	assert.True(t, result.WasStructured)
	assert.Equal(t, "real content", result.Content)
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDictCheck(t *testing.T) {
	path := writeFile(t, "cat,chat\n,dog\ndog,chien\n")

	out, err := execute(t, "dict", "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "line 2: empty original")
	assert.Contains(t, out, "2 valid, 1 skipped")

	_, err = execute(t, "dict", "check", "--strict", path)
	assert.Error(t, err)
}

func TestDictCheck_ExtraFields(t *testing.T) {
	path := writeFile(t, "a,b,c\n")

	out, err := execute(t, "dict", "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 valid, 0 skipped")

	out, err = execute(t, "dict", "check", "--extra-fields", "reject", path)
	require.NoError(t, err)
	assert.Contains(t, out, "0 valid, 1 skipped")

	_, err = execute(t, "dict", "check", "--extra-fields", "split", path)
	assert.Error(t, err)
}

func TestDictCheck_MissingFile(t *testing.T) {
	_, err := execute(t, "dict", "check", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = execute(t, "dict", "check")
	assert.Error(t, err)
}

func TestUserAdd_Validation(t *testing.T) {
	_, err := execute(t, "user", "add", "--username", "bob")
	assert.ErrorContains(t, err, "required")

	_, err = execute(t, "user", "add", "--username", "bob", "--password", "pw", "--role", "root")
	assert.ErrorContains(t, err, "role")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "doc-translator version dev")
}

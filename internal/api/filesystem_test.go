package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpgate/mcpgate/internal/fileops"
)

// populateSandbox writes a small tree under base:
//
//	hello.txt
//	blob.bin (non-UTF-8 bytes)
//	sub/nested.txt
func populateSandbox(t *testing.T, base string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(base, "hello.txt"), []byte("hello\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "blob.bin"), []byte{0xFF, 0x00, 0x10}, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "sub", "nested.txt"), []byte("nested"), 0o644))
}

func TestListFiles_Shallow(t *testing.T) {
	t.Parallel()

	controller, base := setupTestController(t, "")
	populateSandbox(t, base)

	body := `{"path":"` + base + `"}`
	rec := doRequest(t, controller, http.MethodPost, "/list", body, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Files, 3)

	byName := make(map[string]fileops.FileEntry, len(resp.Files))
	for _, entry := range resp.Files {
		byName[entry.Name] = entry
	}
	assert.False(t, byName["hello.txt"].IsDir)
	require.NotNil(t, byName["hello.txt"].Size)
	assert.Equal(t, int64(6), *byName["hello.txt"].Size)
	assert.True(t, byName["sub"].IsDir)
	assert.Nil(t, byName["sub"].Size)
}

func TestListFiles_Recursive(t *testing.T) {
	t.Parallel()

	controller, base := setupTestController(t, "")
	populateSandbox(t, base)

	body := `{"path":"` + base + `","recursive":true}`
	rec := doRequest(t, controller, http.MethodPost, "/list", body, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Files, 4)

	paths := make([]string, 0, len(resp.Files))
	for _, entry := range resp.Files {
		paths = append(paths, entry.Path)
	}
	assert.Contains(t, paths, filepath.Join(base, "sub", "nested.txt"))
}

func TestListFiles_Errors(t *testing.T) {
	t.Parallel()

	controller, base := setupTestController(t, "")

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing_path_field", `{}`, http.StatusBadRequest},
		{"malformed_json", `{"path":`, http.StatusBadRequest},
		{"missing_directory", `{"path":"` + base + `/nope"}`, http.StatusNotFound},
		{"outside_sandbox", `{"path":"` + base + `2"}`, http.StatusForbidden},
		{"parent_escape", `{"path":"` + base + `/../other"}`, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, controller, http.MethodPost, "/list", tt.body, "")
			assert.Equal(t, tt.want, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Code)
		})
	}
}

func TestReadFile_Text(t *testing.T) {
	t.Parallel()

	controller, base := setupTestController(t, "")
	populateSandbox(t, base)

	body := `{"path":"` + base + `/hello.txt"}`
	rec := doRequest(t, controller, http.MethodPost, "/read", body, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp fileops.ReadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hello\n", resp.Content)
	assert.Equal(t, "utf-8", resp.Encoding)
}

func TestReadFile_BinaryFallsBackToBase64(t *testing.T) {
	t.Parallel()

	controller, base := setupTestController(t, "")
	populateSandbox(t, base)

	body := `{"path":"` + base + `/blob.bin"}`
	rec := doRequest(t, controller, http.MethodPost, "/read", body, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp fileops.ReadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, fileops.EncodingBase64, resp.Encoding)

	raw, err := base64.StdEncoding.DecodeString(resp.Content)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0x00, 0x10}, raw)
}

func TestReadFile_Errors(t *testing.T) {
	t.Parallel()

	controller, base := setupTestController(t, "")
	populateSandbox(t, base)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing_path_field", `{}`, http.StatusBadRequest},
		{"missing_file", `{"path":"` + base + `/nope.txt"}`, http.StatusNotFound},
		{"directory_target", `{"path":"` + base + `/sub"}`, http.StatusBadRequest},
		{"unknown_encoding", `{"path":"` + base + `/hello.txt","encoding":"no-such-charset"}`, http.StatusBadRequest},
		{"outside_sandbox", `{"path":"/etc/hostname"}`, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, controller, http.MethodPost, "/read", tt.body, "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

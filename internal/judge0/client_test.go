package judge0_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeladder/exam-backend/internal/judge0"
)

func b64(s string) *string {
	encoded := base64.StdEncoding.EncodeToString([]byte(s))
	return &encoded
}

func TestExecute_PollsUntilTerminal(t *testing.T) {
	var polls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			require.Equal(t, "/submissions", r.URL.Path)
			require.Equal(t, "true", r.URL.Query().Get("base64_encoded"))

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			source, err := base64.StdEncoding.DecodeString(req["source_code"].(string))
			require.NoError(t, err)
			assert.Equal(t, "print(1+2)", string(source))
			stdin, err := base64.StdEncoding.DecodeString(req["stdin"].(string))
			require.NoError(t, err)
			assert.Equal(t, "1 2", string(stdin))

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})

		case http.MethodGet:
			require.Equal(t, "/submissions/tok-1", r.URL.Path)
			resp := map[string]any{
				"status": map[string]any{"id": judge0.StatusProcessing, "description": "Processing"},
			}
			if polls.Add(1) >= 2 {
				resp = map[string]any{
					"stdout": b64("3\n"),
					"status": map[string]any{"id": judge0.StatusAccepted, "description": "Accepted"},
					"time":   "0.012",
					"memory": 3456,
				}
			}
			json.NewEncoder(w).Encode(resp)
		}
	}))
	defer srv.Close()

	client := judge0.NewClient(srv.URL, "", 5*time.Millisecond, zerolog.Nop())
	result, err := client.Execute(context.Background(), "print(1+2)", 71, "1 2")
	require.NoError(t, err)

	assert.Equal(t, judge0.StatusAccepted, result.StatusID)
	assert.Equal(t, "3\n", result.Stdout)
	assert.Equal(t, "0.012", result.Time)
	assert.Equal(t, 3456, result.Memory)
	assert.GreaterOrEqual(t, polls.Load(), int32(2))
}

func TestExecute_SendsAuthToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret-token", r.Header.Get("X-Auth-Token"))
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status": map[string]any{"id": judge0.StatusAccepted, "description": "Accepted"},
		})
	}))
	defer srv.Close()

	client := judge0.NewClient(srv.URL, "secret-token", 5*time.Millisecond, zerolog.Nop())
	_, err := client.Execute(context.Background(), "x", 71, "")
	require.NoError(t, err)
}

func TestExecute_CompileErrorDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"compile_output": b64("error: expected ';'"),
			"status":         map[string]any{"id": judge0.StatusCompileError, "description": "Compilation Error"},
		})
	}))
	defer srv.Close()

	client := judge0.NewClient(srv.URL, "", 5*time.Millisecond, zerolog.Nop())
	result, err := client.Execute(context.Background(), "x", 50, "")
	require.NoError(t, err)

	assert.Equal(t, judge0.StatusCompileError, result.StatusID)
	assert.Equal(t, "error: expected ';'", result.CompileOutput)
}

func TestExecute_DecodesWrappedBase64(t *testing.T) {
	// Judge0 wraps base64 payloads at 76 columns; embedded newlines must not
	// break decoding.
	long := "this line of output is long enough that its base64 encoding exceeds seventy-six characters"
	encoded := base64.StdEncoding.EncodeToString([]byte(long))
	wrapped := encoded[:76] + "\n" + encoded[76:]

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"stdout": wrapped,
			"status": map[string]any{"id": judge0.StatusAccepted, "description": "Accepted"},
		})
	}))
	defer srv.Close()

	client := judge0.NewClient(srv.URL, "", 5*time.Millisecond, zerolog.Nop())
	result, err := client.Execute(context.Background(), "x", 71, "")
	require.NoError(t, err)
	assert.Equal(t, long, result.Stdout)
}

func TestExecute_ContextCancelledDuringPoll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status": map[string]any{"id": judge0.StatusInQueue, "description": "In Queue"},
		})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	client := judge0.NewClient(srv.URL, "", 5*time.Millisecond, zerolog.Nop())
	_, err := client.Execute(ctx, "x", 71, "")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

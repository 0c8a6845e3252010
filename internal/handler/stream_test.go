package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/chat/stream", nil)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return env.hub.Subscribers(chatChannel) == 1 }, 2*time.Second, 10*time.Millisecond)

	token := env.token(t, env.alice.ID)
	w := env.do(http.MethodPost, "/api/chat/sendMessage", token, gin.H{"message": "streamed"})
	require.Equal(t, http.StatusCreated, w.Code)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if strings.HasPrefix(scanner.Text(), "data:") {
				lines <- scanner.Text()
				return
			}
		}
		close(lines)
	}()

	select {
	case line := <-lines:
		assert.Contains(t, line, `"type":"message"`)
		assert.Contains(t, line, `"message":"streamed"`)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	cancel()
	assert.Eventually(t, func() bool { return env.hub.Subscribers(chatChannel) == 0 }, 2*time.Second, 10*time.Millisecond)
}

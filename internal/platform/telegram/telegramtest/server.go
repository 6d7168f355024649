// Package telegramtest runs a fake Bot API server for tests.
package telegramtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"giveaway-engine/internal/platform/telegram"
)

const Token = "123456:test-token"

// Call is one recorded Bot API request.
type Call struct {
	Method string
	Params map[string]string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	statuses map[int64]string
	failing  map[string]bool
}

func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		statuses: make(map[int64]string),
		failing:  make(map[string]bool),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Client returns a telegram.Client talking to this server.
func (s *Server) Client(t *testing.T) *telegram.Client {
	t.Helper()
	c, err := telegram.NewClientWithEndpoint(Token, s.URL+"/bot%s/%s", s.Server.Client())
	if err != nil {
		t.Fatalf("telegram client: %v", err)
	}
	return c
}

// SetStatus sets the chat member status returned for userID.
func (s *Server) SetStatus(userID int64, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[userID] = status
}

// Fail makes every call to method return a 500 error.
func (s *Server) Fail(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[method] = true
}

// Calls returns recorded calls of method.
func (s *Server) Calls(method string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	params := make(map[string]string, len(r.Form))
	for k := range r.Form {
		params[k] = r.Form.Get(k)
	}

	s.mu.Lock()
	if method != "getMe" {
		s.calls = append(s.calls, Call{Method: method, Params: params})
	}
	failing := s.failing[method]
	s.mu.Unlock()

	if failing {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	switch method {
	case "getMe":
		writeResult(w, map[string]interface{}{"id": 1, "is_bot": true, "first_name": "bot", "username": "test_bot"})
	case "getChatMember":
		userID, _ := strconv.ParseInt(params["user_id"], 10, 64)
		s.mu.Lock()
		status, ok := s.statuses[userID]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusBadRequest, "Bad Request: user not found")
			return
		}
		writeResult(w, map[string]interface{}{
			"user":   map[string]interface{}{"id": userID, "is_bot": false, "first_name": "user"},
			"status": status,
		})
	case "sendMessage", "editMessageText":
		chatID, _ := strconv.ParseInt(params["chat_id"], 10, 64)
		writeResult(w, map[string]interface{}{
			"message_id": 1,
			"date":       0,
			"chat":       map[string]interface{}{"id": chatID, "type": "supergroup"},
			"text":       params["text"],
		})
	default:
		writeError(w, http.StatusNotFound, "Not Found: method not found")
	}
}

func writeResult(w http.ResponseWriter, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "result": result})
}

func writeError(w http.ResponseWriter, code int, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":          false,
		"error_code":  code,
		"description": description,
	})
}

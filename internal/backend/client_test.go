package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lifecoo/internal/domain"
)

func TestClientOptimizeSucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	payloads := make(chan domain.TripRequest, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != EndpointOptimize || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" || r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing headers: %v", r.Header)
		}
		var got domain.TripRequest
		_ = json.NewDecoder(r.Body).Decode(&got)
		payloads <- got
		_, _ = io.WriteString(w, `{"execRecapBullets":["Fly YYC-LHR"],"routingOptions":[{"title":"Direct","bullets":["9h"]}],"riskRadarBullets":[],"riskLevel":"Low"}`)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL + "/"})
	result, err := client.Optimize(context.Background(), domain.TripRequest{Origin: "Calgary (YYC)", Destination: "London (LHR)"}, nil)
	if err != nil {
		t.Fatalf("optimize failed: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one call, got %d", calls.Load())
	}
	got := <-payloads
	if got.Origin != "Calgary (YYC)" || got.Destination != "London (LHR)" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if len(result.RoutingOptions) != 1 || result.RoutingOptions[0].Title != "Direct" || result.RiskLevel != "Low" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestClientRetriesOnceOnServerError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "cold", http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"riskLevel":"High"}`)
	}))
	defer server.Close()

	var retried []string
	client := NewClient(Config{BaseURL: server.URL})
	result, err := client.Optimize(context.Background(), domain.TripRequest{Origin: "a", Destination: "b"}, func(endpoint string, _ error) {
		retried = append(retried, endpoint)
	})
	if err != nil {
		t.Fatalf("optimize failed: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected two calls, got %d", calls.Load())
	}
	if len(retried) != 1 || retried[0] != EndpointOptimize {
		t.Fatalf("expected one retry notification, got %v", retried)
	}
	if result.RiskLevel != "High" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestClientNeverMoreThanTwoAttempts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.Optimize(context.Background(), domain.TripRequest{Origin: "a", Destination: "b"}, nil)
	if !errors.Is(err, domain.ErrServer) {
		t.Fatalf("expected server failure, got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected status error, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected two calls, got %d", calls.Load())
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad input", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.Interpret(context.Background(), "to london", nil)
	if !errors.Is(err, domain.ErrServer) {
		t.Fatalf("expected server failure, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call for 4xx, got %d", calls.Load())
	}
}

func TestClientRetriesAfterFirstAttemptTimeout(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-time.After(500 * time.Millisecond):
			case <-r.Context().Done():
			}
			return
		}
		_, _ = io.WriteString(w, `{"origin":"Calgary (YYC)","destination":"London (LHR)"}`)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, FirstAttemptTimeout: 50 * time.Millisecond, RetryTimeout: 2 * time.Second})
	var retryCause error
	result, err := client.Interpret(context.Background(), "calgary to london", func(_ string, cause error) {
		retryCause = cause
	})
	if err != nil {
		t.Fatalf("interpret failed: %v", err)
	}
	if !errors.Is(retryCause, domain.ErrNetwork) {
		t.Fatalf("expected network failure to trigger retry, got %v", retryCause)
	}
	if result.Origin != "Calgary (YYC)" || result.Destination != "London (LHR)" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected two calls, got %d", calls.Load())
	}
}

func TestClientNetworkFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(Config{BaseURL: url, FirstAttemptTimeout: 200 * time.Millisecond, RetryTimeout: 200 * time.Millisecond})
	_, err := client.Interpret(context.Background(), "hello", nil)
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected network failure, got %v", err)
	}
}

func TestClientInterpretLenientFields(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"origin":" Calgary (YYC) ","destination":null,"travellers":4,"preferences":{"x":1}}`)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	result, err := client.Interpret(context.Background(), "family of four from calgary", nil)
	if err != nil {
		t.Fatalf("interpret failed: %v", err)
	}
	want := domain.InterpretResult{Origin: "Calgary (YYC)", Travellers: "4"}
	if result != want {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestClientInterpretInvalidJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	if _, err := client.Interpret(context.Background(), "x", nil); !errors.Is(err, domain.ErrServer) {
		t.Fatalf("expected server failure for bad json, got %v", err)
	}
}

func TestClientRecapAudioSingleAttempt(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var posted domain.OptimizeResult
		_ = json.NewDecoder(r.Body).Decode(&posted)
		if posted.RiskLevel != "Medium" {
			http.Error(w, "bad", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3audio"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	clip, err := client.RecapAudio(context.Background(), domain.OptimizeResult{RiskLevel: "Medium"})
	if err != nil {
		t.Fatalf("recap audio failed: %v", err)
	}
	if string(clip.Data) != "ID3audio" || clip.ContentType != "audio/mpeg" {
		t.Fatalf("unexpected clip: %+v", clip)
	}

	if _, err := client.RecapAudio(context.Background(), domain.OptimizeResult{RiskLevel: "High"}); !errors.Is(err, domain.ErrServer) {
		t.Fatalf("expected server failure, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one call per recap request, got %d", calls.Load())
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want bool
	}{
		{&NetworkError{Endpoint: "/x", Err: errors.New("reset")}, true},
		{&StatusError{Status: 500}, true},
		{&StatusError{Status: 503}, true},
		{&StatusError{Status: 599}, true},
		{&StatusError{Status: 404}, false},
		{&StatusError{Status: 429}, false},
		{errors.New("other"), false},
	}
	for _, tc := range cases {
		if got := IsRetryable(tc.err); got != tc.want {
			t.Fatalf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

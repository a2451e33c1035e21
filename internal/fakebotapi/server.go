// Package fakebotapi provides a fake Rubika Bot API server for testing purposes.
// It answers POST and GET requests on /{token}/{endpoint} with the JSON envelope
// the real API uses and includes various failure injection capabilities.
//
// To flexibly inject failures, you can configure stub responses
// that match specific endpoints and payloads, along with failure configurations
// that specify how it fails (e.g., delays, HTTP status codes, dropped connections).
//
// Routing is implemented using `gorilla/mux`.
package fakebotapi

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/rubika-bot/rubika.go/internal/codec"
	"github.com/rubika-bot/rubika.go/pkg/logger"
)

// BasePath is the path prefix the server mounts the API under.
const BasePath = "/v3"

// Envelope statuses the server answers with.
const (
	StatusOK            = "OK"
	StatusInvalidAccess = "INVALID_ACCESS"
	StatusInvalidInput  = "INVALID_INPUT"
)

func cryptoRandInt64(rMax int64) int64 {
	if rMax <= 0 {
		return 0
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(rMax))
	return n.Int64()
}

func cryptoRandFloat64() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(1<<53))
	return float64(n.Int64()) / float64(1<<53)
}

// FailureType represents the type of failure to inject during request processing
type FailureType string

const (
	// FailureNone indicates no failure injection
	FailureNone FailureType = "none"
	// FailureRequestDelay delays before processing the request
	FailureRequestDelay FailureType = "request_delay"
	// FailureHTTPStatus answers with FailureConfig.StatusCode and a plain text body
	FailureHTTPStatus FailureType = "http_status"
	// FailureInvalidResponse answers 200 with a body that is not JSON
	FailureInvalidResponse FailureType = "invalid_response"
	// FailurePartialMessage answers 200 with only half of the envelope
	FailurePartialMessage FailureType = "partial_message"
	// FailureDropConnection closes the underlying network connection without answering
	FailureDropConnection FailureType = "drop_connection"
)

// RequestMatcher defines criteria for matching incoming requests.
type RequestMatcher struct {
	// Endpoint is the endpoint name to match
	Endpoint string
	// Matcher is an optional function to match based on the decoded JSON payload.
	// If nil, only the endpoint is used for matching.
	Matcher func(payload map[string]any) bool
}

// StubResponse defines a pre-configured envelope for matching requests.
type StubResponse struct {
	// Matcher determines which requests this stub should handle
	Matcher RequestMatcher
	// Status is the envelope status; empty means StatusOK
	Status string
	// Data is encoded as the envelope's data field when not nil
	Data any
	// DevMessage is encoded as dev_message when not empty
	DevMessage string
	// Failures defines failure injection configurations for this response
	Failures []FailureConfig
}

// FailureConfig defines how and when to inject a specific failure type
type FailureConfig struct {
	// Type specifies the type of failure to inject
	Type FailureType
	// Probability of triggering this failure (0.0 to 1.0)
	Probability float64
	// Times limits the failure to the first Times matching requests (0 for no limit)
	Times int
	// MinDelay is the minimum delay for FailureRequestDelay
	MinDelay time.Duration
	// MaxDelay is the maximum delay for FailureRequestDelay
	MaxDelay time.Duration
	// StatusCode is the HTTP status for FailureHTTPStatus (500 when zero)
	StatusCode int
}

// RecordedRequest is a request the server received.
type RecordedRequest struct {
	Method   string
	Token    string
	Endpoint string
	Body     []byte
}

type failureState struct {
	FailureConfig
	triggered int
}

type stubState struct {
	StubResponse
	failures []*failureState
}

// Server is a fake Rubika Bot API server with support for stub responses
// and failure injection
type Server struct {
	addr           string
	token          string
	listener       net.Listener
	server         *http.Server
	mu             sync.RWMutex
	stubs          []*stubState
	globalFailures []*failureState
	requests       []RecordedRequest
	codec          codec.JSON

	// Logger receives server side errors; Nop by default.
	Logger logger.Logger
}

// NewServer creates a new fake Bot API server that accepts token.
// Use "127.0.0.1:0" to bind to a random available port.
func NewServer(addr, token string) *Server {
	s := &Server{
		addr:   addr,
		token:  token,
		Logger: logger.Nop(),
	}

	r := mux.NewRouter()
	api := r.PathPrefix(BasePath).Subrouter()
	api.HandleFunc("/{token}/{endpoint}", s.handle).Methods(http.MethodPost, http.MethodGet)

	s.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// AddStubResponse adds a stub response configuration to the server.
// Stub responses are matched in the order they were added.
func (s *Server) AddStubResponse(stub StubResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs = append(s.stubs, &stubState{StubResponse: stub, failures: newFailureStates(stub.Failures)})
}

// SetGlobalFailures sets failure configurations that apply to all requests.
// These are checked before stub-specific failures.
func (s *Server) SetGlobalFailures(failures []FailureConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globalFailures = newFailureStates(failures)
}

// Requests returns every request received so far, in arrival order.
func (s *Server) Requests() []RecordedRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Start starts the server and begins accepting connections.
// Returns an error if the server cannot bind to the specified address.
func (s *Server) Start() error {
	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("fake bot api server error", "error", err)
		}
	}()

	return nil
}

// Stop shuts down the server and closes all connections
func (s *Server) Stop() error {
	return s.server.Close()
}

// Address returns the actual address the server is listening on.
// This is useful when using "127.0.0.1:0" to get the assigned port.
func (s *Server) Address() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// BaseURL returns the URL clients should use as their base URL.
func (s *Server) BaseURL() string {
	return "http://" + s.Address() + BasePath
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	token, endpoint := vars["token"], vars["endpoint"]

	body, err := readBody(r)
	if err != nil {
		s.Logger.Warn("reading request body", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:   r.Method,
		Token:    token,
		Endpoint: endpoint,
		Body:     body,
	})
	globalFailures := s.globalFailures
	s.mu.Unlock()

	for _, f := range globalFailures {
		if s.trigger(f) && s.applyFailure(w, f.FailureConfig, nil) {
			return
		}
	}

	if token != s.token {
		s.writeEnvelope(w, StatusInvalidAccess, nil, "invalid bot token")
		return
	}

	var payload map[string]any
	if len(body) > 0 {
		if err := s.codec.Unmarshal(body, &payload); err != nil {
			s.writeEnvelope(w, StatusInvalidInput, nil, "payload is not a JSON object")
			return
		}
	}

	stub := s.findStub(endpoint, payload)
	if stub == nil {
		s.writeEnvelope(w, StatusInvalidInput, nil, "unknown endpoint "+endpoint)
		return
	}

	for _, f := range stub.failures {
		if s.trigger(f) && s.applyFailure(w, f.FailureConfig, stub) {
			return
		}
	}

	status := stub.Status
	if status == "" {
		status = StatusOK
	}
	s.writeEnvelope(w, status, stub.Data, stub.DevMessage)
}

func (s *Server) findStub(endpoint string, payload map[string]any) *stubState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, stub := range s.stubs {
		if stub.Matcher.Endpoint != endpoint {
			continue
		}
		if stub.Matcher.Matcher == nil || stub.Matcher.Matcher(payload) {
			return stub
		}
	}
	return nil
}

// trigger reports whether f fires for the current request and counts it.
func (s *Server) trigger(f *failureState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.Times > 0 && f.triggered >= f.Times {
		return false
	}
	if !shouldTriggerFailure(f.Probability) {
		return false
	}
	f.triggered++
	return true
}

// applyFailure injects failure and reports whether the response has been
// written (or abandoned) so the caller must stop.
func (s *Server) applyFailure(w http.ResponseWriter, failure FailureConfig, stub *stubState) bool {
	switch failure.Type {
	case FailureRequestDelay:
		time.Sleep(randomDuration(failure.MinDelay, failure.MaxDelay))
		return false

	case FailureHTTPStatus:
		code := failure.StatusCode
		if code == 0 {
			code = http.StatusInternalServerError
		}
		http.Error(w, http.StatusText(code), code)
		return true

	case FailureInvalidResponse:
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("<html>upstream unavailable</html>")); err != nil {
			s.Logger.Warn("writing invalid response", "error", err)
		}
		return true

	case FailurePartialMessage:
		var data any
		if stub != nil {
			data = stub.Data
		}
		raw, err := s.encodeEnvelope(StatusOK, data, "")
		if err != nil {
			s.Logger.Error("encoding partial message", "error", err)
			return false
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(raw[:len(raw)/2]); err != nil {
			s.Logger.Warn("writing partial message", "error", err)
		}
		return true

	case FailureDropConnection:
		hj, ok := w.(http.Hijacker)
		if !ok {
			s.Logger.Error("response writer does not support hijacking")
			return false
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			s.Logger.Error("hijacking connection", "error", err)
			return false
		}
		if err := conn.Close(); err != nil {
			s.Logger.Warn("closing hijacked connection", "error", err)
		}
		return true
	}

	return false
}

func (s *Server) encodeEnvelope(status string, data any, devMessage string) ([]byte, error) {
	env := map[string]any{"status": status}
	if data != nil {
		env["data"] = data
	}
	if devMessage != "" {
		env["dev_message"] = devMessage
	}
	return s.codec.Marshal(env)
}

func (s *Server) writeEnvelope(w http.ResponseWriter, status string, data any, devMessage string) {
	raw, err := s.encodeEnvelope(status, data, devMessage)
	if err != nil {
		s.Logger.Error("encoding envelope", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(raw); err != nil {
		s.Logger.Warn("writing envelope", "error", err)
	}
}

// maxBodySize bounds the request bodies the server reads.
const maxBodySize = 1 << 20

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, maxBodySize))
}

func newFailureStates(failures []FailureConfig) []*failureState {
	states := make([]*failureState, 0, len(failures))
	for _, f := range failures {
		states = append(states, &failureState{FailureConfig: f})
	}
	return states
}

func shouldTriggerFailure(probability float64) bool {
	if probability <= 0 {
		return false
	}
	if probability >= 1 {
		return true
	}
	return cryptoRandFloat64() < probability
}

func randomDuration(dMin, dMax time.Duration) time.Duration {
	if dMin >= dMax {
		return dMin
	}
	return dMin + time.Duration(cryptoRandInt64(int64(dMax-dMin)))
}

// MatchEndpoint creates a RequestMatcher that matches only by endpoint
func MatchEndpoint(endpoint string) RequestMatcher {
	return RequestMatcher{
		Endpoint: endpoint,
	}
}

// MatchEndpointWithPayload creates a RequestMatcher that matches by endpoint
// and payload using a custom matcher function
func MatchEndpointWithPayload(endpoint string, matcher func(payload map[string]any) bool) RequestMatcher {
	return RequestMatcher{
		Endpoint: endpoint,
		Matcher:  matcher,
	}
}

// SimpleStubResponse creates an OK stub response for an endpoint without failure injection
func SimpleStubResponse(endpoint string, data any) StubResponse {
	return StubResponse{
		Matcher: MatchEndpoint(endpoint),
		Data:    data,
	}
}

// ErrorStubResponse creates a stub response with a non-OK envelope status
func ErrorStubResponse(endpoint, status, devMessage string) StubResponse {
	return StubResponse{
		Matcher:    MatchEndpoint(endpoint),
		Status:     status,
		DevMessage: devMessage,
	}
}

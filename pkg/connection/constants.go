package connection

import "net/http"

// Method is the HTTP method a request is issued with.
type Method string

const (
	MethodGet  Method = http.MethodGet
	MethodPost Method = http.MethodPost
)

func (m Method) valid() bool {
	return m == MethodGet || m == MethodPost
}

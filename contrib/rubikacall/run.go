package rubikacall

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rubika-bot/rubika.go/internal/codec"
	"github.com/rubika-bot/rubika.go/pkg/connection"
	"github.com/rubika-bot/rubika.go/pkg/constants"
	"github.com/rubika-bot/rubika.go/pkg/logger"
)

// Request describes the call Run performs.
type Request struct {
	Endpoint string
	// Method is GET or POST, case-insensitive. Empty means POST.
	Method string
	// Payload is a JSON object sent as the request body. Empty sends no body.
	Payload string
}

// Run connects with cfg, performs req and writes the data of the response
// to out followed by a newline.
func Run(ctx context.Context, cfg *Config, req Request, out io.Writer) error {
	method, err := parseMethod(req.Method)
	if err != nil {
		return err
	}

	var payload any
	if req.Payload != "" {
		var obj map[string]any
		if err := (codec.JSON{}).Unmarshal([]byte(req.Payload), &obj); err != nil {
			return fmt.Errorf("%w: payload must be a JSON object: %v", constants.ErrInvalidRequest, err)
		}
		payload = obj
	}

	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	build := logger.Build().WithLevel(cfg.level())
	if cfg.LogFile != "" {
		build = build.FromPath(cfg.LogFile)
	}
	logData, err := build.Make()
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	if logData.LogFile != nil {
		defer logData.LogFile.Close()
	}
	opts = append(opts, connection.WithLogger(logger.NewZerolog(logData.Logger)))

	conn := connection.New(connection.NewConfig(cfg.Token, opts...))
	if err := conn.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		_ = conn.Disconnect(ctx)
	}()

	data, err := conn.Request(ctx, req.Endpoint, method, payload)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, data.String())
	return err
}

func parseMethod(raw string) (connection.Method, error) {
	switch strings.ToUpper(raw) {
	case "", string(connection.MethodPost):
		return connection.MethodPost, nil
	case string(connection.MethodGet):
		return connection.MethodGet, nil
	default:
		return "", fmt.Errorf("%w: unsupported method %q", constants.ErrInvalidRequest, raw)
	}
}

package handler

import (
	"bytes"
	"context"
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/decoder"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	spb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/codes"
	"google.golang.org/protobuf/proto"
	"net/http"
	"net/http/httptest"
	"testing"
)

type failingIngestService struct {
	err error
}

func (f *failingIngestService) Ingest(context.Context, capture.Signal, string, []byte) (*capture.Capture, error) {
	return nil, f.err
}

func export(t *testing.T, err error) (int, *spb.Status) {
	h := OTLPHandler(&failingIngestService{err: err}, capture.SignalTraces, zap.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/v1/traces", bytes.NewReader([]byte{0x0a}))
	req.Header.Set("Content-Type", ProtobufContentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var st spb.Status
	require.NoError(t, proto.Unmarshal(rec.Body.Bytes(), &st))
	return rec.Code, &st
}

func TestOTLPHandler(t *testing.T) {
	t.Run("Decode failures are client errors", func(t *testing.T) {
		decodeErr := &decoder.DecodeError{Reason: wire.ReasonTruncated, Offset: 1}
		code, st := export(t, fmt.Errorf("failed to decode traces payload: %w", decodeErr))
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, int32(codes.InvalidArgument), st.Code)
	})

	t.Run("Store failures are server errors", func(t *testing.T) {
		code, st := export(t, fmt.Errorf("failed to store capture: %w", capture.ErrSetFailed))
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, int32(codes.Internal), st.Code)
		assert.Contains(t, st.Message, capture.ErrSetFailed.Error())
	})
}

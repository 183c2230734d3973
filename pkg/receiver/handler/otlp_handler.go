package handler

import (
	"compress/gzip"
	"errors"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver/service"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"io"
	"mime"
	"net/http"
)

const (
	Transport           = "http"
	ProtobufContentType = "application/x-protobuf"
	MaxPayloadBytes     = 64 << 20
)

// OTLPHandler accepts OTLP/HTTP protobuf exports for one signal. Failures are
// answered with an encoded google.rpc.Status as OTLP/HTTP requires.
// @Summary Receive an OTLP export request.
// @Tags receiver
// @Accept application/x-protobuf
// @Produce application/x-protobuf
// @Success 200 "Empty export response"
// @Failure 400 "google.rpc.Status describing the decode failure"
// @Failure 415 "Only application/x-protobuf is accepted"
// @Failure 500 "google.rpc.Status describing a receiver failure"
// @Router /v1/{signal} [post]
func OTLPHandler(
	is service.IngestService,
	signal capture.Signal,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer closeBody(r.Body, logger)

		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != ProtobufContentType {
			statusError(w, codes.InvalidArgument, "unsupported content type, expect "+ProtobufContentType, http.StatusUnsupportedMediaType, logger)
			return
		}

		var body io.Reader = http.MaxBytesReader(w, r.Body, MaxPayloadBytes)
		if r.Header.Get("Content-Encoding") == "gzip" {
			gz, err := gzip.NewReader(body)
			if err != nil {
				statusError(w, codes.InvalidArgument, "invalid gzip body: "+err.Error(), http.StatusBadRequest, logger)
				return
			}
			defer gz.Close()
			body = io.LimitReader(gz, MaxPayloadBytes+1)
		}
		payload, err := io.ReadAll(body)
		if err != nil {
			code := http.StatusBadRequest
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				code = http.StatusRequestEntityTooLarge
			}
			statusError(w, codes.InvalidArgument, "failed to read body: "+err.Error(), code, logger)
			return
		}
		if len(payload) > MaxPayloadBytes {
			statusError(w, codes.InvalidArgument, "payload too large", http.StatusRequestEntityTooLarge, logger)
			return
		}

		if _, err := is.Ingest(r.Context(), signal, Transport, payload); err != nil {
			if service.IsDecodeError(err) {
				statusError(w, codes.InvalidArgument, err.Error(), http.StatusBadRequest, logger)
				return
			}
			logger.Error("Failed to ingest payload", zap.String("signal", string(signal)), zap.Error(err))
			statusError(w, codes.Internal, err.Error(), http.StatusInternalServerError, logger)
			return
		}
		w.Header().Set("Content-Type", ProtobufContentType)
		w.WriteHeader(http.StatusOK)
	}
}

func statusError(w http.ResponseWriter, code codes.Code, message string, httpStatus int, logger *zap.Logger) {
	body, err := proto.Marshal(status.New(code, message).Proto())
	if err != nil {
		logger.Error("Failed to encode status", zap.Error(err))
		HttpError(w, message, httpStatus, logger)
		return
	}
	w.Header().Set("Content-Type", ProtobufContentType)
	w.WriteHeader(httpStatus)
	if _, err := w.Write(body); err != nil {
		logger.Error("Failed to write status", zap.Error(err))
	}
}

package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/soundshelf/soundshelf-backend/pkg/errors"
	"github.com/soundshelf/soundshelf-backend/pkg/logger"
	"github.com/soundshelf/soundshelf-backend/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, message string, data any) {
	WriteSuccessStatus(w, http.StatusOK, message, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, types.Envelope{
		Status:  types.StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// WriteError maps a typed error onto the wire. Validation failures that
// carry a message list use the plural envelope variant; everything else uses
// the single-message shape. Internal detail never reaches the client — it
// goes to the structured log instead.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if meta.DetailsAllowed {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	if logg != nil {
		dump := pkgerrors.Dump(err)
		fields := map[string]any{
			"error":       dump.TopMessage,
			"error_code":  dump.Code,
			"error_chain": dump.Chain,
		}
		if dump.PGCode != "" {
			fields["pg_code"] = dump.PGCode
			fields["pg_detail"] = dump.PGDetail
			fields["pg_message"] = dump.PGMessage
		}
		ctx = logg.WithFields(ctx, fields)
		logg.Error(ctx, "request.error", err)
	}

	if meta.DetailsAllowed {
		if messages, ok := typed.Details().([]string); ok && len(messages) > 0 {
			writeJSON(w, meta.HTTPStatus, types.ValidationEnvelope{
				Status:   types.StatusError,
				Messages: messages,
				Data:     nil,
			})
			return
		}
	}

	writeJSON(w, meta.HTTPStatus, types.Envelope{
		Status:  types.StatusError,
		Message: msg,
		Data:    nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}

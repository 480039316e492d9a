package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

func decode(r *http.Request, into interface{}) error {
	rawJSON, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(rawJSON) == 0 {
		rawJSON = []byte("{}")
	}
	return json.Unmarshal(rawJSON, into)
}

func respond(ctx context.Context, rw http.ResponseWriter, status int, data interface{}) {
	_, span := otel.GetTracerProvider().Tracer("").Start(ctx, "handler.respond")
	span.SetAttributes(attribute.Int("http.status", status))
	defer span.End()

	if status == http.StatusNoContent || data == nil {
		rw.WriteHeader(status)
		return
	}

	rawJSON, err := json.Marshal(data)
	if err != nil {
		panic("respond-json-marshal:" + err.Error())
	}

	rw.Header().Add("Content-Type", "application/json")
	rw.WriteHeader(status)
	rw.Write(rawJSON)
}

// respondDetail writes the single-field error envelope used by the auth
// stage: {"detail": "<reason>"}.
func respondDetail(ctx context.Context, rw http.ResponseWriter, status int, detail string) {
	respond(ctx, rw, status, map[string]string{"detail": detail})
}

// respondFieldErrors writes the collected validation failures:
// {"errors": {"<field>": "<problem>", ...}}.
func respondFieldErrors(ctx context.Context, rw http.ResponseWriter, errs map[string]string) {
	respond(ctx, rw, http.StatusBadRequest, map[string]interface{}{"errors": errs})
}

func respondErr(ctx context.Context, rw http.ResponseWriter, status int, err error) {
	respond(ctx, rw, status, map[string]string{
		"code":  http.StatusText(status),
		"error": err.Error(),
	})
}

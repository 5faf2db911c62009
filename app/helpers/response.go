package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/unrolled/render"
)

// RenderError writes err as {"error": ...} or {"errors": {...}} with the
// status that matches its kind.
func RenderError(rnd *render.Render, w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}

	if fields := apperrors.PublicFields(err); len(fields) > 0 {
		_ = rnd.JSON(w, status, map[string]interface{}{"errors": fields})
		return
	}
	_ = rnd.JSON(w, status, map[string]string{"error": apperrors.PublicMessage(err)})
}

func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return apperrors.Validation("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Validation("request body is required")
		}
		return apperrors.Validation("malformed JSON body")
	}
	return nil
}

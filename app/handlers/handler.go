package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/modaltela/modal-tela-api/app/helpers"
)

// Paging holds the page size defaults applied to list endpoints.
type Paging struct {
	DefaultSize int
	MaxSize     int
}

func (p Paging) parse(r *http.Request) helpers.PageRequest {
	return helpers.ParsePageRequest(r.URL.Query(), p.DefaultSize, p.MaxSize)
}

func pathVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

// queryBool returns nil when the parameter is absent or not a boolean.
func queryBool(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

package httpapi

import (
	"net/http"

	"github.com/gobuffalo/packr/v2"
	"github.com/julienschmidt/httprouter"
)

// viewerBox embeds httpapi/assets into the cascadelang binary, following the
// teacher's own packr-based packing of cayley's web UI assets.
var viewerBox = packr.New("cascadelang-viewer", "./assets")

// handleViewer serves the single static debug page. It is deliberately
// exempt from Basic Auth (spec.md §4.11): the page itself carries no heap
// data, it only fetches /snapshot client-side, which is protected.
func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := viewerBox.FindString("viewer.html")
	if err != nil {
		http.Error(w, "viewer asset missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

package dashboard

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/proofchain/internal/proofs"
)

const maxUploadBytes = 32 << 20

// RegisterRoutes mounts the dashboard API onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/api/dashboard", d.handleState)
	r.Post("/api/register", d.handleRegister)
	r.Post("/api/verify", d.handleVerify)
	r.Post("/api/verify_tx", d.handleVerifyTx)
}

type stateResponse struct {
	Connected bool   `json:"is_connected"`
	Creator   string `json:"creator,omitempty"`
	Busy      bool   `json:"busy"`
	Notice    string `json:"notice,omitempty"`
}

func (d *Dashboard) handleState(w http.ResponseWriter, r *http.Request) {
	addr := d.wallet.Address()
	resp := stateResponse{Connected: addr != "", Creator: addr, Busy: d.Busy()}
	if addr == "" {
		resp.Notice = UserMessage(ErrNotConnected, "")
	}
	writeJSON(w, http.StatusOK, resp)
}

func (d *Dashboard) handleRegister(w http.ResponseWriter, r *http.Request) {
	in, err := decodeRegister(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	rc, err := d.Register(r.Context(), in)
	if err != nil {
		writeError(w, err, "register proof")
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

// decodeRegister reads either a JSON body or a multipart form with an
// optional "file" part.
func decodeRegister(r *http.Request) (RegisterInput, error) {
	var in RegisterInput
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		err := json.NewDecoder(r.Body).Decode(&in)
		return in, err
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return in, err
	}
	in.Prompt = r.FormValue("prompt")
	in.OutputType = proofs.OutputType(r.FormValue("output_type"))
	in.Output = r.FormValue("output")

	f, hdr, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return in, err
	}
	defer f.Close()
	in.FileName = hdr.Filename
	in.File, err = io.ReadAll(f)
	return in, err
}

type verifyRequest struct {
	Prompt  string `json:"prompt"`
	Output  string `json:"output"`
	Creator string `json:"creator"`
	TxHash  string `json:"tx_hash"`
}

func (d *Dashboard) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	ok, err := d.Verify(r.Context(), req.Prompt, req.Output, req.Creator)
	if err != nil {
		writeError(w, err, "verify proof")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": ok})
}

func (d *Dashboard) handleVerifyTx(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	ok, err := d.VerifyTx(r.Context(), req.TxHash)
	if err != nil {
		writeError(w, err, "verify transaction")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": ok})
}

func writeError(w http.ResponseWriter, err error, action string) {
	status := http.StatusBadGateway
	var inErr *InputError
	switch {
	case errors.Is(err, ErrNotConnected):
		status = http.StatusUnauthorized
	case errors.Is(err, ErrBusy):
		status = http.StatusConflict
	case errors.As(err, &inErr):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": UserMessage(err, action)})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

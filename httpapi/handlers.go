package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/lookbusy1344/sig-forge/sig/analyzer"
	"github.com/lookbusy1344/sig-forge/sig/export"
	"github.com/lookbusy1344/sig-forge/sig/generator"
	"github.com/lookbusy1344/sig-forge/sig/parser"
	"github.com/lookbusy1344/sig-forge/sig/smartanalyzer"
	"github.com/lookbusy1344/sig-forge/sig/types"
)

type parseRequest struct {
	Text       string `json:"text"`
	FormatHint string `json:"format_hint"`
}

type parseResponse struct {
	Instructions []types.Instruction `json:"instructions"`
	Labels       []string            `json:"labels"`
	Format       string              `json:"format"`
	Module       string              `json:"module,omitempty"`
	Stats        types.Stats         `json:"stats"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	hint, err := parser.ParseFormatHint(req.FormatHint)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := parser.Parse(req.Text, hint)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, parseResponse{
		Instructions: analyzer.AnalyzeAll(result.Instructions),
		Labels:       result.Labels,
		Format:       result.Format.String(),
		Module:       result.Module,
		Stats:        result.Stats,
	})
}

type generateRequest struct {
	Instructions []types.Instruction `json:"instructions"`
	Targets      []string            `json:"targets"`
	Special      string              `json:"special"`
	Strategy     string              `json:"strategy"`
	Options      *generator.Options  `json:"options"`
}

type generateResponse struct {
	Signatures map[string][]types.Signature `json:"signatures"`
	Unresolved []string                     `json:"unresolved"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	opts := generator.DefaultOptions()
	if req.Options != nil {
		opts = *req.Options
	}

	sel := generator.TargetSelection{Explicit: req.Targets}
	if req.Special != "" {
		sel = generator.ParseTargetToken(req.Special)
	}

	strategy := generator.Strategy(req.Strategy)
	if strategy == "" {
		strategy = generator.StrategyBalanced
	}

	res, err := generator.Generate(analyzer.AnalyzeAll(req.Instructions), sel, strategy, opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{Signatures: res.Signatures, Unresolved: res.Unresolved})
}

type generateTargetedRequest struct {
	Instructions []types.Instruction `json:"instructions"`
	Options      *generator.Options  `json:"options"`
}

type generateTargetedResponse struct {
	TargetID   string            `json:"target_id"`
	Signatures []types.Signature `json:"signatures"`
}

// handleGenerateTargeted accepts no target selection: the first instruction
// is always the anchor, and the response carries the synthesized
// "auto@<address>" id.
func (s *Server) handleGenerateTargeted(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req generateTargetedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	opts := generator.DefaultOptions()
	if req.Options != nil {
		opts = *req.Options
	}

	id, sigs, err := generator.GenerateTargeted(analyzer.AnalyzeAll(req.Instructions), opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, generateTargetedResponse{TargetID: id, Signatures: sigs})
}

type smartAnalyzeRequest struct {
	Instructions []types.Instruction `json:"instructions"`
	TopN         int                 `json:"top_n"`
}

func (s *Server) handleSmartAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req smartAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	topN := req.TopN
	if topN <= 0 {
		topN = 5
	}

	report := smartanalyzer.Analyze(analyzer.AnalyzeAll(req.Instructions), topN)
	writeJSON(w, http.StatusOK, report)
}

type smartGenerateRequest struct {
	Instructions []types.Instruction `json:"instructions"`
	TopN         int                 `json:"top_n"`
	Strategy     string              `json:"strategy"`
	Options      *generator.Options  `json:"options"`
}

type smartGenerateResponse struct {
	Report     smartanalyzer.Report         `json:"report"`
	Signatures map[string][]types.Signature `json:"signatures"`
}

func (s *Server) handleSmartGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req smartGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	topN := req.TopN
	if topN <= 0 {
		topN = 5
	}

	opts := generator.DefaultOptions()
	if req.Options != nil {
		opts = *req.Options
	}
	strategy := generator.Strategy(req.Strategy)
	if strategy == "" {
		strategy = generator.StrategyBalanced
	}

	res, err := smartanalyzer.SmartGenerate(analyzer.AnalyzeAll(req.Instructions), topN, strategy, opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, smartGenerateResponse{Report: res.Report, Signatures: res.Signatures})
}

type exportRequest struct {
	Signature types.Signature `json:"signature"`
	Format    string          `json:"format"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	f, err := export.ParseFormat(req.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"rendered": export.Render(req.Signature, f)})
}

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/dealscore/internal/benchmark"
	"github.com/sells-group/dealscore/internal/model"
	"github.com/sells-group/dealscore/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSaveProject(w http.ResponseWriter, r *http.Request) {
	var p model.Project
	if err := decodeBody(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := p.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Store.SaveProject(r.Context(), &p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.deps.Store.ListProjects(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// scoreRequest names a stored project or carries one inline.
type scoreRequest struct {
	ProjectID string         `json:"project_id,omitempty"`
	Project   *model.Project `json:"project,omitempty"`
}

type scoreResponse struct {
	ID         string           `json:"id,omitempty"`
	ConfigHash string           `json:"config_hash"`
	Score      *model.DealScore `json:"score"`
}

func (s *Server) handleScoreDeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	save, err := queryBool(r, "save")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req scoreRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var project model.Project
	switch {
	case req.Project != nil:
		if err := req.Project.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
		project = *req.Project
	case req.ProjectID != "":
		p, err := s.deps.Store.GetProject(ctx, req.ProjectID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		project = *p
	default:
		writeError(w, r, eris.Wrap(errBadRequest, "project or project_id is required"))
		return
	}

	portfolio, err := s.deps.Store.ListProjects(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := scoreResponse{
		ConfigHash: s.deps.Scorer.ConfigHash(),
		Score:      s.deps.Scorer.ScoreDeal(project, portfolio),
	}
	if save {
		stored, err := s.deps.Store.SaveDealScore(ctx, resp.Score, resp.ConfigHash)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.ID = stored.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLatestScore(w http.ResponseWriter, r *http.Request) {
	stored, err := s.deps.Store.GetLatestDealScore(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleListScores(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, r, err)
		return
	}
	minScore, err := queryInt(r, "min_score")
	if err != nil {
		writeError(w, r, err)
		return
	}

	scores, err := s.deps.Store.ListDealScores(r.Context(), store.ScoreFilter{
		ProjectID: r.URL.Query().Get("project_id"),
		MinScore:  minScore,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if scores == nil {
		scores = []store.StoredScore{}
	}
	writeJSON(w, http.StatusOK, scores)
}

type benchmarkResponse struct {
	SnapshotID string                    `json:"snapshot_id,omitempty"`
	Benchmarks *model.IndustryBenchmarks `json:"benchmarks"`
	Insights   []model.Insight           `json:"insights"`
}

func (s *Server) handleBenchmarks(w http.ResponseWriter, r *http.Request) {
	save, err := queryBool(r, "save")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var inputs map[model.Module]benchmark.ModuleInput
	if err := decodeBody(r, &inputs); err != nil {
		writeError(w, r, err)
		return
	}

	ib, err := s.deps.Benchmarker.GenerateComprehensiveBenchmarks(inputs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := benchmarkResponse{Benchmarks: ib, Insights: s.deps.Benchmarker.Insights(ib)}
	if save {
		snap, err := s.deps.Store.SaveBenchmarks(r.Context(), ib)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.SnapshotID = snap.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLatestBenchmarks(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Store.LatestBenchmarks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleLatestInsights(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Store.LatestBenchmarks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, benchmarkResponse{
		SnapshotID: snap.ID,
		Benchmarks: &snap.Benchmarks,
		Insights:   s.deps.Benchmarker.Insights(&snap.Benchmarks),
	})
}

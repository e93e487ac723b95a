package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gsdkit/reqgraph/internal/layout"
	"github.com/gsdkit/reqgraph/internal/requirement"
)

// requirementSummary is the list-view projection of a requirement.
type requirementSummary struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Status    requirement.Status `json:"status"`
	Category  string             `json:"category,omitempty"`
	Scope     requirement.Scope  `json:"scope,omitempty"`
	IsReady   bool               `json:"isReady"`
	IsBlocked bool               `json:"isBlocked"`
}

// requirementDetail is the click-through view: the stored record plus the
// graph annotations derived from it.
type requirementDetail struct {
	requirement.Requirement
	IsReady   bool     `json:"isReady"`
	IsBlocked bool     `json:"isBlocked"`
	BlockedBy []string `json:"blockedBy"`
	Blocks    []string `json:"blocks"`
	Layer     int      `json:"layer"`
}

// handleGraph returns the full current state: positioned nodes, edges,
// validation, stats, generation.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, s.logger, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, s.logger, http.StatusOK, s.store.State())
}

// handleRequirements returns summaries of every requirement in load order.
func (s *Server) handleRequirements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, s.logger, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	nodes := s.nodeIndex()
	snap := s.store.Snapshot()

	summaries := make([]requirementSummary, 0, snap.Len())
	for _, id := range snap.IDs() {
		req, ok := snap.Get(id)
		if !ok {
			continue
		}
		node := nodes[id]
		summaries = append(summaries, requirementSummary{
			ID:        req.ID,
			Title:     req.Title,
			Status:    req.Status,
			Category:  req.Category,
			Scope:     req.Scope,
			IsReady:   node.IsReady,
			IsBlocked: node.IsBlocked,
		})
	}

	writeJSON(w, s.logger, http.StatusOK, summaries)
}

// handleRequirementDetail returns one requirement with its graph
// annotations. The ID comes from the path: /api/requirements/{id}.
func (s *Server) handleRequirementDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, s.logger, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/requirements/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	req, ok := s.store.Requirement(id)
	if !ok {
		writeJSONError(w, s.logger, http.StatusNotFound, fmt.Sprintf("requirement %s not found", id))
		return
	}

	node := s.nodeIndex()[id]
	detail := requirementDetail{
		Requirement: *req,
		IsReady:     node.IsReady,
		IsBlocked:   node.IsBlocked,
		BlockedBy:   node.BlockedBy,
		Blocks:      node.Blocks,
		Layer:       node.Layer,
	}
	if detail.BlockedBy == nil {
		detail.BlockedBy = []string{}
	}
	if detail.Blocks == nil {
		detail.Blocks = []string{}
	}

	writeJSON(w, s.logger, http.StatusOK, detail)
}

// nodeIndex maps requirement IDs to their nodes in the current layout.
func (s *Server) nodeIndex() map[string]layout.Node {
	state := s.store.State()
	index := make(map[string]layout.Node, len(state.Layout.Nodes))
	for _, node := range state.Layout.Nodes {
		index[node.ID] = node
	}
	return index
}

func writeJSON(w http.ResponseWriter, logger *log.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Printf("Failed to encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, logger *log.Logger, status int, msg string) {
	writeJSON(w, logger, status, map[string]string{"error": msg})
}

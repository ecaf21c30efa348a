package http

import (
	"fmt"
	"net/http"

	"github.com/radieske/arb-bet-tracker/internal/ledger-service/dto"
	"github.com/radieske/arb-bet-tracker/internal/ledger-service/model"
	"github.com/radieske/arb-bet-tracker/internal/ledger-service/repo"
)

func (s *Server) listSportsbooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.SportsbookFilter{
		ActiveOnly: q.Get("active_only") == "true",
		Country:    q.Get("country"),
		Search:     q.Get("search"),
		SortBy:     q.Get("sort_by"),
		SortOrder:  q.Get("sort_order"),
		Page:       page(r),
	}
	list, total, err := s.repo.ListSportsbooks(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	pg := f.Page.Norm()
	p := dto.NewPagination(pg.Page, pg.PerPage, total)
	writeJSON(w, http.StatusOK, dto.SportsbooksPage{Sportsbooks: list, Pagination: &p})
}

func (s *Server) activeSportsbooks(w http.ResponseWriter, r *http.Request) {
	list, err := s.repo.ActiveSportsbooks(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SportsbooksPage{Sportsbooks: list})
}

// newSportsbook monta a casa a partir do pedido; nome é obrigatório
func (s *Server) newSportsbook(req dto.SportsbookRequest) (*model.Sportsbook, error) {
	name := trimmed(req.Name)
	if name == nil {
		return nil, badRequest("sportsbook name is required")
	}
	now := s.now()
	sb := &model.Sportsbook{
		Name:        *name,
		DisplayName: trimmed(req.DisplayName),
		WebsiteURL:  trimmed(req.WebsiteURL),
		LogoURL:     trimmed(req.LogoURL),
		IsActive:    true,
		Country:     trimmed(req.Country),
		Description: trimmed(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsActive != nil {
		sb.IsActive = *req.IsActive
	}
	return sb, nil
}

func (s *Server) createSportsbook(w http.ResponseWriter, r *http.Request) {
	var req dto.SportsbookRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sb, err := s.newSportsbook(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.repo.CreateSportsbook(r.Context(), sb); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sb)
}

// bulkCreateSportsbooks ignora itens sem nome e pula nomes já cadastrados
func (s *Server) bulkCreateSportsbooks(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkSportsbooksRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if len(req.Sportsbooks) == 0 {
		writeError(w, http.StatusBadRequest, "no sportsbooks data provided")
		return
	}
	list := make([]*model.Sportsbook, 0, len(req.Sportsbooks))
	for _, item := range req.Sportsbooks {
		if sb, err := s.newSportsbook(item); err == nil {
			list = append(list, sb)
		}
	}
	created, skipped, err := s.repo.CreateSportsbooks(r.Context(), list)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := dto.BulkResponse{
		Message:      fmt.Sprintf("created %d sportsbooks", len(created)),
		CreatedCount: len(created),
		SkippedCount: len(skipped),
		SkippedNames: append([]string{}, skipped...),
		Created:      []model.Sportsbook{},
	}
	for _, sb := range created {
		out.Created = append(out.Created, *sb)
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) getSportsbook(w http.ResponseWriter, r *http.Request) {
	sb, err := s.repo.GetSportsbook(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sb)
}

func (s *Server) updateSportsbook(w http.ResponseWriter, r *http.Request) {
	var req dto.SportsbookRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sb, err := s.repo.GetSportsbook(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Name != nil {
		name := trimmed(req.Name)
		if name == nil {
			writeError(w, http.StatusBadRequest, "sportsbook name cannot be empty")
			return
		}
		sb.Name = *name
	}
	for _, f := range []struct {
		src *string
		dst **string
	}{
		{req.DisplayName, &sb.DisplayName}, {req.WebsiteURL, &sb.WebsiteURL}, {req.LogoURL, &sb.LogoURL},
		{req.Country, &sb.Country}, {req.Description, &sb.Description},
	} {
		if f.src != nil {
			*f.dst = trimmed(f.src)
		}
	}
	if req.IsActive != nil {
		sb.IsActive = *req.IsActive
	}
	sb.UpdatedAt = s.now()

	if err := s.repo.UpdateSportsbook(r.Context(), &sb); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sb)
}

func (s *Server) deleteSportsbook(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteSportsbook(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, "sportsbook deleted")
}

func (s *Server) toggleSportsbook(w http.ResponseWriter, r *http.Request) {
	sb, err := s.repo.ToggleSportsbook(r.Context(), r.PathValue("id"), s.now())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	state := "deactivated"
	if sb.IsActive {
		state = "activated"
	}
	writeJSON(w, http.StatusOK, dto.ToggleResponse{Message: "sportsbook " + state, Sportsbook: sb})
}

func (s *Server) sportsbookStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.repo.SportsbookStats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// resolveSportsbook atende o bet-service: acha por id ou nome, cria se não existe
func (s *Server) resolveSportsbook(w http.ResponseWriter, r *http.Request) {
	var req dto.ResolveSportsbookRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sb, err := s.repo.ResolveSportsbook(r.Context(), req.Sportsbook, s.now())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.RefResponse{ID: sb.ID, Name: sb.Name})
}

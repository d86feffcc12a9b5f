// ABOUTME: Board and deal endpoints of the JSON API
// ABOUTME: Moves go through a drag controller so every surface shares one transition path
package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
)

const dateLayout = "2006-01-02"

type boardResponse struct {
	Columns   []pipeline.Column `json:"columns"`
	Summary   pipeline.Summary  `json:"summary"`
	Unmatched int               `json:"unmatched"`
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	if err := s.board.Load(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	columns := s.board.Columns(r.URL.Query().Get("q"))
	JSON(w, http.StatusOK, boardResponse{
		Columns:   columns,
		Summary:   pipeline.Summarize(s.board.Groups()),
		Unmatched: len(s.board.Unmatched()),
	})
}

type moveRequest struct {
	DealID int64  `json:"deal_id"`
	Stage  string `json:"stage"`
}

type moveResponse struct {
	Outcome string       `json:"outcome"`
	From    string       `json:"from"`
	To      string       `json:"to"`
	Deal    *models.Deal `json:"deal,omitempty"`
}

// handleMove is what the board page posts when a card is dropped on a column.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.DealID <= 0 {
		writeError(w, models.ValidationErrors{"deal_id": "is required"})
		return
	}
	if !models.IsValidStage(req.Stage) {
		writeError(w, fmt.Errorf("%w: %q", pipeline.ErrInvalidStage, req.Stage))
		return
	}

	deal, ok := s.board.Deal(req.DealID)
	if !ok {
		if err := s.board.Load(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		if deal, ok = s.board.Deal(req.DealID); !ok {
			writeError(w, &models.NotFoundError{Entity: "deal", ID: req.DealID})
			return
		}
	}

	controller := s.board.NewController()
	if err := controller.Begin(deal); err != nil {
		writeError(w, err)
		return
	}
	res, err := controller.Drop(r.Context(), req.Stage)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := moveResponse{Outcome: res.Outcome.String(), From: res.From, To: res.To, Deal: res.Deal}
	if resp.Deal == nil {
		resp.Deal = &deal
	}
	JSON(w, http.StatusOK, resp)
}

func (s *Server) handleListDeals(w http.ResponseWriter, r *http.Request) {
	if err := s.board.Load(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	deals := pipeline.FilterDeals(s.board.Deals(), s.board.Contacts(), q.Get("q"))
	if stage := q.Get("stage"); stage != "" {
		if !models.IsValidStage(stage) {
			writeError(w, fmt.Errorf("%w: %q", pipeline.ErrInvalidStage, stage))
			return
		}
		filtered := make([]models.Deal, 0, len(deals))
		for _, d := range deals {
			if d.Stage == stage {
				filtered = append(filtered, d)
			}
		}
		deals = filtered
	}
	if deals == nil {
		deals = []models.Deal{}
	}
	JSON(w, http.StatusOK, deals)
}

type dealRequest struct {
	Title             string  `json:"title"`
	Value             float64 `json:"value"`
	Stage             string  `json:"stage"`
	Probability       *int    `json:"probability"`
	ContactID         *int64  `json:"contact_id"`
	ExpectedCloseDate string  `json:"expected_close_date"`
	Description       string  `json:"description"`
}

func (s *Server) handleCreateDeal(w http.ResponseWriter, r *http.Request) {
	var req dealRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	deal := &models.Deal{
		Title:       req.Title,
		Value:       req.Value,
		Stage:       req.Stage,
		Probability: models.ProbabilityOrDefault(req.Probability),
		ContactID:   req.ContactID,
		Description: req.Description,
	}
	if req.ExpectedCloseDate != "" {
		t, err := parseDate("expected_close_date", req.ExpectedCloseDate)
		if err != nil {
			writeError(w, err)
			return
		}
		deal.ExpectedCloseDate = &t
	}

	if err := s.board.CreateDeal(r.Context(), deal); err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusCreated, deal)
}

func (s *Server) handleGetDeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "deal")
	if err != nil {
		writeError(w, err)
		return
	}
	deal, err := s.store.GetDeal(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusOK, deal)
}

// dealPatchRequest takes the close date as a plain date; the other fields
// decode straight into the patch.
type dealPatchRequest struct {
	models.DealPatch
	ExpectedCloseDate *string `json:"expected_close_date,omitempty"`
}

func (s *Server) handleUpdateDeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "deal")
	if err != nil {
		writeError(w, err)
		return
	}

	var req dealPatchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	patch := req.DealPatch
	if req.ExpectedCloseDate != nil {
		if *req.ExpectedCloseDate == "" {
			patch.ClearCloseDate = true
		} else {
			t, err := parseDate("expected_close_date", *req.ExpectedCloseDate)
			if err != nil {
				writeError(w, err)
				return
			}
			patch.ExpectedCloseDate = &t
		}
	}
	if patch.IsEmpty() {
		writeError(w, models.ValidationErrors{"body": "no fields to update"})
		return
	}

	updated, err := s.board.EditDeal(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteDeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "deal")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.board.DeleteDeal(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request, entity string) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, models.ValidationErrors{"id": fmt.Sprintf("invalid %s id %q", entity, raw)}
	}
	return id, nil
}

// queryID reads an optional id filter; zero means unset.
func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, models.ValidationErrors{name: fmt.Sprintf("invalid id %q", raw)}
	}
	return id, nil
}

// parseDate accepts a plain date or a full RFC3339 timestamp.
func parseDate(field, value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, models.ValidationErrors{field: "use YYYY-MM-DD or RFC3339"}
	}
	return t, nil
}

// ABOUTME: Contact, task, activity, quote, and dashboard endpoints of the JSON API
// ABOUTME: Thin adapters over the record store with the same validation as the CLI and MCP tools
package web

import (
	"net/http"
	"time"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/handlers"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/viz"
)

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.store.ListContacts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	query := r.URL.Query().Get("q")
	out := make([]models.Contact, 0, len(contacts))
	for i := range contacts {
		if handlers.ContactMatches(&contacts[i], query) {
			out = append(out, contacts[i])
		}
	}
	JSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var contact models.Contact
	if err := decode(r, &contact); err != nil {
		writeError(w, err)
		return
	}
	contact.ID = 0
	contact.LastActivity = nil

	if err := s.store.CreateContact(r.Context(), &contact); err != nil {
		writeError(w, err)
		return
	}
	s.board.UpsertContact(contact)
	JSON(w, http.StatusCreated, contact)
}

// handleDeleteContact leaves deals that referenced the contact alone.
func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contact")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.DeleteContact(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.board.RemoveContact(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	dealID, err := queryID(r, "deal")
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	filter := handlers.TaskFilter{
		Status: q.Get("status"),
		DealID: dealID,
		Query:  q.Get("q"),
	}
	// an explicit status asks for closed tasks too
	filter.OpenOnly = q.Get("all") == "" && filter.Status == ""
	if err := filter.Validate(); err != nil {
		writeError(w, err)
		return
	}

	tasks, err := s.store.ListTasks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusOK, handlers.FilterTasks(tasks, filter))
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	ContactID   *int64 `json:"contact_id"`
	DealID      *int64 `json:"deal_id"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		ContactID:   req.ContactID,
		DealID:      req.DealID,
	}
	if req.DueDate != "" {
		due, err := parseDate("due_date", req.DueDate)
		if err != nil {
			writeError(w, err)
			return
		}
		task.DueDate = due
	}

	if err := s.store.CreateTask(r.Context(), task); err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusCreated, task)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "task")
	if err != nil {
		writeError(w, err)
		return
	}
	task, err := db.ToggleTask(r.Context(), s.store, id)
	if err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusOK, task)
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	contactID, err := queryID(r, "contact")
	if err != nil {
		writeError(w, err)
		return
	}
	dealID, err := queryID(r, "deal")
	if err != nil {
		writeError(w, err)
		return
	}

	filter := handlers.ActivityFilter{
		Type:      r.URL.Query().Get("type"),
		ContactID: contactID,
		DealID:    dealID,
		Query:     r.URL.Query().Get("q"),
	}
	if err := filter.Validate(); err != nil {
		writeError(w, err)
		return
	}

	activities, err := s.store.ListActivities(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusOK, handlers.FilterActivities(activities, filter))
}

type activityRequest struct {
	Type        string `json:"type"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	ContactID   *int64 `json:"contact_id"`
	DealID      *int64 `json:"deal_id"`
}

func (s *Server) handleLogActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	activity := &models.Activity{
		Type:        req.Type,
		Subject:     req.Subject,
		Description: req.Description,
		ContactID:   req.ContactID,
		DealID:      req.DealID,
	}
	if err := s.store.CreateActivity(r.Context(), activity); err != nil {
		writeError(w, err)
		return
	}
	if err := handlers.TouchContact(r.Context(), s.store, activity.ContactID, activity.CreatedAt); err != nil {
		s.logger.Warn("failed to stamp contact activity", "contact", *activity.ContactID, "err", err)
	}
	JSON(w, http.StatusCreated, activity)
}

func (s *Server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	dealID, err := queryID(r, "deal")
	if err != nil {
		writeError(w, err)
		return
	}
	filter := handlers.QuoteFilter{
		DealID: dealID,
		Status: r.URL.Query().Get("status"),
		Query:  r.URL.Query().Get("q"),
	}
	if err := filter.Validate(); err != nil {
		writeError(w, err)
		return
	}

	quotes, err := s.store.ListQuotes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	contacts, err := s.store.ListContacts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusOK, handlers.FilterQuotes(quotes, handlers.ContactIndex(contacts), filter))
}

type quoteRequest struct {
	Company         string         `json:"company"`
	ContactID       int64          `json:"contact_id"`
	DealID          int64          `json:"deal_id"`
	QuoteDate       string         `json:"quote_date"`
	ExpiresOn       string         `json:"expires_on"`
	Status          string         `json:"status"`
	DeliveryMethod  string         `json:"delivery_method"`
	BillingAddress  models.Address `json:"billing_address"`
	ShippingAddress models.Address `json:"shipping_address"`
}

func (s *Server) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	quote := &models.Quote{
		Company:         req.Company,
		ContactID:       req.ContactID,
		DealID:          req.DealID,
		Status:          req.Status,
		DeliveryMethod:  req.DeliveryMethod,
		BillingAddress:  req.BillingAddress,
		ShippingAddress: req.ShippingAddress,
	}

	var err error
	if req.QuoteDate == "" {
		y, m, d := time.Now().Date()
		quote.QuoteDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	} else if quote.QuoteDate, err = parseDate("quote_date", req.QuoteDate); err != nil {
		writeError(w, err)
		return
	}
	if req.ExpiresOn != "" {
		if quote.ExpiresOn, err = parseDate("expires_on", req.ExpiresOn); err != nil {
			writeError(w, err)
			return
		}
	}

	if err := s.store.CreateQuote(r.Context(), quote); err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusCreated, quote)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := viz.GenerateDashboardStats(r.Context(), s.store, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusOK, stats)
}

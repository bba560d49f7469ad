package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"leadcrm/internal/models"
	"leadcrm/internal/pdf"
	"leadcrm/internal/services"
)

type LeadHandler struct {
	Service *services.LeadService
	PDF     pdf.Generator
}

func NewLeadHandler(service *services.LeadService, gen pdf.Generator) *LeadHandler {
	return &LeadHandler{Service: service, PDF: gen}
}

func leadOK(c *gin.Context, status int, msg string, lead *models.Lead) {
	c.JSON(status, gin.H{"success": true, "message": msg, "data": lead})
}

// @Summary      Create lead
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Param        lead  body      models.CreateLeadRequest  true  "Lead"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]interface{}
// @Router       /api/lead/leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var req models.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "[lead][create]", errInvalidBody)
		return
	}
	lead, err := h.Service.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, "[lead][create]", err)
		return
	}
	leadOK(c, http.StatusCreated, "Lead created successfully", lead)
}

// @Summary      List leads
// @Description  Filters, sorts and pages the caller's leads. data is a JSON object with page, limit, sortBy, order, status, source, is_qualified, score, lead_value, created_at, last_activity_at and search.
// @Tags         Leads
// @Produce      json
// @Param        data  query     string  false  "JSON-encoded query"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]interface{}
// @Router       /api/lead/leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	page, err := h.list(c)
	if err != nil {
		respondError(c, "[lead][list]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Leads fetched successfully",
		"meta":    page,
		"data":    page.Leads,
	})
}

func (h *LeadHandler) list(c *gin.Context) (*models.LeadPage, error) {
	q, err := models.ParseLeadListQuery(c.Query("data"))
	if err != nil {
		return nil, err
	}
	return h.Service.List(c.Request.Context(), currentUserID(c), q)
}

// @Summary      Export leads as PDF
// @Description  Renders the page selected by data as a PDF table
// @Tags         Leads
// @Produce      application/pdf
// @Param        data  query     string  false  "JSON-encoded query"
// @Success      200   {file}    file
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]interface{}
// @Router       /api/lead/leads/export [get]
func (h *LeadHandler) Export(c *gin.Context) {
	page, err := h.list(c)
	if err != nil {
		respondError(c, "[lead][export]", err)
		return
	}

	owner := ""
	if u := currentUser(c); u != nil {
		owner = u.FullName
	}

	// rendered fully before writing, so a failure still yields a JSON error
	var buf bytes.Buffer
	err = h.PDF.LeadsReport(&buf, pdf.LeadsReportData{
		OwnerName:   owner,
		GeneratedAt: time.Now(),
		Total:       page.Total,
		Page:        page.Page,
		TotalPages:  page.TotalPages,
		Leads:       page.Leads,
	})
	if err != nil {
		respondError(c, "[lead][export]", err)
		return
	}

	log.WithFields(log.Fields{"user_id": currentUserID(c), "rows": len(page.Leads)}).Info("[lead][export] rendered")
	c.Header("Content-Disposition", `attachment; filename="leads.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// @Summary      Get lead
// @Tags         Leads
// @Produce      json
// @Param        id   path      string  true  "Lead ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/lead/leads/{id} [get]
func (h *LeadHandler) GetByID(c *gin.Context) {
	lead, err := h.Service.GetByID(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, "[lead][get]", err)
		return
	}
	leadOK(c, http.StatusOK, "Lead fetched successfully", lead)
}

// @Summary      Update lead
// @Description  Applies first_name, last_name, phone, company, city, state, source, status, score, lead_value and last_activity_at; other keys are ignored
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Param        id     path      string            true  "Lead ID"
// @Param        patch  body      models.LeadPatch  true  "Fields to change"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]interface{}
// @Failure      404    {object}  map[string]interface{}
// @Failure      500    {object}  map[string]interface{}
// @Router       /api/lead/leads/{id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	var patch models.LeadPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, "[lead][update]", errInvalidBody)
		return
	}
	lead, err := h.Service.Update(c.Request.Context(), currentUserID(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, "[lead][update]", err)
		return
	}
	leadOK(c, http.StatusOK, "Lead updated successfully", lead)
}

// @Summary      Delete lead
// @Tags         Leads
// @Produce      json
// @Param        id   path      string  true  "Lead ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/lead/leads/{id} [delete]
func (h *LeadHandler) Delete(c *gin.Context) {
	lead, err := h.Service.Delete(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, "[lead][delete]", err)
		return
	}
	leadOK(c, http.StatusOK, "Lead deleted successfully", lead)
}

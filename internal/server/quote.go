package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	quotedomain "github.com/smallbiznis/robobooks/internal/quote/domain"
	"github.com/smallbiznis/robobooks/pkg/db/pagination"
)

func (s *Server) PreviewQuote(c *gin.Context) {
	var req quotedomain.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.Preview(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateQuote(c *gin.Context) {
	var req quotedomain.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	tagQuote(c, resp.ID.String())

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateQuote(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	tagQuote(c, id)

	var req quotedomain.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = id

	resp, err := s.quoteSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateQuoteStatus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	tagQuote(c, id)

	var req quotedomain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = id

	resp, err := s.quoteSvc.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListQuotes(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status        string `form:"status"`
		CustomerID    string `form:"customer_id"`
		QuoteDateFrom string `form:"quote_date_from"`
		QuoteDateTo   string `form:"quote_date_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	quoteDateFrom, err := parseOptionalTime(query.QuoteDateFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("quote_date_from", "invalid_quote_date_from", "invalid quote_date_from"))
		return
	}

	quoteDateTo, err := parseOptionalTime(query.QuoteDateTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("quote_date_to", "invalid_quote_date_to", "invalid quote_date_to"))
		return
	}

	resp, err := s.quoteSvc.List(c.Request.Context(), quotedomain.ListQuoteRequest{
		PageToken:     query.PageToken,
		PageSize:      int32(query.PageSize),
		Status:        strings.TrimSpace(query.Status),
		CustomerID:    strings.TrimSpace(query.CustomerID),
		QuoteDateFrom: quoteDateFrom,
		QuoteDateTo:   quoteDateTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetQuoteByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	tagQuote(c, id)

	resp, err := s.quoteSvc.GetByID(c.Request.Context(), quotedomain.GetQuoteRequest{ID: id})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RenderQuotePDF(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	tagQuote(c, id)

	doc, err := s.quoteSvc.RenderPDF(c.Request.Context(), quotedomain.GetQuoteRequest{ID: id})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.DataFromReader(http.StatusOK, -1, "application/pdf", doc.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", doc.FileName),
	})
}
